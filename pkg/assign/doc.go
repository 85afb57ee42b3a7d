// Package assign solves the square linear assignment problem: given an n×n
// cost matrix, find the permutation a minimizing Σ cost[i][a[i]].
//
// [Solve] is the O(n³) Kuhn–Munkres (Hungarian) algorithm with row and
// column potentials. [SolveExhaustive] enumerates every permutation with
// Heap's algorithm and exists to cross-check [Solve] on small inputs.
//
// Inputs are gonum matrices so callers can build costs with the usual
// mat.Dense helpers:
//
//	cost := mat.NewDense(2, 2, []float64{
//	    4, 1,
//	    2, 3,
//	})
//	a, err := assign.Solve(cost) // a == Assignment{1, 0}
package assign
