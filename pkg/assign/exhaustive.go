package assign

import (
	"iter"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/photobook/pkg/errors"
)

// MaxExhaustive bounds the matrix size accepted by SolveExhaustive (8! = 40320).
const MaxExhaustive = 8

// Identity returns the assignment [0, 1, ..., n-1].
func Identity(n int) Assignment {
	a := make(Assignment, max(n, 0))
	for i := range a {
		a[i] = i
	}
	return a
}

// Factorial returns n!, 1 for n <= 1.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Permutations yields every permutation of [0, n) using Heap's algorithm,
// starting with the identity. The yielded slice is reused between
// iterations; clone it to keep it.
func Permutations(n int) iter.Seq[Assignment] {
	return func(yield func(Assignment) bool) {
		perm := Identity(n)
		if !yield(perm) {
			return
		}
		state := make([]int, n)
		for i := 0; i < n; {
			if state[i] < i {
				if i&1 == 0 {
					perm[0], perm[i] = perm[i], perm[0]
				} else {
					perm[state[i]], perm[i] = perm[i], perm[state[i]]
				}
				if !yield(perm) {
					return
				}
				state[i]++
				i = 0
			} else {
				state[i] = 0
				i++
			}
		}
	}
}

// SolveExhaustive returns a minimum-cost assignment by trying every
// permutation. Among equal-cost optima the first one enumerated wins.
func SolveExhaustive(cost mat.Matrix) (Assignment, error) {
	n, err := checkSquare(cost)
	if err != nil {
		return nil, err
	}
	if n > MaxExhaustive {
		return nil, errors.New(errors.ErrCodeInvalidInput, "exhaustive solve limited to %d rows, got %d", MaxExhaustive, n)
	}

	var best Assignment
	bestCost := 0.0
	for p := range Permutations(n) {
		if c := Cost(cost, p); best == nil || c < bestCost {
			best, bestCost = slices.Clone(p), c
		}
	}
	return best, nil
}
