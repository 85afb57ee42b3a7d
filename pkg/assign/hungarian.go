package assign

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/photobook/pkg/errors"
)

// Assignment maps row index to column index. A valid assignment is a
// permutation of 0..n-1.
type Assignment []int

// Valid reports whether a is a permutation of 0..len(a)-1.
func (a Assignment) Valid() bool {
	seen := make([]bool, len(a))
	for _, j := range a {
		if j < 0 || j >= len(a) || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

// Inverse returns the column -> row mapping.
func (a Assignment) Inverse() Assignment {
	inv := make(Assignment, len(a))
	for i, j := range a {
		inv[j] = i
	}
	return inv
}

// Cost returns Σ cost[i][a[i]].
func Cost(cost mat.Matrix, a Assignment) float64 {
	var total float64
	for i, j := range a {
		total += cost.At(i, j)
	}
	return total
}

// Solve returns a minimum-cost assignment for a square cost matrix.
//
// It returns DEGENERATE_SOLVE for an empty or non-square matrix and
// INVALID_COST when an entry is NaN or infinite. Ties between equal-cost
// optima are broken deterministically by the order in which rows are
// inserted.
func Solve(cost mat.Matrix) (Assignment, error) {
	n, err := checkSquare(cost)
	if err != nil {
		return nil, err
	}

	const inf = math.MaxFloat64

	// 1-indexed; column 0 and row 0 are the virtual start of each
	// augmenting path.
	u := make([]float64, n+1)    // row potentials
	v := make([]float64, n+1)    // column potentials
	p := make([]int, n+1)        // p[j]: row matched to column j
	way := make([]int, n+1)      // way[j]: previous column on the path
	minv := make([]float64, n+1) // slack per column
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost.At(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	a := make(Assignment, n)
	for j := 1; j <= n; j++ {
		a[p[j]-1] = j - 1
	}
	return a, nil
}

func checkSquare(cost mat.Matrix) (int, error) {
	if cost == nil {
		return 0, errors.New(errors.ErrCodeDegenerateSolve, "nil cost matrix")
	}
	r, c := cost.Dims()
	if r == 0 || c == 0 {
		return 0, errors.New(errors.ErrCodeDegenerateSolve, "empty cost matrix")
	}
	if r != c {
		return 0, errors.New(errors.ErrCodeDegenerateSolve, "cost matrix is %dx%d, want square", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := cost.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, errors.New(errors.ErrCodeInvalidCost, "cost[%d][%d] = %v", i, j, v)
			}
		}
	}
	return r, nil
}
