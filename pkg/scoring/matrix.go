package scoring

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/photo"
)

// SlotRanks returns, for each slot index, its position in reading order
// (ascending y + 0.6x, stable on ties).
func SlotRanks(slots []catalog.Slot) []int {
	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra, rb := slots[a].ReadingRank(), slots[b].ReadingRank()
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
	ranks := make([]int, len(slots))
	for pos, j := range order {
		ranks[j] = pos
	}
	return ranks
}

// Cell breaks one photo/slot cost into its weighted terms.
type Cell struct {
	Crop     float64
	Mismatch float64
	Flow     float64
}

// Total returns the weighted sum of the cell.
func (c Cell) Total(w Weights) float64 {
	return w.Crop*c.Crop + w.Orient*c.Mismatch + w.Flow*c.Flow
}

// PairCost computes the unweighted terms for photo i of n placed in a slot
// with the given reading rank.
func PairCost(p photo.Photo, i, n int, s catalog.Slot, rank int) Cell {
	par, sar := p.Aspect(), s.Aspect()
	c := Cell{
		Crop: math.Abs(sar - par),
		Flow: math.Abs(float64(rank-i)) / float64(max(1, n-1)),
	}
	if photo.Crosses(photo.Classify(par), photo.Classify(sar)) {
		c.Mismatch = 1
	}
	return c
}

// CostMatrix builds the photo × slot cost matrix. When the photo count and
// slot count differ the matrix is padded to a square of the larger size with
// zero-cost rows (empty slots) or columns (photos left off the page).
func CostMatrix(photos []photo.Photo, slots []catalog.Slot, w Weights) *mat.Dense {
	n, m := len(photos), len(slots)
	size := max(n, m)
	if size == 0 {
		return &mat.Dense{}
	}
	ranks := SlotRanks(slots)
	cost := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			cost.Set(i, j, PairCost(photos[i], i, n, slots[j], ranks[j]).Total(w))
		}
	}
	return cost
}
