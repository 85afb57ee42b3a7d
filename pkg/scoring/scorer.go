// Package scoring rates how well a group of photos fits a page template.
//
// For one template it builds the photo × slot cost matrix (crop fit,
// orientation mismatch and chronological flow), finds the minimum-cost
// assignment with the Hungarian solver and then applies assignment-level
// adjustments: a bonus when the group's first photo lands in the largest
// slot, a penalty when too many photos sit in slots of the opposite
// orientation, and a small bonus for a sharp or well-composed hero photo.
//
// The resulting [Result.Score] is the negated total cost, so higher is better.
package scoring

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/photobook/pkg/assign"
	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/photo"
)

// Item placement defaults. Focal points are resolved downstream.
const (
	CropCover             = "cover"
	DefaultObjectPosition = "50% 50%"
)

// Item places one photo of the group in one slot of the template.
type Item struct {
	PhotoIndex     int    `json:"photoIndex" bson:"photo_index"`
	SlotIndex      int    `json:"slotIndex" bson:"slot_index"`
	Crop           string `json:"crop" bson:"crop"`
	ObjectPosition string `json:"objectPosition" bson:"object_position"`
}

// NewItem returns an item with the default crop mode and focal point.
func NewItem(photoIndex, slotIndex int) Item {
	return Item{PhotoIndex: photoIndex, SlotIndex: slotIndex, Crop: CropCover, ObjectPosition: DefaultObjectPosition}
}

// Adjustments records the assignment-level terms added to the matched cost.
type Adjustments struct {
	Hero      float64 `json:"hero"`
	Diversity float64 `json:"diversity"`
	Features  float64 `json:"features"`
}

// Sum returns the total adjustment.
func (a Adjustments) Sum() float64 { return a.Hero + a.Diversity + a.Features }

// Result is the evaluation of one template for one group.
type Result struct {
	TemplateID string

	// MatchCost is the sum of matched cells; TotalCost adds Adjustments.
	MatchCost   float64
	Adjustments Adjustments
	TotalCost   float64
	Score       float64

	// Assignment maps photo index to slot index, -1 for a photo that did
	// not fit on the template.
	Assignment assign.Assignment
	Items      []Item
	Unplaced   []int

	HeroSlot  int
	HeroPhoto int // -1 when the hero slot is empty
	Crossings int
}

// Scorer evaluates templates. It is safe for concurrent use.
type Scorer struct {
	opts   Options
	logger *log.Logger
}

// New returns a Scorer after validating opts.
func New(opts Options) (*Scorer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scorer{opts: opts, logger: logger}, nil
}

// Options returns the scorer's configuration.
func (s *Scorer) Options() Options { return s.opts }

// Matrix returns the (padded) cost matrix for photos on t.
func (s *Scorer) Matrix(t catalog.Template, photos []photo.Photo) *mat.Dense {
	return CostMatrix(photos, t.Slots, s.opts.Weights)
}

// Score evaluates photos on template t.
func (s *Scorer) Score(t catalog.Template, photos []photo.Photo) (Result, error) {
	n, m := len(photos), t.Len()
	if n == 0 || m == 0 {
		return Result{}, errors.New(errors.ErrCodeDegenerateSolve, "score %q: %d photos on %d slots", t.ID, n, m)
	}

	cost := s.Matrix(t, photos)
	full, err := assign.Solve(cost)
	if err != nil {
		return Result{}, fmt.Errorf("score %q: %w", t.ID, err)
	}

	r := Result{
		TemplateID: t.ID,
		Assignment: make(assign.Assignment, n),
		HeroSlot:   t.HeroSlot(),
		HeroPhoto:  -1,
	}
	for i := 0; i < n; i++ {
		j := full[i]
		if j >= m {
			r.Assignment[i] = -1
			r.Unplaced = append(r.Unplaced, i)
			continue
		}
		r.Assignment[i] = j
		r.MatchCost += cost.At(i, j)
		r.Items = append(r.Items, NewItem(i, j))
		if j == r.HeroSlot {
			r.HeroPhoto = i
		}
		if photo.Crosses(photos[i].Category(), t.Slots[j].Category()) {
			r.Crossings++
		}
	}

	if r.HeroPhoto == 0 {
		r.Adjustments.Hero = -s.opts.Bonuses.Hero
	} else {
		r.Adjustments.Hero = s.opts.Bonuses.HeroMiss
	}
	if r.Crossings >= max(2, n/2) {
		r.Adjustments.Diversity = s.opts.Bonuses.Diversity
	}
	if r.HeroPhoto >= 0 {
		r.Adjustments.Features = -s.featureBonus(photos[r.HeroPhoto])
	}

	r.TotalCost = r.MatchCost + r.Adjustments.Sum()
	r.Score = -r.TotalCost

	s.logger.Debug("scored template",
		"tpl", t.ID,
		"score", round3(r.Score),
		"match", round3(r.MatchCost),
		"hero", r.HeroPhoto == 0,
		"crossings", r.Crossings,
	)
	return r, nil
}

// featureBonus is the bounded reward for the photo in the hero slot, 0 when
// no features are known.
func (s *Scorer) featureBonus(p photo.Photo) float64 {
	if s.opts.Features == nil {
		return 0
	}
	f, ok := s.opts.Features.Get(p.Path)
	if !ok {
		return 0
	}
	var bonus float64
	if f.Sharpness != nil && *f.Sharpness >= 0 {
		bonus += math.Min(MaxSharpnessBonus, math.Log1p(*f.Sharpness)/sharpnessScale)
	}
	if f.Aesthetic != nil && !math.IsNaN(*f.Aesthetic) {
		bonus += (*f.Aesthetic - aestheticCenter) / aestheticScale
	}
	return bonus
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
