// Package grouping splits an ordered photo stream into page-sized groups.
//
// The split is a single greedy pass. Each photo carries a weight derived from
// its aspect ratio (panoramas count for more than one ordinary photo) and a
// page closes once the accumulated weight reaches the target capacity.
// Striking photos may be promoted to a page of their own ("hero" pages) at a
// fixed rhythm, and a trailing singleton page is rebalanced by borrowing a
// photo from its predecessor.
package grouping

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/photo"
)

// Capacity bounds.
const (
	MinCapacity     = 2
	MaxCapacity     = 6
	DefaultCapacity = 4

	// MaxGroupSize is the largest group ever emitted.
	MaxGroupSize = 6

	// overflowSlack lets a page run slightly past capacity before wrapping.
	overflowSlack = 0.25
)

// Hero promotion defaults.
const (
	DefaultHeroFrequency    = 7
	DefaultExtremeARHigh    = 2.2
	DefaultExtremeARLow     = 0.6
	DefaultQualityThreshold = 0.9
	DefaultMinMegapixels    = 20.0
)

// HeroOptions controls singleton promotion.
type HeroOptions struct {
	// Frequency promotes at most every Frequency-th photo; 0 disables heroes.
	Frequency int

	// ExtremeARHigh and ExtremeARLow bound the "extreme" aspect ratios.
	ExtremeARHigh float64
	ExtremeARLow  float64

	// QualityThreshold is the minimum quality score for a hero.
	QualityThreshold float64

	// MinMegapixels is the pixel area (in millions) that qualifies a hero.
	MinMegapixels float64
}

// Options configures a Grouper.
type Options struct {
	Capacity int
	Hero     HeroOptions
	Logger   *log.Logger
}

// DefaultOptions returns the standard grouping options.
func DefaultOptions() Options {
	return Options{
		Capacity: DefaultCapacity,
		Hero: HeroOptions{
			Frequency:        DefaultHeroFrequency,
			ExtremeARHigh:    DefaultExtremeARHigh,
			ExtremeARLow:     DefaultExtremeARLow,
			QualityThreshold: DefaultQualityThreshold,
			MinMegapixels:    DefaultMinMegapixels,
		},
	}
}

// ClampCapacity maps capacity into [MinCapacity, MaxCapacity]; 0 means default.
func ClampCapacity(capacity int) int {
	if capacity == 0 {
		return DefaultCapacity
	}
	return min(max(capacity, MinCapacity), MaxCapacity)
}

// Group is an ordered run of 1..MaxGroupSize photos that becomes one page.
type Group struct {
	Photos []photo.Photo
	// Hero is set when the group was produced by hero promotion.
	Hero bool
}

// Len returns the number of photos.
func (g Group) Len() int { return len(g.Photos) }

// Grouper partitions photo streams. The zero value is not usable; use New.
type Grouper struct {
	capacity float64
	hero     HeroOptions
	logger   *log.Logger
}

// New returns a Grouper. Capacity is clamped; zero-valued hero thresholds
// take their defaults except Frequency, where 0 disables promotion.
func New(opts Options) *Grouper {
	h := opts.Hero
	if h.ExtremeARHigh <= 0 {
		h.ExtremeARHigh = DefaultExtremeARHigh
	}
	if h.ExtremeARLow <= 0 {
		h.ExtremeARLow = DefaultExtremeARLow
	}
	if h.QualityThreshold <= 0 {
		h.QualityThreshold = DefaultQualityThreshold
	}
	if h.MinMegapixels <= 0 {
		h.MinMegapixels = DefaultMinMegapixels
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Grouper{
		capacity: float64(ClampCapacity(opts.Capacity)),
		hero:     h,
		logger:   logger,
	}
}

// Weight returns the page weight of an aspect ratio.
func Weight(ratio float64) float64 {
	switch {
	case ratio >= 2.2:
		return 2.5
	case ratio >= 1.6:
		return 1.6
	case ratio < 0.7:
		return 1.2
	default:
		return 1.0
	}
}

// IsHero reports whether p qualifies for promotion, ignoring the rhythm.
func (g *Grouper) IsHero(p photo.Photo) bool {
	r := p.Aspect()
	if r >= g.hero.ExtremeARHigh || r <= g.hero.ExtremeARLow {
		return true
	}
	if q, ok := p.Quality(); ok && q >= g.hero.QualityThreshold {
		return true
	}
	return p.Megapixels() >= g.hero.MinMegapixels
}

// Group partitions photos preserving order. Every input photo appears in
// exactly one group, every group holds 1..MaxGroupSize photos, and an empty
// input yields no groups.
func (g *Grouper) Group(photos []photo.Photo) []Group {
	var (
		groups []Group
		buf    []photo.Photo
		sum    float64
	)
	flush := func() {
		if len(buf) > 0 {
			groups = append(groups, Group{Photos: buf})
			buf, sum = nil, 0
		}
	}

	for i, p := range photos {
		w := Weight(p.Aspect())

		if len(buf) > 0 && sum+w > g.capacity+overflowSlack {
			flush()
		}

		if len(buf) == 0 && g.hero.Frequency > 0 && i%g.hero.Frequency == 0 && g.IsHero(p) {
			g.logger.Debug("hero page", "index", i, "path", p.Path, "ratio", p.Aspect())
			groups = append(groups, Group{Photos: []photo.Photo{p}, Hero: true})
			continue
		}

		buf = append(buf, p)
		sum += w
		if sum >= g.capacity || len(buf) >= MaxGroupSize {
			flush()
		}
	}
	flush()

	return rebalance(groups)
}

// rebalance moves the last photo of the second-to-last group into a trailing
// singleton when the donor keeps at least two photos.
func rebalance(groups []Group) []Group {
	n := len(groups)
	if n < 2 || groups[n-1].Len() != 1 || groups[n-2].Len() < 3 {
		return groups
	}
	prev, last := groups[n-2], groups[n-1]
	moved := prev.Photos[len(prev.Photos)-1]
	groups[n-2] = Group{Photos: slices.Clone(prev.Photos[:len(prev.Photos)-1]), Hero: prev.Hero}
	groups[n-1] = Group{Photos: append([]photo.Photo{moved}, last.Photos...)}
	return groups
}

// Sizes returns the photo count of each group.
func Sizes(groups []Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.Len()
	}
	return out
}
