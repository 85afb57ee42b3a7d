package layout

import (
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
)

// Variety defaults.
const (
	DefaultHistPenalty       = 0.12
	DefaultRepeatPenalty     = 0.25
	DefaultRepeatWindow      = 6
	DefaultTopK              = 2
	DefaultPickRandomness    = 0.25
	DefaultSecondWithin      = 0.12
	DefaultLowScoreThreshold = -1.5
	DefaultSeed              = uint64(42)
)

// tieEpsilon is the margin a candidate needs to displace an incumbent.
const tieEpsilon = 1e-9

// Rand is the source of the variety tie-break draw.
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Options configures a Selector.
type Options struct {
	// HistPenalty is charged per photo/slot orientation count mismatch.
	HistPenalty float64
	// RepeatPenalty is charged per occurrence of the template among the
	// last RepeatWindow history entries.
	RepeatPenalty float64
	RepeatWindow  int

	// TopK >= 2 enables the random pick of a close runner-up. A runner-up
	// is close when (best-second)/|best| <= SecondWithin; it is then chosen
	// with probability PickRandomness.
	TopK           int
	PickRandomness float64
	SecondWithin   float64

	// LowScoreRetry swaps to the alternative when the chosen score is below
	// LowScoreThreshold and the alternative scores higher.
	LowScoreRetry     bool
	LowScoreThreshold float64

	// FaceCheck rejects a choice that would crop a face by more than a
	// quarter when the alternative does not. Needs Features.
	FaceCheck bool
	Features  features.Lookup

	// Bias is added to the score of the named templates.
	Bias map[string]float64

	// Workers bounds concurrent candidate scoring; <= 0 means one per candidate.
	Workers int

	// Rand drives the tie-break; nil uses NewRand(DefaultSeed).
	Rand   Rand
	Logger *log.Logger
}

// DefaultOptions returns the standard variety settings.
func DefaultOptions() Options {
	return Options{
		HistPenalty:       DefaultHistPenalty,
		RepeatPenalty:     DefaultRepeatPenalty,
		RepeatWindow:      DefaultRepeatWindow,
		TopK:              DefaultTopK,
		PickRandomness:    DefaultPickRandomness,
		SecondWithin:      DefaultSecondWithin,
		LowScoreRetry:     true,
		LowScoreThreshold: DefaultLowScoreThreshold,
		FaceCheck:         true,
	}
}

// Validate rejects knobs that would make scores meaningless.
func (o Options) Validate() error {
	for _, c := range []struct {
		field string
		v     float64
	}{
		{"variety.hist_penalty", o.HistPenalty},
		{"variety.repeat_penalty", o.RepeatPenalty},
		{"variety.second_within", o.SecondWithin},
	} {
		if err := errors.ValidateWeight(c.field, c.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateUnit("variety.pick_randomness", o.PickRandomness); err != nil {
		return err
	}
	if math.IsNaN(o.LowScoreThreshold) || math.IsInf(o.LowScoreThreshold, 0) {
		return errors.Invalid("variety.low_score_threshold", "must be finite, got %v", o.LowScoreThreshold)
	}
	if o.RepeatWindow < 0 {
		return errors.Invalid("variety.repeat_window", "must be >= 0, got %d", o.RepeatWindow)
	}
	if o.TopK < 1 {
		return errors.Invalid("variety.top_k", "must be >= 1, got %d", o.TopK)
	}
	for id, b := range o.Bias {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return errors.Invalid("bias."+id, "must be finite, got %v", b)
		}
	}
	return nil
}
