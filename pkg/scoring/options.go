package scoring

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
)

// Default cost weights.
const (
	DefaultWeightCrop   = 1.0
	DefaultWeightOrient = 0.4
	DefaultWeightFlow   = 0.25
)

// Default score adjustments.
const (
	DefaultHeroBonus        = 0.3
	DefaultHeroMissPenalty  = 0.05
	DefaultDiversityPenalty = 0.15
)

// Feature bonus bounds.
const (
	MaxSharpnessBonus = 0.3
	sharpnessScale    = 20.0
	aestheticCenter   = 5.0
	aestheticScale    = 50.0
)

// Weights scale the three cost terms of a photo/slot pairing.
type Weights struct {
	Crop   float64 `json:"crop"`
	Orient float64 `json:"orientation"`
	Flow   float64 `json:"chronology"`
}

// Bonuses are the assignment-level adjustments.
type Bonuses struct {
	Hero      float64 `json:"hero_bonus"`
	HeroMiss  float64 `json:"hero_miss_penalty"`
	Diversity float64 `json:"diversity_penalty"`
}

// Options configures a Scorer.
type Options struct {
	Weights Weights
	Bonuses Bonuses

	// Features supplies the optional sharpness and aesthetic bonus. Nil
	// disables the bonus.
	Features features.Lookup

	Logger *log.Logger
}

// DefaultOptions returns the standard weights and bonuses.
func DefaultOptions() Options {
	return Options{
		Weights: Weights{Crop: DefaultWeightCrop, Orient: DefaultWeightOrient, Flow: DefaultWeightFlow},
		Bonuses: Bonuses{Hero: DefaultHeroBonus, HeroMiss: DefaultHeroMissPenalty, Diversity: DefaultDiversityPenalty},
	}
}

// Validate rejects non-finite or negative knobs, which would poison every
// score of a run.
func (o Options) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"scoring.weights.crop", o.Weights.Crop},
		{"scoring.weights.orientation", o.Weights.Orient},
		{"scoring.weights.chronology", o.Weights.Flow},
		{"scoring.bonuses.hero_bonus", o.Bonuses.Hero},
		{"scoring.bonuses.hero_miss_penalty", o.Bonuses.HeroMiss},
		{"scoring.bonuses.diversity_penalty", o.Bonuses.Diversity},
	}
	for _, c := range checks {
		if err := errors.ValidateWeight(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}
