package scoring

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/photo"
)

const eps = 1e-6

func ratios(rs ...float64) []photo.Photo {
	out := make([]photo.Photo, len(rs))
	for i, r := range rs {
		out[i] = photo.Photo{Path: string(rune('a' + i)), Ratio: r}
	}
	return out
}

func sideBySideSquare() catalog.Template {
	return catalog.Template{ID: "2/square-pair", Slots: []catalog.Slot{
		{X: 0, Y: 0, W: 0.5, H: 1, AR: 1.0},
		{X: 0.5, Y: 0, W: 0.5, H: 1, AR: 1.0},
	}}
}

func mustScorer(t *testing.T, opts Options) *Scorer {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestScoreTwoWidePhotos(t *testing.T) {
	s := mustScorer(t, DefaultOptions())
	r, err := s.Score(sideBySideSquare(), ratios(1.8, 1.75))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	// identity: |1-1.8| + |1-1.75| = 1.55, minus the hero bonus
	want := 0.8 + 0.75 - DefaultHeroBonus
	if math.Abs(r.TotalCost-want) > eps {
		t.Errorf("TotalCost = %v, want %v", r.TotalCost, want)
	}
	if math.Abs(r.Score+want) > eps {
		t.Errorf("Score = %v, want %v", r.Score, -want)
	}
	if !slices.Equal(r.Assignment, []int{0, 1}) {
		t.Errorf("Assignment = %v, want [0 1]", r.Assignment)
	}
	if r.HeroSlot != 0 || r.HeroPhoto != 0 {
		t.Errorf("hero slot/photo = %d/%d, want 0/0", r.HeroSlot, r.HeroPhoto)
	}
	if r.Crossings != 0 || r.Adjustments.Diversity != 0 {
		t.Errorf("unexpected diversity adjustment: %+v", r.Adjustments)
	}
	for _, it := range r.Items {
		if it.Crop != CropCover || it.ObjectPosition != DefaultObjectPosition {
			t.Errorf("item %+v lacks placement defaults", it)
		}
	}
}

func TestCostMatrix(t *testing.T) {
	cost := CostMatrix(ratios(1.8, 1.75), sideBySideSquare().Slots, DefaultOptions().Weights)
	want := [][]float64{
		{0.8, 0.8 + 0.25},
		{0.75 + 0.25, 0.75},
	}
	for i := range want {
		for j := range want[i] {
			if got := cost.At(i, j); math.Abs(got-want[i][j]) > eps {
				t.Errorf("cost[%d][%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestPairCostMismatch(t *testing.T) {
	wide := photo.Photo{Ratio: 1.8}
	tall := catalog.Slot{W: 0.5, H: 1, AR: 0.7}
	c := PairCost(wide, 0, 1, tall, 0)
	if c.Mismatch != 1 {
		t.Errorf("Mismatch = %v, want 1 for wide photo in tall slot", c.Mismatch)
	}
	if c.Flow != 0 {
		t.Errorf("Flow = %v, want 0 for n=1", c.Flow)
	}
	if got := PairCost(wide, 0, 1, catalog.Slot{W: 1, H: 1}, 0).Mismatch; got != 0 {
		t.Errorf("Mismatch = %v, want 0 against a neutral slot", got)
	}
}

func TestSlotRanks(t *testing.T) {
	slots := []catalog.Slot{
		{X: 0.5, Y: 0.5}, // 0.8
		{X: 0, Y: 0},     // 0
		{X: 0.5, Y: 0},   // 0.3
		{X: 0, Y: 0.3},   // 0.3, tie: stays after slot 2
	}
	if got, want := SlotRanks(slots), []int{3, 0, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("SlotRanks() = %v, want %v", got, want)
	}
}

func TestScoreHeroMiss(t *testing.T) {
	// The wide hero slot is second in reading order; the tall first photo
	// belongs in the narrow slot.
	tmpl := catalog.Template{ID: "2/x", Slots: []catalog.Slot{
		{X: 0, Y: 0, W: 0.3, H: 1, AR: 0.5},
		{X: 0.3, Y: 0, W: 0.7, H: 1, AR: 1.6},
	}}
	r, err := mustScorer(t, DefaultOptions()).Score(tmpl, ratios(0.5, 1.6))
	if err != nil {
		t.Fatal(err)
	}
	if r.HeroSlot != 1 || r.HeroPhoto != 1 {
		t.Fatalf("hero slot/photo = %d/%d, want 1/1", r.HeroSlot, r.HeroPhoto)
	}
	if r.Adjustments.Hero != DefaultHeroMissPenalty {
		t.Errorf("Adjustments.Hero = %v, want %v", r.Adjustments.Hero, DefaultHeroMissPenalty)
	}
}

func TestScoreDiversityPenalty(t *testing.T) {
	tmpl, err := catalog.Default().Get("2/side-by-side")
	if err != nil {
		t.Fatal(err)
	}
	r, err := mustScorer(t, DefaultOptions()).Score(tmpl, ratios(1.8, 1.8))
	if err != nil {
		t.Fatal(err)
	}
	if r.Crossings != 2 {
		t.Errorf("Crossings = %d, want 2", r.Crossings)
	}
	if r.Adjustments.Diversity != DefaultDiversityPenalty {
		t.Errorf("Adjustments.Diversity = %v, want %v", r.Adjustments.Diversity, DefaultDiversityPenalty)
	}
	if math.Abs(r.TotalCost-(r.MatchCost+r.Adjustments.Sum())) > eps {
		t.Error("TotalCost does not equal MatchCost + adjustments")
	}
}

func TestScoreFeatureBonus(t *testing.T) {
	sharp, blurry, pretty := 100.0, 1e9, 8.0
	tests := []struct {
		name string
		f    features.Features
		want float64
	}{
		{"sharpness", features.Features{Sharpness: &sharp}, math.Log1p(100) / 20},
		{"sharpness capped", features.Features{Sharpness: &blurry}, MaxSharpnessBonus},
		{"aesthetic", features.Features{Aesthetic: &pretty}, 0.06},
		{"both", features.Features{Sharpness: &sharp, Aesthetic: &pretty}, math.Log1p(100)/20 + 0.06},
		{"empty", features.Features{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.f.Path = "a"
			opts.Features = features.Map{"a": tt.f}
			r, err := mustScorer(t, opts).Score(sideBySideSquare(), ratios(1.8, 1.75))
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(-r.Adjustments.Features-tt.want) > eps {
				t.Errorf("feature bonus = %v, want %v", -r.Adjustments.Features, tt.want)
			}
		})
	}
}

func TestScoreUnplaced(t *testing.T) {
	one := catalog.Template{ID: "1/solo", Slots: []catalog.Slot{{W: 1, H: 1, AR: 1.5}}}
	r, err := mustScorer(t, DefaultOptions()).Score(one, ratios(1.0, 1.5))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Items) != 1 || len(r.Unplaced) != 1 {
		t.Fatalf("items=%d unplaced=%v, want 1 item and 1 unplaced", len(r.Items), r.Unplaced)
	}
	if r.Assignment[r.Unplaced[0]] != -1 {
		t.Errorf("Assignment = %v, want -1 for unplaced photo", r.Assignment)
	}

	four, _ := catalog.Default().Get("4/grid")
	r, err = mustScorer(t, DefaultOptions()).Score(four, ratios(1.4, 1.4, 1.4))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Items) != 3 || len(r.Unplaced) != 0 {
		t.Errorf("items=%d unplaced=%v, want 3 items on a 4-slot page", len(r.Items), r.Unplaced)
	}
}

func TestScoreDegenerate(t *testing.T) {
	s := mustScorer(t, DefaultOptions())
	if _, err := s.Score(sideBySideSquare(), nil); !errors.Is(err, errors.ErrCodeDegenerateSolve) {
		t.Errorf("Score(no photos) error = %v, want DEGENERATE_SOLVE", err)
	}
	if _, err := s.Score(catalog.Template{ID: "1/none"}, ratios(1)); !errors.Is(err, errors.ErrCodeDegenerateSolve) {
		t.Errorf("Score(no slots) error = %v, want DEGENERATE_SOLVE", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"NaN crop", func(o *Options) { o.Weights.Crop = math.NaN() }},
		{"negative flow", func(o *Options) { o.Weights.Flow = -1 }},
		{"infinite hero", func(o *Options) { o.Bonuses.Hero = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if _, err := New(opts); !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("New() error = %v, want CONFIGURATION", err)
			}
		})
	}
}
