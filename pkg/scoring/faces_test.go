package scoring

import (
	"math"
	"testing"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/photo"
)

func TestFaceCoverage(t *testing.T) {
	tests := []struct {
		name     string
		par, sar float64
		face     features.Face
		want     float64
	}{
		{"small face survives horizontal crop", 2.0, 1.0, features.Face{CX: 0.5, CY: 0.5, W: 0.2, H: 0.2}, 1},
		{"edge face window shifts", 2.0, 1.0, features.Face{CX: 0.9, CY: 0.5, W: 0.2, H: 0.2}, 1},
		{"wide face clipped", 2.0, 1.0, features.Face{CX: 0.5, CY: 0.5, W: 0.8, H: 0.2}, 0.625},
		{"tall face clipped", 0.5, 2.0, features.Face{CX: 0.5, CY: 0.5, W: 0.2, H: 0.5}, 0.5},
		{"same aspect", 1.5, 1.5, features.Face{CX: 0.5, CY: 0.5, W: 0.9, H: 0.9}, 1},
		{"no size", 2.0, 1.0, features.Face{CX: 0.5, CY: 0.5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FaceCoverage(tt.par, tt.sar, tt.face); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FaceCoverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaceCropViolation(t *testing.T) {
	photos := []photo.Photo{{Path: "group", Ratio: 2.0}}
	lookup := features.Map{"group": {Path: "group", Faces: []features.Face{
		{CX: 0.5, CY: 0.5, W: 0.1, H: 0.1},
		{CX: 0.5, CY: 0.5, W: 0.8, H: 0.3}, // largest
	}}}
	items := []Item{NewItem(0, 0)}

	square := []catalog.Slot{{W: 1, H: 1, AR: 1.0}}
	if !FaceCropViolation(square, items, photos, lookup) {
		t.Error("FaceCropViolation() = false, want true for a wide group in a square slot")
	}

	panorama := []catalog.Slot{{W: 1, H: 1, AR: 2.0}}
	if FaceCropViolation(panorama, items, photos, lookup) {
		t.Error("FaceCropViolation() = true, want false when aspects match")
	}

	neutral := []catalog.Slot{{W: 1, H: 1}}
	if FaceCropViolation(neutral, items, photos, lookup) {
		t.Error("FaceCropViolation() = true, want false for a slot without preferred aspect")
	}

	if FaceCropViolation(square, items, photos, nil) {
		t.Error("FaceCropViolation() with nil lookup = true")
	}
}
