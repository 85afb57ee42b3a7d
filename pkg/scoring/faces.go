package scoring

import (
	"math"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/photo"
)

// MinFaceCoverage is the share of a face that must stay visible.
const MinFaceCoverage = 0.75

// FaceCoverage returns the visible share of face when a photo with aspect
// par fills a slot with aspect sar under object-fit: cover, with the crop
// window centered on the face as far as the photo edges allow.
func FaceCoverage(par, sar float64, face features.Face) float64 {
	if face.W <= 0 || face.H <= 0 || par <= 0 || sar <= 0 {
		return 1
	}
	x0, x1, y0, y1 := 0.0, 1.0, 0.0, 1.0
	if par >= sar {
		visW := clamp(sar/par, 0, 1)
		x0 = clamp(face.CX-visW/2, 0, 1-visW)
		x1 = x0 + visW
	} else {
		visH := clamp(par/sar, 0, 1)
		y0 = clamp(face.CY-visH/2, 0, 1-visH)
		y1 = y0 + visH
	}

	fx0, fx1 := face.CX-face.W/2, face.CX+face.W/2
	fy0, fy1 := face.CY-face.H/2, face.CY+face.H/2
	ix := math.Max(0, math.Min(x1, fx1)-math.Max(x0, fx0))
	iy := math.Max(0, math.Min(y1, fy1)-math.Max(y0, fy0))
	return ix * iy / math.Max(1e-6, face.Area())
}

// FaceCropViolation reports whether any placed photo would lose more than a
// quarter of its largest face. Slots without a preferred aspect take the
// photo's own aspect and never crop.
func FaceCropViolation(slots []catalog.Slot, items []Item, photos []photo.Photo, lookup features.Lookup) bool {
	if lookup == nil {
		return false
	}
	for _, it := range items {
		if it.PhotoIndex < 0 || it.PhotoIndex >= len(photos) || it.SlotIndex < 0 || it.SlotIndex >= len(slots) {
			continue
		}
		p := photos[it.PhotoIndex]
		f, ok := lookup.Get(p.Path)
		if !ok {
			continue
		}
		face, ok := f.LargestFace()
		if !ok {
			continue
		}
		par := p.Aspect()
		sar := slots[it.SlotIndex].AR
		if sar <= 0 {
			sar = par
		}
		if FaceCoverage(par, sar, face) < MinFaceCoverage {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
