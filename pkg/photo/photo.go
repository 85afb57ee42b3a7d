package photo

import (
	"math"
	"time"
)

// Category thresholds on width/height.
const (
	TallBelow = 0.95
	WideAbove = 1.2
)

// Category is the coarse orientation class of an aspect ratio.
type Category int

const (
	Square Category = iota
	Tall
	Wide
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Tall:
		return "tall"
	case Wide:
		return "wide"
	default:
		return "square"
	}
}

// Classify maps an aspect ratio to its category.
func Classify(ratio float64) Category {
	switch {
	case ratio < TallBelow:
		return Tall
	case ratio > WideAbove:
		return Wide
	default:
		return Square
	}
}

// Crosses reports whether a and b sit on opposite orientation extremes
// (Wide against Tall). Square never crosses.
func Crosses(a, b Category) bool {
	return (a == Wide && b == Tall) || (a == Tall && b == Wide)
}

// Photo describes one image of the collection.
//
// Path is the stable identity used for feature lookups, deduplication and
// cache keys. Width and Height are in pixels and may be zero when unknown.
type Photo struct {
	Path         string     `json:"path" bson:"path"`
	Filename     string     `json:"filename,omitempty" bson:"filename,omitempty"`
	Mime         string     `json:"mime,omitempty" bson:"mime,omitempty"`
	Width        int        `json:"width,omitempty" bson:"width,omitempty"`
	Height       int        `json:"height,omitempty" bson:"height,omitempty"`
	Ratio        float64    `json:"ratio,omitempty" bson:"ratio,omitempty"`
	TakenAt      *time.Time `json:"takenAt,omitempty" bson:"taken_at,omitempty"`
	QualityScore *float64   `json:"qualityScore,omitempty" bson:"quality_score,omitempty"`
	ETag         string     `json:"etag,omitempty" bson:"etag,omitempty"`
	FileSize     int64      `json:"fileSize,omitempty" bson:"file_size,omitempty"`
}

// Aspect returns the photo's width/height ratio: the explicit Ratio when
// set, else Width/Height when both are known, else 1.0.
func (p Photo) Aspect() float64 {
	if p.Ratio > 0 && !math.IsInf(p.Ratio, 0) {
		return p.Ratio
	}
	if p.Width > 0 && p.Height > 0 {
		return float64(p.Width) / float64(p.Height)
	}
	return 1.0
}

// Category returns the orientation class of the photo's aspect.
func (p Photo) Category() Category {
	return Classify(p.Aspect())
}

// Megapixels returns the pixel area in millions, 0 when dimensions are unknown.
func (p Photo) Megapixels() float64 {
	if p.Width <= 0 || p.Height <= 0 {
		return 0
	}
	return float64(p.Width) * float64(p.Height) / 1e6
}

// Quality returns the quality score and whether one is present.
func (p Photo) Quality() (float64, bool) {
	if p.QualityScore == nil {
		return 0, false
	}
	return *p.QualityScore, true
}

// Normalize fills derived fields: Ratio from the dimensions (rounded to four
// decimals) and Filename from the path.
func (p Photo) Normalize() Photo {
	if p.Ratio <= 0 && p.Width > 0 && p.Height > 0 {
		p.Ratio = RoundRatio(float64(p.Width) / float64(p.Height))
	}
	if p.Filename == "" {
		p.Filename = baseName(p.Path)
	}
	return p
}

// RoundRatio rounds r to four decimals.
func RoundRatio(r float64) float64 {
	return math.Round(r*1e4) / 1e4
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// Paths returns the identity paths of photos in order.
func Paths(photos []Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.Path
	}
	return out
}

// Counts returns how many photos fall into the Tall and Wide categories.
func Counts(photos []Photo) (tall, wide int) {
	for _, p := range photos {
		switch p.Category() {
		case Tall:
			tall++
		case Wide:
			wide++
		}
	}
	return tall, wide
}
