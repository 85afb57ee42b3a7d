package catalog

import (
	"github.com/matzehuels/photobook/pkg/photo"
)

// Slot is a photo frame on a page in normalized page coordinates.
type Slot struct {
	X  float64 `yaml:"x" json:"x" bson:"x"`
	Y  float64 `yaml:"y" json:"y" bson:"y"`
	W  float64 `yaml:"w" json:"w" bson:"w"`
	H  float64 `yaml:"h" json:"h" bson:"h"`
	AR float64 `yaml:"ar,omitempty" json:"ar,omitempty" bson:"ar,omitempty"`
}

// Area returns W*H.
func (s Slot) Area() float64 { return s.W * s.H }

// Aspect returns the preferred aspect ratio, 1.0 when unset.
func (s Slot) Aspect() float64 {
	if s.AR > 0 {
		return s.AR
	}
	return 1.0
}

// Category returns the orientation class of the slot's aspect.
func (s Slot) Category() photo.Category { return photo.Classify(s.Aspect()) }

// ReadingRank is the key slots are ordered by for chronological flow:
// top-to-bottom first, then left-to-right.
func (s Slot) ReadingRank() float64 { return s.Y + 0.6*s.X }

// Template is a named page layout.
type Template struct {
	ID          string `yaml:"id" json:"id" bson:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" bson:"description,omitempty"`
	Slots       []Slot `yaml:"slots" json:"slots" bson:"slots"`
}

// Len returns the number of slots.
func (t Template) Len() int { return len(t.Slots) }

// HeroSlot returns the index of the largest slot, the first one on ties.
// It returns -1 for a template without slots.
func (t Template) HeroSlot() int {
	hero, best := -1, -1.0
	for i, s := range t.Slots {
		if a := s.Area(); a > best {
			hero, best = i, a
		}
	}
	return hero
}

// Counts returns how many slots are Tall and how many are Wide.
func (t Template) Counts() (tall, wide int) {
	for _, s := range t.Slots {
		switch s.Category() {
		case photo.Tall:
			tall++
		case photo.Wide:
			wide++
		}
	}
	return tall, wide
}

// FallbackID is the template used when no candidate can be scored.
const FallbackID = "1/full-bleed"

// Fallback returns the full-bleed single-slot template.
func Fallback() Template {
	return Template{
		ID:          FallbackID,
		Description: "One photo covering the whole page",
		Slots:       []Slot{{X: 0, Y: 0, W: 1, H: 1}},
	}
}
