// Package book defines the composed photobook: an ordered list of pages, each
// with its chosen layout and the photos placed on it.
package book

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/photo"
)

// Book is the output of one composition run.
type Book struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	PhotoCount int       `json:"photoCount" bson:"photo_count"`
	Pages      []Page    `json:"pages" bson:"pages"`
}

// Page is one composed page. Item photo indices refer to Photos.
type Page struct {
	Number            int `json:"page" bson:"page"`
	layout.PageLayout `bson:",inline"`
	Photos            []photo.Photo `json:"photos" bson:"photos"`
}

// New returns a book with a fresh id holding pages.
func New(photoCount int, pages []Page) *Book {
	return &Book{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		PhotoCount: photoCount,
		Pages:      pages,
	}
}

// TemplateIDs returns the chosen template id of every page, in page order.
func (b *Book) TemplateIDs() []string {
	ids := make([]string, len(b.Pages))
	for i, p := range b.Pages {
		ids[i] = p.TemplateID
	}
	return ids
}

// Page returns the page with the given 1-based number.
func (b *Book) Page(number int) (Page, bool) {
	if number < 1 || number > len(b.Pages) {
		return Page{}, false
	}
	return b.Pages[number-1], true
}

// Placed returns the paths of every photo placed on a page, in page order.
func (b *Book) Placed() []string {
	var out []string
	for _, p := range b.Pages {
		for _, it := range p.Items {
			out = append(out, p.Photos[it.PhotoIndex].Path)
		}
	}
	return out
}

// Stats summarizes a book.
type Stats struct {
	Pages     int
	Placed    int
	Unplaced  int
	Fallbacks int
	Overrides int
	// Templates counts pages per template id.
	Templates map[string]int
	MeanScore float64
}

// Stats computes the summary of b.
func (b *Book) Stats() Stats {
	s := Stats{Pages: len(b.Pages), Templates: make(map[string]int)}
	var sum float64
	for _, p := range b.Pages {
		s.Placed += len(p.Items)
		s.Unplaced += len(p.Unplaced)
		if p.Fallback {
			s.Fallbacks++
		}
		if p.Override {
			s.Overrides++
		}
		s.Templates[p.TemplateID]++
		sum += p.Score
	}
	if len(b.Pages) > 0 {
		s.MeanScore = sum / float64(len(b.Pages))
	}
	return s
}
