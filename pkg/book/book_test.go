package book

import (
	"bytes"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/photobook/pkg/layout"
	"github.com/matzehuels/photobook/pkg/photo"
	"github.com/matzehuels/photobook/pkg/scoring"
)

func sample() *Book {
	a := photo.Photo{Path: "a.jpg", Ratio: 1.5}
	b := photo.Photo{Path: "b.jpg", Ratio: 0.7}
	c := photo.Photo{Path: "c.jpg", Ratio: 1.0}
	return New(3, []Page{
		{
			Number: 1,
			PageLayout: layout.PageLayout{
				TemplateID: "2/side-by-side",
				Items:      []scoring.Item{scoring.NewItem(0, 1), scoring.NewItem(1, 0)},
				Score:      -0.5,
			},
			Photos: []photo.Photo{a, b},
		},
		{
			Number: 2,
			PageLayout: layout.PageLayout{
				TemplateID: "1/full-bleed",
				Items:      []scoring.Item{scoring.NewItem(0, 0)},
				Score:      -1.5,
				Fallback:   true,
			},
			Photos: []photo.Photo{c},
		},
	})
}

func TestNew(t *testing.T) {
	b := sample()
	if b.ID == uuid.Nil {
		t.Error("New() left the id empty")
	}
	if b.CreatedAt.IsZero() {
		t.Error("New() left CreatedAt empty")
	}
	if New(0, nil).ID == b.ID {
		t.Error("two books share an id")
	}
}

func TestAccessors(t *testing.T) {
	b := sample()
	if got := b.TemplateIDs(); !slices.Equal(got, []string{"2/side-by-side", "1/full-bleed"}) {
		t.Errorf("TemplateIDs() = %v", got)
	}
	if got := b.Placed(); !slices.Equal(got, []string{"a.jpg", "b.jpg", "c.jpg"}) {
		t.Errorf("Placed() = %v", got)
	}
	if _, ok := b.Page(0); ok {
		t.Error("Page(0) found")
	}
	if p, ok := b.Page(2); !ok || !p.Fallback {
		t.Errorf("Page(2) = %+v, %v", p, ok)
	}
}

func TestStats(t *testing.T) {
	s := sample().Stats()
	if s.Pages != 2 || s.Placed != 3 || s.Fallbacks != 1 || s.Overrides != 0 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.MeanScore != -1.0 {
		t.Errorf("MeanScore = %v, want -1", s.MeanScore)
	}
	if s.Templates["1/full-bleed"] != 1 {
		t.Errorf("Templates = %v", s.Templates)
	}
}

func TestWriteReadJSON(t *testing.T) {
	b := sample()
	var buf bytes.Buffer
	if err := WriteJSON(b, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"templateId": "2/side-by-side"`)) {
		t.Errorf("layout fields not flattened into page:\n%s", buf.String())
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != b.ID || !slices.Equal(got.TemplateIDs(), b.TemplateIDs()) {
		t.Errorf("ReadJSON() = %+v", got)
	}
	if got.Pages[0].Items[0].SlotIndex != 1 {
		t.Errorf("items not preserved: %+v", got.Pages[0].Items)
	}
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "book.json")
	b := sample()
	if err := Export(b, path); err != nil {
		t.Fatal(err)
	}
	got, err := Import(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Pages) != 2 {
		t.Errorf("Import() pages = %d", len(got.Pages))
	}
	if _, err := Import(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Import(missing) returned nil error")
	}
}
