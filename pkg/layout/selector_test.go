package layout

import (
	"context"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/features"
	"github.com/matzehuels/photobook/pkg/photo"
	"github.com/matzehuels/photobook/pkg/scoring"
)

const eps = 1e-9

// fixedScorer scores templates by id and places photos in slot order.
type fixedScorer map[string]float64

func (f fixedScorer) Score(t catalog.Template, photos []photo.Photo) (scoring.Result, error) {
	s, ok := f[t.ID]
	if !ok {
		return scoring.Result{}, errors.New(errors.ErrCodeInvalidCost, "no score for %s", t.ID)
	}
	r := scoring.Result{TemplateID: t.ID, Score: s, TotalCost: -s}
	for i := range min(len(photos), t.Len()) {
		r.Items = append(r.Items, scoring.NewItem(i, i))
	}
	return r, nil
}

// stubRand returns the same value forever and counts draws.
type stubRand struct {
	v     float64
	draws int
}

func (r *stubRand) Float64() float64 {
	r.draws++
	return r.v
}

func squareTemplate(id string, n int) catalog.Template {
	slots := make([]catalog.Slot, n)
	for i := range slots {
		slots[i] = catalog.Slot{X: float64(i) / float64(n), W: 1 / float64(n), H: 1, AR: 1.0}
	}
	return catalog.Template{ID: id, Slots: slots}
}

func mustCatalog(t *testing.T, ts ...catalog.Template) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(ts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustSelector(t *testing.T, cat *catalog.Catalog, sc Scorer, opts Options) *Selector {
	t.Helper()
	s, err := New(cat, sc, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func mustScorer(t *testing.T) *scoring.Scorer {
	t.Helper()
	s, err := scoring.New(scoring.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func group(ratios ...float64) []photo.Photo {
	out := make([]photo.Photo, len(ratios))
	for i, r := range ratios {
		out[i] = photo.Photo{Path: fmt.Sprintf("p%d.jpg", i), Ratio: r}
	}
	return out
}

func noRandom() Options {
	opts := DefaultOptions()
	opts.TopK = 1
	return opts
}

func TestChooseTwoWidePhotos(t *testing.T) {
	cat := mustCatalog(t, catalog.Template{ID: "2/pair", Slots: []catalog.Slot{
		{X: 0, Y: 0, W: 0.5, H: 1, AR: 1.0},
		{X: 0.5, Y: 0, W: 0.5, H: 1, AR: 1.0},
	}})
	sel := mustSelector(t, cat, mustScorer(t), DefaultOptions())

	page, h, err := sel.Choose(context.Background(), group(1.8, 1.75), History{})
	if err != nil {
		t.Fatal(err)
	}
	// histogram: 2 wide photos, 0 wide slots
	want := -(0.8 + 0.75 - 0.3) - 2*DefaultHistPenalty
	if math.Abs(page.Score-want) > 1e-6 {
		t.Errorf("Score = %v, want %v", page.Score, want)
	}
	if page.TemplateID != "2/pair" || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	for i, it := range page.Items {
		if it.PhotoIndex != i || it.SlotIndex != i {
			t.Errorf("item %d = %+v, want photo %d in slot %d", i, it, i, i)
		}
	}
	if !slices.Equal(h.IDs(), []string{"2/pair"}) {
		t.Errorf("history = %v", h.IDs())
	}
}

func TestRepeatPenalty(t *testing.T) {
	cat := catalog.Default()
	sel := mustSelector(t, cat, mustScorer(t), noRandom())
	g := group(1.5, 0.7, 1.0)
	ctx := context.Background()

	base, err := sel.Evaluate(ctx, g, History{})
	if err != nil {
		t.Fatal(err)
	}
	target := base[0].Template.ID

	for _, occurrences := range []int{1, 2} {
		var h History
		for range occurrences {
			h = h.Push(target).Push("1/full-bleed")
		}
		cands, err := sel.Evaluate(ctx, g, h)
		if err != nil {
			t.Fatal(err)
		}
		got := cands[0].Score
		want := base[0].Score - float64(occurrences)*DefaultRepeatPenalty
		if math.Abs(got-want) > eps {
			t.Errorf("%d occurrences: score = %v, want %v", occurrences, got, want)
		}
		for _, c := range cands[1:] {
			if c.Repeats != 0 {
				t.Errorf("%s has %d repeats, want 0", c.Template.ID, c.Repeats)
			}
		}
	}
}

func TestRepeatWindow(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), noRandom())
	g := group(1.0, 1.0)
	cands, _ := sel.Evaluate(context.Background(), g, History{})
	target := cands[0].Template.ID

	// target sits seven entries back, outside the default window of six
	h := NewHistory(target, "a", "b", "c", "d", "e", "f")
	cands2, _ := sel.Evaluate(context.Background(), g, h)
	if cands2[0].Repeats != 0 {
		t.Errorf("Repeats = %d, want 0 outside the window", cands2[0].Repeats)
	}
}

func TestHistogramPenaltyNeverFilters(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), noRandom())
	g := group(0.5, 0.5, 0.5) // three tall photos
	cands, err := sel.Evaluate(context.Background(), g, History{})
	if err != nil {
		t.Fatal(err)
	}
	templates, _ := catalog.Default().For(3)
	if len(cands) != len(templates) {
		t.Fatalf("Evaluate() = %d candidates, want all %d", len(cands), len(templates))
	}
	for _, c := range cands {
		tallS, wideS := c.Template.Counts()
		want := DefaultHistPenalty * float64(abs(tallS-3)+abs(wideS-0))
		if math.Abs(c.HistPenalty-want) > eps {
			t.Errorf("%s HistPenalty = %v, want %v", c.Template.ID, c.HistPenalty, want)
		}
	}
}

func TestChooseTieKeepsFirst(t *testing.T) {
	cat := mustCatalog(t, squareTemplate("2/first", 2), squareTemplate("2/second", 2))
	sel := mustSelector(t, cat, fixedScorer{"2/first": -1, "2/second": -1 + 1e-12}, noRandom())
	page, _, err := sel.Choose(context.Background(), group(1, 1), History{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateID != "2/first" {
		t.Errorf("TemplateID = %s, want 2/first on a tie", page.TemplateID)
	}
}

func TestChooseVarietyPick(t *testing.T) {
	cat := mustCatalog(t, squareTemplate("2/a", 2), squareTemplate("2/b", 2), squareTemplate("2/c", 2))
	scores := fixedScorer{"2/a": -1.0, "2/b": -1.05, "2/c": -3}

	tests := []struct {
		name      string
		draw      float64
		scores    fixedScorer
		want      string
		wantDraws int
	}{
		{"draw below randomness picks runner-up", 0.1, scores, "2/b", 1},
		{"draw above randomness keeps best", 0.9, scores, "2/a", 1},
		{"distant runner-up is never drawn", 0.0, fixedScorer{"2/a": -1.0, "2/b": -2.0, "2/c": -3}, "2/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &stubRand{v: tt.draw}
			opts := DefaultOptions()
			opts.Rand = rng
			sel := mustSelector(t, cat, tt.scores, opts)
			page, _, err := sel.Choose(context.Background(), group(1, 1), History{})
			if err != nil {
				t.Fatal(err)
			}
			if page.TemplateID != tt.want {
				t.Errorf("TemplateID = %s, want %s", page.TemplateID, tt.want)
			}
			if rng.draws != tt.wantDraws {
				t.Errorf("draws = %d, want %d", rng.draws, tt.wantDraws)
			}
		})
	}
}

func TestChooseLowScoreRetry(t *testing.T) {
	cat := mustCatalog(t, squareTemplate("2/a", 2), squareTemplate("2/b", 2))
	opts := DefaultOptions()
	opts.Rand = &stubRand{v: 0}
	sc := fixedScorer{"2/a": -2.0, "2/b": -2.1}

	sel := mustSelector(t, cat, sc, opts)
	page, _, err := sel.Choose(context.Background(), group(1, 1), History{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateID != "2/a" {
		t.Errorf("TemplateID = %s, want the retry to restore 2/a", page.TemplateID)
	}

	opts.LowScoreRetry = false
	sel = mustSelector(t, cat, sc, opts)
	page, _, _ = sel.Choose(context.Background(), group(1, 1), History{})
	if page.TemplateID != "2/b" {
		t.Errorf("TemplateID = %s, want the variety pick 2/b without retry", page.TemplateID)
	}
}

func TestChooseFaceCheck(t *testing.T) {
	square := catalog.Template{ID: "1/square", Slots: []catalog.Slot{{W: 1, H: 1, AR: 1.0}}}
	wide := catalog.Template{ID: "1/wide", Slots: []catalog.Slot{{W: 1, H: 0.7, AR: 2.0}}}
	cat := mustCatalog(t, square, wide)

	g := []photo.Photo{{Path: "crowd.jpg", Ratio: 2.0}}
	opts := noRandom()
	opts.Features = features.Map{"crowd.jpg": {Path: "crowd.jpg", Faces: []features.Face{{CX: 0.5, CY: 0.5, W: 0.8, H: 0.3}}}}
	sel := mustSelector(t, cat, fixedScorer{"1/square": -0.1, "1/wide": -0.5}, opts)

	page, _, err := sel.Choose(context.Background(), g, History{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateID != "1/wide" {
		t.Errorf("TemplateID = %s, want 1/wide to keep the face", page.TemplateID)
	}

	opts.FaceCheck = false
	sel = mustSelector(t, cat, fixedScorer{"1/square": -0.1, "1/wide": -0.5}, opts)
	page, _, _ = sel.Choose(context.Background(), g, History{})
	if page.TemplateID != "1/square" {
		t.Errorf("TemplateID = %s, want 1/square without face check", page.TemplateID)
	}
}

func TestChooseBias(t *testing.T) {
	cat := mustCatalog(t, squareTemplate("2/a", 2), squareTemplate("2/b", 2))
	opts := noRandom()
	opts.Bias = map[string]float64{"2/a": -0.2, "2/b": 0.4}
	sel := mustSelector(t, cat, fixedScorer{"2/a": -1.0, "2/b": -1.3}, opts)

	cands, err := sel.Evaluate(context.Background(), group(1, 1), History{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cands[1].Score-(-0.9)) > eps {
		t.Errorf("2/b score = %v, want -0.9", cands[1].Score)
	}
	page, _, _ := sel.Choose(context.Background(), group(1, 1), History{})
	if page.TemplateID != "2/b" {
		t.Errorf("TemplateID = %s, want 2/b after bias", page.TemplateID)
	}
}

func TestChooseFallback(t *testing.T) {
	cat := mustCatalog(t, squareTemplate("3/a", 3), squareTemplate("3/b", 3))
	sel := mustSelector(t, cat, fixedScorer{}, DefaultOptions())

	page, h, err := sel.Choose(context.Background(), group(1, 1.5, 0.7), History{})
	if err != nil {
		t.Fatal(err)
	}
	if !page.Fallback || page.TemplateID != catalog.FallbackID {
		t.Fatalf("page = %+v, want full-bleed fallback", page)
	}
	if len(page.Items) != 1 || page.Items[0].PhotoIndex != 0 || page.Items[0].ObjectPosition != "50% 50%" {
		t.Errorf("Items = %+v, want the first photo centered", page.Items)
	}
	if !slices.Equal(page.Unplaced, []int{1, 2}) {
		t.Errorf("Unplaced = %v, want [1 2]", page.Unplaced)
	}
	if !slices.Equal(h.IDs(), []string{catalog.FallbackID}) {
		t.Errorf("history = %v", h.IDs())
	}
}

func TestChooseClampsToLargerCount(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), noRandom())
	g := group(1, 1, 1, 1, 1, 1, 1)

	page, _, err := sel.Choose(context.Background(), g, History{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Slots) != 6 {
		t.Errorf("chose %d-slot template for 7 photos, want 6", len(page.Slots))
	}
	if len(page.Items)+len(page.Unplaced) != 7 || len(page.Unplaced) != 1 {
		t.Errorf("items=%d unplaced=%v, want 6 placed and 1 unplaced", len(page.Items), page.Unplaced)
	}
}

func TestChooseTemplate(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), DefaultOptions())
	page, h, err := sel.ChooseTemplate(group(1.5, 1.5), "2/stacked", NewHistory("x"))
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateID != "2/stacked" || !page.Override {
		t.Errorf("page = %+v, want override on 2/stacked", page)
	}
	if !slices.Equal(h.IDs(), []string{"x", "2/stacked"}) {
		t.Errorf("history = %v", h.IDs())
	}

	_, _, err = sel.ChooseTemplate(group(1), "9/unknown", History{})
	if !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("ChooseTemplate(unknown) error = %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func TestChooseEmptyGroup(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), DefaultOptions())
	if _, _, err := sel.Choose(context.Background(), nil, History{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Choose(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestChooseCanceled(t *testing.T) {
	sel := mustSelector(t, catalog.Default(), mustScorer(t), DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := sel.Choose(ctx, group(1, 1), History{}); err == nil {
		t.Error("Choose() on canceled context returned nil error")
	}
}

func TestChooseSeededReproducible(t *testing.T) {
	run := func(seed uint64) []string {
		opts := DefaultOptions()
		opts.Rand = NewRand(seed)
		opts.PickRandomness = 0.5
		opts.SecondWithin = 1
		sel := mustSelector(t, catalog.Default(), mustScorer(t), opts)

		var (
			h   History
			ids []string
		)
		for i := 0; i < 30; i++ {
			g := group(1.0+float64(i%3)*0.3, 0.8, 1.5)[:1+i%3]
			page, next, err := sel.Choose(context.Background(), g, h)
			if err != nil {
				t.Fatal(err)
			}
			ids, h = append(ids, page.TemplateID), next
		}
		return ids
	}

	a, b := run(7), run(7)
	if !slices.Equal(a, b) {
		t.Errorf("same seed produced different books:\n%v\n%v", a, b)
	}
}

func TestNewValidates(t *testing.T) {
	opts := DefaultOptions()
	opts.PickRandomness = 2
	if _, err := New(catalog.Default(), mustScorer(t), opts); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("New() error = %v, want CONFIGURATION", err)
	}
	opts = DefaultOptions()
	opts.RepeatPenalty = math.NaN()
	if _, err := New(catalog.Default(), mustScorer(t), opts); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("New() error = %v, want CONFIGURATION", err)
	}
	if _, err := New(nil, mustScorer(t), DefaultOptions()); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("New(nil catalog) error = %v, want CONFIGURATION", err)
	}
}
