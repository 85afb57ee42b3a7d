// Package layout chooses a page template for each group of photos.
//
// A [Selector] scores every catalog template that fits the group, subtracts
// soft penalties (orientation histogram mismatch, recent repetition), adds an
// optional per-template bias and picks the best candidate. A close runner-up
// is occasionally picked instead for visual variety, driven by an injected
// random source so a fixed seed reproduces a fixed book.
//
// The only state carried from page to page is the [History] of recent
// template ids, which callers pass in and receive back:
//
//	h := layout.History{}
//	for _, g := range groups {
//	    page, next, err := sel.Choose(ctx, g.Photos, h)
//	    if err != nil {
//	        return err
//	    }
//	    pages, h = append(pages, page), next
//	}
package layout

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photobook/pkg/catalog"
	"github.com/matzehuels/photobook/pkg/errors"
	"github.com/matzehuels/photobook/pkg/photo"
	"github.com/matzehuels/photobook/pkg/scoring"
)

// Scorer evaluates one template for one group.
type Scorer interface {
	Score(t catalog.Template, photos []photo.Photo) (scoring.Result, error)
}

// PageLayout is the decision for one page.
type PageLayout struct {
	TemplateID string         `json:"templateId" bson:"template_id"`
	Slots      []catalog.Slot `json:"slots" bson:"slots"`
	Items      []scoring.Item `json:"items" bson:"items"`
	Score      float64        `json:"score" bson:"score"`
	Fallback   bool           `json:"fallback,omitempty" bson:"fallback,omitempty"`
	Override   bool           `json:"override,omitempty" bson:"override,omitempty"`
	// Unplaced lists group photo indices that did not fit on the template.
	Unplaced []int `json:"unplaced,omitempty" bson:"unplaced,omitempty"`
}

// Candidate is one evaluated template.
type Candidate struct {
	Template catalog.Template
	Result   scoring.Result

	HistPenalty   float64
	Repeats       int
	RepeatPenalty float64
	Bias          float64

	// Score is Result.Score - HistPenalty - RepeatPenalty + Bias.
	Score float64

	// Err is set when the template could not be scored.
	Err error
}

// Usable reports whether the candidate was scored.
func (c Candidate) Usable() bool { return c.Err == nil }

// Selector picks templates. It is safe for concurrent use.
type Selector struct {
	catalog *catalog.Catalog
	scorer  Scorer
	opts    Options
	logger  *log.Logger

	mu  sync.Mutex
	rng Rand
}

// New returns a Selector drawing templates from cat.
func New(cat *catalog.Catalog, scorer Scorer, opts Options) (*Selector, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "template catalog is empty")
	}
	if scorer == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "no scorer configured")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(DefaultSeed)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Selector{catalog: cat, scorer: scorer, opts: opts, logger: logger, rng: rng}, nil
}

// Catalog returns the selector's template catalog.
func (s *Selector) Catalog() *catalog.Catalog { return s.catalog }

// Evaluate scores every candidate template for group. Templates are scored
// concurrently; the result keeps catalog order. Scoring failures are
// recorded on the candidate, only cancellation is returned as an error.
func (s *Selector) Evaluate(ctx context.Context, group []photo.Photo, history History) ([]Candidate, error) {
	templates, count := s.catalog.For(len(group))
	if count != len(group) && len(templates) > 0 {
		s.logger.Debug("catalog miss, using nearest slot count",
			"code", errors.ErrCodeCatalogMiss, "photos", len(group), "slots", count)
	}

	tallP, wideP := photo.Counts(group)
	cands := make([]Candidate, len(templates))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Workers > 0 {
		g.SetLimit(s.opts.Workers)
	}
	for i, t := range templates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := Candidate{Template: t}
			c.Result, c.Err = s.scorer.Score(t, group)

			tallS, wideS := t.Counts()
			c.HistPenalty = s.opts.HistPenalty * float64(abs(tallS-tallP)+abs(wideS-wideP))
			c.Repeats = history.Count(t.ID, s.opts.RepeatWindow)
			c.RepeatPenalty = s.opts.RepeatPenalty * float64(c.Repeats)
			c.Bias = s.opts.Bias[t.ID]
			c.Score = c.Result.Score - c.HistPenalty - c.RepeatPenalty + c.Bias
			cands[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range cands {
		if c.Err != nil {
			s.logger.Warn("template not scored", "tpl", c.Template.ID, "err", c.Err)
		}
	}
	return cands, nil
}

// Choose picks the template for group and returns the page together with
// history extended by the chosen id. When no candidate can be scored the
// page falls back to a full-bleed layout of the first photo.
func (s *Selector) Choose(ctx context.Context, group []photo.Photo, history History) (PageLayout, History, error) {
	if len(group) == 0 {
		return PageLayout{}, history, errors.New(errors.ErrCodeInvalidInput, "cannot lay out an empty group")
	}
	cands, err := s.Evaluate(ctx, group, history)
	if err != nil {
		return PageLayout{}, history, err
	}

	best, second := rank(cands)
	if best < 0 {
		s.logger.Warn("no usable template, falling back", "tpl", catalog.FallbackID, "photos", len(group))
		page := s.fallback(len(group))
		return page, history.Push(page.TemplateID), nil
	}

	chosen, alt := best, second
	if s.opts.TopK >= 2 && second >= 0 && s.isClose(cands[best].Score, cands[second].Score) && s.draw() < s.opts.PickRandomness {
		chosen, alt = second, best
		s.logger.Debug("variety pick", "best", cands[best].Template.ID, "chosen", cands[chosen].Template.ID)
	}

	if s.opts.LowScoreRetry && alt >= 0 &&
		cands[chosen].Score < s.opts.LowScoreThreshold && cands[alt].Score > cands[chosen].Score {
		s.logger.Info("low score, retry with alternative",
			"chosen", cands[chosen].Template.ID, "score", round3(cands[chosen].Score),
			"alt", cands[alt].Template.ID, "alt_score", round3(cands[alt].Score))
		chosen, alt = alt, chosen
	}

	if s.opts.FaceCheck && s.opts.Features != nil && alt >= 0 &&
		s.cropsFace(cands[chosen], group) && !s.cropsFace(cands[alt], group) {
		s.logger.Info("face crop, using alternative",
			"rejected", cands[chosen].Template.ID, "alt", cands[alt].Template.ID)
		chosen = alt
	}

	c := cands[chosen]
	s.logger.Debug("chosen", "tpl", c.Template.ID, "score", round3(c.Score), "repeats", c.Repeats)
	return pageFrom(c.Template, c.Result, c.Score), history.Push(c.Template.ID), nil
}

// ChooseTemplate lays group out on the template with the given id, still
// solving for the best photo placement. It returns TEMPLATE_NOT_FOUND for an
// unknown id.
func (s *Selector) ChooseTemplate(group []photo.Photo, id string, history History) (PageLayout, History, error) {
	if len(group) == 0 {
		return PageLayout{}, history, errors.New(errors.ErrCodeInvalidInput, "cannot lay out an empty group")
	}
	t, err := s.catalog.Get(id)
	if err != nil {
		return PageLayout{}, history, err
	}
	res, err := s.scorer.Score(t, group)
	if err != nil {
		return PageLayout{}, history, err
	}
	page := pageFrom(t, res, res.Score)
	page.Override = true
	return page, history.Push(t.ID), nil
}

// rank returns the indices of the best and second-best usable candidates,
// -1 when absent. A later candidate must win by more than tieEpsilon.
func rank(cands []Candidate) (best, second int) {
	best, second = -1, -1
	for i, c := range cands {
		if !c.Usable() {
			continue
		}
		switch {
		case best < 0 || c.Score > cands[best].Score+tieEpsilon:
			best, second = i, best
		case second < 0 || c.Score > cands[second].Score+tieEpsilon:
			second = i
		}
	}
	return best, second
}

func (s *Selector) isClose(best, second float64) bool {
	return (best-second)/math.Max(1e-6, math.Abs(best)) <= s.opts.SecondWithin
}

func (s *Selector) draw() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Selector) cropsFace(c Candidate, group []photo.Photo) bool {
	return scoring.FaceCropViolation(c.Template.Slots, c.Result.Items, group, s.opts.Features)
}

func (s *Selector) fallback(n int) PageLayout {
	t := s.catalog.Fallback()
	page := PageLayout{
		TemplateID: t.ID,
		Slots:      t.Slots,
		Items:      []scoring.Item{scoring.NewItem(0, 0)},
		Fallback:   true,
	}
	for i := 1; i < n; i++ {
		page.Unplaced = append(page.Unplaced, i)
	}
	return page
}

func pageFrom(t catalog.Template, r scoring.Result, score float64) PageLayout {
	return PageLayout{
		TemplateID: t.ID,
		Slots:      t.Slots,
		Items:      r.Items,
		Score:      score,
		Unplaced:   r.Unplaced,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
