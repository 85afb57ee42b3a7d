// Package pkg provides the core libraries for photobook composition.
//
// # Overview
//
// Photobook turns an ordered photo collection into book pages: it splits the
// stream into page-sized groups, picks a template for every group and places
// each photo into the slot whose shape fits it best. The pkg directory is
// organized into three areas:
//
//  1. Engine - grouping, scoring, assignment and template selection
//  2. Inputs and outputs - photos, templates, features, feedback and books
//  3. Infrastructure - pipeline orchestration, caching, configuration
//
// # Architecture
//
// The typical data flow through photobook:
//
//	photos.json
//	     ↓
//	[photo] sort chronologically, [features] drop burst duplicates
//	     ↓
//	[grouping] split into page groups (hero photos get their own page)
//	     ↓
//	[layout] score every candidate template of the [catalog] with [scoring],
//	         which solves the photo/slot placement with [assign]
//	     ↓
//	[book] pages in order, written as book.json
//
// # Quick Start
//
// Compose a book with the default settings:
//
//	photos, _ := photo.ImportJSON("photos.json")
//	b, stats, err := pipeline.Compose(ctx, photos, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d pages, %d fallbacks\n", len(b.Pages), stats.Fallbacks)
//	_ = book.Export(b, "book.json")
//
// Drive the engine by hand, one page at a time:
//
//	groups := grouping.New(grouping.DefaultOptions()).Group(photos)
//	scorer, _ := scoring.New(scoring.DefaultOptions())
//	sel, _ := layout.New(catalog.Default(), scorer, layout.DefaultOptions())
//
//	var history layout.History
//	for _, g := range groups {
//	    page, next, err := sel.Choose(ctx, g.Photos, history)
//	    if err != nil {
//	        return err
//	    }
//	    history = next
//	    fmt.Println(page.TemplateID, page.Score)
//	}
//
// # Main Packages
//
// ## Engine
//
// [grouping] - Greedy, weight-based partition of the photo stream. Extreme
// panoramas and tall shots weigh more; qualifying heroes get a page alone.
//
// [scoring] - Builds the photo x slot cost matrix (crop loss, orientation
// mismatch, chronological flow) and scores a template for a group.
//
// [assign] - Hungarian minimum-cost assignment on gonum matrices, plus an
// exhaustive solver for cross-checks.
//
// [layout] - Template selection with variety: histogram and repeat
// penalties over a bounded history, a seeded tie-break between close
// candidates, low-score retry and the face-crop check.
//
// ## Inputs and Outputs
//
// [photo] - Photo descriptors, aspect categories and chronological order.
//
// [catalog] - Template catalogs loaded from YAML, with the count clamp rule.
//
// [features] - Optional per-photo signals (pHash, sharpness, aesthetics,
// faces) from SQLite, MongoDB or JSON, and burst deduplication.
//
// [feedback] - Reviewer feedback turned into template bias, and per-page
// template overrides.
//
// [book] - The composed book and its JSON form.
//
// ## Infrastructure
//
// [pipeline] - Sort, dedupe, group and select in one call, with a caching
// Runner used by the CLI.
//
// [cache] - Byte caches (file, Redis, null) and key derivation.
//
// [config] - TOML configuration with defaults and validation.
//
// [observability] - Hooks for pipeline, cache and feature events.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/assign/...        # Specific package
//	go test -run Example ./pkg/...  # Examples only
//
// [grouping]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/grouping
// [scoring]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/scoring
// [assign]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/assign
// [layout]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/layout
// [photo]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/photo
// [catalog]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/catalog
// [features]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/features
// [feedback]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/feedback
// [book]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/book
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/photobook/pkg/errors
package pkg
