package features

import (
	"time"

	"github.com/matzehuels/photobook/pkg/photo"
)

// Burst dedupe defaults.
const (
	DefaultBurstWindow   = 30 * time.Second
	DefaultBurstLookback = 5
	DefaultMaxHamming    = 5
)

// DedupeOptions tunes DedupeBursts.
type DedupeOptions struct {
	// Window is the largest capture-time gap between two burst shots.
	Window time.Duration
	// Lookback is how many preceding photos each photo is compared with.
	Lookback int
	// MaxHamming is the largest pHash distance still considered a duplicate.
	MaxHamming int
}

// DefaultDedupeOptions returns the standard burst settings.
func DefaultDedupeOptions() DedupeOptions {
	return DedupeOptions{
		Window:     DefaultBurstWindow,
		Lookback:   DefaultBurstLookback,
		MaxHamming: DefaultMaxHamming,
	}
}

// DedupeBursts drops near-identical shots taken in quick succession. photos
// must already be in chronological order. Each photo is compared with the
// Lookback photos before it; when two fall within Window of each other and
// their pHashes differ by at most MaxHamming bits, the sharper one survives
// (the earlier one on equal sharpness). Photos without a pHash are always kept.
func DedupeBursts(photos []photo.Photo, lookup Lookup, opts DedupeOptions) []photo.Photo {
	if lookup == nil || len(photos) < 2 {
		return photos
	}
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultBurstLookback
	}

	keep := make([]bool, len(photos))
	for i, pi := range photos {
		keep[i] = true
		fi, _ := lookup.Get(pi.Path)
		for j := max(0, i-opts.Lookback); j < i; j++ {
			pj := photos[j]
			if gap(pi, pj) > opts.Window {
				continue
			}
			fj, _ := lookup.Get(pj.Path)
			d, ok := Hamming(fi.PHash, fj.PHash)
			if !ok || d > opts.MaxHamming {
				continue
			}
			if fi.SharpnessOr(0) <= fj.SharpnessOr(0) {
				keep[i] = false
				break
			}
			keep[j] = false
		}
	}

	out := make([]photo.Photo, 0, len(photos))
	for i, p := range photos {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// gap is the absolute capture-time distance; a missing time counts as the
// zero instant, so two undated photos are considered simultaneous.
func gap(a, b photo.Photo) time.Duration {
	d := unix(a) - unix(b)
	if d < 0 {
		d = -d
	}
	return time.Duration(d) * time.Second
}

func unix(p photo.Photo) int64 {
	if p.TakenAt == nil {
		return 0
	}
	return p.TakenAt.Unix()
}
