package photo

import (
	"slices"
	"strings"
)

// SortChronological returns a copy of photos ordered by capture time, then
// filename. Photos without a capture time sort first.
func SortChronological(photos []Photo) []Photo {
	out := slices.Clone(photos)
	slices.SortStableFunc(out, compareChronological)
	return out
}

func compareChronological(a, b Photo) int {
	switch {
	case a.TakenAt == nil && b.TakenAt != nil:
		return -1
	case a.TakenAt != nil && b.TakenAt == nil:
		return 1
	case a.TakenAt != nil && b.TakenAt != nil:
		if c := a.TakenAt.Compare(*b.TakenAt); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Filename, b.Filename)
}
