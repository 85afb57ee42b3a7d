package layout

import "slices"

// HistoryCapacity is the number of recent template ids a History keeps.
const HistoryCapacity = 12

// History is the bounded list of recently chosen template ids, oldest first.
// It is a value: Push returns a new History and never modifies the receiver,
// so callers thread it explicitly from one page decision to the next.
type History struct {
	ids []string
}

// NewHistory returns a History holding the last HistoryCapacity of ids.
func NewHistory(ids ...string) History {
	if len(ids) > HistoryCapacity {
		ids = ids[len(ids)-HistoryCapacity:]
	}
	return History{ids: slices.Clone(ids)}
}

// Push returns a History with id appended, dropping the oldest entry when full.
func (h History) Push(id string) History {
	ids := make([]string, 0, min(len(h.ids)+1, HistoryCapacity))
	if len(h.ids) >= HistoryCapacity {
		ids = append(ids, h.ids[len(h.ids)-HistoryCapacity+1:]...)
	} else {
		ids = append(ids, h.ids...)
	}
	return History{ids: append(ids, id)}
}

// Recent returns the last window entries (all of them when window exceeds
// the length, none when window <= 0).
func (h History) Recent(window int) []string {
	if window <= 0 {
		return nil
	}
	if window > len(h.ids) {
		window = len(h.ids)
	}
	return slices.Clone(h.ids[len(h.ids)-window:])
}

// Count returns how often id occurs among the last window entries.
func (h History) Count(id string, window int) int {
	n := 0
	for _, r := range h.Recent(window) {
		if r == id {
			n++
		}
	}
	return n
}

// IDs returns a copy of the entries, oldest first.
func (h History) IDs() []string { return slices.Clone(h.ids) }

// Len returns the number of entries.
func (h History) Len() int { return len(h.ids) }
