// Package feedback turns reviewer feedback on a previous book into template
// bias for the next composition run, and reads per-page template overrides.
//
// Both inputs are JSON-lines logs. A feedback line rates a page of the last
// composed book:
//
//	{"ts": "2024-07-02T09:00:00Z", "folder": "trip", "page": 3, "action": "dislike"}
//
// The page number is mapped to the template that page used, and the action
// weights are summed per template and clamped into [MinBias, MaxBias]. An
// override line pins a page to a template:
//
//	{"folder": "trip", "page": 3, "templateId": "3/columns"}
//
// Lines that do not decode are skipped; the logs are append-only and a torn
// last line must not block composition.
package feedback

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/photobook/pkg/book"
)

// Actions a reviewer can record.
const (
	ActionLike          = "like"
	ActionDislike       = "dislike"
	ActionFacesCropped  = "faces-cropped"
	ActionTooRepetitive = "too-repetitive"
	ActionLowConfidence = "low-confidence"
)

// Bias bounds per template.
const (
	MinBias = -0.6
	MaxBias = 0.4
)

// maxLine bounds a single log line.
const maxLine = 1 << 20

// Weights maps an action to its score contribution.
type Weights map[string]float64

// DefaultWeights returns the standard action weights.
func DefaultWeights() Weights {
	return Weights{
		ActionLike:          0.10,
		ActionDislike:       -0.20,
		ActionFacesCropped:  -0.15,
		ActionTooRepetitive: -0.15,
		ActionLowConfidence: -0.05,
	}
}

// Actions returns the known actions in a stable order.
func Actions() []string {
	return []string{ActionLike, ActionDislike, ActionFacesCropped, ActionTooRepetitive, ActionLowConfidence}
}

// Entry is one feedback line.
type Entry struct {
	TS     time.Time `json:"ts"`
	Folder string    `json:"folder,omitempty"`
	Page   int       `json:"page"`
	Action string    `json:"action"`
	Reason string    `json:"reason,omitempty"`
}

// Override is one template override line.
type Override struct {
	TS         time.Time `json:"ts,omitzero"`
	Folder     string    `json:"folder,omitempty"`
	Page       int       `json:"page"`
	TemplateID string    `json:"templateId"`
}

// appliesTo reports whether a line recorded for entryFolder concerns folder.
// Lines without a folder apply everywhere.
func appliesTo(entryFolder, folder string) bool {
	return entryFolder == "" || folder == "" || entryFolder == folder
}

// readLines decodes every JSON line of r into a T and returns the decoded
// values and the number of lines skipped.
func readLines[T any](r io.Reader) ([]T, int, error) {
	var (
		out     []T
		skipped int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped, sc.Err()
}

// ReadEntries decodes a feedback log. It returns the number of malformed
// lines that were skipped.
func ReadEntries(r io.Reader) ([]Entry, int, error) {
	return readLines[Entry](r)
}

// ReadOverrides decodes an override log.
func ReadOverrides(r io.Reader) ([]Override, int, error) {
	return readLines[Override](r)
}

// TemplatesByPage maps 1-based page numbers of b to their template ids.
func TemplatesByPage(b *book.Book) map[int]string {
	out := make(map[int]string)
	if b == nil {
		return out
	}
	for i, p := range b.Pages {
		n := p.Number
		if n < 1 {
			n = i + 1
		}
		if p.TemplateID != "" {
			out[n] = p.TemplateID
		}
	}
	return out
}

// Bias sums the weight of every entry of folder per template, looking
// templates up by page, and clamps each sum into [MinBias, MaxBias].
// Entries for unknown pages or actions contribute nothing.
func Bias(entries []Entry, folder string, templates map[int]string, w Weights) map[string]float64 {
	if w == nil {
		w = DefaultWeights()
	}
	acc := make(map[string]float64)
	for _, e := range entries {
		if !appliesTo(e.Folder, folder) || e.Page < 1 {
			continue
		}
		id, ok := templates[e.Page]
		if !ok {
			continue
		}
		if weight := w[e.Action]; weight != 0 {
			acc[id] += weight
		}
	}
	for id, v := range acc {
		acc[id] = max(MinBias, min(MaxBias, v))
	}
	return acc
}

// PageOverrides returns the template override per page for folder. The
// latest line for a page wins.
func PageOverrides(overrides []Override, folder string) map[int]string {
	out := make(map[int]string)
	for _, o := range overrides {
		if !appliesTo(o.Folder, folder) || o.Page < 1 || o.TemplateID == "" {
			continue
		}
		out[o.Page] = o.TemplateID
	}
	return out
}

// LoadBias reads the feedback log at path and computes the bias against the
// previous book. A missing log yields no bias.
func LoadBias(path, folder string, previous *book.Book, w Weights) (map[string]float64, int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]float64{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	entries, skipped, err := ReadEntries(f)
	if err != nil {
		return nil, skipped, err
	}
	return Bias(entries, folder, TemplatesByPage(previous), w), skipped, nil
}

// LoadOverrides reads the override log at path. A missing log yields no
// overrides.
func LoadOverrides(path, folder string) (map[int]string, int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[int]string{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	ovs, skipped, err := ReadOverrides(f)
	if err != nil {
		return nil, skipped, err
	}
	return PageOverrides(ovs, folder), skipped, nil
}
