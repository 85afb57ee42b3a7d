// Package features provides optional per-photo signals computed outside the
// engine: sharpness, an aesthetic score, face boxes and a perceptual hash.
//
// The composition core only ever sees the synchronous [Lookup] contract.
// Backends implementing [Store] (SQLite, MongoDB, in-memory) are queried
// once per run with [Store.GetMany] and the resulting [Map] is handed to the
// core, so scoring never blocks on I/O. Missing features are not errors:
// scoring simply omits the terms that need them.
package features

import (
	"context"
	"slices"
)

// Face is a face bounding box in coordinates normalized to the photo:
// center (CX, CY) and size (W, H), all in [0, 1].
type Face struct {
	CX float64 `json:"cx" bson:"cx"`
	CY float64 `json:"cy" bson:"cy"`
	W  float64 `json:"w" bson:"w"`
	H  float64 `json:"h" bson:"h"`
}

// Area returns W*H.
func (f Face) Area() float64 { return f.W * f.H }

// Features are the optional signals known for one photo.
type Features struct {
	Path      string   `json:"path" bson:"_id"`
	PHash     string   `json:"phash,omitempty" bson:"phash,omitempty"`
	Sharpness *float64 `json:"sharpness,omitempty" bson:"sharpness,omitempty"`
	Aesthetic *float64 `json:"aesthetic,omitempty" bson:"aesthetic,omitempty"`
	Faces     []Face   `json:"faces,omitempty" bson:"faces,omitempty"`
}

// LargestFace returns the face with the largest area.
func (f Features) LargestFace() (Face, bool) {
	if len(f.Faces) == 0 {
		return Face{}, false
	}
	best := f.Faces[0]
	for _, face := range f.Faces[1:] {
		if face.Area() > best.Area() {
			best = face
		}
	}
	return best, true
}

// SharpnessOr returns the sharpness score or def when unknown.
func (f Features) SharpnessOr(def float64) float64 {
	if f.Sharpness == nil {
		return def
	}
	return *f.Sharpness
}

// Lookup resolves features by photo path.
type Lookup interface {
	Get(path string) (Features, bool)
}

// Map is an in-memory Lookup keyed by photo path.
type Map map[string]Features

// Get implements Lookup. A nil Map finds nothing.
func (m Map) Get(path string) (Features, bool) {
	f, ok := m[path]
	return f, ok
}

// None is a Lookup that never finds anything.
var None Lookup = Map(nil)

// Store is a persistent feature backend.
type Store interface {
	// GetMany returns the features known for paths. Unknown paths are
	// simply absent from the result.
	GetMany(ctx context.Context, paths []string) (Map, error)

	// Put inserts or replaces the features of f.Path.
	Put(ctx context.Context, f Features) error

	// Close releases the backend.
	Close() error
}

// MemoryStore is a Store backed by a Map. It is not safe for concurrent
// writers.
type MemoryStore struct {
	m Map
}

// NewMemoryStore returns a MemoryStore seeded with fs.
func NewMemoryStore(fs ...Features) *MemoryStore {
	s := &MemoryStore{m: make(Map, len(fs))}
	for _, f := range fs {
		s.m[f.Path] = f
	}
	return s
}

// GetMany implements Store.
func (s *MemoryStore) GetMany(_ context.Context, paths []string) (Map, error) {
	out := make(Map)
	for _, p := range paths {
		if f, ok := s.m[p]; ok {
			out[p] = clone(f)
		}
	}
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, f Features) error {
	s.m[f.Path] = clone(f)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func clone(f Features) Features {
	f.Faces = slices.Clone(f.Faces)
	return f
}
