package book

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/photobook/pkg/errors"
)

// WriteJSON encodes b as indented JSON. Page layout fields are flattened into
// each page object:
//
//	{"page": 1, "templateId": "2/side-by-side", "slots": [...], "items": [...], "photos": [...]}
func WriteJSON(b *Book, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a book written by WriteJSON. Item indices are checked
// against each page's photos.
func ReadJSON(r io.Reader) (*Book, error) {
	var b Book
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode book")
	}
	for _, p := range b.Pages {
		for _, it := range p.Items {
			if it.PhotoIndex < 0 || it.PhotoIndex >= len(p.Photos) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "page %d: item photo index %d out of range", p.Number, it.PhotoIndex)
			}
		}
	}
	return &b, nil
}

// Export writes b to path, creating parent directories.
func Export(b *Book, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(b, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import reads the book at path.
func Import(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "book file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
