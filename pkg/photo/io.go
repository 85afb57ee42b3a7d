package photo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/photobook/pkg/errors"
)

// ReadJSON decodes a JSON array of photo descriptors from r, validates each
// path and returns the normalized photos in input order.
//
//	[
//	  {"path": "2024/IMG_0001.jpg", "width": 4032, "height": 3024, "takenAt": "2024-07-01T10:00:00Z"},
//	  {"path": "2024/IMG_0002.jpg", "ratio": 0.75}
//	]
//
// Duplicate paths are rejected since the path is the photo's identity.
func ReadJSON(r io.Reader) ([]Photo, error) {
	var photos []Photo
	if err := json.NewDecoder(r).Decode(&photos); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode photos")
	}

	seen := make(map[string]int, len(photos))
	for i, p := range photos {
		if err := errors.ValidatePhotoPath(p.Path); err != nil {
			return nil, fmt.Errorf("photos[%d]: %w", i, err)
		}
		if j, dup := seen[p.Path]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "photos[%d]: duplicate path %q (first at %d)", i, p.Path, j)
		}
		seen[p.Path] = i
		if p.Width < 0 || p.Height < 0 || p.Ratio < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "photos[%d]: negative dimensions", i)
		}
		photos[i] = p.Normalize()
	}
	return photos, nil
}

// ImportJSON reads the photo descriptors in the file at path.
func ImportJSON(path string) ([]Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "photos file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes photos as an indented JSON array.
func WriteJSON(photos []Photo, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(photos); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
