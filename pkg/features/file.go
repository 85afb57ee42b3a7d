package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/photobook/pkg/errors"
)

// ReadJSON decodes a JSON array of Features from r.
func ReadJSON(r io.Reader) ([]Features, error) {
	var fs []Features
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode features")
	}
	for i, f := range fs {
		if err := errors.ValidatePhotoPath(f.Path); err != nil {
			return nil, fmt.Errorf("features[%d]: %w", i, err)
		}
	}
	return fs, nil
}

// ImportJSON reads the JSON file at path into store and returns the number
// of records written.
func ImportJSON(ctx context.Context, store Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fs, err := ReadJSON(f)
	if err != nil {
		return 0, err
	}
	for i, feat := range fs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := store.Put(ctx, feat); err != nil {
			return i, err
		}
	}
	return len(fs), nil
}
