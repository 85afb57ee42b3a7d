package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePhotoPath validates the identity path of a photo descriptor.
//
// Photo paths are opaque identities (local paths or remote object keys), so
// only obviously broken values are rejected:
//   - No empty paths
//   - No control characters or null bytes
//   - Maximum length of 1024 characters
func ValidatePhotoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "photo path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "photo path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "photo path contains invalid characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a path the CLI writes to.
// It rejects empty values, control characters and directory-like names.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory")
	}
	return nil
}

// templateIDRegex matches ids like "3/hero-left": slot count, slash, slug.
var templateIDRegex = regexp.MustCompile(`^[1-9][0-9]*/[a-z0-9][a-z0-9-]*$`)

// ValidateTemplateID validates a template identifier.
func ValidateTemplateID(id string) error {
	if id == "" {
		return New(ErrCodeConfiguration, "template id cannot be empty")
	}
	if !templateIDRegex.MatchString(id) {
		return New(ErrCodeConfiguration, "invalid template id: %q (want <slots>/<name>)", id)
	}
	return nil
}

// ValidateWeight rejects non-finite and negative tuning weights.
func ValidateWeight(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be finite, got %v", v)
	}
	if v < 0 {
		return Invalid(field, "must be non-negative, got %v", v)
	}
	return nil
}

// ValidateUnit rejects values outside [0, 1].
func ValidateUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return Invalid(field, "must be within [0, 1], got %v", v)
	}
	return nil
}
