package features

import (
	"math/bits"
	"strconv"
	"strings"
)

// ParsePHash decodes a 64-bit perceptual hash written as 16 hex digits.
// Separators and case are ignored.
func ParsePHash(s string) (uint64, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			b.WriteRune(r)
		}
	}
	if b.Len() != 16 {
		return 0, false
	}
	v, err := strconv.ParseUint(b.String(), 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Hamming returns the number of differing bits between two pHashes and
// false when either hash is missing or malformed.
func Hamming(a, b string) (int, bool) {
	x, ok := ParsePHash(a)
	if !ok {
		return 0, false
	}
	y, ok := ParsePHash(b)
	if !ok {
		return 0, false
	}
	return bits.OnesCount64(x ^ y), true
}
