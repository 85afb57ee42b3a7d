// Package photo defines the photo descriptor consumed by the composition
// engine and the aspect categories derived from it.
//
// A [Photo] is a read-only record of what is known about an image without
// looking at its pixels: dimensions, capture time, an optional quality
// estimate. Everything downstream (grouping, slot scoring, template
// selection) works from the aspect ratio returned by [Photo.Aspect] and the
// [Category] computed once by [Classify].
//
// # Aspect Categories
//
//   - [Tall]: ratio < 0.95
//   - [Wide]: ratio > 1.2
//   - [Square]: everything in between
//
// Photos with unknown dimensions are treated as neutral (ratio 1.0, Square).
package photo
