// Package catalog holds the page template catalog: the set of slot layouts a
// page can take, keyed by slot count.
//
// Templates are static data. The default catalog is embedded (see
// default.yaml) and custom catalogs are read from YAML files with the same
// shape:
//
//	templates:
//	  - id: 2/side-by-side
//	    slots:
//	      - {x: 0,   y: 0, w: 0.5, h: 1, ar: 0.707}
//	      - {x: 0.5, y: 0, w: 0.5, h: 1, ar: 0.707}
//
// # Slot Count Mismatch
//
// [Catalog.For] returns the templates for exactly n slots when any exist.
// Otherwise it uses the nearest larger count, so no photo is dropped, and
// only when nothing larger exists the nearest smaller count. Callers compare
// the returned count with n to detect the mismatch.
package catalog
