// Package config loads, defaults and validates photobook configuration.
//
// Every tuning knob of the composition engine (grouping capacity, hero
// promotion, cost weights, variety penalties, the random seed) plus the
// locations of optional inputs (feature store, feedback logs, cache) lives in
// one TOML file. A missing file is not an error: [Default] values apply, and
// command-line flags override both.
//
// Obtain settings through [Load] so callers receive validated values, then
// convert them with the Options methods ([Config.GroupingOptions],
// [Config.ScoringOptions], [Config.LayoutOptions]).
package config
