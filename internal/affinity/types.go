// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package affinity

import (
	"github.com/DrawedC/steam-shame/internal/genre"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// Share is one bucket's slice of a population.
type Share struct {
	genre.Info

	// Weight is the accumulated count behind the percentage. For the played
	// population this may be hour-weighted rather than a plain item count.
	Weight float64 `json:"weight"`

	// Pct is the share of the population's total weight, rounded to one
	// decimal. Items can belong to several buckets, so a population's
	// percentages sum to roughly 100, not exactly.
	Pct float64 `json:"pct"`

	// Games lists the sampled game names that contributed to this bucket.
	Games []string `json:"games,omitempty"`
}

// Distribution is one population's bucket shares, sorted by descending
// percentage (bucket key breaks ties, for stable output).
type Distribution []Share

// Majority returns the dominant share, or nil for an empty population.
func (d Distribution) Majority() *Share {
	if len(d) == 0 {
		return nil
	}
	return &d[0]
}

// Result is the full genre-affinity report for one library.
type Result struct {
	Overall  Distribution `json:"overall"`
	Played   Distribution `json:"played"`
	Unplayed Distribution `json:"unplayed"`

	OverallMajority  *Share `json:"overall_majority"`
	PlayedMajority   *Share `json:"played_majority"`
	UnplayedMajority *Share `json:"unplayed_majority"`

	// Mismatch is set when the played and unplayed majorities both exist and
	// differ: the user keeps buying a genre they never actually play.
	Mismatch bool `json:"show_unplayed_mismatch"`

	// SampleSize is the number of sampled games with storefront metadata.
	SampleSize int `json:"sample_size"`

	// FetchedRatio is the fraction of sampled games whose metadata resolved.
	// ReducedAccuracy flags a ratio low enough that the distributions should
	// be presented with a caveat instead of being hidden entirely.
	FetchedRatio    float64 `json:"fetched_ratio"`
	ReducedAccuracy bool    `json:"reduced_accuracy"`

	// Details is the metadata fetched for the sampled games, kept so callers
	// can run metadata-dependent badge rules without a second batch fetch.
	Details map[int]*steam.AppDetails `json:"-"`
}
