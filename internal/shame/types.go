// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package shame

// GameRef is a display reference to one game in a stats sample.
type GameRef struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeMinutes int    `json:"playtime,omitempty"`
}

// LibraryStats is an immutable snapshot of one library analysis.
//
// The three raw counts partition the library exactly: played (over the
// commitment threshold), abandoned (touched but under it), unplayed (never
// launched). They always sum to TotalGames and drive the score. The
// "shameful" counts and samples additionally exclude recently-touched items,
// which are not fair shame targets yet.
type LibraryStats struct {
	TotalGames int `json:"total_games"`

	PlayedCount    int `json:"played_count"`
	AbandonedCount int `json:"abandoned_count"`
	UnplayedCount  int `json:"unplayed_count"`

	ShamefulUnplayedCount  int `json:"shameful_unplayed_count"`
	ShamefulAbandonedCount int `json:"shameful_abandoned_count"`

	UnplayedSample  []GameRef `json:"unplayed_sample"`
	AbandonedSample []GameRef `json:"abandoned_sample"`

	ShameScore   float64 `json:"shame_score"`
	Verdict      string  `json:"verdict"`
	BacklogHours int     `json:"backlog_hours"`

	// AnyPlaytime distinguishes a pristine account from a profile whose
	// playtime is hidden: many games with uniformly zero minutes usually
	// means the counters are private, not that nothing was ever played.
	AnyPlaytime bool `json:"any_playtime"`

	MostPlayed *GameRef `json:"most_played,omitempty"`
	Suggestion *GameRef `json:"suggestion,omitempty"`
}
