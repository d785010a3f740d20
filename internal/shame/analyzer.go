// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package shame computes the shame score and its supporting statistics from
// a raw game library. The analyzer is pure: no network calls, no shared
// state, deterministic except for display sampling through the injected rng.
package shame

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// Verdict bands. Breakpoints are a product decision, not derived.
const (
	verdictSevere   = "You have a problem. Stop buying games."
	verdictBad      = "Steam sales have claimed another victim."
	verdictMiddling = "Not bad, but you know you'll never play those."
	verdictClean    = "Impressive restraint. Or new account."
)

const (
	verdictSevereAbove   = 55
	verdictBadAbove      = 40
	verdictMiddlingAbove = 25
)

// Analyzer turns a list of owned games into LibraryStats.
type Analyzer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

// NewAnalyzer creates an analyzer with the given scoring parameters.
func NewAnalyzer(cfg config.ScoringConfig) *Analyzer {
	return &Analyzer{cfg: cfg, now: time.Now}
}

// isRecent reports whether a game was touched inside the recency window:
// last played within the trailing window, or any playtime in the last two
// weeks. Recent items stay out of the shame-facing lists.
func (a *Analyzer) isRecent(g steam.OwnedGame) bool {
	cutoff := a.now().Add(-time.Duration(a.cfg.RecentWindowDays) * 24 * time.Hour).Unix()
	if g.RtimeLastPlayed > 0 && g.RtimeLastPlayed > cutoff {
		return true
	}
	return g.Playtime2Weeks > 0
}

// Analyze computes LibraryStats for a library. An empty library returns nil:
// "no data" is a distinct outcome from a zero-shame library. The rng drives
// display sampling only; pass a seeded rng for reproducible output.
func (a *Analyzer) Analyze(games []steam.OwnedGame, rng *rand.Rand) *LibraryStats {
	if len(games) == 0 {
		return nil
	}

	threshold := a.cfg.PlayedThresholdMinutes

	var played, abandoned, unplayed []steam.OwnedGame
	anyPlaytime := false
	for _, g := range games {
		if g.PlaytimeForever > 0 {
			anyPlaytime = true
		}
		switch {
		case g.PlaytimeForever > threshold:
			played = append(played, g)
		case g.PlaytimeForever >= 1:
			abandoned = append(abandoned, g)
		default:
			unplayed = append(unplayed, g)
		}
	}

	// Shame-facing pools drop recently-touched items. A game installed
	// yesterday with zero minutes is not backlog yet.
	shamefulUnplayed := excludeRecent(unplayed, a.isRecent)
	shamefulAbandoned := excludeRecent(abandoned, a.isRecent)

	stats := &LibraryStats{
		TotalGames:             len(games),
		PlayedCount:            len(played),
		AbandonedCount:         len(abandoned),
		UnplayedCount:          len(unplayed),
		ShamefulUnplayedCount:  len(shamefulUnplayed),
		ShamefulAbandonedCount: len(shamefulAbandoned),
		ShameScore:             a.Score(len(unplayed), len(abandoned), len(games)),
		BacklogHours:           len(unplayed) * a.cfg.BacklogHoursPerGame,
		AnyPlaytime:            anyPlaytime,
	}
	stats.Verdict = verdictFor(stats.ShameScore)

	stats.UnplayedSample = sampleRandom(shamefulUnplayed, a.cfg.SampleSize, rng)
	stats.AbandonedSample = sampleLeastPlayed(shamefulAbandoned, a.cfg.SampleSize)

	if len(stats.UnplayedSample) > 0 {
		stats.Suggestion = &stats.UnplayedSample[0]
	}
	if mostPlayed := maxPlaytime(played); mostPlayed != nil {
		stats.MostPlayed = mostPlayed
	}

	return stats
}

// Score computes the shame score from the raw category counts.
//
// Unplayed games count fully, abandoned games at half weight. The resulting
// percentage is damped by a volume multiplier that grows logarithmically
// toward 1.0 at the reference library size, so a three-game account cannot
// out-shame a thousand-game hoard. Capped below 100 to keep leaderboards
// meaningful.
func (a *Analyzer) Score(unplayedRaw, abandonedRaw, total int) float64 {
	if total == 0 {
		return 0
	}

	units := float64(unplayedRaw) + a.cfg.AbandonedWeight*float64(abandonedRaw)
	basePct := units / float64(total) * 100

	mult := a.cfg.MultiplierFloor +
		a.cfg.MultiplierSpan*math.Log2(math.Max(float64(total), 2))/math.Log2(float64(a.cfg.ReferenceLibrarySize))
	if mult > 1.0 {
		mult = 1.0
	}

	score := basePct * mult
	if score > a.cfg.ScoreCap {
		score = a.cfg.ScoreCap
	}
	return math.Round(score*10) / 10
}

func verdictFor(score float64) string {
	switch {
	case score > verdictSevereAbove:
		return verdictSevere
	case score > verdictBadAbove:
		return verdictBad
	case score > verdictMiddlingAbove:
		return verdictMiddling
	default:
		return verdictClean
	}
}

func excludeRecent(games []steam.OwnedGame, isRecent func(steam.OwnedGame) bool) []steam.OwnedGame {
	out := make([]steam.OwnedGame, 0, len(games))
	for _, g := range games {
		if !isRecent(g) {
			out = append(out, g)
		}
	}
	return out
}

// sampleRandom draws up to n games uniformly without replacement.
func sampleRandom(games []steam.OwnedGame, n int, rng *rand.Rand) []GameRef {
	if len(games) == 0 {
		return []GameRef{}
	}
	if n > len(games) {
		n = len(games)
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(games))
	} else {
		perm = rand.Perm(len(games))
	}

	refs := make([]GameRef, 0, n)
	for _, idx := range perm[:n] {
		refs = append(refs, toRef(games[idx]))
	}
	return refs
}

// sampleLeastPlayed returns up to n games ordered by ascending playtime, so
// the most egregious near-zero purchases lead the list.
func sampleLeastPlayed(games []steam.OwnedGame, n int) []GameRef {
	sorted := make([]steam.OwnedGame, len(games))
	copy(sorted, games)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PlaytimeForever < sorted[j].PlaytimeForever
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	refs := make([]GameRef, 0, n)
	for _, g := range sorted[:n] {
		refs = append(refs, toRef(g))
	}
	return refs
}

func maxPlaytime(games []steam.OwnedGame) *GameRef {
	var best *steam.OwnedGame
	for i := range games {
		if best == nil || games[i].PlaytimeForever > best.PlaytimeForever {
			best = &games[i]
		}
	}
	if best == nil || best.PlaytimeForever == 0 {
		return nil
	}
	ref := toRef(*best)
	return &ref
}

func toRef(g steam.OwnedGame) GameRef {
	return GameRef{
		AppID:           g.AppID,
		Name:            g.Name,
		PlaytimeMinutes: g.PlaytimeForever,
	}
}
