// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package badges awards achievement-style labels over a finished analysis.
// Detection is a fixed, ordered rule table; each rule yields at most one
// badge and the output is capped, earlier rules winning ties for the cap.
package badges

import (
	"fmt"
	"strings"

	"github.com/DrawedC/steam-shame/internal/shame"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// MaxBadges caps the awarded list after all rules run.
const MaxBadges = 6

// Badge is one awarded label. Recomputed every request, no persisted state.
type Badge struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// Input carries everything a rule may inspect. Details is nil when only the
// cheap subset should run (storefront metadata not fetched yet).
type Input struct {
	Stats   *shame.LibraryStats
	Details map[int]*steam.AppDetails
	Games   []steam.OwnedGame
}

// rule is one predicate in the fixed evaluation order.
type rule struct {
	needsMetadata bool
	eval          func(Input) (Badge, bool)
}

var rules = []rule{
	{eval: humbleBundleVictim},
	{eval: earlyAccessAddict, needsMetadata: true},
	{eval: oneTrickPony},
	{eval: gameCollector},
	{eval: speedrunAbandoner},
	{eval: disciplinedBuyer},
	{eval: f2pWarrior, needsMetadata: true},
}

// Detect evaluates the full rule table. Rules that need storefront metadata
// are skipped when Input.Details is nil.
func Detect(in Input) []Badge {
	if in.Stats == nil {
		return []Badge{}
	}

	awarded := make([]Badge, 0, len(rules))
	for _, r := range rules {
		if r.needsMetadata && in.Details == nil {
			continue
		}
		if badge, ok := r.eval(in); ok {
			awarded = append(awarded, badge)
		}
	}
	if len(awarded) > MaxBadges {
		awarded = awarded[:MaxBadges]
	}
	return awarded
}

// Cheap evaluates only the rules that need no storefront metadata, letting
// callers render partial badges before the slow batch fetch lands.
func Cheap(in Input) []Badge {
	in.Details = nil
	return Detect(in)
}

func humbleBundleVictim(in Input) (Badge, bool) {
	if in.Stats.TotalGames > 200 && in.Stats.ShameScore > 40 {
		return Badge{
			Name:        "Humble Bundle Victim",
			Emoji:       "📦",
			Description: "200+ games, most untouched. Those bundles got you good.",
		}, true
	}
	return Badge{}, false
}

func earlyAccessAddict(in Input) (Badge, bool) {
	count := 0
	for _, d := range in.Details {
		for _, g := range d.Genres {
			if strings.EqualFold(g, "Early Access") {
				count++
				break
			}
		}
	}
	if count >= 5 {
		return Badge{
			Name:        "Early Access Addict",
			Emoji:       "🚧",
			Description: fmt.Sprintf("%d Early Access games. You love paying to beta test.", count),
		}, true
	}
	return Badge{}, false
}

func oneTrickPony(in Input) (Badge, bool) {
	if in.Stats.PlayedCount == 0 {
		return Badge{}, false
	}

	totalMinutes := 0
	var top steam.OwnedGame
	for _, g := range in.Games {
		totalMinutes += g.PlaytimeForever
		if g.PlaytimeForever > top.PlaytimeForever {
			top = g
		}
	}
	if totalMinutes == 0 {
		return Badge{}, false
	}

	topPct := float64(top.PlaytimeForever) / float64(totalMinutes) * 100
	if topPct > 50 {
		name := top.Name
		if name == "" {
			name = "one game"
		}
		return Badge{
			Name:        "One-Trick Pony",
			Emoji:       "🐴",
			Description: fmt.Sprintf("%.0f%% of your time in %s.", topPct, name),
		}, true
	}
	return Badge{}, false
}

func gameCollector(in Input) (Badge, bool) {
	if in.Stats.TotalGames >= 500 {
		return Badge{
			Name:        "Game Collector",
			Emoji:       "🏛️",
			Description: fmt.Sprintf("%d games. You don't play games, you collect them.", in.Stats.TotalGames),
		}, true
	}
	return Badge{}, false
}

func speedrunAbandoner(in Input) (Badge, bool) {
	count := 0
	for _, g := range in.Games {
		if g.PlaytimeForever > 0 && g.PlaytimeForever < 30 {
			count++
		}
	}
	if count >= 20 {
		return Badge{
			Name:        "Speedrun Abandoner",
			Emoji:       "⏱️",
			Description: fmt.Sprintf("Opened %d games for under 30 minutes.", count),
		}, true
	}
	return Badge{}, false
}

func disciplinedBuyer(in Input) (Badge, bool) {
	if in.Stats.TotalGames < 50 && in.Stats.ShameScore < 20 {
		return Badge{
			Name:        "Disciplined Buyer",
			Emoji:       "🎯",
			Description: "Small library, actually played. Impressive self-control.",
		}, true
	}
	return Badge{}, false
}

func f2pWarrior(in Input) (Badge, bool) {
	count := 0
	for _, d := range in.Details {
		if d.IsFree {
			count++
		}
	}
	if count >= 10 {
		return Badge{
			Name:        "F2P Warrior",
			Emoji:       "🆓",
			Description: fmt.Sprintf("%d free-to-play games. At least those didn't cost anything.", count),
		}, true
	}
	return Badge{}, false
}
