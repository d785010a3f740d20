// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package value estimates what a library cost, split into money well spent
// (played) and money on the pile (unplayed). By default it prices a random
// sample of each pool and extrapolates; a full scan prices every game.
package value

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// sampleCap bounds each pool's priced sample in estimate mode.
const sampleCap = 40

// Estimate is the valuation result. Values are whole US dollars.
type Estimate struct {
	LibraryValue  int `json:"library_value"`
	PlayedValue   int `json:"played_value"`
	UnplayedValue int `json:"unplayed_value"`

	PlayedCount   int `json:"played_count"`
	UnplayedCount int `json:"unplayed_count"`

	// PlayedSampled and UnplayedSampled count the games that actually
	// contributed a price.
	PlayedSampled   int `json:"played_sampled"`
	UnplayedSampled int `json:"unplayed_sampled"`

	// IsEstimate marks extrapolated values (sampled mode) as opposed to a
	// full-scan sum.
	IsEstimate bool `json:"is_estimate"`
}

// Estimator prices libraries via the storefront client.
type Estimator struct {
	store steam.StoreInterface
}

// NewEstimator creates a value estimator.
func NewEstimator(store steam.StoreInterface) *Estimator {
	return &Estimator{store: store}
}

// Estimate values a library. With fullScan every game is priced and the
// result is exact for whatever the storefront resolved; otherwise each pool
// is sampled (seeded by SteamID, so repeated views agree) and the average
// sampled price is extrapolated across the pool.
func (e *Estimator) Estimate(ctx context.Context, steamID string, games []steam.OwnedGame, fullScan bool) *Estimate {
	var played, unplayed []steam.OwnedGame
	for _, g := range games {
		if g.PlaytimeForever > 0 {
			played = append(played, g)
		} else {
			unplayed = append(unplayed, g)
		}
	}

	samplePlayed, sampleUnplayed := played, unplayed
	if !fullScan {
		rng := rand.New(rand.NewPCG(seedFor(steamID), seedFor(steamID)))
		samplePlayed = sampleGames(played, sampleCap, rng)
		sampleUnplayed = sampleGames(unplayed, sampleCap, rng)
	}

	ids := make([]int, 0, len(samplePlayed)+len(sampleUnplayed))
	for _, g := range samplePlayed {
		ids = append(ids, g.AppID)
	}
	for _, g := range sampleUnplayed {
		ids = append(ids, g.AppID)
	}
	details := e.store.GetAppDetailsBatch(ctx, ids)

	playedPrices := collectPrices(samplePlayed, details)
	unplayedPrices := collectPrices(sampleUnplayed, details)

	est := &Estimate{
		PlayedCount:     len(played),
		UnplayedCount:   len(unplayed),
		PlayedSampled:   len(playedPrices),
		UnplayedSampled: len(unplayedPrices),
		IsEstimate:      !fullScan,
	}

	var playedValue, unplayedValue float64
	if fullScan {
		playedValue = sum(playedPrices)
		unplayedValue = sum(unplayedPrices)
	} else {
		playedValue = avg(playedPrices) * float64(len(played))
		unplayedValue = avg(unplayedPrices) * float64(len(unplayed))
	}

	est.PlayedValue = int(math.Round(playedValue))
	est.UnplayedValue = int(math.Round(unplayedValue))
	est.LibraryValue = int(math.Round(playedValue + unplayedValue))

	log := logging.Ctx(ctx)
	log.Debug().
		Str("steam_id", steamID).
		Bool("full_scan", fullScan).
		Int("library_value", est.LibraryValue).
		Msg("Library valued")

	return est
}

func seedFor(steamID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(steamID))
	return h.Sum64()
}

func sampleGames(games []steam.OwnedGame, limit int, rng *rand.Rand) []steam.OwnedGame {
	if len(games) <= limit {
		return games
	}
	sample := make([]steam.OwnedGame, 0, limit)
	for _, idx := range rng.Perm(len(games))[:limit] {
		sample = append(sample, games[idx])
	}
	return sample
}

// collectPrices keeps the positive known prices of a sample. Unknown prices
// are skipped entirely rather than counted as zero, which would drag the
// average down for reasons that have nothing to do with the library.
func collectPrices(games []steam.OwnedGame, details map[int]*steam.AppDetails) []float64 {
	var prices []float64
	for _, g := range games {
		d, ok := details[g.AppID]
		if !ok || d.PriceUSD == nil {
			continue
		}
		if p := *d.PriceUSD; p > 0 {
			prices = append(prices, p)
		}
	}
	return prices
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

func avg(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}
