// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package affinity estimates a library's genre makeup from bounded random
// samples instead of fetching storefront metadata for every game. Sampling
// is seeded from the SteamID, so repeated views of the same profile show the
// same distributions while the metadata cache is warm.
package affinity

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/genre"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// Sampler estimates genre affinity across three populations: everything
// owned, only played, only unplayed.
type Sampler struct {
	store   steam.StoreInterface
	cfg     config.AffinityConfig
	scoring config.ScoringConfig
	now     func() time.Time
}

// NewSampler creates an affinity sampler backed by the storefront client.
func NewSampler(store steam.StoreInterface, cfg config.AffinityConfig, scoring config.ScoringConfig) *Sampler {
	return &Sampler{
		store:   store,
		cfg:     cfg,
		scoring: scoring,
		now:     time.Now,
	}
}

// Sample computes the affinity report for a library. Only storefront lookups
// touch the network; everything else is pure. Returns an empty-but-valid
// Result when the library is empty.
func (s *Sampler) Sample(ctx context.Context, steamID string, games []steam.OwnedGame) *Result {
	rng := rand.New(rand.NewPCG(seedFor(steamID), seedFor(steamID)))

	var played, unplayed []steam.OwnedGame
	for _, g := range games {
		switch {
		case g.PlaytimeForever > 0:
			played = append(played, g)
		case !s.isRecent(g):
			unplayed = append(unplayed, g)
		}
	}

	ownedSample := sampleGames(games, s.cfg.OwnedSampleCap, rng)
	playedSample := sampleGames(played, s.cfg.PlayedSampleCap, rng)
	unplayedSample := sampleGames(unplayed, s.cfg.UnplayedSampleCap, rng)

	details := s.fetchUnion(ctx, ownedSample, playedSample, unplayedSample)

	overall := s.accumulate(ownedSample, details, false)
	playedDist := s.accumulate(playedSample, details, s.cfg.HourWeighted)
	unplayedDist := s.accumulate(unplayedSample, details, false)

	keep := s.keepSet(overall, playedDist, unplayedDist)

	result := &Result{
		Overall:    finalize(overall, keep),
		Played:     finalize(playedDist, keep),
		Unplayed:   finalize(unplayedDist, keep),
		SampleSize: len(details),
		Details:    details,
	}
	result.OverallMajority = result.Overall.Majority()
	result.PlayedMajority = result.Played.Majority()
	result.UnplayedMajority = result.Unplayed.Majority()

	if result.PlayedMajority != nil && result.UnplayedMajority != nil {
		result.Mismatch = result.PlayedMajority.Key != result.UnplayedMajority.Key
	}

	sampled := unionSize(ownedSample, playedSample, unplayedSample)
	if sampled > 0 {
		result.FetchedRatio = math.Round(float64(len(details))/float64(sampled)*100) / 100
		result.ReducedAccuracy = result.FetchedRatio < s.cfg.MinFetchRatio
	}

	return result
}

// seedFor derives a deterministic rng seed from the subject identity
// (FNV-1a). Reproducibility is a UX property here, nothing more.
func seedFor(steamID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(steamID))
	return h.Sum64()
}

func (s *Sampler) isRecent(g steam.OwnedGame) bool {
	cutoff := s.now().Add(-time.Duration(s.scoring.RecentWindowDays) * 24 * time.Hour).Unix()
	if g.RtimeLastPlayed > 0 && g.RtimeLastPlayed > cutoff {
		return true
	}
	return g.Playtime2Weeks > 0
}

// sampleGames draws up to limit games without replacement.
func sampleGames(games []steam.OwnedGame, limit int, rng *rand.Rand) []steam.OwnedGame {
	if len(games) <= limit {
		out := make([]steam.OwnedGame, len(games))
		copy(out, games)
		return out
	}
	sample := make([]steam.OwnedGame, 0, limit)
	for _, idx := range rng.Perm(len(games))[:limit] {
		sample = append(sample, games[idx])
	}
	return sample
}

// fetchUnion fetches storefront metadata for the union of all sampled IDs in
// one paced batch.
func (s *Sampler) fetchUnion(ctx context.Context, samples ...[]steam.OwnedGame) map[int]*steam.AppDetails {
	seen := make(map[int]struct{})
	var ids []int
	for _, sample := range samples {
		for _, g := range sample {
			if _, ok := seen[g.AppID]; !ok {
				seen[g.AppID] = struct{}{}
				ids = append(ids, g.AppID)
			}
		}
	}

	details := s.store.GetAppDetailsBatch(ctx, ids)
	log := logging.Ctx(ctx)
	log.Debug().
		Int("sampled", len(ids)).
		Int("fetched", len(details)).
		Msg("Affinity metadata batch complete")
	return details
}

func unionSize(samples ...[]steam.OwnedGame) int {
	seen := make(map[int]struct{})
	for _, sample := range samples {
		for _, g := range sample {
			seen[g.AppID] = struct{}{}
		}
	}
	return len(seen)
}

// bucketAcc accumulates one population's weights before normalization.
type bucketAcc struct {
	weights map[string]float64
	games   map[string][]string
	total   float64
}

// accumulate classifies a population's sampled games and tallies per-bucket
// weight. With hourWeighted, each game contributes its played hours (at
// least one) instead of a single count, which lets a thousand-hour habit
// dominate the played distribution the way it dominates real life.
func (s *Sampler) accumulate(sample []steam.OwnedGame, details map[int]*steam.AppDetails, hourWeighted bool) bucketAcc {
	acc := bucketAcc{
		weights: make(map[string]float64),
		games:   make(map[string][]string),
	}
	for _, g := range sample {
		d, ok := details[g.AppID]
		if !ok {
			continue
		}
		weight := 1.0
		if hourWeighted {
			weight = math.Max(1, float64(g.PlaytimeForever)/60)
		}
		for _, key := range genre.Classify(d.Tags()) {
			acc.weights[key] += weight
			acc.games[key] = append(acc.games[key], g.Name)
			acc.total += weight
		}
	}
	return acc
}

// keepSet returns the bucket keys shown individually: those at or above the
// misc threshold in at least one population. Everything else merges into the
// synthetic misc bucket in all three.
func (s *Sampler) keepSet(populations ...bucketAcc) map[string]struct{} {
	keep := make(map[string]struct{})
	for _, pop := range populations {
		if pop.total == 0 {
			continue
		}
		for key, weight := range pop.weights {
			if weight/pop.total*100 >= s.cfg.MiscThresholdPct {
				keep[key] = struct{}{}
			}
		}
	}
	return keep
}

// finalize turns an accumulator into a sorted, normalized distribution with
// sub-threshold buckets folded into misc.
func finalize(acc bucketAcc, keep map[string]struct{}) Distribution {
	if acc.total == 0 {
		return Distribution{}
	}

	merged := make(map[string]float64)
	mergedGames := make(map[string][]string)
	for key, weight := range acc.weights {
		outKey := key
		if _, ok := keep[key]; !ok {
			outKey = genre.MiscKey
		}
		merged[outKey] += weight
		mergedGames[outKey] = append(mergedGames[outKey], acc.games[key]...)
	}

	dist := make(Distribution, 0, len(merged))
	for key, weight := range merged {
		dist = append(dist, Share{
			Info:   genre.InfoFor(key),
			Weight: weight,
			Pct:    math.Round(weight/acc.total*100*10) / 10,
			Games:  mergedGames[key],
		})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Pct != dist[j].Pct {
			return dist[i].Pct > dist[j].Pct
		}
		return dist[i].Key < dist[j].Key
	})
	return dist
}
