// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package leaderboard ranks a user against their friends by shame score.
// Each friend's library is fetched and analyzed independently under bounded
// parallelism; any per-friend failure drops that friend from the board
// instead of failing the whole request.
package leaderboard

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/metrics"
	"github.com/DrawedC/steam-shame/internal/shame"
	"github.com/DrawedC/steam-shame/internal/steam"
)

// Entry is one ranked row.
type Entry struct {
	SteamID       string  `json:"steam_id"`
	Name          string  `json:"name"`
	Avatar        string  `json:"avatar"`
	ShameScore    float64 `json:"shame_score"`
	TotalGames    int     `json:"total_games"`
	PlayedCount   int     `json:"played_count"`
	UnplayedCount int     `json:"never_played"`
	IsUser        bool    `json:"is_user"`
	Rank          int     `json:"rank"`
}

// Board is the full leaderboard result.
type Board struct {
	Entries []Entry `json:"leaderboard"`

	// TotalFriends counts the friends that made it onto the board (the
	// subject excluded), before truncation to the display cap.
	TotalFriends int `json:"total_friends"`

	// UserRank is the subject's 1-based rank, nil when the subject did not
	// qualify (private library, saturated score).
	UserRank *int `json:"user_rank"`

	// NoFriends distinguishes "friends list empty or hidden" from a board
	// that is empty because every candidate failed.
	NoFriends bool `json:"no_friends,omitempty"`
}

// Aggregator builds friend leaderboards.
type Aggregator struct {
	client   steam.ClientInterface
	analyzer *shame.Analyzer
	cfg      config.LeaderboardConfig
	scoreCap float64
}

// NewAggregator creates a leaderboard aggregator. scoreCap is the analyzer's
// maximum score, used by the saturated-entry exclusion rule.
func NewAggregator(client steam.ClientInterface, analyzer *shame.Analyzer, cfg config.LeaderboardConfig, scoreCap float64) *Aggregator {
	return &Aggregator{
		client:   client,
		analyzer: analyzer,
		cfg:      cfg,
		scoreCap: scoreCap,
	}
}

// Build assembles the leaderboard for a user. Only the friends-list and
// profile-summary calls are request-fatal; everything after degrades
// per-friend.
func (a *Aggregator) Build(ctx context.Context, steamID string) (*Board, error) {
	friends, err := a.client.GetFriendList(ctx, steamID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return &Board{Entries: []Entry{}, NoFriends: true}, nil
	}

	if len(friends) > a.cfg.MaxFriends {
		friends = friends[:a.cfg.MaxFriends]
	}
	ids := make([]string, 0, len(friends)+1)
	ids = append(ids, steamID)
	for _, f := range friends {
		ids = append(ids, f.SteamID)
	}

	summaries, err := a.client.GetPlayerSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var entries []Entry

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for _, summary := range summaries {
		g.Go(func() error {
			if entry, ok := a.candidate(gctx, summary, steamID); ok {
				mu.Lock()
				entries = append(entries, entry)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ShameScore != entries[j].ShameScore {
			return entries[i].ShameScore > entries[j].ShameScore
		}
		return entries[i].SteamID < entries[j].SteamID
	})

	board := &Board{TotalFriends: max(len(entries)-1, 0)}
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].IsUser {
			rank := i + 1
			board.UserRank = &rank
		}
	}
	if len(entries) > a.cfg.MaxEntries {
		entries = entries[:a.cfg.MaxEntries]
	}
	board.Entries = entries
	if board.Entries == nil {
		board.Entries = []Entry{}
	}

	log := logging.Ctx(ctx)
	log.Debug().
		Str("steam_id", steamID).
		Int("candidates", len(summaries)).
		Int("ranked", board.TotalFriends+1).
		Msg("Leaderboard built")

	return board, nil
}

// candidate analyzes one profile and decides whether it joins the board.
func (a *Aggregator) candidate(ctx context.Context, summary steam.PlayerSummary, subjectID string) (Entry, bool) {
	if !summary.IsPublic() {
		metrics.LeaderboardCandidates.WithLabelValues("private").Inc()
		return Entry{}, false
	}

	games, err := a.client.GetOwnedGames(ctx, summary.SteamID)
	if err != nil {
		metrics.LeaderboardCandidates.WithLabelValues("error").Inc()
		log := logging.Ctx(ctx)
		log.Debug().
			Str("steam_id", summary.SteamID).
			Err(err).
			Msg("Skipping leaderboard candidate")
		return Entry{}, false
	}

	stats := a.analyzer.Analyze(games, nil)
	if stats == nil {
		metrics.LeaderboardCandidates.WithLabelValues("empty").Inc()
		return Entry{}, false
	}
	if a.cfg.ExcludeSaturated && stats.ShameScore >= a.scoreCap {
		metrics.LeaderboardCandidates.WithLabelValues("saturated").Inc()
		return Entry{}, false
	}

	metrics.LeaderboardCandidates.WithLabelValues("included").Inc()
	return Entry{
		SteamID:       summary.SteamID,
		Name:          summary.PersonaName,
		Avatar:        summary.Avatar,
		ShameScore:    stats.ShameScore,
		TotalGames:    stats.TotalGames,
		PlayedCount:   stats.PlayedCount,
		UnplayedCount: stats.UnplayedCount,
		IsUser:        summary.SteamID == subjectID,
	}, true
}
