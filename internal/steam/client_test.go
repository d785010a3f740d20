// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DrawedC/steam-shame/internal/cache"
	"github.com/DrawedC/steam-shame/internal/config"
)

func testSteamConfig(serverURL string) config.SteamConfig {
	return config.SteamConfig{
		APIKey:         "test-key",
		WebAPIURL:      serverURL,
		Timeout:        2 * time.Second,
		OwnedGamesTTL:  time.Minute,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, withCache bool) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var c cache.Cacher
	if withCache {
		tc := cache.New(time.Minute)
		t.Cleanup(tc.Close)
		c = tc
	}
	return NewClient(testSteamConfig(server.URL), c)
}

func TestGetOwnedGames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected api key in query, got %q", got)
		}
		if got := r.URL.Query().Get("steamid"); got != "76561198000000001" {
			t.Errorf("unexpected steamid %q", got)
		}
		if got := r.URL.Query().Get("include_appinfo"); got != "1" {
			t.Errorf("expected include_appinfo=1, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"game_count":2,"games":[
			{"appid":10,"name":"Counter-Strike","playtime_forever":1200,"rtime_last_played":1700000000},
			{"appid":570,"name":"Dota 2","playtime_forever":0}
		]}}`))
	}, false)

	games, err := client.GetOwnedGames(context.Background(), "76561198000000001")
	if err != nil {
		t.Fatalf("GetOwnedGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if games[0].Name != "Counter-Strike" || games[0].PlaytimeForever != 1200 {
		t.Errorf("unexpected first game: %+v", games[0])
	}
	if games[1].AppID != 570 || games[1].PlaytimeForever != 0 {
		t.Errorf("unexpected second game: %+v", games[1])
	}
}

func TestGetOwnedGamesPrivateProfile(t *testing.T) {
	// A private library comes back as an empty response object, not an error.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{}}`))
	}, false)

	games, err := client.GetOwnedGames(context.Background(), "76561198000000002")
	if err != nil {
		t.Fatalf("GetOwnedGames failed: %v", err)
	}
	if games == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(games) != 0 {
		t.Errorf("expected no games, got %d", len(games))
	}
}

func TestGetOwnedGamesUsesCache(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"response":{"game_count":1,"games":[{"appid":10,"name":"CS","playtime_forever":5}]}}`))
	}, true)

	ctx := context.Background()
	for range 3 {
		if _, err := client.GetOwnedGames(ctx, "76561198000000003"); err != nil {
			t.Fatalf("GetOwnedGames failed: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestGetOwnedGamesRetriesRateLimit(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"response":{"game_count":0,"games":[]}}`))
	}, false)

	if _, err := client.GetOwnedGames(context.Background(), "76561198000000004"); err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestGetOwnedGamesRateLimitExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, false)

	_, err := client.GetOwnedGames(context.Background(), "76561198000000005")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got: %v", err)
	}
}

func TestGetPlayerSummariesChunks(t *testing.T) {
	var requests atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"response":{"players":[{"steamid":"1","personaname":"a","communityvisibilitystate":3}]}}`))
	}, false)

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = "id"
	}
	if _, err := client.GetPlayerSummaries(context.Background(), ids); err != nil {
		t.Fatalf("GetPlayerSummaries failed: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("expected 3 chunked requests for 250 ids, got %d", got)
	}
}

func TestGetPlayerSummariesEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty id list")
	}, false)

	summaries, err := client.GetPlayerSummaries(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetPlayerSummaries failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries, got %d", len(summaries))
	}
}

func TestGetPlayerSummaryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"players":[]}}`))
	}, false)

	_, err := client.GetPlayerSummary(context.Background(), "76561198000000006")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got: %v", err)
	}
}

func TestResolveVanityURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("vanityurl"); got != "gabelogannewell" {
			t.Errorf("unexpected vanityurl %q", got)
		}
		w.Write([]byte(`{"response":{"success":1,"steamid":"76561197960287930"}}`))
	}, false)

	id, err := client.ResolveVanityURL(context.Background(), "gabelogannewell")
	if err != nil {
		t.Fatalf("ResolveVanityURL failed: %v", err)
	}
	if id != "76561197960287930" {
		t.Errorf("unexpected steamid %q", id)
	}
}

func TestResolveVanityURLNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"success":42,"message":"No match"}}`))
	}, false)

	_, err := client.ResolveVanityURL(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrVanityNotResolved) {
		t.Fatalf("expected ErrVanityNotResolved, got: %v", err)
	}
}

func TestGetFriendListRestricted(t *testing.T) {
	// A hidden friends list answers 401; callers see an empty list.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, false)

	friends, err := client.GetFriendList(context.Background(), "76561198000000007")
	if err != nil {
		t.Fatalf("expected empty friends for restricted list, got: %v", err)
	}
	if len(friends) != 0 {
		t.Errorf("expected no friends, got %d", len(friends))
	}
}

func TestGetFriendList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("relationship"); got != "friend" {
			t.Errorf("unexpected relationship %q", got)
		}
		w.Write([]byte(`{"friendslist":{"friends":[
			{"steamid":"76561198000000010","relationship":"friend","friend_since":1600000000},
			{"steamid":"76561198000000011","relationship":"friend","friend_since":1650000000}
		]}}`))
	}, false)

	friends, err := client.GetFriendList(context.Background(), "76561198000000008")
	if err != nil {
		t.Fatalf("GetFriendList failed: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("expected 2 friends, got %d", len(friends))
	}
	if friends[0].SteamID != "76561198000000010" {
		t.Errorf("unexpected first friend: %+v", friends[0])
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{" 5 ", 5 * time.Second},
		{"-1", 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlayerSummaryIsPublic(t *testing.T) {
	public := PlayerSummary{CommunityVisibilityState: VisibilityPublic}
	private := PlayerSummary{CommunityVisibilityState: 1}

	if !public.IsPublic() {
		t.Error("visibility 3 should be public")
	}
	if private.IsPublic() {
		t.Error("visibility 1 should be private")
	}
}
