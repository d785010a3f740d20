// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/DrawedC/steam-shame/internal/affinity"
	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/leaderboard"
	"github.com/DrawedC/steam-shame/internal/shame"
	"github.com/DrawedC/steam-shame/internal/steam"
	"github.com/DrawedC/steam-shame/internal/value"
)

const (
	userID   = "76561198000000001"
	friendID = "76561198000000002"
)

// fakeClient is an in-memory Web API.
type fakeClient struct {
	summaries map[string]steam.PlayerSummary
	games     map[string][]steam.OwnedGame
	friends   map[string][]steam.Friend
	vanity    map[string]string
}

func (f *fakeClient) GetOwnedGames(_ context.Context, steamID string) ([]steam.OwnedGame, error) {
	return f.games[steamID], nil
}

func (f *fakeClient) GetPlayerSummaries(_ context.Context, steamIDs []string) ([]steam.PlayerSummary, error) {
	var out []steam.PlayerSummary
	for _, id := range steamIDs {
		if s, ok := f.summaries[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeClient) GetPlayerSummary(_ context.Context, steamID string) (*steam.PlayerSummary, error) {
	if s, ok := f.summaries[steamID]; ok {
		return &s, nil
	}
	return nil, steam.ErrProfileNotFound
}

func (f *fakeClient) ResolveVanityURL(_ context.Context, vanityName string) (string, error) {
	if id, ok := f.vanity[vanityName]; ok {
		return id, nil
	}
	return "", steam.ErrVanityNotResolved
}

func (f *fakeClient) GetFriendList(_ context.Context, steamID string) ([]steam.Friend, error) {
	return f.friends[steamID], nil
}

// fakeStore serves canned storefront metadata.
type fakeStore struct {
	details map[int]*steam.AppDetails
}

func (f *fakeStore) GetAppDetails(_ context.Context, appID int) *steam.AppDetails {
	return f.details[appID]
}

func (f *fakeStore) GetAppDetailsBatch(_ context.Context, appIDs []int) map[int]*steam.AppDetails {
	out := make(map[int]*steam.AppDetails)
	for _, id := range appIDs {
		if d, ok := f.details[id]; ok {
			out[id] = d
		}
	}
	return out
}

func defaultScoring() config.ScoringConfig {
	return config.ScoringConfig{
		PlayedThresholdMinutes: 60,
		AbandonedWeight:        0.5,
		MultiplierFloor:        0.65,
		MultiplierSpan:         0.35,
		ReferenceLibrarySize:   500,
		ScoreCap:               99.9,
		RecentWindowDays:       30,
		SampleSize:             30,
		BacklogHoursPerGame:    10,
	}
}

func newTestServer(t *testing.T, client *fakeClient, store *fakeStore) *httptest.Server {
	t.Helper()

	scoring := defaultScoring()
	analyzer := shame.NewAnalyzer(scoring)
	sampler := affinity.NewSampler(store, config.AffinityConfig{
		OwnedSampleCap:    60,
		PlayedSampleCap:   40,
		UnplayedSampleCap: 40,
		MiscThresholdPct:  5.0,
		MinFetchRatio:     0.5,
	}, scoring)
	estimator := value.NewEstimator(store)
	aggregator := leaderboard.NewAggregator(client, analyzer, config.LeaderboardConfig{
		MaxFriends:       50,
		MaxEntries:       10,
		Concurrency:      4,
		ExcludeSaturated: true,
	}, scoring.ScoreCap)

	handlers := NewHandlers(client, analyzer, sampler, estimator, aggregator)
	mw := NewMiddleware(config.SecurityConfig{RateLimitDisabled: true})
	router := NewRouter(handlers, mw, NewHealthHandler("test"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newPopulatedFakes() (*fakeClient, *fakeStore) {
	client := &fakeClient{
		summaries: map[string]steam.PlayerSummary{
			userID: {
				SteamID:                  userID,
				PersonaName:              "testuser",
				CommunityVisibilityState: steam.VisibilityPublic,
			},
			friendID: {
				SteamID:                  friendID,
				PersonaName:              "testfriend",
				CommunityVisibilityState: steam.VisibilityPublic,
			},
		},
		games: map[string][]steam.OwnedGame{
			userID: {
				{AppID: 1, Name: "Played One", PlaytimeForever: 3000},
				{AppID: 2, Name: "Played Two", PlaytimeForever: 500},
				{AppID: 3, Name: "Dusty", PlaytimeForever: 0},
				{AppID: 4, Name: "Dustier", PlaytimeForever: 0},
			},
			friendID: {
				{AppID: 1, Name: "Played One", PlaytimeForever: 100},
				{AppID: 3, Name: "Dusty", PlaytimeForever: 0},
			},
		},
		friends: map[string][]steam.Friend{
			userID: {{SteamID: friendID, Relationship: "friend"}},
		},
		vanity: map[string]string{"testuser": userID},
	}
	price := 9.99
	store := &fakeStore{details: map[int]*steam.AppDetails{
		1: {AppID: 1, Genres: []string{"Action"}, PriceUSD: &price},
		2: {AppID: 2, Genres: []string{"Strategy"}, PriceUSD: &price},
		3: {AppID: 3, Genres: []string{"RPG"}, PriceUSD: &price},
		4: {AppID: 4, Genres: []string{"RPG"}, PriceUSD: &price},
	}}
	return client, store
}

func getJSON(t *testing.T, url string) (int, APIResponse) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, envelope
}

func dataMap(t *testing.T, envelope APIResponse) map[string]any {
	t.Helper()
	m, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", envelope.Data)
	}
	return m
}

func TestHealth(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/health")
	if status != http.StatusOK || !envelope.Success {
		t.Fatalf("unexpected health response: %d %+v", status, envelope)
	}
	if dataMap(t, envelope)["status"] != "ok" {
		t.Errorf("unexpected health payload: %+v", envelope.Data)
	}
}

func TestResolve(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	tests := []struct {
		name  string
		input string
	}{
		{"plain steamid", userID},
		{"profiles url", "https://steamcommunity.com/profiles/" + userID},
		{"vanity url", "https://steamcommunity.com/id/testuser"},
		{"bare vanity", "testuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(resolveRequest{Input: tt.input})
			resp, err := http.Post(server.URL+"/api/v1/resolve", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer resp.Body.Close()

			var envelope APIResponse
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d: %+v", resp.StatusCode, envelope.Error)
			}
			if got := dataMap(t, envelope)["steam_id"]; got != userID {
				t.Errorf("resolved %v, want %s", got, userID)
			}
		})
	}
}

func TestResolveFailures(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	tests := []struct {
		name       string
		input      string
		wantStatus int
		wantCode   string
	}{
		{"empty input", "", http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown vanity", "nobody-here", http.StatusNotFound, ErrCodeNotFound},
		{"mangled url", "https://steamcommunity.com/watch?v=x", http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(resolveRequest{Input: tt.input})
			resp, err := http.Post(server.URL+"/api/v1/resolve", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer resp.Body.Close()

			var envelope APIResponse
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.wantCode)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/analyze/"+userID)
	if status != http.StatusOK || !envelope.Success {
		t.Fatalf("unexpected response: %d %+v", status, envelope.Error)
	}

	data := dataMap(t, envelope)
	stats, ok := data["stats"].(map[string]any)
	if !ok {
		t.Fatalf("missing stats: %+v", data)
	}
	if stats["total_games"] != float64(4) {
		t.Errorf("total_games = %v, want 4", stats["total_games"])
	}
	if stats["unplayed_count"] != float64(2) {
		t.Errorf("unplayed_count = %v, want 2", stats["unplayed_count"])
	}
	if _, ok := stats["shame_score"].(float64); !ok {
		t.Errorf("missing shame_score: %+v", stats)
	}
	profile, ok := data["profile"].(map[string]any)
	if !ok || profile["name"] != "testuser" {
		t.Errorf("unexpected profile: %+v", data["profile"])
	}
}

func TestAnalyzeInvalidID(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/analyze/not-a-steamid")
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeBadRequest {
		t.Errorf("unexpected error: %+v", envelope.Error)
	}
}

func TestAnalyzeUnknownProfile(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/analyze/76561198999999999")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotFound {
		t.Errorf("unexpected error: %+v", envelope.Error)
	}
}

func TestAnalyzePrivateProfile(t *testing.T) {
	client, store := newPopulatedFakes()
	private := client.summaries[userID]
	private.CommunityVisibilityState = 1
	client.summaries[userID] = private
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/analyze/"+userID)
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeProfilePrivate {
		t.Errorf("expected PROFILE_PRIVATE guidance, got %+v", envelope.Error)
	}
}

func TestAnalyzeEmptyLibrary(t *testing.T) {
	client, store := newPopulatedFakes()
	client.games[userID] = nil
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/analyze/"+userID)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNoGames {
		t.Errorf("expected NO_GAMES guidance, got %+v", envelope.Error)
	}
}

func TestAffinity(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/affinity/"+userID)
	if status != http.StatusOK || !envelope.Success {
		t.Fatalf("unexpected response: %d %+v", status, envelope.Error)
	}

	data := dataMap(t, envelope)
	for _, key := range []string{"overall", "played", "unplayed", "badges"} {
		if _, ok := data[key]; !ok {
			t.Errorf("missing %q in affinity payload", key)
		}
	}
	overall, ok := data["overall"].([]any)
	if !ok || len(overall) == 0 {
		t.Fatalf("expected non-empty overall distribution: %+v", data["overall"])
	}
}

func TestValue(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/value/"+userID)
	if status != http.StatusOK || !envelope.Success {
		t.Fatalf("unexpected response: %d %+v", status, envelope.Error)
	}

	data := dataMap(t, envelope)
	// Four games at $9.99: sampled mode covers all of them here.
	if data["library_value"] != float64(40) {
		t.Errorf("library_value = %v, want 40", data["library_value"])
	}
	if data["is_estimate"] != true {
		t.Errorf("expected estimate mode, got %+v", data)
	}

	status, envelope = getJSON(t, server.URL+"/api/v1/value/"+userID+"?full=1")
	if status != http.StatusOK {
		t.Fatalf("full scan failed: %d", status)
	}
	if got := dataMap(t, envelope)["is_estimate"]; got != false {
		t.Errorf("full scan must not be an estimate, got %v", got)
	}
}

func TestLeaderboard(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/leaderboard/"+userID)
	if status != http.StatusOK || !envelope.Success {
		t.Fatalf("unexpected response: %d %+v", status, envelope.Error)
	}

	data := dataMap(t, envelope)
	entries, ok := data["leaderboard"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", data["leaderboard"])
	}
	first, _ := entries[0].(map[string]any)
	if first["rank"] != float64(1) {
		t.Errorf("first entry rank = %v, want 1", first["rank"])
	}
	if data["user_rank"] == nil {
		t.Error("expected a user rank")
	}
}

func TestLeaderboardNoFriends(t *testing.T) {
	client, store := newPopulatedFakes()
	client.friends[userID] = nil
	server := newTestServer(t, client, store)

	status, envelope := getJSON(t, server.URL+"/api/v1/leaderboard/"+userID)
	if status != http.StatusOK {
		t.Fatalf("hidden friends list must not error: %d", status)
	}

	data := dataMap(t, envelope)
	if data["no_friends"] != true {
		t.Errorf("expected no_friends flag, got %+v", data)
	}
	if data["user_rank"] != nil {
		t.Errorf("expected null user rank, got %v", data["user_rank"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	client, store := newPopulatedFakes()
	server := newTestServer(t, client, store)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics endpoint returned %d", resp.StatusCode)
	}
}
