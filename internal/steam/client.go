// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package steam is the adapter for Valve's two public HTTP surfaces: the
// keyed Web API (library, profiles, friends) and the unkeyed storefront
// appdetails endpoint (prices, genres). Both clients cache aggressively and
// degrade to partial data instead of failing a whole analysis.
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/DrawedC/steam-shame/internal/cache"
	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/metrics"
)

// summaryChunkSize is the maximum number of SteamIDs GetPlayerSummaries
// accepts per call.
const summaryChunkSize = 100

// ownedGamesCachePrefix namespaces library snapshots in the shared cache.
const ownedGamesCachePrefix = "owned_games:"

// Client talks to the Steam Web API. All methods are safe for concurrent use.
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	cache          cache.Cacher
	breaker        *CircuitBreaker
	ownedGamesTTL  time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a Web API client. The cache may be nil, in which case
// every call goes to the network.
func NewClient(cfg config.SteamConfig, c cache.Cacher) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.WebAPIURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:          c,
		breaker:        NewCircuitBreaker("steam_web_api"),
		ownedGamesTTL:  cfg.OwnedGamesTTL,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// statusError carries a non-200 HTTP status so callers can special-case
// authorization failures (e.g. restricted friends lists).
type statusError struct {
	Status   int
	Endpoint string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("steam api %s returned status %d", e.Endpoint, e.Status)
}

// doRequestWithRateLimit performs a GET against the Web API with automatic
// retry on HTTP 429. It honors Retry-After when present and otherwise backs
// off exponentially from retryBaseDelay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBaseDelay * time.Duration(1<<(attempt-1))
			var rl *rateLimitError
			if errors.As(lastErr, &rl) && rl.retryAfter > 0 {
				delay = rl.retryAfter
			}
			log := logging.Ctx(ctx)
			log.Debug().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying rate-limited Steam request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.doOnce(ctx, endpoint, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var rl *rateLimitError
		if !errors.As(err, &rl) {
			return nil, err
		}
		metrics.SteamRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
	}

	return nil, fmt.Errorf("%w: %s after %d retries", ErrRateLimited, endpoint, c.maxRetries)
}

// rateLimitError wraps a 429 together with the server-suggested delay.
type rateLimitError struct {
	retryAfter time.Duration
	endpoint   string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("steam api %s rate limited (retry after %s)", e.endpoint, e.retryAfter)
}

// doOnce executes a single HTTP attempt through the circuit breaker.
func (c *Client) doOnce(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	start := time.Now()
	body, err := Execute(c.breaker, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("steam api request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &rateLimitError{
				retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				endpoint:   endpoint,
			}
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, endpoint)
		default:
			return nil, &statusError{Status: resp.StatusCode, Endpoint: endpoint}
		}
	})
	metrics.SteamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SteamRequestsTotal.WithLabelValues(endpoint, "failure").Inc()
		return nil, err
	}
	metrics.SteamRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}

// parseRetryAfter interprets a Retry-After header as delay-seconds.
// Malformed or absent values yield 0, letting the caller back off on its own.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// makeRequest fetches an endpoint and decodes the JSON response into T.
func makeRequest[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (T, error) {
	var zero T

	body, err := c.doRequestWithRateLimit(ctx, endpoint, params)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return zero, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return result, nil
}

// GetOwnedGames returns the user's full library with app names and playtime
// counters. Results are cached per SteamID. A private library yields an empty
// slice, not an error; the Web API omits the games array in that case.
func (c *Client) GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	cacheKey := ownedGamesCachePrefix + steamID
	if c.cache != nil {
		if v, ok := c.cache.Get(cacheKey); ok {
			metrics.CacheHits.WithLabelValues("owned_games").Inc()
			return v.([]OwnedGame), nil
		}
		metrics.CacheMisses.WithLabelValues("owned_games").Inc()
	}

	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")

	resp, err := makeRequest[ownedGamesResponse](ctx, c, "/IPlayerService/GetOwnedGames/v1/", params)
	if err != nil {
		return nil, err
	}

	games := resp.Response.Games
	if games == nil {
		games = []OwnedGame{}
	}
	if c.cache != nil {
		c.cache.SetWithTTL(cacheKey, games, c.ownedGamesTTL)
	}

	log := logging.Ctx(ctx)
	log.Debug().
		Str("steam_id", steamID).
		Int("game_count", len(games)).
		Msg("Fetched owned games")

	return games, nil
}

// GetPlayerSummaries returns profiles for up to any number of SteamIDs,
// transparently chunking requests to the API's 100-ID limit. IDs with no
// profile are silently absent from the result.
func (c *Client) GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]PlayerSummary, error) {
	if len(steamIDs) == 0 {
		return []PlayerSummary{}, nil
	}

	summaries := make([]PlayerSummary, 0, len(steamIDs))
	for start := 0; start < len(steamIDs); start += summaryChunkSize {
		end := min(start+summaryChunkSize, len(steamIDs))

		params := url.Values{}
		params.Set("steamids", strings.Join(steamIDs[start:end], ","))

		resp, err := makeRequest[playerSummariesResponse](ctx, c, "/ISteamUser/GetPlayerSummaries/v2/", params)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, resp.Response.Players...)
	}
	return summaries, nil
}

// GetPlayerSummary returns the profile for one SteamID, or
// ErrProfileNotFound when the ID has no profile.
func (c *Client) GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error) {
	summaries, err := c.GetPlayerSummaries(ctx, []string{steamID})
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].SteamID == steamID {
			return &summaries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, steamID)
}

// ResolveVanityURL resolves a custom profile name to a 64-bit SteamID.
// Returns ErrVanityNotResolved when the name does not exist.
func (c *Client) ResolveVanityURL(ctx context.Context, vanityName string) (string, error) {
	params := url.Values{}
	params.Set("vanityurl", vanityName)

	resp, err := makeRequest[vanityResponse](ctx, c, "/ISteamUser/ResolveVanityURL/v1/", params)
	if err != nil {
		return "", err
	}
	if resp.Response.Success != 1 || resp.Response.SteamID == "" {
		return "", fmt.Errorf("%w: %q", ErrVanityNotResolved, vanityName)
	}
	return resp.Response.SteamID, nil
}

// GetFriendList returns the user's friends. A restricted friends list (the
// API answers 401) is reported as an empty slice: for ranking purposes a
// hidden list and an empty list are indistinguishable.
func (c *Client) GetFriendList(ctx context.Context, steamID string) ([]Friend, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("relationship", "friend")

	resp, err := makeRequest[friendListResponse](ctx, c, "/ISteamUser/GetFriendList/v1/", params)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusForbidden {
			return []Friend{}, nil
		}
		if errors.Is(err, ErrUnauthorized) {
			return []Friend{}, nil
		}
		return nil, err
	}

	friends := resp.FriendsList.Friends
	if friends == nil {
		friends = []Friend{}
	}
	return friends, nil
}
