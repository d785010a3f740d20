// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/DrawedC/steam-shame/internal/cache"
	"github.com/DrawedC/steam-shame/internal/config"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/metrics"
)

// storeCachePrefix namespaces appdetails results in the shared cache.
const storeCachePrefix = "store:"

// PacingPolicy throttles outbound storefront requests. The storefront has no
// documented rate limit but bans aggressive clients, so batch fetches pace
// themselves. Wait blocks until the next request may be sent.
type PacingPolicy interface {
	Wait(ctx context.Context) error
}

// tokenBucketPacing combines a token bucket with random jitter so concurrent
// workers do not fire in lockstep.
type tokenBucketPacing struct {
	limiter   *rate.Limiter
	jitterMax time.Duration
}

// NewTokenBucketPacing returns the production pacing policy: ratePerSecond
// requests sustained, each delayed by an extra uniform [0, jitterMax) sleep.
func NewTokenBucketPacing(ratePerSecond float64, jitterMax time.Duration) PacingPolicy {
	return &tokenBucketPacing{
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		jitterMax: jitterMax,
	}
}

func (p *tokenBucketPacing) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if p.jitterMax <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(rand.Int64N(int64(p.jitterMax)))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoPacing sends requests as fast as workers allow. Test use only.
type NoPacing struct{}

func (NoPacing) Wait(context.Context) error { return nil }

// StoreClient fetches commerce metadata from the unkeyed storefront
// appdetails endpoint. Failures are absorbed: a missing app yields nil, and
// batch results simply omit apps that could not be fetched.
type StoreClient struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cacher
	storeTTL   time.Duration
	workers    int
	pacing     PacingPolicy
}

// NewStoreClient creates a storefront client with token-bucket pacing derived
// from the configuration.
func NewStoreClient(cfg config.SteamConfig, c cache.Cacher) *StoreClient {
	return &StoreClient{
		baseURL: cfg.StoreAPIURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:    c,
		storeTTL: cfg.StoreTTL,
		workers:  cfg.BatchWorkers,
		pacing:   NewTokenBucketPacing(cfg.BatchRatePerSecond, cfg.BatchJitterMax),
	}
}

// SetPacing replaces the pacing policy. Intended for tests.
func (s *StoreClient) SetPacing(p PacingPolicy) {
	s.pacing = p
}

// GetAppDetails returns metadata for one app, or nil when the storefront has
// no sellable entry (delisted apps, DLC-only IDs) or the request failed.
// Successful lookups are cached for the long store TTL; failures are not
// cached, so transient errors heal on the next request.
func (s *StoreClient) GetAppDetails(ctx context.Context, appID int) *AppDetails {
	cacheKey := storeCachePrefix + strconv.Itoa(appID)
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			metrics.CacheHits.WithLabelValues("store").Inc()
			metrics.StoreFetchesTotal.WithLabelValues("cache_hit").Inc()
			return v.(*AppDetails)
		}
		metrics.CacheMisses.WithLabelValues("store").Inc()
	}

	details, err := s.fetchAppDetails(ctx, appID)
	if err != nil {
		metrics.StoreFetchesTotal.WithLabelValues("unavailable").Inc()
		log := logging.Ctx(ctx)
		log.Debug().
			Int("app_id", appID).
			Err(err).
			Msg("Storefront details unavailable")
		return nil
	}

	metrics.StoreFetchesTotal.WithLabelValues("fetched").Inc()
	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey, details, s.storeTTL)
	}
	return details
}

// fetchAppDetails performs one appdetails request and normalizes the payload.
func (s *StoreClient) fetchAppDetails(ctx context.Context, appID int) (*AppDetails, error) {
	params := url.Values{}
	params.Set("appids", strconv.Itoa(appID))
	params.Set("cc", "us")
	params.Set("l", "en")

	reqURL := s.baseURL + "/api/appdetails?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Status: resp.StatusCode, Endpoint: "appdetails"}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront response: %w", err)
	}

	var payload map[string]storeAppEntry
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode appdetails response: %w", err)
	}

	entry, ok := payload[strconv.Itoa(appID)]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("no storefront data for app %d", appID)
	}
	return entry.Data.toAppDetails(appID), nil
}

// GetAppDetailsBatch fetches metadata for many apps concurrently, pacing each
// request through the configured policy. The returned map contains only the
// apps that resolved; callers must treat absence as "unknown", not "free".
func (s *StoreClient) GetAppDetailsBatch(ctx context.Context, appIDs []int) map[int]*AppDetails {
	results := make(map[int]*AppDetails, len(appIDs))
	if len(appIDs) == 0 {
		return results
	}

	workers := s.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(appIDs) {
		workers = len(appIDs)
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for appID := range jobs {
				if err := s.pacing.Wait(ctx); err != nil {
					return
				}
				if details := s.GetAppDetails(ctx, appID); details != nil {
					mu.Lock()
					results[appID] = details
					mu.Unlock()
				}
			}
		}()
	}

	for _, appID := range appIDs {
		select {
		case jobs <- appID:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	ratio := float64(len(results)) / float64(len(appIDs))
	metrics.StoreBatchFetchRatio.Observe(ratio)
	log := logging.Ctx(ctx)
	log.Debug().
		Int("requested", len(appIDs)).
		Int("fetched", len(results)).
		Msg("Storefront batch fetch complete")

	return results
}
