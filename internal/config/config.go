// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package config loads and validates application configuration.
//
// Configuration is merged from three layers in increasing priority:
//
//  1. Compiled-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH or ./config.yaml)
//  3. Environment variables prefixed STEAMSHAME_ (double underscore nests,
//     e.g. STEAMSHAME_STEAM__API_KEY -> steam.api_key)
package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Steam       SteamConfig       `koanf:"steam"`
	Server      ServerConfig      `koanf:"server"`
	Scoring     ScoringConfig     `koanf:"scoring"`
	Affinity    AffinityConfig    `koanf:"affinity"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// SteamConfig configures the Steam Web API and storefront clients.
type SteamConfig struct {
	// APIKey is the Steam Web API key. Required.
	APIKey string `koanf:"api_key" validate:"required"`

	// WebAPIURL is the base URL of the Steam Web API.
	WebAPIURL string `koanf:"web_api_url" validate:"required,url"`

	// StoreAPIURL is the base URL of the storefront appdetails API.
	StoreAPIURL string `koanf:"store_api_url" validate:"required,url"`

	// Timeout bounds every outbound HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// OwnedGamesTTL is the cache TTL for owned-games responses. Short, to
	// absorb the burst of sibling requests one results page produces.
	OwnedGamesTTL time.Duration `koanf:"owned_games_ttl"`

	// StoreTTL is the cache TTL for storefront metadata. Long; genre and
	// price rarely change.
	StoreTTL time.Duration `koanf:"store_ttl"`

	// BatchWorkers is the worker-pool size for batched storefront fetches.
	BatchWorkers int `koanf:"batch_workers" validate:"min=1,max=16"`

	// BatchRatePerSecond paces batched storefront fetches (token bucket).
	BatchRatePerSecond float64 `koanf:"batch_rate_per_second"`

	// BatchJitterMax is the upper bound of the random pre-request delay
	// layered on top of the token bucket. Courtesy toward the storefront
	// rate limiter, not a correctness mechanism.
	BatchJitterMax time.Duration `koanf:"batch_jitter_max"`

	// MaxRetries bounds retries after an HTTP 429 from the Web API.
	MaxRetries int `koanf:"max_retries" validate:"min=0,max=10"`

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// ScoringConfig holds the shame-score formula parameters. The formula itself
// is a product-tuning choice, so every knob is configuration rather than a
// hard-coded constant.
type ScoringConfig struct {
	// PlayedThresholdMinutes separates played from abandoned.
	PlayedThresholdMinutes int `koanf:"played_threshold_minutes" validate:"min=1"`

	// AbandonedWeight is the shame contribution of one abandoned game
	// relative to one unplayed game.
	AbandonedWeight float64 `koanf:"abandoned_weight" validate:"min=0,max=1"`

	// MultiplierFloor and MultiplierSpan shape the volume multiplier:
	// floor + span * log2(total) / log2(reference), capped at 1.0.
	MultiplierFloor float64 `koanf:"multiplier_floor" validate:"min=0,max=1"`
	MultiplierSpan  float64 `koanf:"multiplier_span" validate:"min=0,max=1"`

	// ReferenceLibrarySize is the library size at which the volume
	// multiplier reaches full weight.
	ReferenceLibrarySize int `koanf:"reference_library_size" validate:"min=2"`

	// ScoreCap keeps the score strictly below 100 so leaderboards never
	// degenerate into a wall of maxed-out entries.
	ScoreCap float64 `koanf:"score_cap" validate:"gt=0,lt=100"`

	// RecentWindowDays defines "recently touched" for the recency filter.
	RecentWindowDays int `koanf:"recent_window_days" validate:"min=1"`

	// SampleSize caps the unplayed/abandoned display lists.
	SampleSize int `koanf:"sample_size" validate:"min=1"`

	// BacklogHoursPerGame is the notional completion time used for the
	// backlog estimate.
	BacklogHoursPerGame int `koanf:"backlog_hours_per_game" validate:"min=1"`
}

// AffinityConfig configures the genre-affinity sampler.
type AffinityConfig struct {
	// Sample caps per population. Tens of items keeps storefront load and
	// latency bounded; the estimate is approximate by design.
	OwnedSampleCap    int `koanf:"owned_sample_cap" validate:"min=1"`
	PlayedSampleCap   int `koanf:"played_sample_cap" validate:"min=1"`
	UnplayedSampleCap int `koanf:"unplayed_sample_cap" validate:"min=1"`

	// MiscThresholdPct merges buckets below this share in every population
	// into a synthetic "misc" bucket.
	MiscThresholdPct float64 `koanf:"misc_threshold_pct" validate:"min=0,max=100"`

	// MinFetchRatio is the storefront fetch success ratio below which the
	// response carries a reduced-accuracy warning.
	MinFetchRatio float64 `koanf:"min_fetch_ratio" validate:"min=0,max=1"`

	// HourWeighted weights played-population counts by playtime hours
	// instead of raw item counts.
	HourWeighted bool `koanf:"hour_weighted"`
}

// LeaderboardConfig configures the friends leaderboard aggregator.
type LeaderboardConfig struct {
	// MaxFriends bounds how many friends are considered.
	MaxFriends int `koanf:"max_friends" validate:"min=1"`

	// MaxEntries bounds the returned ranked list.
	MaxEntries int `koanf:"max_entries" validate:"min=1"`

	// Concurrency bounds parallel per-friend library fetches.
	Concurrency int `koanf:"concurrency" validate:"min=1,max=16"`

	// ExcludeSaturated drops entries pinned at the score cap, which are
	// almost always privacy-broken accounts rather than real libraries.
	ExcludeSaturated bool `koanf:"exclude_saturated"`
}

// SecurityConfig configures the HTTP middleware.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These are the
// production tuning values; deployments override via file or env.
func defaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			APIKey:             "",
			WebAPIURL:          "https://api.steampowered.com",
			StoreAPIURL:        "https://store.steampowered.com",
			Timeout:            15 * time.Second,
			OwnedGamesTTL:      5 * time.Minute,
			StoreTTL:           24 * time.Hour,
			BatchWorkers:       5,
			BatchRatePerSecond: 4,
			BatchJitterMax:     350 * time.Millisecond,
			MaxRetries:         5,
			RetryBaseDelay:     1 * time.Second,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8480,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Scoring: ScoringConfig{
			PlayedThresholdMinutes: 60,
			AbandonedWeight:        0.5,
			MultiplierFloor:        0.65,
			MultiplierSpan:         0.35,
			ReferenceLibrarySize:   500,
			ScoreCap:               99.9,
			RecentWindowDays:       30,
			SampleSize:             30,
			BacklogHoursPerGame:    10,
		},
		Affinity: AffinityConfig{
			OwnedSampleCap:    60,
			PlayedSampleCap:   40,
			UnplayedSampleCap: 40,
			MiscThresholdPct:  5.0,
			MinFetchRatio:     0.5,
			HourWeighted:      true,
		},
		Leaderboard: LeaderboardConfig{
			MaxFriends:       50,
			MaxEntries:       10,
			Concurrency:      4,
			ExcludeSaturated: true,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
