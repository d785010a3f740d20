// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMissingAPIKey indicates the Steam Web API key was not configured.
var ErrMissingAPIKey = errors.New("steam.api_key is required (set STEAM_API_KEY or STEAMSHAME_STEAM__API_KEY)")

// Validate checks the configuration for consistency. Struct tags cover the
// per-field constraints; cross-field rules are checked manually.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Steam.APIKey) == "" {
		return ErrMissingAPIKey
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	// The multiplier must be able to reach full weight, otherwise the score
	// cap can never be approached by large libraries.
	if cfg.Scoring.MultiplierFloor+cfg.Scoring.MultiplierSpan < 1.0 {
		return fmt.Errorf("invalid config: scoring multiplier_floor+multiplier_span must reach 1.0, got %.2f",
			cfg.Scoring.MultiplierFloor+cfg.Scoring.MultiplierSpan)
	}

	if cfg.Steam.BatchRatePerSecond <= 0 {
		return errors.New("invalid config: steam.batch_rate_per_second must be positive")
	}

	return nil
}
