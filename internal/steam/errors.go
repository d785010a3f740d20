// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

import "errors"

var (
	// ErrProfileNotFound indicates GetPlayerSummaries returned no profile for
	// the requested SteamID.
	ErrProfileNotFound = errors.New("steam profile not found")

	// ErrVanityNotResolved indicates ResolveVanityURL reported no match for
	// the requested vanity name.
	ErrVanityNotResolved = errors.New("vanity url did not resolve to a steam id")

	// ErrRateLimited indicates the Steam Web API kept returning HTTP 429
	// after all retries were exhausted.
	ErrRateLimited = errors.New("steam api rate limit exceeded")

	// ErrUnauthorized indicates the API key was rejected by the Steam Web API.
	ErrUnauthorized = errors.New("steam api key rejected")
)
