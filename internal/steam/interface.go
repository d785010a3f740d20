// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

import "context"

// ClientInterface is the Web API surface consumed by the analysis services.
// Satisfied by *Client; implemented by fakes in tests.
type ClientInterface interface {
	GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error)
	GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]PlayerSummary, error)
	GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error)
	ResolveVanityURL(ctx context.Context, vanityName string) (string, error)
	GetFriendList(ctx context.Context, steamID string) ([]Friend, error)
}

// StoreInterface is the storefront surface consumed by the genre, affinity,
// and valuation services.
type StoreInterface interface {
	GetAppDetails(ctx context.Context, appID int) *AppDetails
	GetAppDetailsBatch(ctx context.Context, appIDs []int) map[int]*AppDetails
}

var (
	_ ClientInterface = (*Client)(nil)
	_ StoreInterface  = (*StoreClient)(nil)
)
