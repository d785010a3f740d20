// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

// VisibilityPublic is the communityvisibilitystate value for a public profile.
// Any other value means game details are hidden from third parties.
const VisibilityPublic = 3

// OwnedGame is one entry of a user's library as reported by
// IPlayerService/GetOwnedGames. Counters default to zero when absent.
// Immutable once fetched; lives for one analysis request.
type OwnedGame struct {
	AppID           int    `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int    `json:"playtime_forever"` // minutes, lifetime
	Playtime2Weeks  int    `json:"playtime_2weeks"`  // minutes, trailing two weeks
	RtimeLastPlayed int64  `json:"rtime_last_played"` // epoch seconds, 0 = never
}

// ownedGamesResponse is the wire wrapper of GetOwnedGames.
type ownedGamesResponse struct {
	Response struct {
		GameCount int         `json:"game_count"`
		Games     []OwnedGame `json:"games"`
	} `json:"response"`
}

// PlayerSummary is a profile as reported by ISteamUser/GetPlayerSummaries.
type PlayerSummary struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	Avatar                   string `json:"avatar"`
	AvatarFull               string `json:"avatarfull"`
	ProfileURL               string `json:"profileurl"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
}

// IsPublic reports whether the profile exposes game details to third parties.
func (p PlayerSummary) IsPublic() bool {
	return p.CommunityVisibilityState == VisibilityPublic
}

// playerSummariesResponse is the wire wrapper of GetPlayerSummaries.
type playerSummariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

// vanityResponse is the wire wrapper of ResolveVanityURL.
type vanityResponse struct {
	Response struct {
		Success int    `json:"success"` // 1 = resolved
		SteamID string `json:"steamid"`
	} `json:"response"`
}

// Friend is one entry of a user's friends list.
type Friend struct {
	SteamID      string `json:"steamid"`
	Relationship string `json:"relationship"`
	FriendSince  int64  `json:"friend_since"`
}

// friendListResponse is the wire wrapper of GetFriendList.
type friendListResponse struct {
	FriendsList struct {
		Friends []Friend `json:"friends"`
	} `json:"friendslist"`
}

// AppDetails is the commerce metadata for one app, normalized from the
// storefront appdetails payload. A nil *AppDetails means "unknown" and must
// never be treated as zero or free.
type AppDetails struct {
	AppID           int
	Name            string
	IsFree          bool
	Genres          []string // raw genre descriptions, e.g. "Action"
	Categories      []string // raw category descriptions, e.g. "Co-op"
	Recommendations int      // aggregate review count, popularity proxy

	// PriceUSD is the current price in whole dollars. Nil when the price is
	// unavailable, in a foreign currency, or implausibly high.
	PriceUSD *float64
}

// Tags returns genres and categories as one slice, the unit the genre
// classifier consumes.
func (d *AppDetails) Tags() []string {
	tags := make([]string, 0, len(d.Genres)+len(d.Categories))
	tags = append(tags, d.Genres...)
	tags = append(tags, d.Categories...)
	return tags
}

// storefront wire format: {"<appid>": {"success": bool, "data": {...}}}

type storeAppEntry struct {
	Success bool         `json:"success"`
	Data    storeAppData `json:"data"`
}

type storeAppData struct {
	Name          string `json:"name"`
	IsFree        bool   `json:"is_free"`
	PriceOverview *struct {
		Currency string `json:"currency"`
		Initial  int    `json:"initial"` // cents
		Final    int    `json:"final"`   // cents, after discount
	} `json:"price_overview"`
	Genres []struct {
		Description string `json:"description"`
	} `json:"genres"`
	Categories []struct {
		Description string `json:"description"`
	} `json:"categories"`
	Recommendations struct {
		Total int `json:"total"`
	} `json:"recommendations"`
}

// maxReasonablePriceUSD guards against regional-pricing artifacts that show
// up as triple-digit "prices" and would distort valuation estimates.
const maxReasonablePriceUSD = 80.0

// toAppDetails normalizes a storefront payload into AppDetails.
func (d storeAppData) toAppDetails(appID int) *AppDetails {
	details := &AppDetails{
		AppID:           appID,
		Name:            d.Name,
		IsFree:          d.IsFree,
		Recommendations: d.Recommendations.Total,
	}
	for _, g := range d.Genres {
		details.Genres = append(details.Genres, g.Description)
	}
	for _, c := range d.Categories {
		details.Categories = append(details.Categories, c.Description)
	}
	details.PriceUSD = d.extractUSDPrice()
	return details
}

// extractUSDPrice returns the price in USD dollars, or nil when unknown:
// no price block, non-USD currency, or above maxReasonablePriceUSD.
func (d storeAppData) extractUSDPrice() *float64 {
	p := d.PriceOverview
	if p == nil {
		return nil
	}
	if p.Currency != "" && p.Currency != "USD" {
		return nil
	}
	cents := p.Final
	if cents == 0 {
		cents = p.Initial
	}
	dollars := float64(cents) / 100
	if dollars > maxReasonablePriceUSD {
		return nil
	}
	return &dollars
}
