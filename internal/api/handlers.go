// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/DrawedC/steam-shame/internal/affinity"
	"github.com/DrawedC/steam-shame/internal/badges"
	"github.com/DrawedC/steam-shame/internal/leaderboard"
	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/shame"
	"github.com/DrawedC/steam-shame/internal/steam"
	"github.com/DrawedC/steam-shame/internal/value"
)

var (
	steamIDPattern    = regexp.MustCompile(`^\d{17}$`)
	profileURLPattern = regexp.MustCompile(`steamcommunity\.com/(?:profiles|id)/([^/?]+)`)
)

// Handlers carries the service dependencies for all API endpoints.
type Handlers struct {
	client     steam.ClientInterface
	analyzer   *shame.Analyzer
	sampler    *affinity.Sampler
	estimator  *value.Estimator
	aggregator *leaderboard.Aggregator
}

// NewHandlers wires the API handlers to their services.
func NewHandlers(
	client steam.ClientInterface,
	analyzer *shame.Analyzer,
	sampler *affinity.Sampler,
	estimator *value.Estimator,
	aggregator *leaderboard.Aggregator,
) *Handlers {
	return &Handlers{
		client:     client,
		analyzer:   analyzer,
		sampler:    sampler,
		estimator:  estimator,
		aggregator: aggregator,
	}
}

// profileInfo is the public slice of a player summary.
type profileInfo struct {
	SteamID    string `json:"steam_id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	AvatarFull string `json:"avatar_full"`
	ProfileURL string `json:"profile_url"`
}

func toProfileInfo(p *steam.PlayerSummary) profileInfo {
	return profileInfo{
		SteamID:    p.SteamID,
		Name:       p.PersonaName,
		Avatar:     p.Avatar,
		AvatarFull: p.AvatarFull,
		ProfileURL: p.ProfileURL,
	}
}

// mapClientError translates a Steam client failure into the right error
// response. Expected outcomes get their own codes; everything else is an
// upstream failure.
func mapClientError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, steam.ErrProfileNotFound):
		rw.NotFound("Could not find that Steam profile.")
	case errors.Is(err, steam.ErrVanityNotResolved):
		rw.NotFound("Could not find that Steam profile. Try pasting your full Steam profile URL.")
	case errors.Is(err, steam.ErrRateLimited):
		rw.Error(http.StatusServiceUnavailable, ErrCodeProviderUnavailable,
			"Steam is rate limiting requests. Try again in a minute.")
	default:
		log := logging.Ctx(r.Context())
		log.Error().Err(err).Msg("Steam API request failed")
		rw.ProviderUnavailable("Steam API request failed. Try again shortly.")
	}
}

// resolveRequest is the POST /resolve body.
type resolveRequest struct {
	Input string `json:"input"`
}

// Resolve turns free-form user input (a 17-digit SteamID, a profile URL, or
// a vanity name) into a canonical SteamID.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Request body must be JSON with an \"input\" field")
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		rw.BadRequest("Enter a SteamID, profile URL, or vanity name")
		return
	}

	steamID, err := h.resolveInput(r.Context(), input)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}

	rw.Success(map[string]string{"steam_id": steamID})
}

// resolveInput implements the three accepted input forms.
func (h *Handlers) resolveInput(ctx context.Context, input string) (string, error) {
	if steamIDPattern.MatchString(input) {
		return input, nil
	}
	if strings.Contains(input, "steamcommunity.com") {
		m := profileURLPattern.FindStringSubmatch(input)
		if m == nil {
			return "", steam.ErrVanityNotResolved
		}
		if steamIDPattern.MatchString(m[1]) {
			return m[1], nil
		}
		return h.client.ResolveVanityURL(ctx, m[1])
	}
	return h.client.ResolveVanityURL(ctx, input)
}

// steamIDParam extracts and validates the {steamID} route parameter. Writes
// the error response itself and returns "" when invalid.
func steamIDParam(rw *ResponseWriter, r *http.Request) string {
	id := chi.URLParam(r, "steamID")
	if !steamIDPattern.MatchString(id) {
		rw.BadRequest("steamID must be a 17-digit SteamID64")
		return ""
	}
	return id
}

// analyzeResponse is the payload of GET /analyze/{steamID}.
type analyzeResponse struct {
	Profile profileInfo         `json:"profile"`
	Stats   *shame.LibraryStats `json:"stats"`

	// Badges holds only the cheap subset here; the full set arrives with
	// the slower affinity endpoint.
	Badges []badges.Badge `json:"badges"`
}

// Analyze runs the core library analysis.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	steamID := steamIDParam(rw, r)
	if steamID == "" {
		return
	}

	profile, err := h.client.GetPlayerSummary(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}
	if !profile.IsPublic() {
		rw.ProfilePrivate()
		return
	}

	games, err := h.client.GetOwnedGames(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}

	stats := h.analyzer.Analyze(games, nil)
	if stats == nil {
		rw.NoGames()
		return
	}

	rw.Success(analyzeResponse{
		Profile: toProfileInfo(profile),
		Stats:   stats,
		Badges:  badges.Cheap(badges.Input{Stats: stats, Games: games}),
	})
}

// affinityResponse is the payload of GET /affinity/{steamID}.
type affinityResponse struct {
	*affinity.Result

	// Badges is the full set, including metadata-dependent rules, since the
	// affinity sampler has already paid for the storefront batch.
	Badges []badges.Badge `json:"badges"`
}

// Affinity computes the genre-affinity report plus the full badge set.
func (h *Handlers) Affinity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	steamID := steamIDParam(rw, r)
	if steamID == "" {
		return
	}

	games, err := h.client.GetOwnedGames(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}
	if len(games) == 0 {
		rw.NoGames()
		return
	}

	result := h.sampler.Sample(r.Context(), steamID, games)
	stats := h.analyzer.Analyze(games, nil)

	rw.Success(affinityResponse{
		Result: result,
		Badges: badges.Detect(badges.Input{
			Stats:   stats,
			Details: result.Details,
			Games:   games,
		}),
	})
}

// Value estimates the library's price tag. ?full=1 prices every game instead
// of extrapolating from a sample.
func (h *Handlers) Value(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	steamID := steamIDParam(rw, r)
	if steamID == "" {
		return
	}
	fullScan := r.URL.Query().Get("full") == "1"

	games, err := h.client.GetOwnedGames(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}
	if len(games) == 0 {
		rw.NoGames()
		return
	}

	rw.Success(h.estimator.Estimate(r.Context(), steamID, games, fullScan))
}

// Leaderboard ranks the user against their friends.
func (h *Handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	steamID := steamIDParam(rw, r)
	if steamID == "" {
		return
	}

	profile, err := h.client.GetPlayerSummary(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}
	if !profile.IsPublic() {
		rw.ProfilePrivate()
		return
	}

	board, err := h.aggregator.Build(r.Context(), steamID)
	if err != nil {
		mapClientError(rw, r, err)
		return
	}

	rw.Success(board)
}
