// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package value

import (
	"context"
	"reflect"
	"testing"

	"github.com/DrawedC/steam-shame/internal/steam"
)

type fakeStore struct {
	details map[int]*steam.AppDetails
	batches [][]int
}

func (f *fakeStore) GetAppDetails(_ context.Context, appID int) *steam.AppDetails {
	return f.details[appID]
}

func (f *fakeStore) GetAppDetailsBatch(_ context.Context, appIDs []int) map[int]*steam.AppDetails {
	f.batches = append(f.batches, appIDs)
	out := make(map[int]*steam.AppDetails)
	for _, id := range appIDs {
		if d, ok := f.details[id]; ok {
			out[id] = d
		}
	}
	return out
}

func priced(appID int, usd float64) *steam.AppDetails {
	return &steam.AppDetails{AppID: appID, PriceUSD: &usd}
}

func TestEstimateFullScan(t *testing.T) {
	store := &fakeStore{details: map[int]*steam.AppDetails{
		1: priced(1, 19.99),
		2: priced(2, 9.99),
		3: priced(3, 29.99),
	}}
	games := []steam.OwnedGame{
		{AppID: 1, PlaytimeForever: 100},
		{AppID: 2, PlaytimeForever: 0},
		{AppID: 3, PlaytimeForever: 0},
	}

	est := NewEstimator(store).Estimate(context.Background(), "100", games, true)

	if est.IsEstimate {
		t.Error("full scan must not be flagged as an estimate")
	}
	if est.PlayedValue != 20 {
		t.Errorf("PlayedValue = %d, want 20", est.PlayedValue)
	}
	if est.UnplayedValue != 40 {
		t.Errorf("UnplayedValue = %d, want 40", est.UnplayedValue)
	}
	if est.LibraryValue != 60 {
		t.Errorf("LibraryValue = %d, want 60", est.LibraryValue)
	}
	if est.PlayedSampled != 1 || est.UnplayedSampled != 2 {
		t.Errorf("unexpected sampled counts: %d/%d", est.PlayedSampled, est.UnplayedSampled)
	}
}

func TestEstimateExtrapolates(t *testing.T) {
	// 100 unplayed games, all $10, but the sample only covers 40 of them.
	// The extrapolated pool value must still be ~$1000.
	store := &fakeStore{details: map[int]*steam.AppDetails{}}
	games := make([]steam.OwnedGame, 100)
	for i := range games {
		games[i] = steam.OwnedGame{AppID: i + 1}
		store.details[i+1] = priced(i+1, 10)
	}

	est := NewEstimator(store).Estimate(context.Background(), "100", games, false)

	if !est.IsEstimate {
		t.Error("sampled mode must be flagged as an estimate")
	}
	if est.UnplayedSampled != sampleCap {
		t.Errorf("expected %d sampled, got %d", sampleCap, est.UnplayedSampled)
	}
	if est.UnplayedValue != 1000 {
		t.Errorf("UnplayedValue = %d, want 1000", est.UnplayedValue)
	}
}

func TestEstimateDeterministicPerIdentity(t *testing.T) {
	store := &fakeStore{details: map[int]*steam.AppDetails{}}
	games := make([]steam.OwnedGame, 200)
	for i := range games {
		games[i] = steam.OwnedGame{AppID: i + 1}
		// Spread of prices so different samples give different values.
		store.details[i+1] = priced(i+1, float64(1+i%60))
	}

	e := NewEstimator(store)
	first := e.Estimate(context.Background(), "76561198000000001", games, false)
	second := e.Estimate(context.Background(), "76561198000000001", games, false)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated estimates for the same identity must agree")
	}
}

func TestEstimateSkipsUnknownPrices(t *testing.T) {
	// Two games priced, one unknown: the average uses only known prices and
	// extrapolates across all three.
	store := &fakeStore{details: map[int]*steam.AppDetails{
		1: priced(1, 10),
		2: priced(2, 20),
		3: {AppID: 3}, // no price block
	}}
	games := []steam.OwnedGame{
		{AppID: 1}, {AppID: 2}, {AppID: 3},
	}

	est := NewEstimator(store).Estimate(context.Background(), "100", games, false)

	if est.UnplayedSampled != 2 {
		t.Errorf("expected 2 priced games, got %d", est.UnplayedSampled)
	}
	// avg(10, 20) * 3 = 45
	if est.UnplayedValue != 45 {
		t.Errorf("UnplayedValue = %d, want 45", est.UnplayedValue)
	}
}

func TestEstimateEmptyLibrary(t *testing.T) {
	store := &fakeStore{details: map[int]*steam.AppDetails{}}

	est := NewEstimator(store).Estimate(context.Background(), "100", nil, false)
	if est.LibraryValue != 0 || est.PlayedCount != 0 || est.UnplayedCount != 0 {
		t.Errorf("unexpected estimate for empty library: %+v", est)
	}
}

func TestEstimateNoPricesResolved(t *testing.T) {
	store := &fakeStore{details: map[int]*steam.AppDetails{}}
	games := []steam.OwnedGame{{AppID: 1}, {AppID: 2, PlaytimeForever: 50}}

	est := NewEstimator(store).Estimate(context.Background(), "100", games, false)
	if est.LibraryValue != 0 {
		t.Errorf("no resolved prices should value to 0, got %d", est.LibraryValue)
	}
}
