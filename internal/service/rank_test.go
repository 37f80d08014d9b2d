package service

import (
	"errors"
	"testing"
	"time"

	"ladder-tracker/internal/domain"
)

func TestRankAmong(t *testing.T) {
	for _, test := range []struct {
		name   string
		target float64
		values []float64
		want   int
	}{
		{"sole player", 10, []float64{10}, 1},
		{"top of set", 10, []float64{10, 8, 10}, 1},
		{"below tie group", 8, []float64{10, 8, 10}, 3},
		{"middle", 5, []float64{10, 5, 1}, 2},
		{"bottom", -3, []float64{10, 5, -3}, 3},
		{"all equal", 7, []float64{7, 7, 7}, 1},
	} {
		got, err := rankAmong(test.target, test.values)
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: rankAmong(%v, %v) = %d, want %d", test.name, test.target, test.values, got, test.want)
		}
	}
}

func TestRankAmongNotFound(t *testing.T) {
	_, err := rankAmong(42, []float64{10, 8})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRankAmongMonotonic(t *testing.T) {
	values := []float64{30, 25, 25, 17, 9, 9, 4}

	prevRank := 0
	for _, v := range values {
		got, err := rankAmong(v, values)
		if err != nil {
			t.Fatal(err)
		}
		if got < prevRank {
			t.Errorf("rank decreased to %d for value %v while target decreased", got, v)
		}
		prevRank = got
	}

	top, err := rankAmong(30, values)
	if err != nil {
		t.Fatal(err)
	}
	if top != 1 {
		t.Errorf("rank of maximum = %d, want 1", top)
	}
}

func TestRankAll(t *testing.T) {
	players := []domain.Player{
		{PID: 1, RatingValue: 10},
		{PID: 3, RatingValue: 10},
		{PID: 2, RatingValue: 8},
	}

	ranked := rankAll(players)

	wantRanks := []int{1, 1, 3}
	for i, want := range wantRanks {
		if ranked[i].Rank != want {
			t.Errorf("pid %d: rank = %d, want %d", ranked[i].Player.PID, ranked[i].Rank, want)
		}
	}
}

func TestRankAllMatchesCountingRule(t *testing.T) {
	players := []domain.Player{
		{PID: 1, RatingValue: 42},
		{PID: 2, RatingValue: 42},
		{PID: 3, RatingValue: 42},
		{PID: 4, RatingValue: 12},
		{PID: 5, RatingValue: 12},
		{PID: 6, RatingValue: 3},
	}

	values := make([]float64, len(players))
	for i, p := range players {
		values[i] = p.RatingValue
	}

	for i, rp := range rankAll(players) {
		want, err := rankAmong(players[i].RatingValue, values)
		if err != nil {
			t.Fatal(err)
		}
		if rp.Rank != want {
			t.Errorf("pid %d: batch rank %d != per-player rank %d", rp.Player.PID, rp.Rank, want)
		}
	}
}

func TestFilterActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := func(pid int64, updated time.Time) domain.RankedPlayer {
		return domain.RankedPlayer{Player: domain.Player{PID: pid, UpdatedAt: updated}}
	}

	fresh := entry(1, now.Add(-time.Hour))
	onCutoff := entry(2, now.Add(-7*24*time.Hour))
	stale := entry(3, now.Add(-7*24*time.Hour-time.Second))
	players := []domain.RankedPlayer{fresh, onCutoff, stale}

	for _, test := range []struct {
		name       string
		windowDays int
		wantPIDs   []int64
	}{
		{"zero window passes through", 0, []int64{1, 2, 3}},
		{"negative window passes through", -5, []int64{1, 2, 3}},
		{"week window drops strictly older", 7, []int64{1, 2}},
		{"tight window", 1, []int64{1}},
	} {
		got := filterActive(players, test.windowDays, now)
		if len(got) != len(test.wantPIDs) {
			t.Errorf("%s: kept %d players, want %d", test.name, len(got), len(test.wantPIDs))
			continue
		}
		for i, want := range test.wantPIDs {
			if got[i].Player.PID != want {
				t.Errorf("%s: player %d = pid %d, want %d", test.name, i, got[i].Player.PID, want)
			}
		}
	}
}

func TestFilterActiveDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	players := []domain.RankedPlayer{
		{Player: domain.Player{PID: 1, UpdatedAt: now.Add(-48 * time.Hour)}},
		{Player: domain.Player{PID: 2, UpdatedAt: now}},
	}

	filterActive(players, 1, now)

	if players[0].Player.PID != 1 || players[1].Player.PID != 2 {
		t.Error("filterActive reordered its input")
	}
}
