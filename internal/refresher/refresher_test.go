package refresher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/api"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/repository"
)

func TestRunMirrorsUpstreamStandings(t *testing.T) {
	lastMatch := time.Date(2026, 2, 20, 16, 45, 0, 0, time.UTC)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		league := r.URL.Query().Get("League")
		resp := api.LeaderboardResponse{League: league}
		if league == "uber" {
			resp.Entries = []api.LeaderboardEntry{
				{Rank: 1, UberID: 42, DisplayName: "TopDog", LastMatch: lastMatch},
				{Rank: 2, UberID: 43, DisplayName: "Runner", LastMatch: lastMatch},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer upstream.Close()

	cfg := &config.Config{
		DBPath:          filepath.Join(t.TempDir(), "test.db"),
		UberAPIURL:      upstream.URL,
		RefreshInterval: time.Hour,
	}

	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	boards := repository.NewLeaderboardRepository(db, zerolog.Nop())
	r, err := New(api.NewUberNetClient(cfg), boards, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	standings, err := boards.ListLeagueJoined(context.Background(), "uber")
	if err != nil {
		t.Fatal(err)
	}
	if len(standings) != 2 {
		t.Fatalf("got %d standings, want 2", len(standings))
	}
	if standings[0].Rank != 1 || standings[0].UberID != 42 || standings[0].Name != "TopDog" {
		t.Errorf("standings[0] = %+v", standings[0])
	}
	if !standings[0].LastMatch.Equal(lastMatch) {
		t.Errorf("LastMatch = %v, want %v", standings[0].LastMatch, lastMatch)
	}

	// A second run replaces rather than appends.
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	standings, err = boards.ListLeagueJoined(context.Background(), "uber")
	if err != nil {
		t.Fatal(err)
	}
	if len(standings) != 2 {
		t.Errorf("after second run got %d standings, want 2", len(standings))
	}
}
