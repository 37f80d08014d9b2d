package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/config"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/skill"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newMatchupService(t *testing.T, players ...domain.Player) *MatchupService {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewPlayerRepository(db, zerolog.Nop())
	ctx := context.Background()
	for i := range players {
		if err := repo.Upsert(ctx, &players[i]); err != nil {
			t.Fatalf("seed player %d: %v", players[i].PID, err)
		}
	}
	return NewMatchupService(repo, skill.DefaultQualityConfig(), zerolog.Nop())
}

func testPlayer(pid int64, mu, sigma float64) domain.Player {
	return domain.Player{
		PID: pid, Name: "p", Mu: mu, Sigma: sigma,
		RatingValue: mu - 3*sigma, UpdatedAt: time.Now().UTC(),
	}
}

func TestMatchupQuality(t *testing.T) {
	svc := newMatchupService(t,
		testPlayer(1, 25, 8),
		testPlayer(2, 25, 8),
		testPlayer(3, 40, 2),
	)
	ctx := context.Background()

	got, err := svc.Quality(ctx, [][]int64{{1, 2}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	if got < 0 || got > 1 {
		t.Errorf("quality = %v, want in [0,1]", got)
	}
}

func TestMatchupQualityShapeErrors(t *testing.T) {
	svc := newMatchupService(t, testPlayer(1, 25, 8))
	ctx := context.Background()

	for _, test := range []struct {
		name  string
		teams [][]int64
	}{
		{"no teams", nil},
		{"empty team", [][]int64{{1}, {}}},
	} {
		_, err := svc.Quality(ctx, test.teams)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("%s: error = %v, want ErrInvalidRequest", test.name, err)
		}
	}
}

func TestMatchupQualityUnknownPlayer(t *testing.T) {
	svc := newMatchupService(t, testPlayer(1, 25, 8))

	_, err := svc.Quality(context.Background(), [][]int64{{1}, {999}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMatchupQualityBrokenRating(t *testing.T) {
	// Sigma must be positive; a zero-sigma row is a data problem, not a
	// caller mistake.
	svc := newMatchupService(t,
		testPlayer(1, 25, 8),
		domain.Player{PID: 2, Name: "broken", Mu: 25, Sigma: 0, RatingValue: 25, UpdatedAt: time.Now().UTC()},
	)

	_, err := svc.Quality(context.Background(), [][]int64{{1}, {2}})
	if !errors.Is(err, domain.ErrDataIntegrity) {
		t.Errorf("error = %v, want ErrDataIntegrity", err)
	}
}

func TestForecastFavourite(t *testing.T) {
	svc := newMatchupService(t,
		testPlayer(1, 40, 2), // value 34
		testPlayer(2, 25, 8), // value 1
	)

	forecast, err := svc.Forecast(context.Background(), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if forecast.Favourite == nil || *forecast.Favourite != 1 {
		t.Errorf("favourite = %v, want 1", forecast.Favourite)
	}
	if forecast.Quality < 0 || forecast.Quality > 1 {
		t.Errorf("quality = %v, want in [0,1]", forecast.Quality)
	}
}

func TestForecastFavouriteByValueNotMu(t *testing.T) {
	// Higher mean but huge uncertainty loses the value comparison.
	svc := newMatchupService(t,
		testPlayer(1, 30, 9), // value 3
		testPlayer(2, 25, 4), // value 13
	)

	forecast, err := svc.Forecast(context.Background(), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if forecast.Favourite == nil || *forecast.Favourite != 2 {
		t.Errorf("favourite = %v, want 2", forecast.Favourite)
	}
}

func TestForecastTieHasNoFavourite(t *testing.T) {
	svc := newMatchupService(t,
		testPlayer(1, 25, 8),
		testPlayer(2, 25, 8),
	)

	forecast, err := svc.Forecast(context.Background(), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if forecast.Favourite != nil {
		t.Errorf("favourite = %v, want nil on exact tie", *forecast.Favourite)
	}
}

func TestForecastSamePlayer(t *testing.T) {
	svc := newMatchupService(t, testPlayer(1, 25, 8))

	_, err := svc.Forecast(context.Background(), 1, 1)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestForecastUnknownPlayer(t *testing.T) {
	svc := newMatchupService(t, testPlayer(1, 25, 8))

	_, err := svc.Forecast(context.Background(), 1, 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
