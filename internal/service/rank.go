package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/skill"
)

type RankService struct {
	players  *repository.PlayerRepository
	accounts *repository.LeaderboardRepository
	logger   zerolog.Logger
}

func NewRankService(players *repository.PlayerRepository, accounts *repository.LeaderboardRepository, logger zerolog.Logger) *RankService {
	return &RankService{players: players, accounts: accounts, logger: logger}
}

// RankOf resolves a player and returns their 1-based ordinal rank among all
// known players: one plus the number of strictly higher stored rating values.
// Equal values never push the rank down. The count runs in the store against
// the same snapshot the player row came from.
func (s *RankService) RankOf(ctx context.Context, pid int64) (*domain.RankedPlayer, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, pid)
	if err != nil {
		return nil, err
	}

	// Broken rating rows fail this request only.
	if _, err := skill.New(player.Mu, player.Sigma); err != nil {
		s.logger.Error().Int64("pid", pid).Float64("sigma", player.Sigma).Msg("stored rating fails invariant")
		return nil, err
	}

	higher, err := s.players.CountHigherRated(ctx, player.RatingValue)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("pid", pid).
		Float64("rating_value", player.RatingValue).
		Int("rank", higher+1).
		Msg("rank computed")

	return &domain.RankedPlayer{Player: *player, Rank: higher + 1}, nil
}

// Ladder returns players ordered by rating value descending, each with its
// global rank. activeDays > 0 keeps only players updated within that window;
// limit > 0 caps the result after filtering. Zero or negative disables either.
func (s *RankService) Ladder(ctx context.Context, limit, activeDays int, includeIDs bool) ([]domain.RankedPlayer, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	players, err := s.players.ListRanked(ctx)
	if err != nil {
		return nil, err
	}

	ranked := rankAll(players)
	ranked = filterActive(ranked, activeDays, time.Now().UTC())
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if includeIDs {
		if err := s.attachUberIDs(ctx, ranked); err != nil {
			return nil, err
		}
	}

	s.logger.Debug().
		Int("count", len(ranked)).
		Int("limit", limit).
		Int("active_days", activeDays).
		Msg("ladder assembled")

	return ranked, nil
}

func (s *RankService) attachUberIDs(ctx context.Context, ranked []domain.RankedPlayer) error {
	pids := make([]int64, len(ranked))
	for i, rp := range ranked {
		pids[i] = rp.Player.PID
	}

	ids, err := s.accounts.AccountsByPIDs(ctx, pids)
	if err != nil {
		return fmt.Errorf("attach uber ids: %w", err)
	}

	for i := range ranked {
		if id, ok := ids[ranked[i].Player.PID]; ok {
			v := id
			ranked[i].UberID = &v
		}
	}
	return nil
}

// rankAll assigns each player one plus the count of strictly greater rating
// values, given the slice sorted by rating value descending. Ties share a
// rank number; the player after a tie group counts every tied player above.
func rankAll(players []domain.Player) []domain.RankedPlayer {
	ranked := make([]domain.RankedPlayer, len(players))
	rank := 1
	for i, p := range players {
		if i > 0 && p.RatingValue < players[i-1].RatingValue {
			rank = i + 1
		}
		ranked[i] = domain.RankedPlayer{Player: p, Rank: rank}
	}
	return ranked
}

// rankAmong is the single-player counting rule: one plus the number of values
// strictly greater than target. A target absent from values is not found.
func rankAmong(target float64, values []float64) (int, error) {
	present := false
	higher := 0
	for _, v := range values {
		if v == target {
			present = true
		}
		if v > target {
			higher++
		}
	}
	if !present {
		return 0, fmt.Errorf("rating value %v not in known set: %w", target, domain.ErrNotFound)
	}
	return higher + 1, nil
}

// filterActive keeps players last updated within the window. A zero or
// negative window disables filtering entirely, it never empties the result.
func filterActive(ranked []domain.RankedPlayer, windowDays int, now time.Time) []domain.RankedPlayer {
	if windowDays <= 0 {
		return ranked
	}

	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	kept := ranked[:0:0]
	for _, rp := range ranked {
		if !rp.Player.UpdatedAt.Before(cutoff) {
			kept = append(kept, rp)
		}
	}
	return kept
}
