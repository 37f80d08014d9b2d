package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/skill"
)

type MatchupService struct {
	players *repository.PlayerRepository
	cfg     skill.QualityConfig
	logger  zerolog.Logger
}

func NewMatchupService(players *repository.PlayerRepository, cfg skill.QualityConfig, logger zerolog.Logger) *MatchupService {
	return &MatchupService{players: players, cfg: cfg, logger: logger}
}

// Quality resolves the given teams of pids to ratings and scores the matchup
// balance in [0,1]. Shape violations are invalid requests; an unresolvable
// pid is not found, which is a different outcome.
func (s *MatchupService) Quality(ctx context.Context, teams [][]int64) (float64, error) {
	if len(teams) == 0 {
		return 0, fmt.Errorf("at least one team required: %w", domain.ErrInvalidRequest)
	}
	for i, team := range teams {
		if len(team) == 0 {
			return 0, fmt.Errorf("team %d is empty: %w", i, domain.ErrInvalidRequest)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rated, err := s.resolveTeams(ctx, teams)
	if err != nil {
		return 0, err
	}

	quality, err := skill.Quality(rated, s.cfg)
	if err != nil {
		return 0, err
	}

	s.logger.Debug().Int("teams", len(teams)).Float64("quality", quality).Msg("matchup scored")
	return quality, nil
}

// Forecast scores a two-player matchup and names the favourite by comparing
// the players' rating values. An exact tie means no favourite.
func (s *MatchupService) Forecast(ctx context.Context, a, b int64) (*domain.Forecast, error) {
	if a == b {
		return nil, fmt.Errorf("forecast needs two distinct players: %w", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	playerA, err := s.players.Get(ctx, a)
	if err != nil {
		return nil, err
	}
	playerB, err := s.players.Get(ctx, b)
	if err != nil {
		return nil, err
	}

	ratingA, err := skill.New(playerA.Mu, playerA.Sigma)
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", a, err)
	}
	ratingB, err := skill.New(playerB.Mu, playerB.Sigma)
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", b, err)
	}

	quality, err := skill.Quality([][]skill.Rating{{ratingA}, {ratingB}}, s.cfg)
	if err != nil {
		return nil, err
	}

	forecast := &domain.Forecast{PlayerA: *playerA, PlayerB: *playerB, Quality: quality}
	switch {
	case ratingA.Value() > ratingB.Value():
		forecast.Favourite = &playerA.PID
	case ratingB.Value() > ratingA.Value():
		forecast.Favourite = &playerB.PID
	}

	s.logger.Debug().
		Int64("player_a", a).
		Int64("player_b", b).
		Float64("quality", quality).
		Msg("forecast computed")

	return forecast, nil
}

func (s *MatchupService) resolveTeams(ctx context.Context, teams [][]int64) ([][]skill.Rating, error) {
	var pids []int64
	for _, team := range teams {
		pids = append(pids, team...)
	}

	players, err := s.players.RatingsByIDs(ctx, pids)
	if err != nil {
		return nil, err
	}

	rated := make([][]skill.Rating, len(teams))
	for i, team := range teams {
		rated[i] = make([]skill.Rating, len(team))
		for j, pid := range team {
			p, ok := players[pid]
			if !ok {
				return nil, fmt.Errorf("player %d: %w", pid, domain.ErrNotFound)
			}
			r, err := skill.New(p.Mu, p.Sigma)
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", pid, err)
			}
			rated[i][j] = r
		}
	}
	return rated, nil
}
