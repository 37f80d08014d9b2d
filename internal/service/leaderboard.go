package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
)

type LeaderboardService struct {
	boards *repository.LeaderboardRepository
	logger zerolog.Logger
}

func NewLeaderboardService(boards *repository.LeaderboardRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{boards: boards, logger: logger}
}

// Aggregate groups the joined standings by league. Every one of the five
// leagues is present in the result, keyed lower-case, even when empty, and
// entries keep their official rank order. Ranks are never recomputed.
func (s *LeaderboardService) Aggregate(ctx context.Context) (map[string][]domain.Standing, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	standings, err := s.boards.ListJoined(ctx)
	if err != nil {
		return nil, err
	}

	grouped, err := groupStandings(standings)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("entries", len(standings)).Msg("leaderboard aggregated")
	return grouped, nil
}

// League returns one league's standings by official rank. Unknown league
// names are a not-found condition, not an error.
func (s *LeaderboardService) League(ctx context.Context, name string) ([]domain.Standing, error) {
	if !domain.ValidLeague(name) {
		return nil, fmt.Errorf("league %q: %w", name, domain.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	standings, err := s.boards.ListLeagueJoined(ctx, name)
	if err != nil {
		return nil, err
	}
	if standings == nil {
		standings = []domain.Standing{}
	}
	return standings, nil
}

// groupStandings buckets entries into the fixed leagues, matching stored
// labels case-insensitively, and sorts each bucket by official rank so the
// result does not depend on upstream ordering. A stored label outside the
// five leagues is a broken row.
func groupStandings(standings []domain.Standing) (map[string][]domain.Standing, error) {
	grouped := make(map[string][]domain.Standing, len(domain.Leagues))
	for _, league := range domain.Leagues {
		grouped[league] = []domain.Standing{}
	}

	for _, st := range standings {
		key := strings.ToLower(st.League)
		if _, ok := grouped[key]; !ok {
			return nil, fmt.Errorf("stored league %q: %w", st.League, domain.ErrDataIntegrity)
		}
		grouped[key] = append(grouped[key], st)
	}

	for _, league := range domain.Leagues {
		bucket := grouped[league]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Rank < bucket[j].Rank })
	}

	return grouped, nil
}
