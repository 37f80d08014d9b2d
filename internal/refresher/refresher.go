// Package refresher mirrors the official league standings from UberNet on a
// schedule. It only copies externally assigned ranks; nothing here touches
// skill ratings.
package refresher

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-co-op/gocron/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ladder-tracker/internal/api"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
)

type Refresher struct {
	client    *api.UberNetClient
	boards    *repository.LeaderboardRepository
	interval  gocron.JobDefinition
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

func New(client *api.UberNetClient, boards *repository.LeaderboardRepository, cfg *config.Config, logger zerolog.Logger) (*Refresher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Refresher{
		client:    client,
		boards:    boards,
		interval:  gocron.DurationJob(cfg.RefreshInterval),
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Start schedules the periodic refresh and kicks one run immediately.
// Without an upstream URL the scheduler never starts.
func (r *Refresher) Start() error {
	if !r.client.Enabled() {
		r.logger.Info().Msg("no upstream leaderboard configured, refresher disabled")
		return nil
	}

	_, err := r.scheduler.NewJob(
		r.interval,
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshRunTimeout)
			defer cancel()
			if err := r.Run(ctx); err != nil {
				r.logger.Error().Err(err).Msg("leaderboard refresh failed")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}

	r.scheduler.Start()
	return nil
}

func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

// Run fetches all five leagues concurrently and swaps the stored standings
// in one transaction, so readers see either the old board or the new one.
func (r *Refresher) Run(ctx context.Context) error {
	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}
	logger := r.logger.With().Str("run_id", runID).Logger()
	logger.Info().Msg("refreshing leaderboard")

	var mu sync.Mutex
	var entries []domain.LeaderBoardEntry
	var accounts []domain.UberAccount

	g, gctx := errgroup.WithContext(ctx)
	for _, league := range domain.Leagues {
		g.Go(func() error {
			board, err := r.client.GetLeaderboard(gctx, league)
			if err != nil {
				return fmt.Errorf("fetch %s leaderboard: %w", league, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, e := range board.Entries {
				entries = append(entries, domain.LeaderBoardEntry{
					League:    league,
					Rank:      e.Rank,
					UberID:    e.UberID,
					LastMatch: e.LastMatch,
				})
				accounts = append(accounts, domain.UberAccount{
					UberID:      e.UberID,
					DisplayName: e.DisplayName,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := r.boards.UpsertAccounts(ctx, accounts); err != nil {
		return err
	}
	if err := r.boards.ReplaceAll(ctx, entries); err != nil {
		return err
	}

	logger.Info().Int("entries", len(entries)).Msg("leaderboard refreshed")
	return nil
}
