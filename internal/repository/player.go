package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/domain"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = "pid, name, mu, sigma, rating_value, updated_at"

func scanPlayer(row interface{ Scan(dest ...any) error }) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.PID, &p.Name, &p.Mu, &p.Sigma, &p.RatingValue, &p.UpdatedAt)
	return p, err
}

func (r *PlayerRepository) Get(ctx context.Context, pid int64) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE pid = ?", pid)

	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", pid, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", pid, err)
	}
	return &p, nil
}

// CountHigherRated counts players whose stored rating value is strictly
// greater than value. The ordinal rank is this count plus one.
func (r *PlayerRepository) CountHigherRated(ctx context.Context, value float64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players WHERE rating_value > ?", value).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count higher rated: %w", err)
	}
	return count, nil
}

// ListRanked returns all players ordered by rating value descending. Activity
// filtering and limiting happen in the service so ranks stay global.
func (r *PlayerRepository) ListRanked(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players ORDER BY rating_value DESC, pid ASC")
	if err != nil {
		return nil, fmt.Errorf("list ranked players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ranked player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ranked players: %w", err)
	}

	r.logger.Debug().Int("count", len(players)).Msg("loaded ranked players")
	return players, nil
}

// RatingsByIDs loads the given players keyed by pid. Missing pids are simply
// absent from the result; the caller decides whether that is an error.
func (r *PlayerRepository) RatingsByIDs(ctx context.Context, pids []int64) (map[int64]domain.Player, error) {
	if len(pids) == 0 {
		return map[int64]domain.Player{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pids)), ",")
	args := make([]any, len(pids))
	for i, pid := range pids {
		args[i] = pid
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE pid IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]domain.Player, len(pids))
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		result[p.PID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	return result, nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}

// Upsert writes a player row. Used by tests and by the ingestion side of the
// deployment; the serving path never calls it.
func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (pid, name, mu, sigma, rating_value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pid) DO UPDATE SET
			name = excluded.name,
			mu = excluded.mu,
			sigma = excluded.sigma,
			rating_value = excluded.rating_value,
			updated_at = excluded.updated_at
	`, p.PID, p.Name, p.Mu, p.Sigma, p.RatingValue, p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert player %d: %w", p.PID, err)
	}
	return nil
}
