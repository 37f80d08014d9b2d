package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
)

type LeaderboardRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLeaderboardRepository(sqlDB *sql.DB, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{db: sqlDB, logger: logger}
}

const standingQuery = `
	SELECT e.league, e.rank, e.uber_id, a.pid, a.display_name, e.last_match
	FROM leaderboard_entries e
	LEFT JOIN uber_accounts a ON a.uber_id = e.uber_id`

func scanStandings(rows *sql.Rows) ([]domain.Standing, error) {
	var standings []domain.Standing
	for rows.Next() {
		var s domain.Standing
		var pid sql.NullInt64
		var name sql.NullString
		if err := rows.Scan(&s.League, &s.Rank, &s.UberID, &pid, &name, &s.LastMatch); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		if pid.Valid {
			v := pid.Int64
			s.PID = &v
		}
		s.Name = name.String
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read standings: %w", err)
	}
	return standings, nil
}

// ListJoined returns every standings row joined with its account, ordered by
// league then official rank. Accounts may be unmapped; that is not an error.
func (r *LeaderboardRepository) ListJoined(ctx context.Context) ([]domain.Standing, error) {
	rows, err := r.db.QueryContext(ctx, standingQuery+" ORDER BY lower(e.league), e.rank")
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	defer rows.Close()
	return scanStandings(rows)
}

// ListLeagueJoined returns one league's standings ordered by official rank.
// The league label matches case-insensitively.
func (r *LeaderboardRepository) ListLeagueJoined(ctx context.Context, league string) ([]domain.Standing, error) {
	rows, err := r.db.QueryContext(ctx,
		standingQuery+" WHERE lower(e.league) = lower(?) ORDER BY e.rank", league)
	if err != nil {
		return nil, fmt.Errorf("list %s standings: %w", league, err)
	}
	defer rows.Close()
	return scanStandings(rows)
}

// AccountsByPIDs maps pid to uber id for the given players. Unmapped players
// are absent from the result.
func (r *LeaderboardRepository) AccountsByPIDs(ctx context.Context, pids []int64) (map[int64]int64, error) {
	if len(pids) == 0 {
		return map[int64]int64{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pids)), ",")
	args := make([]any, len(pids))
	for i, pid := range pids {
		args[i] = pid
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT pid, uber_id FROM uber_accounts WHERE pid IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]int64)
	for rows.Next() {
		var pid, uberID int64
		if err := rows.Scan(&pid, &uberID); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result[pid] = uberID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return result, nil
}

// ReplaceAll swaps the whole standings table for the given entries in one
// transaction, preserving the externally assigned ranks as-is.
func (r *LeaderboardRepository) ReplaceAll(ctx context.Context, entries []domain.LeaderBoardEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM leaderboard_entries"); err != nil {
		return fmt.Errorf("clear standings: %w", err)
	}

	for i := 0; i < len(entries); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(entries))
		for _, e := range entries[i:end] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO leaderboard_entries (league, rank, uber_id, last_match)
				VALUES (?, ?, ?, ?)
			`, e.League, e.Rank, e.UberID, e.LastMatch.UTC())
			if err != nil {
				return fmt.Errorf("insert standing %s/%d: %w", e.League, e.Rank, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit standings: %w", err)
	}

	r.logger.Info().Int("entries", len(entries)).Msg("standings replaced")
	return nil
}

// UpsertAccounts refreshes display names for upstream accounts. The pid
// mapping is owned by the ingestion side and left untouched here.
func (r *LeaderboardRepository) UpsertAccounts(ctx context.Context, accounts []domain.UberAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO uber_accounts (uber_id, pid, display_name)
			VALUES (?, ?, ?)
			ON CONFLICT(uber_id) DO UPDATE SET
				display_name = excluded.display_name
		`, a.UberID, a.PID, a.DisplayName)
		if err != nil {
			return fmt.Errorf("upsert account %d: %w", a.UberID, err)
		}
	}

	return tx.Commit()
}
