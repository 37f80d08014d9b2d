package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/domain"
)

// ArchiveRepository serves the read-only tournament and patch records. The
// engine never touches these; they exist for direct listing only.
type ArchiveRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewArchiveRepository(sqlDB *sql.DB, logger zerolog.Logger) *ArchiveRepository {
	return &ArchiveRepository{db: sqlDB, logger: logger}
}

func (r *ArchiveRepository) Tournaments(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, date, winner, mode, url FROM tournaments ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []domain.Tournament
	for rows.Next() {
		var t domain.Tournament
		if err := rows.Scan(&t.ID, &t.Title, &t.Date, &t.Winner, &t.Mode, &t.URL); err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *ArchiveRepository) Patches(ctx context.Context) ([]domain.Patch, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, version, updated FROM patches ORDER BY updated DESC")
	if err != nil {
		return nil, fmt.Errorf("list patches: %w", err)
	}
	defer rows.Close()

	var patches []domain.Patch
	for rows.Next() {
		var p domain.Patch
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Version, &p.Updated); err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}
		patches = append(patches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list patches: %w", err)
	}
	return patches, nil
}
