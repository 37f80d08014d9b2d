package service

import (
	"context"

	"github.com/rs/zerolog"

	"ladder-tracker/internal/constants"
	"ladder-tracker/internal/domain"
	"ladder-tracker/internal/repository"
)

// ArchiveService lists tournament and patch records. Plain retrieval, no
// engine logic.
type ArchiveService struct {
	archive *repository.ArchiveRepository
	logger  zerolog.Logger
}

func NewArchiveService(archive *repository.ArchiveRepository, logger zerolog.Logger) *ArchiveService {
	return &ArchiveService{archive: archive, logger: logger}
}

func (s *ArchiveService) Tournaments(ctx context.Context) ([]domain.Tournament, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.archive.Tournaments(ctx)
}

func (s *ArchiveService) Patches(ctx context.Context) ([]domain.Patch, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.archive.Patches(ctx)
}
