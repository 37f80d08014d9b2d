package fx

import (
	"go.uber.org/fx"

	"ladder-tracker/internal/api"
	"ladder-tracker/internal/config"
	"ladder-tracker/internal/database"
	"ladder-tracker/internal/logger"
	"ladder-tracker/internal/refresher"
	"ladder-tracker/internal/repository"
	"ladder-tracker/internal/server"
	"ladder-tracker/internal/service"
	"ladder-tracker/internal/skill"
)

func ProvideQualityConfig(cfg *config.Config) skill.QualityConfig {
	return cfg.QualityConfig()
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQualityConfig),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewLeaderboardRepository),
	fx.Provide(repository.NewArchiveRepository),
	// api client
	fx.Provide(api.NewUberNetClient),
	// svc
	fx.Provide(service.NewRankService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewMatchupService),
	fx.Provide(service.NewArchiveService),
	// background refresh
	fx.Provide(refresher.New),
	// server
	fx.Provide(server.NewLadderServer),
)
