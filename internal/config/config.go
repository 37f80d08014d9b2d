package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"ladder-tracker/internal/skill"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// Quality formula knobs.
	DrawProbability float64
	Beta            float64

	// Leaderboard refresh.
	UberAPIURL      string
	UberAPIKey      string
	RefreshInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "ladder.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		UberAPIURL:      getEnv("UBER_API_URL", ""),
		UberAPIKey:      getEnv("UBER_API_KEY", ""),
		RefreshInterval: 15 * time.Minute,
	}

	var err error
	if cfg.DrawProbability, err = getEnvFloat("DRAW_PROBABILITY", skill.DefaultDrawProbability); err != nil {
		return nil, err
	}
	if cfg.Beta, err = getEnvFloat("BETA", skill.DefaultBeta); err != nil {
		return nil, err
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL %q: %w", v, err)
		}
		cfg.RefreshInterval = d
	}

	if cfg.DrawProbability <= 0 || cfg.DrawProbability >= 1 {
		return nil, fmt.Errorf("DRAW_PROBABILITY must be in (0,1), got %v", cfg.DrawProbability)
	}
	if cfg.Beta <= 0 {
		return nil, fmt.Errorf("BETA must be positive, got %v", cfg.Beta)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Float64("draw_probability", cfg.DrawProbability).
		Float64("beta", cfg.Beta).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// QualityConfig is the slice of the config the quality estimator consumes.
func (c *Config) QualityConfig() skill.QualityConfig {
	return skill.QualityConfig{DrawProbability: c.DrawProbability, Beta: c.Beta}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

var Module = fx.Provide(Load)
