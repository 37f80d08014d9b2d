package skill

import (
	"fmt"
	"math"

	"ladder-tracker/internal/domain"
)

const (
	// DefaultDrawProbability is the prior chance an even matchup ends drawn.
	DefaultDrawProbability = 0.03

	// DefaultBeta is the per-performance standard deviation, the usual
	// sigma0/2 with sigma0 = 25/3.
	DefaultBeta = 25.0 / 6.0
)

// QualityConfig parameterizes the quality estimate. Both knobs move the
// score, so they are threaded in explicitly rather than read from globals.
type QualityConfig struct {
	DrawProbability float64
	Beta            float64
}

// DefaultQualityConfig returns the library-standard configuration.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{DrawProbability: DefaultDrawProbability, Beta: DefaultBeta}
}

// Quality scores how balanced a matchup of one or more teams is, in [0,1].
// The score is the near-draw probability of the teams' combined beliefs,
// averaged over all team pairs: for teams i and j the performance difference
// is N(mu_i - mu_j, var_i + var_j + n*beta^2) with n the combined player
// count, and the score is the mass within the draw margin derived from the
// configured draw probability. Symmetric in team order and in player order
// within a team, since only sums enter. A single team has no opponent and
// scores 1 by convention.
func Quality(teams [][]Rating, cfg QualityConfig) (float64, error) {
	if len(teams) == 0 {
		return 0, fmt.Errorf("at least one team required: %w", domain.ErrInvalidRequest)
	}
	if cfg.DrawProbability <= 0 || cfg.DrawProbability >= 1 {
		return 0, fmt.Errorf("draw probability %v outside (0,1): %w", cfg.DrawProbability, domain.ErrInvalidRequest)
	}
	if cfg.Beta <= 0 {
		return 0, fmt.Errorf("beta %v must be positive: %w", cfg.Beta, domain.ErrInvalidRequest)
	}
	for i, team := range teams {
		if len(team) == 0 {
			return 0, fmt.Errorf("team %d is empty: %w", i, domain.ErrInvalidRequest)
		}
	}
	if len(teams) == 1 {
		return 1, nil
	}

	var sum float64
	var pairs int
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			sum += pairQuality(teams[i], teams[j], cfg)
			pairs++
		}
	}
	return sum / float64(pairs), nil
}

func pairQuality(a, b []Rating, cfg QualityConfig) float64 {
	muA, varA := TeamBelief(a)
	muB, varB := TeamBelief(b)

	n := float64(len(a) + len(b))
	c := math.Sqrt(varA + varB + n*cfg.Beta*cfg.Beta)
	eps := drawMargin(cfg.DrawProbability, n, cfg.Beta)
	delta := muA - muB

	return normCDF((eps-delta)/c) - normCDF((-eps-delta)/c)
}

// drawMargin is the performance-difference band that counts as a draw,
// chosen so two beta-only players draw with probability p.
func drawMargin(p, n, beta float64) float64 {
	return normPPF((1+p)/2) * math.Sqrt(n) * beta
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPPF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
