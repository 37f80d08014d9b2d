// Package skill wraps the openskill rating type and implements the matchup
// quality estimate. Everything here is pure computation over ratings the
// caller already materialized.
package skill

import (
	"fmt"

	"github.com/intinig/go-openskill/rating"
	"github.com/intinig/go-openskill/types"

	"ladder-tracker/internal/domain"
)

// Rating is a Gaussian skill belief. Ordering decisions use Value() only;
// Mu and Sigma feed the quality estimate.
type Rating struct {
	r types.Rating
}

// New builds a Rating from stored mu/sigma. A non-positive sigma is a broken
// row, not caller error.
func New(mu, sigma float64) (Rating, error) {
	if sigma <= 0 {
		return Rating{}, fmt.Errorf("sigma %v must be positive: %w", sigma, domain.ErrDataIntegrity)
	}
	return Rating{r: rating.NewWithOptions(&types.OpenSkillOptions{
		Mu:    ptr(mu),
		Sigma: ptr(sigma),
	})}, nil
}

func (r Rating) Mu() float64    { return r.r.Mu }
func (r Rating) Sigma() float64 { return r.r.Sigma }

// Value is the conservative comparable scalar, openskill's ordinal
// (mu - 3*sigma). All ranking and favourite decisions compare this.
func (r Rating) Value() float64 {
	return rating.Ordinal(r.r)
}

// TeamBelief combines a team's members into one Gaussian: means summed,
// variances summed (independent members).
func TeamBelief(team []Rating) (mu, variance float64) {
	for _, r := range team {
		mu += r.r.Mu
		variance += r.r.Sigma * r.r.Sigma
	}
	return mu, variance
}

func ptr(v float64) *float64 { return &v }
