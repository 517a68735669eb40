package model

import (
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// NeutralSimilarity is assigned to candidates retrieved without a query
// vector so that downstream scoring degrades to pure novelty ranking
const NeutralSimilarity = 0.5

// CandidateScore is the per-request scoring record for one retrieval
// candidate. It is computed during selection and discarded afterwards.
type CandidateScore struct {
	ComponentID types.ComponentID
	Similarity  float64 // 0-1, higher is more relevant
	Novelty     float64 // 0-1, derived from usage history
}

// FinalScore combines relevance with usage-based novelty
func (c CandidateScore) FinalScore() float64 {
	return c.Similarity * c.Novelty
}

// NoveltyMultiplier maps a usage count within the lookback window to a
// multiplier in (0, 1]. Discrete tiers are used instead of a smooth decay:
// low counts are noisy, and fixed tiers keep the ranking predictable.
func NoveltyMultiplier(usageCount int64) float64 {
	switch {
	case usageCount <= 0:
		return 1.00
	case usageCount <= 2:
		return 0.85
	case usageCount <= 9:
		return 0.65
	case usageCount <= 19:
		return 0.40
	default:
		return 0.20
	}
}
