package config

import (
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/model"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// Policy holds the tunable parameters of the selection engine. A Policy is
// built once at startup (from the TOML policy file or DefaultPolicy) and
// treated as read-only afterwards.
type Policy struct {
	// TopK is the number of candidates retrieved per section
	TopK int

	// Lookback is the trailing window over which usage counts are
	// computed for novelty scoring
	Lookback time.Duration

	// CooldownBase and CooldownCap bound the per-use cooldown window:
	// duration = min(CooldownCap, CooldownBase * usageCount)
	CooldownBase time.Duration
	CooldownCap  time.Duration

	// MaxSubstitutions bounds how many sections a single duplicate-repair
	// pass may replace
	MaxSubstitutions int

	// SectionPriority is the substitution order for duplicate repair
	SectionPriority []types.SectionType

	// EffectSwapProbability is the chance that an already-assigned effect
	// value is swapped for a different pool value
	EffectSwapProbability float64

	// EffectPools overrides the built-in effect value pools when non-nil
	EffectPools model.EffectPools

	// RetentionDays is the ledger retention horizon used by pruning
	RetentionDays int
}

// DefaultPolicy returns the engine defaults
func DefaultPolicy() *Policy {
	return &Policy{
		TopK:                  5,
		Lookback:              30 * 24 * time.Hour,
		CooldownBase:          4 * time.Hour,
		CooldownCap:           72 * time.Hour,
		MaxSubstitutions:      2,
		SectionPriority:       types.DefaultSectionPriority,
		EffectSwapProbability: 0.3,
		EffectPools:           model.DefaultEffectPools(),
		RetentionDays:         90,
	}
}
