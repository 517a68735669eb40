package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	domainConfig "github.com/vlah-sh/mosaic/pkg/domain/model/config"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// PolicyFile holds the CLI flag for the engine policy TOML file
type PolicyFile struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *PolicyFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Aliases:     []string{"c"},
			Usage:       "Path to the engine policy TOML file (defaults apply when omitted)",
			Sources:     cli.EnvVars("MOSAIC_POLICY"),
			Destination: &p.path,
		},
	}
}

// policyDoc is the TOML representation of the engine policy
type policyDoc struct {
	TopK                  *int                `toml:"top_k"`
	LookbackDays          *int                `toml:"lookback_days"`
	CooldownBaseHours     *int                `toml:"cooldown_base_hours"`
	CooldownCapHours      *int                `toml:"cooldown_cap_hours"`
	MaxSubstitutions      *int                `toml:"max_substitutions"`
	RetentionDays         *int                `toml:"retention_days"`
	SectionPriority       []string            `toml:"section_priority"`
	EffectSwapProbability *float64            `toml:"effect_swap_probability"`
	EffectPools           map[string][]string `toml:"effect_pools"`
}

// Configure loads and validates the policy file, falling back to the
// engine defaults when no path is configured
func (p *PolicyFile) Configure() (*domainConfig.Policy, error) {
	policy := domainConfig.DefaultPolicy()
	if p.path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	var doc policyDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", p.path))
	}

	if err := doc.apply(policy); err != nil {
		return nil, goerr.Wrap(err, "invalid policy file", goerr.V("path", p.path))
	}

	return policy, nil
}

func (d *policyDoc) apply(policy *domainConfig.Policy) error {
	if d.TopK != nil {
		if *d.TopK <= 0 {
			return goerr.New("top_k must be positive", goerr.V("top_k", *d.TopK))
		}
		policy.TopK = *d.TopK
	}
	if d.LookbackDays != nil {
		if *d.LookbackDays <= 0 {
			return goerr.New("lookback_days must be positive", goerr.V("lookback_days", *d.LookbackDays))
		}
		policy.Lookback = time.Duration(*d.LookbackDays) * 24 * time.Hour
	}
	if d.CooldownBaseHours != nil {
		if *d.CooldownBaseHours <= 0 {
			return goerr.New("cooldown_base_hours must be positive", goerr.V("cooldown_base_hours", *d.CooldownBaseHours))
		}
		policy.CooldownBase = time.Duration(*d.CooldownBaseHours) * time.Hour
	}
	if d.CooldownCapHours != nil {
		if *d.CooldownCapHours <= 0 {
			return goerr.New("cooldown_cap_hours must be positive", goerr.V("cooldown_cap_hours", *d.CooldownCapHours))
		}
		policy.CooldownCap = time.Duration(*d.CooldownCapHours) * time.Hour
	}
	if policy.CooldownCap < policy.CooldownBase {
		return goerr.New("cooldown_cap_hours must not be less than cooldown_base_hours")
	}
	if d.MaxSubstitutions != nil {
		if *d.MaxSubstitutions < 0 {
			return goerr.New("max_substitutions must not be negative")
		}
		policy.MaxSubstitutions = *d.MaxSubstitutions
	}
	if d.RetentionDays != nil {
		if *d.RetentionDays <= 0 {
			return goerr.New("retention_days must be positive", goerr.V("retention_days", *d.RetentionDays))
		}
		policy.RetentionDays = *d.RetentionDays
	}
	if d.SectionPriority != nil {
		priority := make([]types.SectionType, 0, len(d.SectionPriority))
		seen := make(map[types.SectionType]bool)
		for _, section := range d.SectionPriority {
			st := types.SectionType(section)
			if err := st.Validate(); err != nil {
				return goerr.Wrap(err, "invalid section in section_priority")
			}
			if seen[st] {
				return goerr.New("duplicate section in section_priority", goerr.V("section", section))
			}
			seen[st] = true
			priority = append(priority, st)
		}
		policy.SectionPriority = priority
	}
	if d.EffectSwapProbability != nil {
		if *d.EffectSwapProbability < 0 || *d.EffectSwapProbability > 1 {
			return goerr.New("effect_swap_probability must be between 0 and 1",
				goerr.V("effect_swap_probability", *d.EffectSwapProbability))
		}
		policy.EffectSwapProbability = *d.EffectSwapProbability
	}
	if d.EffectPools != nil {
		pools := make(model.EffectPools, len(d.EffectPools))
		for attribute, pool := range d.EffectPools {
			if attribute == "" {
				return goerr.New("effect pool attribute name is empty")
			}
			for _, value := range pool {
				if value == "" {
					return goerr.New("effect pool contains an empty value", goerr.V("attribute", attribute))
				}
			}
			pools[model.EffectAttribute(attribute)] = pool
		}
		policy.EffectPools = pools
	}

	return nil
}
