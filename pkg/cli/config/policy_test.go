package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/cli/config"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
	domainConfig "github.com/vlah-sh/mosaic/pkg/domain/model/config"
	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

func loadPolicy(t *testing.T, content string) (*domainConfig.Policy, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "policy.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()

	var policyCfg config.PolicyFile
	var policy *domainConfig.Policy
	var loadErr error

	cmd := &cli.Command{
		Name:  "test",
		Flags: policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, loadErr = policyCfg.Configure()
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), []string{"test", "--policy", path})).Required()

	return policy, loadErr
}

func TestPolicyFileDefaults(t *testing.T) {
	var policyCfg config.PolicyFile

	policy, err := policyCfg.Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, policy.TopK).Equal(5)
	gt.Value(t, policy.Lookback).Equal(30 * 24 * time.Hour)
	gt.Value(t, policy.CooldownBase).Equal(4 * time.Hour)
	gt.Value(t, policy.CooldownCap).Equal(72 * time.Hour)
	gt.Value(t, policy.MaxSubstitutions).Equal(2)
	gt.Value(t, policy.EffectSwapProbability).Equal(0.3)
	gt.Value(t, policy.RetentionDays).Equal(90)
}

func TestPolicyFileOverrides(t *testing.T) {
	policy, err := loadPolicy(t, `
top_k = 10
lookback_days = 14
cooldown_base_hours = 2
cooldown_cap_hours = 48
max_substitutions = 3
retention_days = 30
section_priority = ["cta", "hero"]
effect_swap_probability = 0.5

[effect_pools]
heading = ["fade-up", "zoom-in"]
`)
	gt.NoError(t, err).Required()
	gt.Value(t, policy.TopK).Equal(10)
	gt.Value(t, policy.Lookback).Equal(14 * 24 * time.Hour)
	gt.Value(t, policy.CooldownBase).Equal(2 * time.Hour)
	gt.Value(t, policy.CooldownCap).Equal(48 * time.Hour)
	gt.Value(t, policy.MaxSubstitutions).Equal(3)
	gt.Value(t, policy.RetentionDays).Equal(30)
	gt.Array(t, policy.SectionPriority).Equal([]types.SectionType{"cta", "hero"})
	gt.Value(t, policy.EffectSwapProbability).Equal(0.5)
	gt.Array(t, policy.EffectPools[model.EffectHeading]).Equal([]string{"fade-up", "zoom-in"})
}

func TestPolicyFilePartialOverride(t *testing.T) {
	policy, err := loadPolicy(t, `top_k = 3`)
	gt.NoError(t, err).Required()
	gt.Value(t, policy.TopK).Equal(3)
	// Untouched fields keep their defaults.
	gt.Value(t, policy.CooldownBase).Equal(4 * time.Hour)
	gt.Value(t, policy.EffectSwapProbability).Equal(0.3)
}

func TestPolicyFileValidation(t *testing.T) {
	cases := map[string]string{
		"zero top_k":           `top_k = 0`,
		"negative lookback":    `lookback_days = -1`,
		"cap below base":       "cooldown_base_hours = 10\ncooldown_cap_hours = 5",
		"bad swap probability": `effect_swap_probability = 1.5`,
		"invalid section":      `section_priority = ["Hero Section"]`,
		"duplicate section":    `section_priority = ["hero", "hero"]`,
		"empty effect value":   "[effect_pools]\nheading = [\"\"]",
		"broken toml":          `top_k = `,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadPolicy(t, content)
			gt.Error(t, err)
		})
	}
}

func TestPolicyFileMissing(t *testing.T) {
	var policyCfg config.PolicyFile

	cmd := &cli.Command{
		Name:  "test",
		Flags: policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := policyCfg.Configure()
			gt.Error(t, err)
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), []string{"test", "--policy", "/no/such/policy.toml"}))
}
