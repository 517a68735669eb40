package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/cli/config"
)

func cmdValidate() *cli.Command {
	var policyCfg config.PolicyFile

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the engine policy file",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "✗ Policy validation failed")
				return goerr.Wrap(err, "policy validation failed")
			}

			green := color.New(color.FgGreen, color.Bold)
			green.Println("✓ Policy is valid")

			bold := color.New(color.Bold)
			bold.Printf("  top_k:                   %d\n", policy.TopK)
			bold.Printf("  lookback:                %s\n", policy.Lookback)
			bold.Printf("  cooldown_base:           %s\n", policy.CooldownBase)
			bold.Printf("  cooldown_cap:            %s\n", policy.CooldownCap)
			bold.Printf("  max_substitutions:       %d\n", policy.MaxSubstitutions)
			bold.Printf("  effect_swap_probability: %.2f\n", policy.EffectSwapProbability)
			bold.Printf("  retention_days:          %d\n", policy.RetentionDays)
			bold.Printf("  sections:                %d\n", len(policy.SectionPriority))
			bold.Printf("  effect_pools:            %d\n", len(policy.EffectPools))
			return nil
		},
	}
}
