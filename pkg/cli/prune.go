package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/cli/config"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
	"github.com/vlah-sh/mosaic/pkg/utils/safe"
)

func cmdPrune() *cli.Command {
	var retentionDays int64
	ledgerCfg := config.NewRepository("ledger")
	var policyCfg config.PolicyFile

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "retention-days",
			Usage:       "Retention period in days (overrides the policy file)",
			Sources:     cli.EnvVars("MOSAIC_RETENTION_DAYS"),
			Destination: &retentionDays,
		},
	}
	flags = append(flags, ledgerCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "prune",
		Usage: "Delete generation records and usage events past the retention period",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			days := int64(policy.RetentionDays)
			if retentionDays > 0 {
				days = retentionDays
			}
			if days <= 0 {
				return goerr.New("retention period must be positive", goerr.V("retention_days", days))
			}

			ledgerRepo, err := ledgerCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize ledger repository")
			}
			defer safe.Close(ctx, ledgerRepo)

			cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
			deleted, err := ledgerRepo.Ledger().PruneOlderThan(ctx, cutoff)
			if err != nil {
				return goerr.Wrap(err, "failed to prune ledger", goerr.V("cutoff", cutoff))
			}

			logger.Info("Pruned usage history",
				"deleted", deleted,
				"cutoff", cutoff.Format(time.RFC3339),
				"retention_days", days,
			)
			return nil
		},
	}
}
