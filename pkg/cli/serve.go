package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/vlah-sh/mosaic/pkg/cli/config"
	httpctrl "github.com/vlah-sh/mosaic/pkg/controller/http"
	"github.com/vlah-sh/mosaic/pkg/service/embedding"
	"github.com/vlah-sh/mosaic/pkg/usecase"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
	"github.com/vlah-sh/mosaic/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	catalogCfg := config.NewRepository("catalog")
	ledgerCfg := config.NewRepository("ledger")
	var geminiCfg config.Gemini
	var sentryCfg config.Sentry
	var policyCfg config.PolicyFile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MOSAIC_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, ledgerCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := sentryCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to configure error reporting")
			}

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			catalogRepo, err := catalogCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize catalog repository")
			}
			defer safe.Close(ctx, catalogRepo)

			ledgerRepo, err := ledgerCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize ledger repository")
			}
			defer safe.Close(ctx, ledgerRepo)

			opts := []usecase.Option{
				usecase.WithPolicy(policy),
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient != nil {
				embedder, err := embedding.New(llmClient)
				if err != nil {
					return goerr.Wrap(err, "failed to create embedding service")
				}
				opts = append(opts, usecase.WithEmbedder(embedder))
			} else {
				logger.Warn("No embedding backend configured, retrieval uses usage statistics only")
			}

			uc := usecase.New(catalogRepo.Catalog(), ledgerRepo.Ledger(), opts...)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"mode", uc.Mode().String(),
					"catalog_backend", catalogCfg.Backend(),
					"ledger_backend", ledgerCfg.Backend(),
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed")
			case <-serverCtx.Done():
				logger.Info("Shutting down HTTP server")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown HTTP server")
			}

			return nil
		},
	}
}
