package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/cli/config"
	controller "github.com/m-mizutani/sw360ctl/pkg/controller/http"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/usecase"
	"github.com/m-mizutani/sw360ctl/pkg/utils/async"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMock() *cli.Command {
	var (
		serverCfg config.Server
		seedFile  string
	)

	flags := append(serverCfg.Flags(), &cli.StringFlag{
		Name:        "seed",
		Usage:       "JSON or TOML release file stored in the catalog at startup",
		Destination: &seedFile,
		Sources:     cli.EnvVars("SW360CTL_MOCK_SEED"),
	})

	return &cli.Command{
		Name:    "mock",
		Aliases: []string{"m"},
		Usage:   "Start an in-memory SW360 server for local testing",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			catalog := controller.NewCatalog()
			if seedFile != "" {
				seed, err := usecase.LoadReleaseFile(seedFile)
				if err != nil {
					return err
				}
				id := seedID(seed)
				id = catalog.Put(id, seed)
				logger.Info("Seed release stored", slog.String("id", id), slog.String("name", seed.Name()))
			}

			server, err := controller.NewServer(
				ctx,
				catalog,
				controller.WithAddr(serverCfg.Addr),
				controller.WithToken(serverCfg.Token),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create mock server")
			}

			serveErr := async.Go(ctx, "mock server", func(ctx context.Context) error {
				logger.Info("Mock SW360 server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "mock server failed", goerr.V("addr", serverCfg.Addr))
				}
				return nil
			})

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serveErr:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown mock server gracefully")
			}

			<-serveErr
			logger.Info("Mock server shutdown complete")
			return nil
		},
	}
}

// seedID takes the id field of a seed release, if any
func seedID(r model.Release) string {
	id, _ := r["id"].(string)
	return id
}
