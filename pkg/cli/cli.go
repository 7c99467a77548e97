package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/sw360ctl/pkg/cli/config"
	"github.com/m-mizutani/sw360ctl/pkg/domain/types"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, w io.Writer) error {
	var (
		loggerCfg config.Logger
		sw360Cfg  config.SW360
		logger    *slog.Logger
	)

	flags := append(loggerCfg.Flags(), sw360Cfg.Flags()...)

	app := &cli.Command{
		Name:    "sw360ctl",
		Usage:   "Command line client for SW360 releases",
		Version: types.Version,
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = logging.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdLogin(&sw360Cfg, w),
			cmdRelease(&sw360Cfg, w),
			cmdMock(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
