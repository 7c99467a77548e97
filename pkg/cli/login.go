package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdLogin(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Check that the SW360 server accepts the credentials",
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Login(ctx); err != nil {
				return goerr.Wrap(err, "login failed", goerr.V("url", client.URL()))
			}

			_, _ = color.New(color.FgGreen).Fprintf(w, "Login succeeded: %s\n", client.URL())
			return nil
		},
	}
}
