package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/cli/config"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/infra/sw360"
	"github.com/m-mizutani/sw360ctl/pkg/usecase"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRelease(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "release",
		Aliases: []string{"r"},
		Usage:   "Read and modify SW360 releases",
		Commands: []*cli.Command{
			cmdReleaseGet(cfg, w),
			cmdReleaseGetURL(cfg, w),
			cmdReleaseSearch(cfg, w),
			cmdReleaseList(cfg, w),
			cmdReleaseFind(cfg, w),
			cmdReleaseCreate(cfg, w),
			cmdReleaseUpdate(cfg, w),
			cmdReleaseSetExternalID(cfg, w),
			cmdReleaseDelete(cfg, w),
			cmdReleaseUsers(cfg, w),
			cmdReleaseAttachments(cfg, w),
			cmdReleaseDownload(cfg, w),
			cmdReleaseAttach(cfg, w),
		},
	}
}

// requireArg returns the first positional argument of c
func requireArg(c *cli.Command, name string) (string, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", goerr.New("argument is required", goerr.V("argument", name), goerr.V("command", c.Name))
	}
	return arg, nil
}

func notFound(key, value string) error {
	return goerr.Wrap(sw360.ErrNotFound, "release not found", goerr.V(key, value))
}

func cmdReleaseGet(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a release by id",
		ArgsUsage: "<release-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			release, err := client.GetRelease(ctx, id)
			if err != nil {
				return err
			}
			if release == nil {
				return notFound("id", id)
			}
			return writeJSON(w, release)
		},
	}
}

func cmdReleaseGetURL(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "get-url",
		Usage:     "Show a release by its full URL",
		ArgsUsage: "<release-url>",
		Action: func(ctx context.Context, c *cli.Command) error {
			releaseURL, err := requireArg(c, "release-url")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			release, err := client.GetReleaseByURL(ctx, releaseURL)
			if err != nil {
				return err
			}
			if release == nil {
				return notFound("url", releaseURL)
			}
			return writeJSON(w, release)
		},
	}
}

func cmdReleaseSearch(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "List releases with the given name",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name, err := requireArg(c, "name")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			list, err := client.GetReleasesByName(ctx, name)
			if err != nil {
				return err
			}
			return writeJSON(w, list)
		},
	}
}

func cmdReleaseList(cfg *config.SW360, w io.Writer) *cli.Command {
	var (
		fields     string
		allDetails bool
	)

	return &cli.Command{
		Name:  "list",
		Usage: "List all releases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "fields",
				Usage:       "Comma separated release fields to include",
				Destination: &fields,
			},
			&cli.BoolFlag{
				Name:        "all-details",
				Usage:       "Include all release details",
				Destination: &allDetails,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			list, err := client.GetAllReleases(ctx, fields, allDetails)
			if err != nil {
				return err
			}
			return writeJSON(w, list)
		},
	}
}

func cmdReleaseFind(cfg *config.SW360, w io.Writer) *cli.Command {
	var name, value string

	return &cli.Command{
		Name:  "find",
		Usage: "List releases carrying an external id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "External id name",
				Required:    true,
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "value",
				Usage:       "External id value, any value if empty",
				Destination: &value,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			list, err := client.GetReleasesByExternalID(ctx, name, value)
			if err != nil {
				return err
			}
			return writeJSON(w, list)
		},
	}
}

func cmdReleaseCreate(cfg *config.SW360, w io.Writer) *cli.Command {
	var input model.CreateReleaseInput

	return &cli.Command{
		Name:  "create",
		Usage: "Create a release in a component",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Release name",
				Required:    true,
				Destination: &input.Name,
			},
			&cli.StringFlag{
				Name:        "version",
				Usage:       "Release version",
				Required:    true,
				Destination: &input.Version,
			},
			&cli.StringFlag{
				Name:        "component-id",
				Usage:       "Id of the component the release belongs to",
				Required:    true,
				Destination: &input.ComponentID,
			},
			&cli.StringFlag{
				Name:        "details",
				Usage:       "JSON or TOML file with further release fields",
				Destination: &input.DetailsFile,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			created, err := usecase.NewRelease(client).CreateRelease(ctx, &input)
			if err != nil {
				return err
			}
			return writeJSON(w, created)
		},
	}
}

func cmdReleaseUpdate(cfg *config.SW360, w io.Writer) *cli.Command {
	var file string

	return &cli.Command{
		Name:      "update",
		Usage:     "Patch a release with the fields of a JSON or TOML file",
		ArgsUsage: "<release-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "JSON or TOML file with the fields to change",
				Required:    true,
				Destination: &file,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			fields, err := usecase.LoadReleaseFile(file)
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			updated, err := client.UpdateRelease(ctx, fields, id)
			if err != nil {
				return err
			}
			return writeJSON(w, updated)
		},
	}
}

func cmdReleaseSetExternalID(cfg *config.SW360, w io.Writer) *cli.Command {
	var (
		input      model.ExternalIDInput
		jsonOutput bool
	)

	return &cli.Command{
		Name:      "set-external-id",
		Usage:     "Set, overwrite or delete one external id of a release",
		ArgsUsage: "<release-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "External id name",
				Required:    true,
				Destination: &input.Name,
			},
			&cli.StringFlag{
				Name:        "value",
				Usage:       "External id value",
				Destination: &input.Value,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "What to do with an existing id: none, overwrite or delete",
				Value:       string(model.UpdateModeNone),
				Destination: &input.Mode,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the result as JSON",
				Destination: &jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			input.ReleaseID = id

			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			result, err := usecase.NewRelease(client).SetExternalID(ctx, &input)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(w, result)
			}
			return writeExternalIDResult(w, result)
		},
	}
}

func writeExternalIDResult(w io.Writer, result *model.ExternalIDResult) error {
	var (
		label    string
		newValue = strconv.Quote(result.NewValue)
		err      error
	)
	switch {
	case !result.Found:
		_, err = color.New(color.FgYellow).Fprint(w, "missing ")
		label = ": release not found"
	case !result.Changed:
		_, err = color.New(color.FgYellow).Fprint(w, "unchanged ")
	case result.Deleted:
		_, err = color.New(color.FgRed).Fprint(w, "deleted ")
		newValue = "(none)"
	default:
		_, err = color.New(color.FgGreen).Fprint(w, "updated ")
	}
	if err != nil {
		return goerr.Wrap(err, "failed to write output")
	}

	if _, err := color.New(color.Bold).Fprintf(w, "%s/%s", result.ReleaseID, result.Name); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	if label == "" {
		label = ": " + strconv.Quote(result.OldValue) + " -> " + newValue
	}
	if _, err := io.WriteString(w, label+"\n"); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func cmdReleaseDelete(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a release",
		ArgsUsage: "<release-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			resp, err := client.DeleteRelease(ctx, id)
			if err != nil {
				return err
			}
			return writeJSON(w, resp)
		},
	}
}

func cmdReleaseUsers(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "users",
		Usage:     "List projects and components using a release",
		ArgsUsage: "<release-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			users, err := client.GetReleaseUsers(ctx, id)
			if err != nil {
				return err
			}
			if users == nil {
				return notFound("id", id)
			}
			return writeJSON(w, users)
		},
	}
}

func cmdReleaseAttachments(cfg *config.SW360, w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "attachments",
		Usage:     "List the attachments of a release",
		ArgsUsage: "<release-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			attachments, err := client.GetReleaseAttachments(ctx, id)
			if err != nil {
				return err
			}
			if attachments == nil {
				attachments = []model.Document{}
			}
			return writeJSON(w, attachments)
		},
	}
}

func cmdReleaseDownload(cfg *config.SW360, w io.Writer) *cli.Command {
	var attachmentID, output string

	return &cli.Command{
		Name:      "download",
		Usage:     "Download an attachment of a release",
		ArgsUsage: "<release-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "attachment-id",
				Usage:       "Id of the attachment",
				Required:    true,
				Destination: &attachmentID,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "File to write, stdout if empty",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := client.DownloadReleaseAttachment(ctx, id, attachmentID, w)
				return err
			}

			f, err := os.Create(filepath.Clean(output))
			if err != nil {
				return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
			}
			defer f.Close()

			n, err := client.DownloadReleaseAttachment(ctx, id, attachmentID, f)
			if err != nil {
				return err
			}
			logging.From(ctx).Info("Attachment downloaded", "path", output, "bytes", n)
			return nil
		},
	}
}

func cmdReleaseAttach(cfg *config.SW360, w io.Writer) *cli.Command {
	var file, attachmentType, comment string

	return &cli.Command{
		Name:      "attach",
		Usage:     "Upload a file as attachment of a release",
		ArgsUsage: "<release-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "File to upload",
				Required:    true,
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "Attachment type, e.g. SOURCE, BINARY, DOCUMENT",
				Value:       string(model.AttachmentTypeSource),
				Destination: &attachmentType,
			},
			&cli.StringFlag{
				Name:        "comment",
				Usage:       "Comment stored with the attachment",
				Destination: &comment,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "release-id")
			if err != nil {
				return err
			}
			t, err := model.ParseAttachmentType(attachmentType)
			if err != nil {
				return err
			}

			f, err := os.Open(filepath.Clean(file))
			if err != nil {
				return goerr.Wrap(err, "failed to open attachment file", goerr.V("path", file))
			}
			defer f.Close()

			client, err := cfg.NewClient(ctx)
			if err != nil {
				return err
			}

			release, err := client.UploadReleaseAttachment(ctx, id, &model.AttachmentUpload{
				Filename: filepath.Base(file),
				Content:  f,
				Type:     t,
				Comment:  comment,
			})
			if err != nil {
				return err
			}
			return writeJSON(w, release)
		},
	}
}
