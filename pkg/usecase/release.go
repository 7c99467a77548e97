package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/sw360ctl/pkg/domain/interfaces"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
	"github.com/pelletier/go-toml/v2"
)

type releaseUseCase struct {
	client interfaces.ReleaseClient
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(client interfaces.ReleaseClient) interfaces.ReleaseUseCase {
	return &releaseUseCase{
		client: client,
	}
}

// CreateRelease creates a release, merging fields from input.DetailsFile if set
func (uc *releaseUseCase) CreateRelease(ctx context.Context, input *model.CreateReleaseInput) (model.Release, error) {
	logger := logging.From(ctx)

	if input.Name == "" || input.Version == "" || input.ComponentID == "" {
		return nil, goerr.New("name, version and component id are required",
			goerr.V("name", input.Name),
			goerr.V("version", input.Version),
			goerr.V("component_id", input.ComponentID),
		)
	}

	var details model.Release
	if input.DetailsFile != "" {
		loaded, err := LoadReleaseFile(input.DetailsFile)
		if err != nil {
			return nil, err
		}
		details = loaded
	}

	logger.Info("Creating release",
		"name", input.Name,
		"version", input.Version,
		"component_id", input.ComponentID,
		"detail_fields", len(details),
	)

	created, err := uc.client.CreateRelease(ctx, input.Name, input.Version, input.ComponentID, details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("name", input.Name),
			goerr.V("version", input.Version),
		)
	}

	return created, nil
}

// SetExternalID updates one external id of a release
func (uc *releaseUseCase) SetExternalID(ctx context.Context, input *model.ExternalIDInput) (*model.ExternalIDResult, error) {
	logger := logging.From(ctx)

	if input.Name == "" {
		return nil, goerr.New("external id name is required", goerr.V("release_id", input.ReleaseID))
	}

	mode, err := model.ParseUpdateMode(input.Mode)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid update mode", goerr.V("mode", input.Mode))
	}

	change, err := uc.client.MergeReleaseExternalID(ctx, input.Name, input.Value, input.ReleaseID, mode)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update external id",
			goerr.V("release_id", input.ReleaseID),
			goerr.V("name", input.Name),
		)
	}

	result := &model.ExternalIDResult{
		ReleaseID: input.ReleaseID,
		Name:      input.Name,
		OldValue:  change.OldValue,
		NewValue:  change.NewValue,
		Mode:      mode,
		Found:     change.Found,
		Changed:   change.Changed,
		Deleted:   change.Deleted,
	}

	logger.Info("External id processed",
		"release_id", result.ReleaseID,
		"name", result.Name,
		"old_value", result.OldValue,
		"new_value", result.NewValue,
		"mode", result.Mode,
		"found", result.Found,
		"changed", result.Changed,
	)

	return result, nil
}

// LoadReleaseFile reads release fields from a JSON or TOML file, chosen by
// extension (.toml for TOML, anything else is JSON)
func LoadReleaseFile(path string) (model.Release, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read release file", goerr.V("path", path))
	}

	var release model.Release
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &release)
	default:
		err = json.Unmarshal(data, &release)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode release file", goerr.V("path", path))
	}

	return release, nil
}
