package interfaces

import (
	"context"

	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
)

// ReleaseUseCase defines release operations that need more than a single API call
type ReleaseUseCase interface {
	// CreateRelease creates a release, reading further fields from an optional details file
	CreateRelease(ctx context.Context, input *model.CreateReleaseInput) (model.Release, error)

	// SetExternalID validates the update mode and updates one external id of a release
	SetExternalID(ctx context.Context, input *model.ExternalIDInput) (*model.ExternalIDResult, error)
}
