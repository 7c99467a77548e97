package interfaces

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
)

// ReleaseClient defines operations on the SW360 release resource
type ReleaseClient interface {
	// GetRelease returns a release by id, nil if the server sends no content
	GetRelease(ctx context.Context, releaseID string) (model.Release, error)

	// GetReleaseByURL returns the release at a full URL
	GetReleaseByURL(ctx context.Context, releaseURL string) (model.Release, error)

	// GetReleasesByName returns the releases with the given name
	GetReleasesByName(ctx context.Context, name string) (*model.ReleaseList, error)

	// GetAllReleases returns all releases
	GetAllReleases(ctx context.Context, fields string, allDetails bool) (*model.ReleaseList, error)

	// GetReleasesByExternalID returns the releases carrying an external id
	GetReleasesByExternalID(ctx context.Context, name, value string) (*model.ReleaseList, error)

	// CreateRelease creates a release in a component
	CreateRelease(ctx context.Context, name, version, componentID string, details model.Release) (model.Release, error)

	// UpdateRelease patches a release
	UpdateRelease(ctx context.Context, release model.Release, releaseID string) (model.Release, error)

	// UpdateReleaseExternalID sets, overwrites or deletes one external id and returns the old value
	UpdateReleaseExternalID(ctx context.Context, name, value, releaseID string, mode model.UpdateMode) (string, error)

	// MergeReleaseExternalID is UpdateReleaseExternalID reporting the whole merge outcome
	MergeReleaseExternalID(ctx context.Context, name, value, releaseID string, mode model.UpdateMode) (*model.ExternalIDChange, error)

	// DeleteRelease deletes a release
	DeleteRelease(ctx context.Context, releaseID string) (json.RawMessage, error)

	// GetReleaseAttachments returns the attachment infos of a release
	GetReleaseAttachments(ctx context.Context, releaseID string) ([]model.Document, error)

	// DownloadReleaseAttachment writes the content of a release attachment to w
	DownloadReleaseAttachment(ctx context.Context, releaseID, attachmentID string, w io.Writer) (int64, error)

	// UploadReleaseAttachment attaches a file to a release
	UploadReleaseAttachment(ctx context.Context, releaseID string, upload *model.AttachmentUpload) (model.Release, error)

	// GetReleaseUsers returns the projects and components using a release
	GetReleaseUsers(ctx context.Context, releaseID string) (model.Document, error)
}
