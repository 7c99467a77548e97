package sw360

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/url"

	"github.com/m-mizutani/sw360ctl/pkg/domain/interfaces"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/utils/logging"
)

const releasesPath = "resource/api/releases"

func (c *Client) releaseURL(parts ...string) string {
	u := c.endpoint(releasesPath)
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) getReleaseList(ctx context.Context, endpoint string) (*model.ReleaseList, error) {
	data, err := c.APIGet(ctx, endpoint)
	if err != nil || data == nil {
		return nil, err
	}

	list, err := model.NewReleaseList(data)
	if err != nil {
		return nil, wrapError(err, endpoint, "failed to decode release list from "+endpoint)
	}
	return list, nil
}

// GetRelease returns a release by id. It returns nil without error when the
// server sends no content.
//
// API endpoint: GET /releases/{id}
func (c *Client) GetRelease(ctx context.Context, releaseID string) (model.Release, error) {
	return c.getDocument(ctx, c.releaseURL(releaseID))
}

// GetReleaseByURL returns the release at a full URL, typically taken from a
// _links.self.href of another response.
func (c *Client) GetReleaseByURL(ctx context.Context, releaseURL string) (model.Release, error) {
	return c.getDocument(ctx, releaseURL)
}

// GetReleasesByName returns the releases matching name.
//
// API endpoint: GET /releases?name={name}
func (c *Client) GetReleasesByName(ctx context.Context, name string) (*model.ReleaseList, error) {
	q := url.Values{}
	q.Set("name", name)
	return c.getReleaseList(ctx, c.releaseURL()+"?"+q.Encode())
}

// GetAllReleases returns all releases. fields selects additional fields to
// include in the summary and allDetails requests complete release objects.
//
// API endpoint: GET /releases
func (c *Client) GetAllReleases(ctx context.Context, fields string, allDetails bool) (*model.ReleaseList, error) {
	endpoint := c.releaseURL()

	q := url.Values{}
	if allDetails {
		q.Set("allDetails", "true")
	}
	if fields != "" {
		q.Set("fields", fields)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	return c.getReleaseList(ctx, endpoint)
}

// GetReleasesByExternalID returns releases carrying the external id name.
// An empty value matches every release that has the id at all.
//
// API endpoint: GET /releases/searchByExternalIds?{name}={value}
func (c *Client) GetReleasesByExternalID(ctx context.Context, name, value string) (*model.ReleaseList, error) {
	q := url.Values{}
	q.Set(name, value)
	return c.getReleaseList(ctx, c.releaseURL("searchByExternalIds")+"?"+q.Encode())
}

// CreateRelease creates a release in the component componentID. details holds
// further fields as defined by the SW360 REST API and may be nil; it is
// copied, never modified.
//
// API endpoint: POST /releases
func (c *Client) CreateRelease(ctx context.Context, name, version, componentID string, details model.Release) (model.Release, error) {
	body := make(model.Release, len(details)+3)
	maps.Copy(body, details)
	body["name"] = name
	body["version"] = version
	body["componentId"] = componentID

	endpoint := c.releaseURL()
	data, _, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("Release created", "name", name, "version", version, "component_id", componentID)
	return decodeOptionalObject(data, endpoint)
}

// UpdateRelease sends release as a PATCH to the release releaseID.
//
// API endpoint: PATCH /releases/{id}
func (c *Client) UpdateRelease(ctx context.Context, release model.Release, releaseID string) (model.Release, error) {
	if releaseID == "" {
		return nil, missingIDError()
	}

	endpoint := c.releaseURL(releaseID)
	data, _, err := c.do(ctx, http.MethodPatch, endpoint, release)
	if err != nil {
		return nil, err
	}
	return decodeOptionalObject(data, endpoint)
}

// UpdateReleaseExternalID sets, overwrites or deletes one external id of a
// release and returns its previous value ("" if it was not set).
//
// A release that does not exist is not an error: the method returns "" and
// sends nothing. The read-modify-write is not guarded against concurrent
// modification of the release.
func (c *Client) UpdateReleaseExternalID(ctx context.Context, name, value, releaseID string, mode model.UpdateMode) (string, error) {
	change, err := c.MergeReleaseExternalID(ctx, name, value, releaseID, mode)
	if err != nil {
		return "", err
	}
	return change.OldValue, nil
}

// MergeReleaseExternalID does the same as UpdateReleaseExternalID and reports
// the full outcome of the merge, including the stored value afterwards.
func (c *Client) MergeReleaseExternalID(ctx context.Context, name, value, releaseID string, mode model.UpdateMode) (*model.ExternalIDChange, error) {
	if !mode.Valid() {
		return nil, &Error{Message: "invalid update mode " + string(mode), cause: model.ErrInvalidUpdateMode}
	}
	if releaseID == "" {
		return nil, missingIDError()
	}

	current, err := c.GetRelease(ctx, releaseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &model.ExternalIDChange{}, nil
		}
		return nil, err
	}
	if current == nil {
		return &model.ExternalIDChange{}, nil
	}

	old, updated, changed, err := model.ApplyExternalIDUpdate(current, name, value, mode)
	if err != nil {
		return nil, wrapError(err, "", "failed to apply external id update")
	}

	newValue, present := updated.ExternalIDs()[name]
	change := &model.ExternalIDChange{
		Found:    true,
		Changed:  changed,
		Deleted:  changed && !present,
		OldValue: old,
		NewValue: newValue,
	}

	logging.From(ctx).Debug("External id merged",
		"release_id", releaseID,
		"name", name,
		"old_value", change.OldValue,
		"new_value", change.NewValue,
		"changed", change.Changed,
	)

	if changed {
		patch := model.Release{model.ExternalIDsKey: updated[model.ExternalIDsKey]}
		if _, err := c.UpdateRelease(ctx, patch, releaseID); err != nil {
			return nil, err
		}
	}

	return change, nil
}

// DeleteRelease deletes the release releaseID and returns the server's
// response body.
//
// API endpoint: DELETE /releases/{id}
func (c *Client) DeleteRelease(ctx context.Context, releaseID string) (json.RawMessage, error) {
	if releaseID == "" {
		return nil, missingIDError()
	}

	data, _, err := c.do(ctx, http.MethodDelete, c.releaseURL(releaseID), nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// GetReleaseUsers returns the projects and components using a release.
//
// API endpoint: GET /releases/usedBy/{id}
func (c *Client) GetReleaseUsers(ctx context.Context, releaseID string) (model.Document, error) {
	return c.getDocument(ctx, c.releaseURL("usedBy", releaseID))
}

// decodeOptionalObject decodes a write response. Bodies that are empty or not
// a JSON object yield nil.
func decodeOptionalObject(data []byte, endpoint string) (model.Release, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wrapError(err, endpoint, "failed to decode response from "+endpoint)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	return obj, nil
}

var _ interfaces.ReleaseClient = (*Client)(nil)
