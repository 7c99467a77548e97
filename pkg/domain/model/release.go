package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ExternalIDsKey is the release field holding external identifiers
const ExternalIDsKey = "externalIds"

// Release represents a release record as returned by SW360. Fields are defined
// by the remote service and passed through untouched.
type Release map[string]any

// Document represents any other JSON object returned by SW360
type Document map[string]any

// Name returns the release name or an empty string
func (r Release) Name() string {
	return r.stringField("name")
}

// Version returns the release version or an empty string
func (r Release) Version() string {
	return r.stringField("version")
}

func (r Release) stringField(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// ExternalIDs returns a copy of the external identifier map. Non-string values
// are rendered as JSON.
func (r Release) ExternalIDs() map[string]string {
	raw, ok := r[ExternalIDsKey].(map[string]any)
	if !ok {
		return map[string]string{}
	}

	ids := make(map[string]string, len(raw))
	for k, v := range raw {
		ids[k] = externalIDString(v)
	}
	return ids
}

func externalIDString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprint(s)
		}
		return string(data)
	}
}

// UpdateMode controls how an existing external identifier is treated
type UpdateMode string

const (
	UpdateModeNone      UpdateMode = "none"
	UpdateModeOverwrite UpdateMode = "overwrite"
	UpdateModeDelete    UpdateMode = "delete"
)

// ErrInvalidUpdateMode is returned for any mode other than none, overwrite and delete
var ErrInvalidUpdateMode = errors.New("invalid external id update mode")

// Valid reports whether m is a known mode
func (m UpdateMode) Valid() bool {
	switch m {
	case UpdateModeNone, UpdateModeOverwrite, UpdateModeDelete:
		return true
	default:
		return false
	}
}

// ParseUpdateMode converts a case-insensitive string into an UpdateMode.
// An empty string means UpdateModeNone.
func ParseUpdateMode(s string) (UpdateMode, error) {
	if s == "" {
		return UpdateModeNone, nil
	}

	mode := UpdateMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.Valid() {
		return "", goerr.Wrap(ErrInvalidUpdateMode, "unknown update mode", goerr.V("mode", s))
	}
	return mode, nil
}

// ApplyExternalIDUpdate merges one external identifier into release.
//
// If the identifier is not set yet it is always added, whatever the mode.
// If it is set, UpdateModeNone keeps it, UpdateModeOverwrite replaces it and
// UpdateModeDelete removes it. The returned old value is empty when the
// identifier was not set. release itself is never modified; updated is a copy
// with its own externalIds map.
func ApplyExternalIDUpdate(release Release, name, value string, mode UpdateMode) (old string, updated Release, changed bool, err error) {
	if !mode.Valid() {
		return "", nil, false, goerr.Wrap(ErrInvalidUpdateMode, "unknown update mode", goerr.V("mode", string(mode)))
	}

	updated = maps.Clone(release)
	if updated == nil {
		updated = Release{}
	}

	ids := map[string]any{}
	if current, ok := release[ExternalIDsKey].(map[string]any); ok {
		ids = maps.Clone(current)
	}
	updated[ExternalIDsKey] = ids

	existing, found := ids[name]
	if !found {
		ids[name] = value
		return "", updated, true, nil
	}

	old = externalIDString(existing)
	switch mode {
	case UpdateModeOverwrite:
		ids[name] = value
		return old, updated, true, nil
	case UpdateModeDelete:
		delete(ids, name)
		return old, updated, true, nil
	default:
		return old, updated, false, nil
	}
}

// CreateReleaseInput is the input of a release creation
type CreateReleaseInput struct {
	Name        string
	Version     string
	ComponentID string
	DetailsFile string // Optional JSON or TOML file with further release fields
}

// ExternalIDInput is the input of an external identifier update
type ExternalIDInput struct {
	ReleaseID string
	Name      string
	Value     string
	Mode      string
}

// ExternalIDChange is the outcome of merging one external identifier into a
// stored release. Found is false when the release does not exist; nothing is
// sent then. Changed is true when the merge altered the identifier map and a
// PATCH was sent. Deleted is true when the identifier was removed.
type ExternalIDChange struct {
	Found    bool
	Changed  bool
	Deleted  bool
	OldValue string
	NewValue string
}

// ExternalIDResult reports the outcome of an external identifier update
type ExternalIDResult struct {
	ReleaseID string     `json:"release_id"`
	Name      string     `json:"name"`
	OldValue  string     `json:"old_value"`
	NewValue  string     `json:"new_value"`
	Mode      UpdateMode `json:"mode"`
	Found     bool       `json:"found"`
	Changed   bool       `json:"changed"`
	Deleted   bool       `json:"deleted"`
}
