package model

import "encoding/json"

const (
	// ReleasesKey is the _embedded key of release collections
	ReleasesKey = "sw360:releases"
	// ProjectsKey is the _embedded key of project collections
	ProjectsKey = "sw360:projects"
	// AttachmentsKey is the _embedded key of attachment collections
	AttachmentsKey = "sw360:attachments"
)

type envelope struct {
	Embedded map[string]json.RawMessage `json:"_embedded"`
}

// UnwrapEmbedded extracts the collection stored at _embedded.<key> of a HAL
// response body. ok is false when body is not an object, has no _embedded
// member, or _embedded has no such key; callers then use body as is.
func UnwrapEmbedded(body []byte, key string) (items json.RawMessage, ok bool) {
	if len(body) == 0 {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}

	items, ok = env.Embedded[key]
	if !ok || len(items) == 0 || string(items) == "null" {
		return nil, false
	}
	return items, true
}

// ReleaseList is the result of a release collection query
type ReleaseList struct {
	// Releases holds the unwrapped collection. It is nil when the response was
	// not an envelope.
	Releases []Release
	// Raw is the response body as received
	Raw json.RawMessage

	embedded bool
}

// NewReleaseList builds a ReleaseList from a collection response body
func NewReleaseList(body []byte) (*ReleaseList, error) {
	list := &ReleaseList{Raw: json.RawMessage(body)}

	items, ok := UnwrapEmbedded(body, ReleasesKey)
	if !ok {
		return list, nil
	}

	if err := json.Unmarshal(items, &list.Releases); err != nil {
		return nil, err
	}
	list.embedded = true
	return list, nil
}

// Embedded reports whether the response carried an _embedded release collection
func (l *ReleaseList) Embedded() bool {
	return l != nil && l.embedded
}

// MarshalJSON renders the unwrapped releases, or the raw body when the
// response was not an envelope
func (l *ReleaseList) MarshalJSON() ([]byte, error) {
	if l.Embedded() {
		return json.Marshal(l.Releases)
	}
	if len(l.Raw) == 0 {
		return []byte("null"), nil
	}
	return l.Raw, nil
}
