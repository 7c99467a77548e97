package http

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
)

// RecordedRequest is a request received by the fake catalog
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Header map[string]string
}

// Catalog is an in-memory release store backing the fake SW360 server
type Catalog struct {
	mu       sync.Mutex
	releases map[string]model.Release
	order    []string
	usedBy   map[string][]model.Document
	files    map[string][]Attachment
	requests []RecordedRequest
}

// Attachment is a file stored with a release
type Attachment struct {
	ID      string
	Meta    model.AttachmentMeta
	Content []byte
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		releases: map[string]model.Release{},
		usedBy:   map[string][]model.Document{},
		files:    map[string][]Attachment{},
	}
}

// Put stores release under id, replacing any existing release. An empty id is
// replaced by a generated one. The stored id is returned.
func (c *Catalog) Put(id string, release model.Release) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(id, release)
}

func (c *Catalog) put(id string, release model.Release) string {
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := c.releases[id]; !ok {
		c.order = append(c.order, id)
	}
	c.releases[id] = cloneRelease(release)
	return id
}

// Get returns a copy of the release id
func (c *Catalog) Get(id string) (model.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.releases[id]
	if !ok {
		return nil, false
	}
	return cloneRelease(r), true
}

// AddUser registers a project using the release id
func (c *Catalog) AddUser(id string, project model.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usedBy[id] = append(c.usedBy[id], maps.Clone(project))
}

// Attach stores a file with the release id and returns the attachment id. It
// returns false when the release does not exist.
func (c *Catalog) Attach(id string, meta model.AttachmentMeta, content []byte) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.releases[id]; !ok {
		return "", false
	}
	a := Attachment{
		ID:      uuid.NewString(),
		Meta:    meta,
		Content: slices.Clone(content),
	}
	c.files[id] = append(c.files[id], a)
	return a.ID, true
}

// Attachments returns the files stored with the release id
func (c *Catalog) Attachments(id string) []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.files[id])
}

func (c *Catalog) exists(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.releases[id]
	return ok
}

// Requests returns the requests received so far
func (c *Catalog) Requests() []RecordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RecordedRequest(nil), c.requests...)
}

func (c *Catalog) record(req RecordedRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
}

type entry struct {
	id      string
	release model.Release
}

func (c *Catalog) list(match func(model.Release) bool) []entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []entry
	for _, id := range c.order {
		r, ok := c.releases[id]
		if !ok || (match != nil && !match(r)) {
			continue
		}
		out = append(out, entry{id: id, release: cloneRelease(r)})
	}
	return out
}

func (c *Catalog) create(release model.Release) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.releases {
		if r.Name() == release.Name() && r.Version() == release.Version() {
			return "", false
		}
	}
	return c.put("", release), true
}

func (c *Catalog) patch(id string, fields model.Release) (model.Release, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.releases[id]
	if !ok {
		return nil, false
	}
	for k, v := range fields {
		r[k] = v
	}
	return cloneRelease(r), true
}

func (c *Catalog) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.releases[id]; !ok {
		return false
	}
	delete(c.releases, id)
	delete(c.files, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Catalog) users(id string) []model.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Document{}, c.usedBy[id]...)
}

func cloneRelease(r model.Release) model.Release {
	out := maps.Clone(r)
	if out == nil {
		out = model.Release{}
	}
	if ids, ok := out[model.ExternalIDsKey].(map[string]any); ok {
		out[model.ExternalIDsKey] = maps.Clone(ids)
	}
	return out
}
