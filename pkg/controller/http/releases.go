package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
)

type releaseHandler struct {
	catalog *Catalog
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func selfLink(r *http.Request, id string) map[string]any {
	return map[string]any{
		"self": map[string]string{"href": baseURL(r) + "resource/api/releases/" + id},
	}
}

// render returns the full release with its self link
func render(r *http.Request, e entry) model.Release {
	out := e.release
	out["_links"] = selfLink(r, e.id)
	return out
}

// summarize returns the fields SW360 puts into collection responses
func summarize(r *http.Request, e entry, fields []string) model.Release {
	out := model.Release{
		"name":    e.release["name"],
		"version": e.release["version"],
		"_links":  selfLink(r, e.id),
	}
	for _, f := range fields {
		if v, ok := e.release[f]; ok {
			out[f] = v
		}
	}
	return out
}

func writeCollection(w http.ResponseWriter, r *http.Request, releases []model.Release) {
	if releases == nil {
		releases = []model.Release{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"_embedded": map[string]any{
			model.ReleasesKey: releases,
		},
	})
}

func (h *releaseHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var match func(model.Release) bool
	if name := q.Get("name"); name != "" {
		match = func(rel model.Release) bool { return rel.Name() == name }
	}

	var fields []string
	if f := q.Get("fields"); f != "" {
		fields = strings.Split(f, ",")
	}
	allDetails := q.Get("allDetails") == "true"

	entries := h.catalog.list(match)
	releases := make([]model.Release, 0, len(entries))
	for _, e := range entries {
		if allDetails {
			releases = append(releases, render(r, e))
		} else {
			releases = append(releases, summarize(r, e, fields))
		}
	}

	writeCollection(w, r, releases)
}

func (h *releaseHandler) searchByExternalIDs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	entries := h.catalog.list(func(rel model.Release) bool {
		ids := rel.ExternalIDs()
		for name, values := range q {
			v, ok := ids[name]
			if !ok {
				return false
			}
			if len(values) > 0 && values[0] != "" && values[0] != v {
				return false
			}
		}
		return true
	})

	releases := make([]model.Release, 0, len(entries))
	for _, e := range entries {
		releases = append(releases, summarize(r, e, []string{model.ExternalIDsKey}))
	}
	writeCollection(w, r, releases)
}

func (h *releaseHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	release, ok := h.catalog.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Requested Release Not Found")
		return
	}

	writeJSON(w, r, http.StatusOK, render(r, entry{id: id, release: release}))
}

func (h *releaseHandler) create(w http.ResponseWriter, r *http.Request) {
	var release model.Release
	if err := json.NewDecoder(r.Body).Decode(&release); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid release: "+err.Error())
		return
	}
	if release.Name() == "" || release.Version() == "" {
		writeError(w, r, http.StatusBadRequest, "name and version are required")
		return
	}
	if _, ok := release["componentId"].(string); !ok {
		writeError(w, r, http.StatusBadRequest, "componentId is required")
		return
	}

	id, ok := h.catalog.create(release)
	if !ok {
		writeError(w, r, http.StatusConflict, "sw360 release with name '"+release.Name()+"' already exists.")
		return
	}

	created, _ := h.catalog.Get(id)
	writeJSON(w, r, http.StatusCreated, render(r, entry{id: id, release: created}))
}

func (h *releaseHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.Release
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid release: "+err.Error())
		return
	}
	delete(fields, "_links")
	delete(fields, "_embedded")

	updated, ok := h.catalog.patch(id, fields)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Requested Release Not Found")
		return
	}

	writeJSON(w, r, http.StatusOK, render(r, entry{id: id, release: updated}))
}

func (h *releaseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status := http.StatusOK
	if !h.catalog.delete(id) {
		status = http.StatusNotFound
	}

	// SW360 answers deletions with a multi-status list
	writeJSON(w, r, status, []map[string]any{
		{"resourceId": id, "status": status},
	})
}

func (h *releaseHandler) usedBy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	projects := h.catalog.users(id)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"_embedded": map[string]any{
			model.ProjectsKey: projects,
		},
	})
}
