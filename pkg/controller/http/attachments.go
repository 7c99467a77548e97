package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
)

const maxAttachmentMemory = 32 << 20

func attachmentLink(r *http.Request, releaseID, attachmentID string) map[string]any {
	return map[string]any{
		"self": map[string]string{
			"href": baseURL(r) + "resource/api/releases/" + releaseID + "/attachments/" + attachmentID,
		},
	}
}

func (h *releaseHandler) listAttachments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.catalog.exists(id) {
		writeError(w, r, http.StatusNotFound, "Requested Release Not Found")
		return
	}

	attachments := h.catalog.Attachments(id)
	docs := make([]model.Document, 0, len(attachments))
	for _, a := range attachments {
		docs = append(docs, model.Document{
			"filename":       a.Meta.Filename,
			"attachmentType": a.Meta.AttachmentType,
			"createdComment": a.Meta.CreatedComment,
			"_links":         attachmentLink(r, id, a.ID),
		})
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"_embedded": map[string]any{
			model.AttachmentsKey: docs,
		},
	})
}

func (h *releaseHandler) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	attachmentID := chi.URLParam(r, "attachmentID")

	for _, a := range h.catalog.Attachments(id) {
		if a.ID != attachmentID {
			continue
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.Content)
		return
	}

	writeError(w, r, http.StatusNotFound, "Requested Attachment Not Found")
}

func (h *releaseHandler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read file part")
		return
	}

	var meta model.AttachmentMeta
	if err := json.Unmarshal([]byte(r.FormValue("attachment")), &meta); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid attachment part: "+err.Error())
		return
	}
	if meta.Filename == "" {
		meta.Filename = header.Filename
	}

	if _, ok := h.catalog.Attach(id, meta, content); !ok {
		writeError(w, r, http.StatusNotFound, "Requested Release Not Found")
		return
	}

	release, _ := h.catalog.Get(id)
	writeJSON(w, r, http.StatusCreated, render(r, entry{id: id, release: release}))
}
