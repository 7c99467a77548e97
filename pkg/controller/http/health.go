package http

import (
	"net/http"

	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, &model.HealthStatus{
		Status:  "healthy",
		Service: "sw360ctl-mock",
		Version: types.Version,
	})
}

// handleIndex answers the API root used by clients to check their token
func handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"_links": map[string]any{
			"sw360:releases": map[string]string{"href": baseURL(r) + "resource/api/releases"},
		},
	})
}
