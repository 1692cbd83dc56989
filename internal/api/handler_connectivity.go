package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/connectivity"
)

type connectivityResponse struct {
	Online  bool `json:"online"`
	Changed bool `json:"changed,omitempty"`
}

// HandleGetConnectivity returns a handler for GET /api/v1/connectivity.
func HandleGetConnectivity(m *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, connectivityResponse{Online: m.Online()})
	}
}

type setConnectivityRequest struct {
	Online *bool `json:"online"`
}

// HandleSetConnectivity returns a handler for PUT /api/v1/connectivity.
// Hosts with their own network signal report it here.
func HandleSetConnectivity(m *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setConnectivityRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		if req.Online == nil {
			writeInvalidArgument(w, "online: is required")
			return
		}
		changed := m.Set(*req.Online)
		WriteJSON(w, http.StatusOK, connectivityResponse{Online: m.Online(), Changed: changed})
	}
}

// HandleCheckConnectivity returns a handler for
// POST /api/v1/connectivity/actions/check.
func HandleCheckConnectivity(p *connectivity.Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			writeServiceError(w, conflictError("connectivity probe is disabled"))
			return
		}
		WriteJSON(w, http.StatusOK, connectivityResponse{Online: p.ProbeOnce()})
	}
}
