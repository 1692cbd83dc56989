package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/connectivity"
)

type healthzResponse struct {
	Status string `json:"status"`
	Online bool   `json:"online"`
}

// HandleHealthz returns a handler for GET /healthz. It needs no auth and
// reports whether the launches API is believed reachable; the daemon itself
// is healthy either way.
func HandleHealthz(monitor *connectivity.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, healthzResponse{Status: "ok", Online: monitor.Online()})
	}
}
