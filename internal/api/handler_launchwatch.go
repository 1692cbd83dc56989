package api

import (
	"net/http"
	"time"

	"github.com/Resinat/launchview/internal/launchwatch"
)

type launchWatchResponse struct {
	NextRun *time.Time           `json:"next_run,omitempty"`
	Notices []launchwatch.Notice `json:"notices"`
}

// HandleLaunchWatchStatus returns a handler for GET /api/v1/launch-watch.
func HandleLaunchWatchStatus(s *launchwatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := launchWatchResponse{Notices: s.Recent()}
		if resp.Notices == nil {
			resp.Notices = []launchwatch.Notice{}
		}
		if next := s.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleLaunchWatchPollNow returns a handler for
// POST /api/v1/launch-watch/actions/poll-now.
func HandleLaunchWatchPollNow(s *launchwatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notices, err := s.PollNow(r.Context())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		if notices == nil {
			notices = []launchwatch.Notice{}
		}
		WriteJSON(w, http.StatusOK, map[string]any{"notices": notices})
	}
}
