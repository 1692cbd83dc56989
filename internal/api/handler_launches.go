package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/favorites"
	"github.com/Resinat/launchview/internal/items"
	"github.com/Resinat/launchview/internal/model"
)

type launchesStateResponse struct {
	items.State
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func newLaunchesStateResponse(s items.State) launchesStateResponse {
	return launchesStateResponse{
		State:       s,
		TotalPages:  s.TotalPages(),
		HasNextPage: s.HasNextPage(),
		HasPrevPage: s.HasPrevPage(),
	}
}

// HandleLaunchesState returns a handler for GET /api/v1/launches/state.
func HandleLaunchesState(c *items.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, newLaunchesStateResponse(c.State()))
	}
}

type setQueryRequest struct {
	Q           string `json:"q"`
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	SuccessOnly bool   `json:"success_only"`
	// Immediate skips the debounce delay.
	Immediate bool `json:"immediate"`
}

// HandleSetLaunchesQuery returns a handler for PUT /api/v1/launches/query.
func HandleSetLaunchesQuery(c *items.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setQueryRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		q := model.PageQuery{Term: req.Q, Page: req.Page, Limit: req.Limit, SuccessOnly: req.SuccessOnly}
		var err error
		if req.Immediate {
			err = c.Load(q)
		} else {
			err = c.SetQuery(q)
		}
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		WriteJSON(w, http.StatusAccepted, newLaunchesStateResponse(c.State()))
	}
}

// HandleReloadLaunches returns a handler for POST /api/v1/launches/actions/reload.
func HandleReloadLaunches(c *items.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Reload()
		WriteStatus(w, http.StatusAccepted)
	}
}

type selectLaunchRequest struct {
	ID string `json:"id"`
}

// HandleSelectLaunch returns a handler for PUT /api/v1/launches/selected.
// A blank id is accepted and resolves to the not-found state.
func HandleSelectLaunch(c *items.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectLaunchRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		c.Select(req.ID)
		WriteStatus(w, http.StatusAccepted)
	}
}

// HandleLaunchDetailView returns a handler for GET /api/v1/launches/{id}/view.
func HandleLaunchDetailView(lookup items.Lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requirePathParam(w, r, "id")
		if !ok {
			return
		}
		view, err := items.LoadDetailView(r.Context(), lookup, id)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, view)
	}
}

// HandleFavoriteLaunches returns a handler for GET /api/v1/favorites/launches.
func HandleFavoriteLaunches(store *favorites.Store, getter favorites.LaunchGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		launches, err := favorites.LoadLaunches(r.Context(), getter, store.List())
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": launches})
	}
}
