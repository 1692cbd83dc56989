package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/nav"
)

type locationResponse struct {
	Location string `json:"location"`
	Path     string `json:"path"`
	Offline  bool   `json:"offline"`
	From     string `json:"from,omitempty"`
}

func newLocationResponse(loc nav.Location) locationResponse {
	resp := locationResponse{
		Location: loc.String(),
		Path:     loc.Path,
		Offline:  loc.IsOffline(),
	}
	if resp.Offline {
		resp.From = loc.From().String()
	}
	return resp
}

// HandleGetLocation returns a handler for GET /api/v1/location.
func HandleGetLocation(n *nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, newLocationResponse(n.Current()))
	}
}

type setLocationRequest struct {
	Location string `json:"location"`
}

// HandleSetLocation returns a handler for PUT /api/v1/location.
func HandleSetLocation(n *nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setLocationRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		loc, err := nav.ParseLocation(req.Location)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		n.Navigate(loc)
		WriteJSON(w, http.StatusOK, newLocationResponse(n.Current()))
	}
}

// HandleLocationBack returns a handler for POST /api/v1/location/actions/back.
func HandleLocationBack(n *nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, newLocationResponse(n.Return()))
	}
}
