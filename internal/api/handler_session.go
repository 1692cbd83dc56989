package api

import (
	"net/http"
	"strings"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/profile"
	"github.com/Resinat/launchview/internal/session"
)

type sessionResponse struct {
	SignedIn  bool             `json:"signed_in"`
	Principal *model.Principal `json:"principal"`
}

// HandleGetSession returns a handler for GET /api/v1/session.
func HandleGetSession(tracker *session.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tracker.Current()
		WriteJSON(w, http.StatusOK, sessionResponse{SignedIn: p != nil, Principal: p})
	}
}

type signInRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// HandleSignIn returns a handler for PUT /api/v1/session. The identity
// provider has already authenticated the principal; this records it and
// makes sure its profile document exists.
func HandleSignIn(tracker *session.Tracker, profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		p := model.Principal{
			UID:         strings.TrimSpace(req.UID),
			Email:       strings.TrimSpace(req.Email),
			DisplayName: strings.TrimSpace(req.DisplayName),
		}
		if p.UID == "" {
			writeInvalidArgument(w, "uid: must not be empty")
			return
		}
		if _, err := profiles.Load(r.Context(), p); err != nil {
			writeServiceError(w, err)
			return
		}
		tracker.Login(p)
		WriteJSON(w, http.StatusOK, sessionResponse{SignedIn: true, Principal: &p})
	}
}

// HandleSignOut returns a handler for DELETE /api/v1/session.
func HandleSignOut(tracker *session.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker.Logout()
		WriteStatus(w, http.StatusNoContent)
	}
}
