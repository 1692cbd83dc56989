package api

import (
	"errors"
	"net/http"

	"github.com/Resinat/launchview/internal/profile"
	"github.com/Resinat/launchview/internal/session"
)

// HandleGetProfile returns a handler for GET /api/v1/profile.
func HandleGetProfile(tracker *session.Tracker, profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, tracker)
		if !ok {
			return
		}
		p, err := profiles.Load(r.Context(), principal)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, p)
	}
}

type updatePhotoRequest struct {
	PhotoData string `json:"photo_data"`
}

// HandleUpdateProfilePhoto returns a handler for PUT /api/v1/profile/photo.
func HandleUpdateProfilePhoto(tracker *session.Tracker, profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, tracker)
		if !ok {
			return
		}
		var req updatePhotoRequest
		if !decodeBodyOrWriteInvalid(w, r, &req) {
			return
		}
		if err := profiles.UpdatePhoto(r.Context(), principal.UID, req.PhotoData); err != nil {
			if errors.Is(err, profile.ErrInvalidPhoto) {
				writeInvalidArgument(w, err.Error())
				return
			}
			writeServiceError(w, err)
			return
		}
		WriteStatus(w, http.StatusNoContent)
	}
}

// HandleDeleteProfilePhoto returns a handler for DELETE /api/v1/profile/photo.
func HandleDeleteProfilePhoto(tracker *session.Tracker, profiles *profile.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, tracker)
		if !ok {
			return
		}
		if err := profiles.ClearPhoto(r.Context(), principal.UID); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteStatus(w, http.StatusNoContent)
	}
}
