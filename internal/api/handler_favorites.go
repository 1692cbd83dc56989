package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/favorites"
)

// HandleListFavorites returns a handler for GET /api/v1/favorites.
func HandleListFavorites(store *favorites.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, store.Snapshot())
	}
}

type toggleFavoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// HandleToggleFavorite returns a handler for POST /api/v1/favorites/{id}/actions/toggle.
func HandleToggleFavorite(store *favorites.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requirePathParam(w, r, "id")
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, toggleFavoriteResponse{ID: id, Favorite: store.Toggle(id)})
	}
}

type noticeResponse struct {
	Notice  string `json:"notice"`
	Present bool   `json:"present"`
}

// HandleGetFavoritesNotice returns a handler for GET /api/v1/favorites/notice.
func HandleGetFavoritesNotice(store *favorites.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, ok := store.Notice()
		WriteJSON(w, http.StatusOK, noticeResponse{Notice: msg, Present: ok})
	}
}

// HandleClearFavoritesNotice returns a handler for DELETE /api/v1/favorites/notice.
func HandleClearFavoritesNotice(store *favorites.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.ClearNotice()
		WriteStatus(w, http.StatusNoContent)
	}
}
