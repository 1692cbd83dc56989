package api

import (
	"net/http"

	"github.com/Resinat/launchview/internal/respcache"
)

type cacheStatsResponse struct {
	Namespace string `json:"namespace"`
	Entries   int    `json:"entries"`
}

// HandleCacheStats returns a handler for GET /api/v1/cache/stats.
func HandleCacheStats(c *respcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cacheStatsResponse{Namespace: respcache.Namespace(), Entries: c.Len()})
	}
}

// HandleClearCache returns a handler for POST /api/v1/cache/actions/clear.
func HandleClearCache(c *respcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]int64{"removed": c.Clear()})
	}
}
