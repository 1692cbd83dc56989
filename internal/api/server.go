package api

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/Resinat/launchview/internal/config"
	"github.com/Resinat/launchview/internal/connectivity"
	"github.com/Resinat/launchview/internal/favorites"
	"github.com/Resinat/launchview/internal/i18n"
	"github.com/Resinat/launchview/internal/items"
	"github.com/Resinat/launchview/internal/launchwatch"
	"github.com/Resinat/launchview/internal/nav"
	"github.com/Resinat/launchview/internal/profile"
	"github.com/Resinat/launchview/internal/respcache"
	"github.com/Resinat/launchview/internal/session"
)

// Services are the components the API exposes. Prober and Watch may be
// nil when disabled; their routes then report CONFLICT or are absent.
type Services struct {
	SystemInfo SystemInfo
	EnvConfig  *config.EnvConfig

	Items     *items.Container
	Lookup    items.Lookup
	Favorites *favorites.Store
	Session   *session.Tracker
	Profiles  *profile.Service
	Monitor   *connectivity.Monitor
	Prober    *connectivity.Prober
	Navigator *nav.Navigator
	Language  *i18n.Preference
	Cache     *respcache.Cache
	Watch     *launchwatch.Service
}

// Server wraps the HTTP server and mux for the launchview API.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates a new API server wired with all routes.
func NewServer(
	listenAddress string,
	port int,
	adminToken string,
	apiMaxBodyBytes int64,
	svc Services,
) *Server {
	mux := http.NewServeMux()

	// Public (no auth)
	mux.Handle("GET /healthz", HandleHealthz(svc.Monitor))

	// Authenticated routes
	authed := http.NewServeMux()
	authed.Handle("GET /api/v1/system/info", HandleSystemInfo(svc.SystemInfo))
	authed.Handle("GET /api/v1/system/config/env", HandleSystemEnvConfig(svc.EnvConfig))

	// List/detail state.
	authed.Handle("GET /api/v1/launches/state", HandleLaunchesState(svc.Items))
	authed.Handle("PUT /api/v1/launches/query", HandleSetLaunchesQuery(svc.Items))
	authed.Handle("POST /api/v1/launches/actions/reload", HandleReloadLaunches(svc.Items))
	authed.Handle("PUT /api/v1/launches/selected", HandleSelectLaunch(svc.Items))
	authed.Handle("GET /api/v1/launches/{id}/view", HandleLaunchDetailView(svc.Lookup))

	// Favorites.
	authed.Handle("GET /api/v1/favorites", HandleListFavorites(svc.Favorites))
	authed.Handle("GET /api/v1/favorites/launches", HandleFavoriteLaunches(svc.Favorites, svc.Lookup))
	authed.Handle("POST /api/v1/favorites/{id}/actions/toggle", HandleToggleFavorite(svc.Favorites))
	authed.Handle("GET /api/v1/favorites/notice", HandleGetFavoritesNotice(svc.Favorites))
	authed.Handle("DELETE /api/v1/favorites/notice", HandleClearFavoritesNotice(svc.Favorites))

	// Session and profile.
	authed.Handle("GET /api/v1/session", HandleGetSession(svc.Session))
	authed.Handle("PUT /api/v1/session", HandleSignIn(svc.Session, svc.Profiles))
	authed.Handle("DELETE /api/v1/session", HandleSignOut(svc.Session))
	authed.Handle("GET /api/v1/profile", HandleGetProfile(svc.Session, svc.Profiles))
	authed.Handle("PUT /api/v1/profile/photo", HandleUpdateProfilePhoto(svc.Session, svc.Profiles))
	authed.Handle("DELETE /api/v1/profile/photo", HandleDeleteProfilePhoto(svc.Session, svc.Profiles))

	// Connectivity and navigation.
	authed.Handle("GET /api/v1/connectivity", HandleGetConnectivity(svc.Monitor))
	authed.Handle("PUT /api/v1/connectivity", HandleSetConnectivity(svc.Monitor))
	authed.Handle("POST /api/v1/connectivity/actions/check", HandleCheckConnectivity(svc.Prober))
	authed.Handle("GET /api/v1/location", HandleGetLocation(svc.Navigator))
	authed.Handle("PUT /api/v1/location", HandleSetLocation(svc.Navigator))
	authed.Handle("POST /api/v1/location/actions/back", HandleLocationBack(svc.Navigator))

	// Language.
	authed.Handle("GET /api/v1/language", HandleGetLanguage(svc.Language))
	authed.Handle("PUT /api/v1/language", HandleSetLanguage(svc.Language))

	// Response cache.
	authed.Handle("GET /api/v1/cache/stats", HandleCacheStats(svc.Cache))
	authed.Handle("POST /api/v1/cache/actions/clear", HandleClearCache(svc.Cache))

	if svc.Watch != nil {
		authed.Handle("GET /api/v1/launch-watch", HandleLaunchWatchStatus(svc.Watch))
		authed.Handle("POST /api/v1/launch-watch/actions/poll-now", HandleLaunchWatchPollNow(svc.Watch))
	}

	// State stream.
	authed.Handle("GET /api/v1/events", HandleEvents(svc))

	limitedAuthed := RequestBodyLimitMiddleware(apiMaxBodyBytes, NoStoreMiddleware(authed))
	mux.Handle("/api/", AccessLogMiddleware(AuthMiddleware(adminToken, limitedAuthed)))

	srv := &http.Server{
		Addr:    net.JoinHostPort(listenAddress, strconv.Itoa(port)),
		Handler: mux,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}
