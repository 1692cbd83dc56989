package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Resinat/launchview/internal/api"
	"github.com/Resinat/launchview/internal/buildinfo"
	"github.com/Resinat/launchview/internal/config"
	"github.com/Resinat/launchview/internal/connectivity"
	"github.com/Resinat/launchview/internal/favorites"
	"github.com/Resinat/launchview/internal/i18n"
	"github.com/Resinat/launchview/internal/items"
	"github.com/Resinat/launchview/internal/launchwatch"
	"github.com/Resinat/launchview/internal/nav"
	"github.com/Resinat/launchview/internal/netutil"
	"github.com/Resinat/launchview/internal/profile"
	"github.com/Resinat/launchview/internal/respcache"
	"github.com/Resinat/launchview/internal/session"
	"github.com/Resinat/launchview/internal/spacex"
	"github.com/Resinat/launchview/internal/state"
)

type launchviewApp struct {
	envCfg *config.EnvConfig

	cache     *respcache.Cache
	monitor   *connectivity.Monitor
	navigator *nav.Navigator
	guard     *connectivity.Guard
	prober    *connectivity.Prober
	client    *spacex.Client
	tracker   *session.Tracker
	profiles  *profile.Service
	favorites *favorites.Store
	container *items.Container
	language  *i18n.Preference
	watch     *launchwatch.Service

	apiSrv *api.Server
}

func run() error {
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return err
	}
	if warning := envCfg.AdminTokenWarning(); warning != "" {
		log.Printf("Warning: %s", warning)
	}

	repos, dbCloser, err := state.PersistenceBootstrap(envCfg.StateDir, envCfg.CacheDir)
	if err != nil {
		return fmt.Errorf("persistence bootstrap: %w", err)
	}
	log.Println("Persistence bootstrap complete")

	app, err := newLaunchviewApp(envCfg, repos)
	if err != nil {
		_ = dbCloser.Close()
		return err
	}
	app.startBackgroundServices()

	serverErrCh := app.startServer()
	runtimeErr := waitForShutdown(serverErrCh)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.shutdown(ctx)

	if err := dbCloser.Close(); err != nil {
		log.Printf("Persistence close error: %v", err)
	}
	if runtimeErr != nil {
		return fmt.Errorf("runtime server error: %w", runtimeErr)
	}
	return nil
}

func newLaunchviewApp(envCfg *config.EnvConfig, repos *state.Repos) (*launchviewApp, error) {
	app := &launchviewApp{envCfg: envCfg}

	// Phase 1: cache, connectivity and navigation.
	app.cache = respcache.New(repos.ResponseCache, envCfg.HotCacheEntries)
	app.monitor = connectivity.NewMonitor(envCfg.InitialOnline)
	app.navigator = nav.NewNavigator(repos.Device)
	app.guard = connectivity.NewGuard(app.monitor, app.navigator, envCfg.RemoteBaseURL)

	fetcher := netutil.NewDirectFetcher(
		func() time.Duration { return envCfg.RequestTimeout },
		buildinfo.UserAgent,
	)
	if envCfg.ProbeEnabled {
		app.prober = connectivity.NewProber(connectivity.ProberConfig{
			Monitor:  app.monitor,
			Checker:  fetcher,
			URL:      envCfg.ProbeURL,
			Interval: envCfg.ProbeInterval,
			Jitter:   envCfg.ProbeJitter,
			Timeout:  envCfg.ProbeTimeout,
		})
	}

	// Phase 2: launches API client.
	app.client = spacex.NewClient(spacex.Config{
		BaseURL:      envCfg.RemoteBaseURL,
		Fetcher:      fetcher,
		Cache:        app.cache,
		Connectivity: app.monitor,
		Observer:     app.guard,
	})

	// Phase 3: session, profile and favorites.
	profileStore := profile.NewLocalStore(repos.Profiles)
	app.tracker = session.NewTracker()
	app.profiles = profile.NewService(profileStore)
	app.favorites = favorites.NewStore(repos.Device, profileStore)

	// Phase 4: list/detail state and language.
	app.container = items.NewContainer(items.Config{
		Client:        app.client,
		Navigator:     app.navigator,
		Debounce:      envCfg.SearchDebounce,
		DetailTimeout: envCfg.DetailTimeout,
		DefaultLimit:  envCfg.DefaultPageSize,
	})
	app.language = i18n.NewPreference(repos.Device)

	if envCfg.LaunchWatchEnabled {
		watch, err := launchwatch.NewService(launchwatch.ServiceConfig{
			Client:   app.client,
			Schedule: envCfg.LaunchWatchSchedule,
			PageSize: envCfg.DefaultPageSize,
		})
		if err != nil {
			app.cache.Close()
			return nil, err
		}
		app.watch = watch
	}

	app.apiSrv = api.NewServer(
		envCfg.ListenAddress,
		envCfg.Port,
		envCfg.AdminToken,
		int64(envCfg.APIMaxBodyBytes),
		api.Services{
			SystemInfo: api.SystemInfo{
				Version:   buildinfo.Version,
				GitCommit: buildinfo.GitCommit,
				BuildTime: buildinfo.BuildTime,
				StartedAt: time.Now().UTC(),
			},
			EnvConfig: envCfg,
			Items:     app.container,
			Lookup:    app.client,
			Favorites: app.favorites,
			Session:   app.tracker,
			Profiles:  app.profiles,
			Monitor:   app.monitor,
			Prober:    app.prober,
			Navigator: app.navigator,
			Language:  app.language,
			Cache:     app.cache,
			Watch:     app.watch,
		},
	)
	return app, nil
}

func (a *launchviewApp) startBackgroundServices() {
	a.guard.Start()
	log.Println("Offline guard started")

	a.favorites.Start()
	a.favorites.Follow(a.tracker)
	log.Println("Favorites store started")

	a.container.Start()
	a.restoreView()
	log.Println("Launch list container started")

	if a.prober != nil {
		a.prober.Start()
		log.Println("Connectivity prober started")
	}
	if a.watch != nil {
		a.watch.Start()
		log.Printf("Launch watch started (schedule %q)", a.envCfg.LaunchWatchSchedule)
	}
}

// restoreView reloads whatever the persisted location was showing.
func (a *launchviewApp) restoreView() {
	loc := a.navigator.Current()
	if loc.IsOffline() {
		loc = loc.From()
	}
	if id, ok := loc.DetailID(); ok {
		a.container.Select(id)
		return
	}
	if loc.Path != nav.HomePath && loc.Path != nav.ItemsPath {
		return
	}
	q := nav.PageQueryFromLocation(loc, a.envCfg.DefaultPageSize)
	if err := a.container.Load(q); err != nil {
		log.Printf("Restore launch list %s: %v", loc, err)
	}
}

func (a *launchviewApp) startServer() <-chan error {
	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("launchview API starting on %s", formatListenURL(a.envCfg.ListenAddress, a.envCfg.Port))
		err := a.apiSrv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		serverErrCh <- fmt.Errorf("api server: %w", err)
	}()
	return serverErrCh
}

func waitForShutdown(serverErrCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Printf("Received signal %s, shutting down...", sig)
		return nil
	case err := <-serverErrCh:
		log.Printf("Received server runtime error (%v), shutting down...", err)
		return err
	}
}

func formatListenURL(listenAddress string, port int) string {
	return "http://" + net.JoinHostPort(listenAddress, strconv.Itoa(port))
}

func (a *launchviewApp) shutdown(ctx context.Context) {
	if err := a.apiSrv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("API server stopped")

	// Stop in order: signal sources first, then state owners, then storage.
	if a.watch != nil {
		a.watch.Stop()
		log.Println("Launch watch stopped")
	}
	if a.prober != nil {
		a.prober.Stop()
		log.Println("Connectivity prober stopped")
	}
	a.guard.Stop()
	log.Println("Offline guard stopped")

	a.container.Stop()
	log.Println("Launch list container stopped")

	a.favorites.Stop() // drains queued account writes
	log.Println("Favorites store stopped")

	a.cache.Close()
	log.Println("Server stopped")
}
