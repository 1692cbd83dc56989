package api

import (
	"net/http"
	"time"

	"github.com/Resinat/launchview/internal/config"
)

// SystemInfo describes the running build.
type SystemInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime string    `json:"build_time"`
	StartedAt time.Time `json:"started_at"`
}

// HandleSystemInfo returns a handler for GET /api/v1/system/info.
func HandleSystemInfo(info SystemInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, info)
	}
}

type envConfigResponse struct {
	CacheDir            string `json:"cache_dir"`
	StateDir            string `json:"state_dir"`
	ListenAddress       string `json:"listen_address"`
	Port                int    `json:"port"`
	APIMaxBodyBytes     int    `json:"api_max_body_bytes"`
	AdminTokenSet       bool   `json:"admin_token_set"`
	RemoteBaseURL       string `json:"remote_base_url"`
	RequestTimeout      string `json:"request_timeout"`
	SearchDebounce      string `json:"search_debounce"`
	DetailTimeout       string `json:"detail_timeout"`
	DefaultPageSize     int    `json:"default_page_size"`
	HotCacheEntries     int    `json:"hot_cache_entries"`
	ProbeEnabled        bool   `json:"probe_enabled"`
	ProbeURL            string `json:"probe_url"`
	ProbeInterval       string `json:"probe_interval"`
	LaunchWatchEnabled  bool   `json:"launch_watch_enabled"`
	LaunchWatchSchedule string `json:"launch_watch_schedule"`
}

// HandleSystemEnvConfig returns a handler for GET /api/v1/system/config/env.
// The admin token is never echoed.
func HandleSystemEnvConfig(cfg *config.EnvConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg == nil {
			WriteJSON(w, http.StatusOK, nil)
			return
		}
		WriteJSON(w, http.StatusOK, envConfigResponse{
			CacheDir:            cfg.CacheDir,
			StateDir:            cfg.StateDir,
			ListenAddress:       cfg.ListenAddress,
			Port:                cfg.Port,
			APIMaxBodyBytes:     cfg.APIMaxBodyBytes,
			AdminTokenSet:       cfg.AdminToken != "",
			RemoteBaseURL:       cfg.RemoteBaseURL,
			RequestTimeout:      cfg.RequestTimeout.String(),
			SearchDebounce:      cfg.SearchDebounce.String(),
			DetailTimeout:       cfg.DetailTimeout.String(),
			DefaultPageSize:     cfg.DefaultPageSize,
			HotCacheEntries:     cfg.HotCacheEntries,
			ProbeEnabled:        cfg.ProbeEnabled,
			ProbeURL:            cfg.ProbeURL,
			ProbeInterval:       cfg.ProbeInterval.String(),
			LaunchWatchEnabled:  cfg.LaunchWatchEnabled,
			LaunchWatchSchedule: cfg.LaunchWatchSchedule,
		})
	}
}
