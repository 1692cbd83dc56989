// Package config handles environment-based configuration loading.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// EnvConfig holds all environment-variable-driven settings.
type EnvConfig struct {
	// Directories
	CacheDir string `env:"LAUNCHVIEW_CACHE_DIR" envDefault:"/var/cache/launchview"`
	StateDir string `env:"LAUNCHVIEW_STATE_DIR" envDefault:"/var/lib/launchview"`

	// Network
	ListenAddress   string `env:"LAUNCHVIEW_LISTEN_ADDRESS" envDefault:"127.0.0.1"`
	Port            int    `env:"LAUNCHVIEW_PORT" envDefault:"2270"`
	APIMaxBodyBytes int    `env:"LAUNCHVIEW_API_MAX_BODY_BYTES" envDefault:"4194304"`

	// Auth (must be defined; empty means auth disabled)
	AdminToken string `env:"LAUNCHVIEW_ADMIN_TOKEN"`

	// Launches API
	RemoteBaseURL  string        `env:"LAUNCHVIEW_REMOTE_BASE_URL" envDefault:"https://api.spacexdata.com/v5"`
	RequestTimeout time.Duration `env:"LAUNCHVIEW_REQUEST_TIMEOUT" envDefault:"30s"`

	// List/detail state
	SearchDebounce  time.Duration `env:"LAUNCHVIEW_SEARCH_DEBOUNCE" envDefault:"300ms"`
	DetailTimeout   time.Duration `env:"LAUNCHVIEW_DETAIL_TIMEOUT" envDefault:"10s"`
	DefaultPageSize int           `env:"LAUNCHVIEW_DEFAULT_PAGE_SIZE" envDefault:"10"`

	// Response cache
	HotCacheEntries int `env:"LAUNCHVIEW_HOT_CACHE_ENTRIES" envDefault:"512"`

	// Connectivity
	InitialOnline bool          `env:"LAUNCHVIEW_INITIAL_ONLINE" envDefault:"true"`
	ProbeEnabled  bool          `env:"LAUNCHVIEW_PROBE_ENABLED" envDefault:"true"`
	ProbeURL      string        `env:"LAUNCHVIEW_PROBE_URL" envDefault:"https://www.gstatic.com/generate_204"`
	ProbeInterval time.Duration `env:"LAUNCHVIEW_PROBE_INTERVAL" envDefault:"13s"`
	ProbeJitter   time.Duration `env:"LAUNCHVIEW_PROBE_JITTER" envDefault:"4s"`
	ProbeTimeout  time.Duration `env:"LAUNCHVIEW_PROBE_TIMEOUT" envDefault:"5s"`

	// Launch watch
	LaunchWatchEnabled  bool   `env:"LAUNCHVIEW_LAUNCH_WATCH_ENABLED" envDefault:"true"`
	LaunchWatchSchedule string `env:"LAUNCHVIEW_LAUNCH_WATCH_SCHEDULE" envDefault:"*/30 * * * *"`
}

// LoadEnvConfig reads environment variables and returns a validated EnvConfig.
// Returns an error if any required variable is missing or any value is invalid.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	var errs []string

	if err := env.Parse(cfg); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				errs = append(errs, e.Error())
			}
		} else {
			errs = append(errs, err.Error())
		}
	}
	cfg.ListenAddress = strings.TrimSpace(cfg.ListenAddress)
	cfg.RemoteBaseURL = strings.TrimRight(strings.TrimSpace(cfg.RemoteBaseURL), "/")
	cfg.LaunchWatchSchedule = strings.TrimSpace(cfg.LaunchWatchSchedule)

	// --- Validation ---
	if _, ok := os.LookupEnv("LAUNCHVIEW_ADMIN_TOKEN"); !ok {
		errs = append(errs, "LAUNCHVIEW_ADMIN_TOKEN must be defined (can be empty)")
	}
	if cfg.ListenAddress == "" {
		errs = append(errs, "LAUNCHVIEW_LISTEN_ADDRESS must not be empty")
	}
	validatePort("LAUNCHVIEW_PORT", cfg.Port, &errs)
	validatePositive("LAUNCHVIEW_API_MAX_BODY_BYTES", cfg.APIMaxBodyBytes, &errs)
	validateHTTPURL("LAUNCHVIEW_REMOTE_BASE_URL", cfg.RemoteBaseURL, &errs)
	validatePositiveDuration("LAUNCHVIEW_REQUEST_TIMEOUT", cfg.RequestTimeout, &errs)
	validatePositiveDuration("LAUNCHVIEW_SEARCH_DEBOUNCE", cfg.SearchDebounce, &errs)
	validatePositiveDuration("LAUNCHVIEW_DETAIL_TIMEOUT", cfg.DetailTimeout, &errs)
	validatePositive("LAUNCHVIEW_DEFAULT_PAGE_SIZE", cfg.DefaultPageSize, &errs)
	validatePositive("LAUNCHVIEW_HOT_CACHE_ENTRIES", cfg.HotCacheEntries, &errs)
	if cfg.ProbeEnabled {
		validateHTTPURL("LAUNCHVIEW_PROBE_URL", cfg.ProbeURL, &errs)
		validatePositiveDuration("LAUNCHVIEW_PROBE_INTERVAL", cfg.ProbeInterval, &errs)
		validatePositiveDuration("LAUNCHVIEW_PROBE_TIMEOUT", cfg.ProbeTimeout, &errs)
		if cfg.ProbeJitter < 0 {
			errs = append(errs, "LAUNCHVIEW_PROBE_JITTER must not be negative")
		}
	}
	if cfg.LaunchWatchEnabled {
		if _, err := cron.ParseStandard(cfg.LaunchWatchSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("LAUNCHVIEW_LAUNCH_WATCH_SCHEDULE: invalid cron expression %q: %v", cfg.LaunchWatchSchedule, err))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	return cfg, nil
}

// --- helpers ---

func validatePort(name string, value int, errs *[]string) {
	if value < 1 || value > 65535 {
		*errs = append(*errs, fmt.Sprintf("%s: port must be 1-65535, got %d", name, value))
	}
}

func validatePositive(name string, value int, errs *[]string) {
	if value <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s must be positive, got %d", name, value))
	}
}

func validatePositiveDuration(name string, value time.Duration, errs *[]string) {
	if value <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s must be positive", name))
	}
}

func validateHTTPURL(name, value string, errs *[]string) {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		*errs = append(*errs, fmt.Sprintf("%s: must be an absolute http(s) URL, got %q", name, value))
	}
}
