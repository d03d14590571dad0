// Package chaosconfig implements the configuration loader: backend
// selection, transport, TTL-bounded caching, and parsing into a typed
// chaosflags.Configuration. It never surfaces a fetch or parse error to
// its caller — on any failure it logs and returns an empty
// configuration, per this project's fail-closed contract.
package chaosconfig

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaosflags"
	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// Loader fetches, caches, and parses configuration for one container.
// The zero value is not usable; construct with NewLoader.
type Loader struct {
	log *chaoslog.Logger

	// BackendOverride replaces environment-based backend selection.
	// Exported so tests can substitute a fake backend the way the corpus swaps registerFailuresHook/
	// generatePlanIDHook package-level function variables in tests.
	BackendOverride Backend

	// TTLOverride replaces the environment-derived TTL when non-nil.
	TTLOverride *time.Duration

	cache    cache
	coldOnce sync.Once
}

// NewLoader constructs a Loader that logs through log (chaoslog.Default()
// if nil).
func NewLoader(log *chaoslog.Logger) *Loader {
	if log == nil {
		log = chaoslog.Default()
	}
	return &Loader{log: log}
}

// GetConfig returns the current configuration for this container,
// serving from cache when fresh and falling back to an empty
// configuration on any backend, transport, or parse failure.
func (l *Loader) GetConfig(ctx context.Context) chaosflags.Configuration {
	backend, ok := l.backend()
	if !ok {
		return chaosflags.Empty()
	}

	ttl := l.ttl(backend)

	if cached, ok := l.cache.Get(ttl); ok {
		return cached.(chaosflags.Configuration)
	}

	raw, err := backend.Fetch(ctx)
	if err != nil {
		l.log.Error(chaoslog.ActionConfig, "failed to fetch configuration",
			zap.String("backend", backend.Name()), zap.Error(err))
		return chaosflags.Empty()
	}

	cfg := chaosflags.ParseFlags(raw, l.log)
	l.cache.Set(cfg)
	l.logColdStart(backend, ttl, cfg)
	return cfg
}

// ClearCache evicts the cached configuration, forcing the next
// GetConfig call to fetch.
func (l *Loader) ClearCache() {
	l.cache.Clear()
}

func (l *Loader) backend() (Backend, bool) {
	if l.BackendOverride != nil {
		return l.BackendOverride, true
	}
	return backendFromEnv()
}

func (l *Loader) ttl(backend Backend) time.Duration {
	if l.TTLOverride != nil {
		return *l.TTLOverride
	}
	return time.Duration(ttlFromEnv(backend, l.log)) * time.Second
}

func (l *Loader) logColdStart(backend Backend, ttl time.Duration, cfg chaosflags.Configuration) {
	l.coldOnce.Do(func() {
		enabled := make([]string, 0, len(cfg))
		for mode, flag := range cfg {
			if flag.Enabled {
				enabled = append(enabled, string(mode))
			}
		}
		l.log.Info(chaoslog.ActionStartup, "configuration loaded",
			zap.String("backend", backend.Name()),
			zap.Float64("cache_ttl_seconds", ttl.Seconds()),
			zap.Strings("enabled_modes", enabled))
	})
}
