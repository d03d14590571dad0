package chaosconfig

import (
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

// Environment variable names, matching the original implementation's
// exact spellings so operators migrating an existing deployment don't
// need to rename anything.
const (
	EnvParamStoreName     = "FAILURE_INJECTION_PARAM"
	EnvAppConfigApp       = "FAILURE_APPCONFIG_APPLICATION"
	EnvAppConfigEnv       = "FAILURE_APPCONFIG_ENVIRONMENT"
	EnvAppConfigProfile   = "FAILURE_APPCONFIG_CONFIGURATION"
	EnvAppConfigPort      = "AWS_APPCONFIG_EXTENSION_HTTP_PORT"
	EnvCacheTTLSeconds    = "FAILURE_CACHE_TTL"
	EnvKillSwitch         = "FAILURE_LAMBDA_DISABLED"
	defaultAppConfigPort  = "2772"
	defaultCacheTTLSecond = 60
)

// KillSwitchEngaged reports whether FAILURE_LAMBDA_DISABLED disables all
// injection for this container.
func KillSwitchEngaged() bool {
	return os.Getenv(EnvKillSwitch) == "true"
}

// backendFromEnv selects a backend based on which identifying variables
// are set, preferring the hosted (AppConfig-style) backend when its
// three identifying variables are all present.
func backendFromEnv() (Backend, bool) {
	app := os.Getenv(EnvAppConfigApp)
	env := os.Getenv(EnvAppConfigEnv)
	profile := os.Getenv(EnvAppConfigProfile)
	if app != "" && env != "" && profile != "" {
		port := os.Getenv(EnvAppConfigPort)
		if port == "" {
			port = defaultAppConfigPort
		}
		return &HostedBackend{Application: app, Environment: env, Configuration: profile, Port: port}, true
	}
	if param := os.Getenv(EnvParamStoreName); param != "" {
		return &ParamStoreBackend{ParameterName: param}, true
	}
	return nil, false
}

// ttlFromEnv resolves the cache TTL, in seconds, following the priority
// rules described in the component design: an explicit non-negative
// value wins outright; an invalid explicit value warns and falls back
// to the default; absent a value, a hosted backend defaults to 0
// (it's already cached upstream) and warns if that default is
// overridden positively.
func ttlFromEnv(backend Backend, log *chaoslog.Logger) int {
	_, isHosted := backend.(*HostedBackend)

	raw, present := os.LookupEnv(EnvCacheTTLSeconds)
	if !present {
		return fallbackTTL(backend)
	}

	ttl, err := strconv.Atoi(raw)
	if err != nil || ttl < 0 {
		log.Warn(chaoslog.ActionConfig, "invalid "+EnvCacheTTLSeconds+"; falling back to default", zap.String("value", raw))
		return fallbackTTL(backend)
	}
	if ttl > 0 && isHosted {
		log.Warn(chaoslog.ActionConfig, "positive cache TTL configured alongside the hosted backend, which already caches externally")
	}
	return ttl
}

func fallbackTTL(backend Backend) int {
	if _, isHosted := backend.(*HostedBackend); isHosted {
		return 0
	}
	return defaultCacheTTLSecond
}
