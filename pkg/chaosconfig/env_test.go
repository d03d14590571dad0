package chaosconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gunnargrosch/failure-lambda/pkg/chaoslog"
)

func clearBackendEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAppConfigApp, EnvAppConfigEnv, EnvAppConfigProfile, EnvAppConfigPort, EnvParamStoreName, EnvCacheTTLSeconds} {
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestBackendFromEnv_PrefersHostedWhenFullyConfigured(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	os.Setenv(EnvAppConfigApp, "app")
	os.Setenv(EnvAppConfigEnv, "prod")
	os.Setenv(EnvAppConfigProfile, "profile")
	os.Setenv(EnvParamStoreName, "/also/set")

	backend, ok := backendFromEnv()
	require.True(t, ok)
	_, isHosted := backend.(*HostedBackend)
	require.True(t, isHosted)
}

func TestBackendFromEnv_FallsBackToParamStore(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	os.Setenv(EnvParamStoreName, "/my/param")

	backend, ok := backendFromEnv()
	require.True(t, ok)
	_, isParamStore := backend.(*ParamStoreBackend)
	require.True(t, isParamStore)
}

func TestBackendFromEnv_NoneConfigured(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)

	_, ok := backendFromEnv()
	require.False(t, ok)
}

func TestTTLFromEnv_HostedDefaultsToZero(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	backend := &HostedBackend{}
	require.Equal(t, 0, ttlFromEnv(backend, chaoslog.NewDiscard()))
}

func TestTTLFromEnv_ParamStoreDefaultsTo60(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	backend := &ParamStoreBackend{}
	require.Equal(t, defaultCacheTTLSecond, ttlFromEnv(backend, chaoslog.NewDiscard()))
}

func TestTTLFromEnv_InvalidValueFallsBack(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	os.Setenv(EnvCacheTTLSeconds, "not-a-number")
	backend := &ParamStoreBackend{}
	require.Equal(t, defaultCacheTTLSecond, ttlFromEnv(backend, chaoslog.NewDiscard()))
}

func TestTTLFromEnv_NegativeValueFallsBack(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	os.Setenv(EnvCacheTTLSeconds, "-5")
	backend := &ParamStoreBackend{}
	require.Equal(t, defaultCacheTTLSecond, ttlFromEnv(backend, chaoslog.NewDiscard()))
}

func TestTTLFromEnv_ExplicitZeroDisablesCaching(t *testing.T) {
	clearBackendEnv(t)
	defer clearBackendEnv(t)
	os.Setenv(EnvCacheTTLSeconds, "0")
	backend := &ParamStoreBackend{}
	require.Equal(t, 0, ttlFromEnv(backend, chaoslog.NewDiscard()))
}
