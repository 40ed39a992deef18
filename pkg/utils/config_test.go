package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "DEMO_KEY", cfg.APIKey)
	assert.Equal(t, "https://api.nasa.gov/mars-photos/api/v1", cfg.RoverEndpoint)
	assert.Equal(t, "https://api.nasa.gov/planetary/apod", cfg.APODEndpoint)
	assert.Equal(t, "web/public", cfg.StaticDir)
	assert.Equal(t, "http://localhost:3000", cfg.BackendURL)
	assert.Equal(t, ":7071", cfg.GRPCAddr)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{
		"BACKEND_PORT":      "4100",
		"API_KEY":           "secret-key",
		"UPSTREAM_TIMEOUT":  "5s",
		"MARSROVER_VERBOSE": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, "secret-key", cfg.APIKey)
	assert.Equal(t, "http://localhost:4100", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigKeepsExplicitBackendURL(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{"BACKEND_URL": "http://proxy.internal:8080"})
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.internal:8080", cfg.BackendURL)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	_, err := LoadConfigFrom(map[string]string{"BACKEND_PORT": "not-a-port"})
	require.Error(t, err)
}
