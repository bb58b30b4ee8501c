package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:4000", c.APIBaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 10*time.Second, c.HealthCheckInterval)
	assert.Equal(t, time.Second, c.StoragePollInterval)
	assert.Equal(t, 5*time.Second, c.BannerTTL)
	assert.Equal(t, 5*time.Second, c.ToastTTL)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"hhblog-cli"}
	t.Setenv(EnvAPIBaseURL, "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:4000", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.json", `{"api_base_url":"http://file:1","log_level":"debug"}`)

	t.Run("env beats file", func(t *testing.T) {
		os.Args = []string{"hhblog-cli", "-c", path}
		t.Setenv(EnvAPIBaseURL, "http://env:2/")

		cfg := LoadConfig()
		assert.Equal(t, "http://env:2", cfg.APIBaseURL)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags beat env", func(t *testing.T) {
		os.Args = []string{"hhblog-cli", "-c", path, "-a", "http://flag:3/"}
		t.Setenv(EnvAPIBaseURL, "http://env:2")

		cfg := LoadConfig()
		assert.Equal(t, "http://flag:3", cfg.APIBaseURL)
	})
}
