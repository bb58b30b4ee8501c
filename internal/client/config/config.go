package config

import (
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/flagx"
)

// EnvAPIBaseURL overrides Config.APIBaseURL when set.
const EnvAPIBaseURL = "HHBLOG_API_BASE_URL"

// Config holds runtime settings for the hhblog CLI.
//
// Fields:
//   - APIBaseURL: base address of the REST backend, without trailing slash.
//   - RequestTimeout: transport-level ceiling for any single request.
//   - HealthCheckInterval: how often the client probes /health.
//   - StoragePollInterval: how often the local store is checked for writes
//     made by other processes.
//   - BannerTTL / ToastTTL: how long transient messages stay visible.
//   - DataDir: directory holding the local SQLite file.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	HealthCheckInterval time.Duration
	StoragePollInterval time.Duration
	BannerTTL           time.Duration
	ToastTTL            time.Duration
	DataDir             string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:4000"
	c.RequestTimeout = 15 * time.Second
	c.HealthCheckInterval = 10 * time.Second
	c.StoragePollInterval = time.Second
	c.BannerTTL = 5 * time.Second
	c.ToastTTL = 5 * time.Second
	c.DataDir = "data"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, then overlays an optional
// config file (-c/-config, JSON or TOML), the HHBLOG_API_BASE_URL variable
// and finally command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, flagx.ConfigFileFromOS())
	parseEnv(cfg)
	parseFlags(cfg, os.Args[1:])
	cfg.normalize()
	return cfg
}

func parseEnv(cfg *Config) {
	if v, ok := flagx.LookupEnv(EnvAPIBaseURL); ok {
		cfg.APIBaseURL = v
	}
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
}
