package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hhblog/internal/timex"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the DTO for config files. Durations use timex.Duration so
// both "3s" strings and integer nanoseconds are accepted.
type FileConfig struct {
	APIBaseURL          string         `json:"api_base_url" toml:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" toml:"request_timeout"`
	HealthCheckInterval timex.Duration `json:"health_check_interval" toml:"health_check_interval"`
	StoragePollInterval timex.Duration `json:"storage_poll_interval" toml:"storage_poll_interval"`
	BannerTTL           timex.Duration `json:"banner_ttl" toml:"banner_ttl"`
	ToastTTL            timex.Duration `json:"toast_ttl" toml:"toast_ttl"`
	DataDir             string         `json:"data_dir" toml:"data_dir"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays cfg with values from the file at path. Files ending in
// .toml are decoded as TOML, anything else as JSON. Fields missing from the
// file keep their current value. An empty path is a no-op; read or decode
// errors panic, matching parseFlags.
func parseFile(cfg *Config, path string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.HealthCheckInterval.Duration > 0 {
		cfg.HealthCheckInterval = fc.HealthCheckInterval.Duration
	}
	if fc.StoragePollInterval.Duration > 0 {
		cfg.StoragePollInterval = fc.StoragePollInterval.Duration
	}
	if fc.BannerTTL.Duration > 0 {
		cfg.BannerTTL = fc.BannerTTL.Duration
	}
	if fc.ToastTTL.Duration > 0 {
		cfg.ToastTTL = fc.ToastTTL.Duration
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
