// Package config loads runtime configuration for the hhblog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .toml are read as TOML, everything else as JSON.
//  3. HHBLOG_API_BASE_URL environment variable.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-i int      health check interval (seconds)
//	-t int      request timeout (seconds)
//	-d string   data directory for the local store
//	-l string   log level
//
// # File schema
//
//	{
//	  "api_base_url": "http://localhost:4000",
//	  "request_timeout": "15s",
//	  "health_check_interval": "10s",
//	  "storage_poll_interval": "1s",
//	  "banner_ttl": "5s",
//	  "toast_ttl": "5s",
//	  "data_dir": "data",
//	  "log_level": "info"
//	}
//
// The TOML form uses the same keys.
package config
