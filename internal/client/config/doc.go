// Package config loads runtime configuration for the PocketSchool CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api/v1",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "db_path": "pocketschool.db",
//	  "log_format": "slog",
//	  "log_level": "warn"
//	}
package config
