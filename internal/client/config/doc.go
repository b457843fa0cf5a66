// Package config loads runtime configuration for the uploader host.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Sizes are in MiB. request_timeout uses timex.Duration, so it can be a
// string like "30s" or integer nanoseconds:
//
//	signing_endpoint: http://127.0.0.1:8080
//	access_token: eyJhbGciOi...
//	concurrency: 3
//	single_part_threshold_mib: 50
//	part_size_mib: 8
//	max_file_size_mib: 80000
//	allowed_types: [image/jpeg, image/png, video/mp4]
//	request_timeout: 30s
//	retry_rounds: 1
//	log_level: info
//
// The package does not read environment variables.
package config
