// Package config handles configuration for the signing service, including
// defaults, a JSON or YAML file overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the signing service.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for bearer tokens (HS256). Empty disables auth.
//   - TokenValidityDuration: lifetime of tokens minted with -issue-token.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - KeyPrefix: every storage key starts with it.
//   - PresignExpiry: lifetime of pre-authorized URLs.
//   - SweepInterval / SweepMaxAge: how often stale multipart sessions are
//     looked for, and how old they must be to get aborted. A zero interval
//     disables the sweeper.
type Config struct {
	ListenAddr            string
	SecretKey             string
	TokenValidityDuration time.Duration
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	KeyPrefix             string
	PresignExpiry         time.Duration
	SweepInterval         time.Duration
	SweepMaxAge           time.Duration
	ShutdownTimeout       time.Duration
}

// LoadDefaults populates Config with development defaults matching a local
// MinIO. They are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.KeyPrefix = "uploads/"
	c.PresignExpiry = time.Hour
	c.SweepInterval = 30 * time.Minute
	c.SweepMaxAge = 24 * time.Hour
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
