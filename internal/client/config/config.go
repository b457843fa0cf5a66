package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/client/validation"
	"github.com/dmitrijs2005/mediavault/internal/common"
)

// Config holds runtime settings for the uploader host.
//
// Sizes are in bytes; RequestTimeout bounds calls to the signing service only,
// PUTs to storage are bounded by the HTTP transport. A zero MaxFileSize is
// resolved by load to MaxMultipartParts parts of the configured PartSize.
type Config struct {
	SigningEndpoint     string
	AccessToken         string
	Concurrency         int
	SinglePartThreshold int64
	PartSize            int64
	MaxFileSize         int64
	AllowedTypes        []string
	RequestTimeout      time.Duration
	RetryRounds         int
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.SigningEndpoint = "http://127.0.0.1:8080"
	c.AccessToken = ""
	c.Concurrency = common.DefaultConcurrency
	c.SinglePartThreshold = common.DefaultSinglePartThreshold
	c.PartSize = common.DefaultPartSize
	c.MaxFileSize = 0
	c.AllowedTypes = append([]string(nil), validation.DefaultAllowedTypes...)
	c.RequestTimeout = 30 * time.Second
	c.RetryRounds = 0
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	cfg.resolveMaxFileSize()
	return cfg
}

// resolveMaxFileSize fills an unset MaxFileSize with the largest file the
// store accepts at the configured part size.
func (c *Config) resolveMaxFileSize() {
	if c.MaxFileSize == 0 {
		c.MaxFileSize = common.MaxMultipartParts * c.PartSize
	}
}
