package config

import (
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/filex"
	"github.com/dmitrijs2005/mediavault/internal/flagx"
	"github.com/dmitrijs2005/mediavault/internal/timex"
)

// FileConfig is a DTO used exclusively for config file decoding. Sizes are
// given in MiB and durations either as strings like "30s" or as integer
// nanoseconds.
type FileConfig struct {
	SigningEndpoint     string         `json:"signing_endpoint" yaml:"signing_endpoint"`
	AccessToken         string         `json:"access_token" yaml:"access_token"`
	Concurrency         int            `json:"concurrency" yaml:"concurrency"`
	SinglePartThreshold int64          `json:"single_part_threshold_mib" yaml:"single_part_threshold_mib"`
	PartSize            int64          `json:"part_size_mib" yaml:"part_size_mib"`
	MaxFileSize         int64          `json:"max_file_size_mib" yaml:"max_file_size_mib"`
	AllowedTypes        []string       `json:"allowed_types" yaml:"allowed_types"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RetryRounds         int            `json:"retry_rounds" yaml:"retry_rounds"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with values from the file named by -c or -config.
// Keys missing from the file keep their current value. Panics on read or
// decode errors.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	fc := FileConfig{
		SigningEndpoint:     cfg.SigningEndpoint,
		AccessToken:         cfg.AccessToken,
		Concurrency:         cfg.Concurrency,
		SinglePartThreshold: cfg.SinglePartThreshold / common.MiB,
		PartSize:            cfg.PartSize / common.MiB,
		MaxFileSize:         cfg.MaxFileSize / common.MiB,
		AllowedTypes:        cfg.AllowedTypes,
		RequestTimeout:      timex.Duration{Duration: cfg.RequestTimeout},
		RetryRounds:         cfg.RetryRounds,
		LogLevel:            cfg.LogLevel,
	}

	if err := filex.DecodeFile(path, &fc); err != nil {
		panic(err)
	}

	cfg.SigningEndpoint = fc.SigningEndpoint
	cfg.AccessToken = fc.AccessToken
	cfg.Concurrency = fc.Concurrency
	cfg.SinglePartThreshold = fc.SinglePartThreshold * common.MiB
	cfg.PartSize = fc.PartSize * common.MiB
	cfg.MaxFileSize = fc.MaxFileSize * common.MiB
	cfg.AllowedTypes = fc.AllowedTypes
	cfg.RequestTimeout = fc.RequestTimeout.Duration
	cfg.RetryRounds = fc.RetryRounds
	cfg.LogLevel = fc.LogLevel
}
