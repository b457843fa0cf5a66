package config

import (
	"github.com/dmitrijs2005/mediavault/internal/filex"
	"github.com/dmitrijs2005/mediavault/internal/flagx"
	"github.com/dmitrijs2005/mediavault/internal/timex"
)

// FileConfig is the on-disk shape of Config. Durations use timex.Duration, so
// files can give "1h" style strings or integer nanoseconds.
type FileConfig struct {
	ListenAddr            string         `json:"listen_addr" yaml:"listen_addr"`
	SecretKey             string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	S3RootUser            string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	KeyPrefix             string         `json:"key_prefix" yaml:"key_prefix"`
	PresignExpiry         timex.Duration `json:"presign_expiry" yaml:"presign_expiry"`
	SweepInterval         timex.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	SweepMaxAge           timex.Duration `json:"sweep_max_age" yaml:"sweep_max_age"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile overlays config with the file named by -c or -config. Keys the
// file omits keep their current value. Panics if the file cannot be read or
// decoded.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	c := FileConfig{
		ListenAddr:            config.ListenAddr,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: config.TokenValidityDuration},
		S3RootUser:            config.S3RootUser,
		S3RootPassword:        config.S3RootPassword,
		S3Bucket:              config.S3Bucket,
		S3Region:              config.S3Region,
		S3BaseEndpoint:        config.S3BaseEndpoint,
		KeyPrefix:             config.KeyPrefix,
		PresignExpiry:         timex.Duration{Duration: config.PresignExpiry},
		SweepInterval:         timex.Duration{Duration: config.SweepInterval},
		SweepMaxAge:           timex.Duration{Duration: config.SweepMaxAge},
		ShutdownTimeout:       timex.Duration{Duration: config.ShutdownTimeout},
	}

	if err := filex.DecodeFile(path, &c); err != nil {
		panic(err)
	}

	config.ListenAddr = c.ListenAddr
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.KeyPrefix = c.KeyPrefix
	config.PresignExpiry = c.PresignExpiry.Duration
	config.SweepInterval = c.SweepInterval.Duration
	config.SweepMaxAge = c.SweepMaxAge.Duration
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
}
