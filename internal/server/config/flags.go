package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   JWT HMAC secret key, empty disables auth
//	-t int      issued token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000")
//	-x string   storage key prefix
//	-ttl int    pre-authorized URL lifetime, minutes
//	-sweep int  stale multipart sweep interval, minutes (0 disables)
//	-age int    age after which an unfinished multipart upload is aborted, minutes
//
// Duration flags are integers in minutes.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-x", "-ttl", "-sweep", "-age"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "issued token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.KeyPrefix, "x", config.KeyPrefix, "storage key prefix")

	presignExpiry := fs.Int("ttl", int(config.PresignExpiry.Minutes()), "pre-authorized URL lifetime (in minutes)")
	sweepInterval := fs.Int("sweep", int(config.SweepInterval.Minutes()), "stale multipart sweep interval (in minutes)")
	sweepMaxAge := fs.Int("age", int(config.SweepMaxAge.Minutes()), "stale multipart age (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.PresignExpiry = time.Duration(*presignExpiry) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
	config.SweepMaxAge = time.Duration(*sweepMaxAge) * time.Minute
}
