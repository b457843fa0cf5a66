package config

import (
	"flag"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/flagx"
)

var parsedFlags = []string{"-a", "-k", "-n", "-t", "-p", "-m", "-types", "-r", "-retry", "-log"}

// ValueFlags lists every flag this package reads, config file flags included;
// each one takes a value.
var ValueFlags = slices.Concat(parsedFlags, []string{"-c", "-config"})

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      signing service base URL
//	-k string      bearer token for the signing service
//	-n int         files uploading at once
//	-t int         single-shot threshold (MiB)
//	-p int         multipart part size (MiB)
//	-m int         largest accepted file (MiB), 0 derives it from -p
//	-types string  comma-separated allowed media types, "*" allows any
//	-r int         signing request timeout (seconds)
//	-retry int     rounds of retrying failed files
//	-log string    log level: debug, info, warn, error
//
// Only these flags are kept from args (see flagx.FilterArgs) so file names
// and other components' flags do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, parsedFlags)

	fs := flag.NewFlagSet("uploader", flag.ContinueOnError)

	fs.StringVar(&cfg.SigningEndpoint, "a", cfg.SigningEndpoint, "signing service base URL")
	fs.StringVar(&cfg.AccessToken, "k", cfg.AccessToken, "bearer token for the signing service")
	fs.IntVar(&cfg.Concurrency, "n", cfg.Concurrency, "files uploading at once")
	threshold := fs.Int64("t", cfg.SinglePartThreshold/common.MiB, "single-shot threshold (MiB)")
	partSize := fs.Int64("p", cfg.PartSize/common.MiB, "multipart part size (MiB)")
	maxSize := fs.Int64("m", cfg.MaxFileSize/common.MiB, "largest accepted file (MiB)")
	types := fs.String("types", strings.Join(cfg.AllowedTypes, ","), "comma-separated allowed media types")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "signing request timeout (in seconds)")
	fs.IntVar(&cfg.RetryRounds, "retry", cfg.RetryRounds, "rounds of retrying failed files")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SinglePartThreshold = *threshold * common.MiB
	cfg.PartSize = *partSize * common.MiB
	cfg.MaxFileSize = *maxSize * common.MiB
	cfg.AllowedTypes = splitTypes(*types)
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}

func splitTypes(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
