package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mediavault/internal/flagx"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server"
	"github.com/dmitrijs2005/mediavault/internal/server/auth"
	"github.com/dmitrijs2005/mediavault/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	if subject := issueTokenFlag(os.Args[1:]); subject != "" {
		if cfg.SecretKey == "" {
			log.Fatal("-issue-token needs a secret key (-s)")
		}
		token, err := auth.GenerateToken(subject, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger := logging.NewJSON(slog.LevelInfo)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
}

func issueTokenFlag(args []string) string {
	var subject string

	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.StringVar(&subject, "issue-token", "", "print a bearer token for this subject and exit")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-issue-token"}))

	return subject
}
