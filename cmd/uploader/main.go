package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mediavault/internal/client/cli"
	"github.com/dmitrijs2005/mediavault/internal/client/config"
	"github.com/dmitrijs2005/mediavault/internal/flagx"
	"github.com/dmitrijs2005/mediavault/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewText(os.Stderr, level)

	app, err := cli.NewApp(cfg, os.Stdout, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Run(ctx, flagx.Positional(os.Args[1:], config.ValueFlags))
	stop()

	os.Exit(code)
}
