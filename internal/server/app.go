// Package server wires the signing service together: S3 clients, the media
// service, the HTTP API and the stale multipart sweeper.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/config"
	"github.com/dmitrijs2005/mediavault/internal/server/httpapi"
	"github.com/dmitrijs2005/mediavault/internal/server/services"
	"github.com/dmitrijs2005/mediavault/internal/server/storage"
)

type sweeper interface {
	SweepStaleUploads(ctx context.Context, maxAge time.Duration) (int, error)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	sweeper sweeper
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	logger := logging.OrNop(l)

	client, presigner, err := storage.NewS3(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	media := services.NewMediaService(client, presigner, c, logger)
	api := httpapi.NewServer(media, logger, c.SecretKey)

	return &App{config: c, logger: logger, handler: api.Handler(), sweeper: media}, nil
}

// Run serves until ctx is cancelled, then shuts the HTTP server down within
// ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	srv := &http.Server{
		Addr:              app.config.ListenAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", srv.Addr, "auth", app.config.SecretKey != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), app.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if app.config.SweepInterval > 0 {
		g.Go(func() error {
			app.runSweeper(gctx)
			return nil
		})
	}

	return g.Wait()
}

func (app *App) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sweeper.SweepStaleUploads(ctx, app.config.SweepMaxAge)
			if err != nil {
				app.logger.Warn(ctx, "stale multipart sweep failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "aborted stale multipart uploads", "count", n)
			}
		}
	}
}
