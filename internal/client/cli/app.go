package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/mediavault/internal/client/config"
	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/client/scheduler"
	"github.com/dmitrijs2005/mediavault/internal/client/signing"
	"github.com/dmitrijs2005/mediavault/internal/client/store"
	"github.com/dmitrijs2005/mediavault/internal/client/transfer"
	"github.com/dmitrijs2005/mediavault/internal/client/uploader"
	"github.com/dmitrijs2005/mediavault/internal/client/validation"
	"github.com/dmitrijs2005/mediavault/internal/filex"
	"github.com/dmitrijs2005/mediavault/internal/logging"
)

// Exit codes returned by Run.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitUsage    = 2
)

type App struct {
	config    *config.Config
	log       logging.Logger
	out       io.Writer
	store     *store.Store
	scheduler *scheduler.Scheduler
}

// NewApp wires the engine from c. Progress and the summary go to out.
func NewApp(c *config.Config, out io.Writer, log logging.Logger) (*App, error) {
	if c.SigningEndpoint == "" {
		return nil, errors.New("signing endpoint is not configured")
	}
	log = logging.OrNop(log)

	signer := signing.NewHTTPClient(c.SigningEndpoint,
		signing.WithTimeout(c.RequestTimeout),
		signing.WithAccessToken(c.AccessToken),
	)
	tr := transfer.New(signer, uploader.New(&http.Client{}),
		transfer.WithThresholds(c.SinglePartThreshold, c.PartSize),
		transfer.WithLogger(log),
	)

	st := store.New()
	sched := scheduler.New(tr, st,
		scheduler.WithConcurrency(c.Concurrency),
		scheduler.WithValidator(validation.Validator{MaxSize: c.MaxFileSize, AllowedTypes: c.AllowedTypes}),
		scheduler.WithLogger(log),
	)

	return &App{config: c, log: log, out: out, store: st, scheduler: sched}, nil
}

// Run uploads the files and directories named by paths and returns the exit
// code. Canceling ctx stops admissions; in-flight transfers fail and are
// reported.
func (a *App) Run(ctx context.Context, paths []string) int {
	if len(paths) == 0 {
		fmt.Fprintln(a.out, "usage: uploader [flags] file|dir...")
		return ExitUsage
	}

	files, rejected := a.describe(paths)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.scheduler.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if len(files) > 0 {
		if _, err := a.scheduler.Enqueue(ctx, files...); err != nil {
			rejected = append(rejected, splitJoined(err)...)
		}
	}
	for _, err := range rejected {
		fmt.Fprintf(a.out, "skipped: %v\n", err)
	}

	r := newRenderer(a.out)
	updates, unsubscribe := a.store.Subscribe()
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for snap := range updates {
			r.draw(snap)
		}
	}()

	a.upload(ctx)

	unsubscribe()
	<-rendered
	snap := a.scheduler.Snapshot()
	r.draw(snap)
	writeSummary(a.out, snap, len(rejected))

	if len(rejected) > 0 || snap.Counts()[models.StatusError] > 0 || snap.IsUploading() {
		return ExitFailures
	}
	return ExitOK
}

func (a *App) upload(ctx context.Context) {
	if err := a.scheduler.RunPending(ctx); err != nil {
		a.log.Error(ctx, "run pending", "error", err)
		return
	}
	if err := a.scheduler.Wait(ctx); err != nil {
		return
	}

	for round := 1; round <= a.config.RetryRounds; round++ {
		n, err := a.scheduler.RetryFailed(ctx)
		if err != nil || n == 0 {
			return
		}
		a.log.Info(ctx, "retrying failed files", "round", round, "files", n)
		if err := a.scheduler.Wait(ctx); err != nil {
			return
		}
	}
}

func (a *App) describe(paths []string) ([]models.FileSpec, []error) {
	var (
		files []models.FileSpec
		errs  []error
	)
	for _, arg := range paths {
		resolved, err := filex.ExpandPaths([]string{arg})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, p := range resolved {
			f, err := models.LocalFile(p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			files = append(files, f)
		}
	}
	return files, errs
}

func splitJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
