// Package scheduler owns the upload queue. It admits pending tasks under a
// fixed concurrency bound and applies every state change on a single
// goroutine, publishing a fresh snapshot to the store after each one.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/client/store"
	"github.com/dmitrijs2005/mediavault/internal/client/transfer"
	"github.com/dmitrijs2005/mediavault/internal/client/validation"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
)

// Scheduler is safe for concurrent use. Its methods block until Run is
// serving the action loop.
type Scheduler struct {
	runner      transfer.Runner
	store       *store.Store
	validator   validation.Validator
	concurrency int
	log         logging.Logger

	actions chan func()
	stopped chan struct{}

	// Owned by the loop goroutine.
	runCtx   context.Context
	tasks    []*models.TransferTask
	running  int
	passOpen bool
	stopping bool
	waiters  []chan struct{}
}

type Option func(*Scheduler)

// WithConcurrency sets the maximum number of tasks uploading at once.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) { s.concurrency = max(n, 1) }
}

func WithValidator(v validation.Validator) Option {
	return func(s *Scheduler) { s.validator = v }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Scheduler) { s.log = logging.OrNop(l) }
}

func New(runner transfer.Runner, st *store.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:      runner,
		store:       st,
		concurrency: common.DefaultConcurrency,
		log:         logging.NewNop(),
		actions:     make(chan func()),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves the action loop until ctx is done. Transfers run under ctx; once
// it is canceled no new task is admitted and Run returns after every
// in-flight transfer has reported its terminal status.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runCtx = ctx
	for {
		select {
		case fn := <-s.actions:
			fn()
		case <-ctx.Done():
			s.stopping = true
			for s.running > 0 {
				(<-s.actions)()
			}
			close(s.stopped)
			s.releaseWaiters()
			s.store.Close()
			return nil
		}
	}
}

// Enqueue validates files and appends the accepted ones as pending tasks. It
// returns the new task ids in input order and, when some files were
// rejected, an error joining one ErrInvalidInput per rejection.
func (s *Scheduler) Enqueue(ctx context.Context, files ...models.FileSpec) ([]string, error) {
	var (
		accepted []models.FileSpec
		errs     []error
	)
	for _, file := range files {
		f, err := validation.WithContentType(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
			continue
		}
		if err := s.validator.Validate(f); err != nil {
			errs = append(errs, err)
			continue
		}
		accepted = append(accepted, f)
	}

	var ids []string
	if len(accepted) > 0 {
		err := s.do(ctx, func() error {
			for _, f := range accepted {
				t := &models.TransferTask{ID: uuid.NewString(), File: f, Status: models.Pending{}}
				s.tasks = append(s.tasks, t)
				ids = append(ids, t.ID)
				s.log.Debug(s.runCtx, "task enqueued", "task_id", t.ID, "file", f.Name, "size", f.Size)
			}
			s.admit()
			s.publish()
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return ids, errors.Join(errs...)
}

// RunPending opens an admission pass. While the pass is open every freed slot
// is refilled from the front of the pending set, including tasks enqueued or
// retried after the call. The pass closes once nothing is pending or
// uploading.
func (s *Scheduler) RunPending(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.passOpen = true
		s.admit()
		s.publish()
		return nil
	})
}

// Retry moves a failed task back to pending.
func (s *Scheduler) Retry(ctx context.Context, id string) error {
	return s.do(ctx, func() error {
		t, _ := s.find(id)
		if t == nil {
			return fmt.Errorf("%w: %s", common.ErrTaskNotFound, id)
		}
		if t.Status.Kind() != models.StatusError {
			return fmt.Errorf("%w: retry from %s", common.ErrInvalidTransition, t.Status.Kind())
		}
		reset(t)
		s.admit()
		s.publish()
		return nil
	})
}

// RetryFailed moves every failed task back to pending and opens an admission
// pass. It returns how many tasks were reset.
func (s *Scheduler) RetryFailed(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func() error {
		for _, t := range s.tasks {
			if t.Status.Kind() == models.StatusError {
				reset(t)
				n++
			}
		}
		s.passOpen = true
		s.admit()
		s.publish()
		return nil
	})
	return n, err
}

// Remove drops a terminal task. Pending and uploading tasks cannot be removed.
func (s *Scheduler) Remove(ctx context.Context, id string) error {
	return s.do(ctx, func() error {
		t, i := s.find(id)
		if t == nil {
			return fmt.Errorf("%w: %s", common.ErrTaskNotFound, id)
		}
		if !models.IsTerminal(t.Status) {
			return fmt.Errorf("%w: remove from %s", common.ErrInvalidTransition, t.Status.Kind())
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		s.publish()
		return nil
	})
}

// ClearCompleted drops every terminal task and returns how many were dropped.
func (s *Scheduler) ClearCompleted(ctx context.Context) (int, error) {
	var n int
	err := s.do(ctx, func() error {
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if models.IsTerminal(t.Status) {
				n++
				continue
			}
			kept = append(kept, t)
		}
		clear(s.tasks[len(kept):])
		s.tasks = kept
		s.publish()
		return nil
	})
	return n, err
}

// Wait blocks until no admission pass is open and nothing is uploading.
func (s *Scheduler) Wait(ctx context.Context) error {
	ch := make(chan struct{})
	err := s.do(ctx, func() error {
		if s.idle() {
			close(ch)
		} else {
			s.waiters = append(s.waiters, ch)
		}
		return nil
	})
	if errors.Is(err, common.ErrSchedulerStopped) {
		return nil
	}
	if err != nil {
		return err
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the latest published state.
func (s *Scheduler) Snapshot() models.Snapshot {
	return s.store.Snapshot()
}

// do runs fn on the loop goroutine and returns its result.
func (s *Scheduler) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case s.actions <- func() { reply <- fn() }:
	case <-s.stopped:
		return common.ErrSchedulerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post hands fn to the loop without waiting for it to run.
func (s *Scheduler) post(fn func()) {
	select {
	case s.actions <- fn:
	case <-s.stopped:
	}
}

func (s *Scheduler) admit() {
	if !s.passOpen || s.stopping {
		return
	}
	for s.running < s.concurrency {
		t := s.nextPending()
		if t == nil {
			break
		}
		s.start(t)
	}
	if s.running == 0 {
		s.passOpen = false
	}
	if s.idle() {
		s.releaseWaiters()
	}
}

func (s *Scheduler) start(t *models.TransferTask) {
	t.Status = models.Uploading{}
	t.Attempts++
	s.running++
	s.log.Info(s.runCtx, "task admitted", "task_id", t.ID, "file", t.File.Name, "size", t.File.Size, "attempt", t.Attempts)

	id := t.ID
	task := t.Clone()
	go func() {
		status := s.runner.Run(s.runCtx, task, func(u transfer.Update) {
			s.post(func() { s.apply(id, u) })
		})
		s.post(func() { s.finish(id, status) })
	}()
}

func (s *Scheduler) apply(id string, u transfer.Update) {
	t, _ := s.find(id)
	if t == nil || t.Status.Kind() != models.StatusUploading {
		return
	}
	if u.Parts != nil {
		t.Parts = append([]models.PartSpec(nil), u.Parts...)
		t.Mode = u.Mode
	}
	if u.StorageKey != "" {
		t.StorageKey = u.StorageKey
	}
	t.Progress = max(t.Progress, min(u.Progress, 100))
	s.publish()
}

func (s *Scheduler) finish(id string, status models.Status) {
	s.running--

	if t, _ := s.find(id); t != nil {
		if !models.IsTerminal(status) {
			status = models.Failed{Message: "transfer ended without a terminal status"}
		}
		t.Status = status
		switch st := status.(type) {
		case models.Succeeded:
			t.StorageKey = st.StorageKey
			t.Progress = 100
			t.Error = ""
		case models.Failed:
			t.Error = st.Message
		}
	}

	s.admit()
	s.publish()
}

func (s *Scheduler) idle() bool {
	return s.running == 0 && !s.passOpen
}

func (s *Scheduler) releaseWaiters() {
	for _, ch := range s.waiters {
		close(ch)
	}
	s.waiters = nil
}

func (s *Scheduler) find(id string) (*models.TransferTask, int) {
	for i, t := range s.tasks {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func (s *Scheduler) nextPending() *models.TransferTask {
	for _, t := range s.tasks {
		if t.Status.Kind() == models.StatusPending {
			return t
		}
	}
	return nil
}

func (s *Scheduler) publish() {
	snap := models.Snapshot{
		Tasks:    make([]models.TransferTask, 0, len(s.tasks)),
		Progress: make(map[string]int, len(s.tasks)),
		Errors:   map[string]string{},
	}
	for _, t := range s.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
		snap.Progress[t.ID] = t.Progress
		if t.Error != "" {
			snap.Errors[t.ID] = t.Error
		}
	}
	s.store.Publish(snap)
}

// reset prepares a failed task for a fresh attempt of its full plan.
func reset(t *models.TransferTask) {
	t.Status = models.Pending{}
	t.Progress = 0
	t.Error = ""
	t.Parts = nil
	t.Mode = ""
	t.StorageKey = ""
}
