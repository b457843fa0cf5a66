// Package transfer drives one attempt of one file from admission to a
// terminal status: plan, sign, upload parts in order, complete.
package transfer

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/client/planner"
	"github.com/dmitrijs2005/mediavault/internal/client/signing"
	"github.com/dmitrijs2005/mediavault/internal/client/uploader"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
)

// abortTimeout bounds the best-effort abort call after a part failure.
const abortTimeout = 10 * time.Second

// Update is a mid-attempt change reported to the scheduler. Zero fields carry
// no news: Parts is set once after planning, StorageKey once the signing
// service assigned one.
type Update struct {
	Mode       models.Mode
	Parts      []models.PartSpec
	StorageKey string
	Progress   int
}

// Runner runs one attempt and returns its terminal status.
type Runner interface {
	Run(ctx context.Context, task models.TransferTask, report func(Update)) models.Status
}

// Transfer is the Runner used in production.
type Transfer struct {
	signer    signing.Client
	uploader  uploader.PartUploader
	threshold int64
	partSize  int64
	log       logging.Logger
}

type Option func(*Transfer)

// WithThresholds overrides the single-shot threshold and the part size.
func WithThresholds(threshold, partSize int64) Option {
	return func(t *Transfer) {
		t.threshold = threshold
		t.partSize = partSize
	}
}

func WithLogger(l logging.Logger) Option {
	return func(t *Transfer) { t.log = logging.OrNop(l) }
}

func New(signer signing.Client, up uploader.PartUploader, opts ...Option) *Transfer {
	t := &Transfer{
		signer:    signer,
		uploader:  up,
		threshold: common.DefaultSinglePartThreshold,
		partSize:  common.DefaultPartSize,
		log:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Runner = (*Transfer)(nil)

// Run never returns a non-terminal status. The file source is opened at the
// start and closed before Run returns.
func (t *Transfer) Run(ctx context.Context, task models.TransferTask, report func(Update)) models.Status {
	log := t.log.With("task_id", task.ID, "file", task.File.Name)
	if report == nil {
		report = func(Update) {}
	}

	plan, err := planner.Plan(task.File.Size, task.File.ContentType, t.threshold, t.partSize)
	if err != nil {
		return t.fail(ctx, log, err)
	}
	report(Update{Mode: plan.Mode, Parts: plan.Parts})
	log.Info(ctx, "transfer started", "mode", plan.Mode, "size", plan.Size, "parts", len(plan.Parts))

	src, err := task.File.Open()
	if err != nil {
		return t.fail(ctx, log, fmt.Errorf("%w: open %s: %w", common.ErrInvalidInput, task.File.Name, err))
	}
	defer src.Close()

	p := &progress{size: plan.Size, report: report}

	var key string
	if plan.Mode == models.ModeSingle {
		key, err = t.single(ctx, task.File, src, p)
	} else {
		key, err = t.multipart(ctx, log, task.File, plan, src, p)
	}
	if err != nil {
		return t.fail(ctx, log, err)
	}

	p.set(100)
	log.Info(ctx, "transfer succeeded", "key", key)
	return models.Succeeded{StorageKey: key}
}

func (t *Transfer) single(ctx context.Context, f models.FileSpec, src io.ReaderAt, p *progress) (string, error) {
	url, key, err := t.signer.RequestSingleShotURL(ctx, f.Name, f.ContentType)
	if err != nil {
		return "", err
	}
	p.key(key)

	_, err = t.uploader.Upload(ctx, uploader.Request{
		URL:         url,
		Body:        io.NewSectionReader(src, 0, f.Size),
		Size:        f.Size,
		ContentType: f.ContentType,
	}, p.bytes(0))
	if err != nil {
		return "", err
	}
	return key, nil
}

func (t *Transfer) multipart(ctx context.Context, log logging.Logger, f models.FileSpec, plan models.Plan, src io.ReaderAt, p *progress) (string, error) {
	uploadID, key, err := t.signer.BeginMultipart(ctx, f.Name, f.ContentType)
	if err != nil {
		return "", err
	}
	p.key(key)
	log = log.With("key", key, "upload_id", uploadID)

	receipts := make([]models.PartResult, 0, len(plan.Parts))
	var sent int64
	for _, part := range plan.Parts {
		url, err := t.signer.RequestPartURL(ctx, key, uploadID, part.Number)
		if err != nil {
			t.abort(ctx, log, key, uploadID)
			return "", err
		}

		receipt, err := t.uploader.Upload(ctx, uploader.Request{
			URL:         url,
			Body:        io.NewSectionReader(src, part.Offset, part.Length),
			Size:        part.Length,
			ContentType: f.ContentType,
			PartNumber:  part.Number,
		}, p.bytes(sent))
		if err != nil {
			t.abort(ctx, log, key, uploadID)
			return "", err
		}

		sent += part.Length
		p.add(sent)
		receipts = append(receipts, receipt)
		log.Debug(ctx, "part uploaded", "part", part.Number, "of", len(plan.Parts))
	}

	if err := t.signer.CompleteMultipart(ctx, key, uploadID, receipts); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCompletionFailed, err)
	}
	return key, nil
}

func (t *Transfer) abort(ctx context.Context, log logging.Logger, key, uploadID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	if err := t.signer.AbortMultipart(ctx, key, uploadID); err != nil {
		log.Warn(ctx, "abort multipart failed", "error", err)
	}
}

func (t *Transfer) fail(ctx context.Context, log logging.Logger, err error) models.Status {
	log.Warn(ctx, "transfer failed", "error", err)
	return models.Failed{Message: err.Error()}
}

// progress turns byte counts into a non-decreasing percentage. Byte callbacks
// may arrive from the HTTP transport's goroutine.
type progress struct {
	mu     sync.Mutex
	size   int64
	last   int
	report func(Update)
}

// bytes returns a callback for one PUT whose first byte is at offset base of
// the file.
func (p *progress) bytes(base int64) func(sent int64) {
	return func(sent int64) { p.add(base + sent) }
}

func (p *progress) key(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.report(Update{StorageKey: key, Progress: p.last})
}

func (p *progress) add(total int64) {
	p.set(int(math.Round(float64(total) / float64(p.size) * 100)))
}

func (p *progress) set(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pct = min(pct, 100)
	if pct <= p.last {
		return
	}
	p.last = pct
	p.report(Update{Progress: pct})
}
