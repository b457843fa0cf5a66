// Package uploader performs exactly one PUT of one byte range (or a whole
// file) against a pre-authorized URL and turns the store's answer into a
// transfer receipt.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/netx"
)

// etagHeader is the response header holding the per-part integrity tag.
const etagHeader = "ETag"

// Request describes one PUT.
type Request struct {
	URL         string
	Body        io.Reader
	Size        int64
	ContentType string

	// PartNumber is the 1-based part number for multipart transfers and 0 for
	// single-shot ones. A missing ETag is fatal only when PartNumber > 0.
	PartNumber int
}

// PartUploader is the contract the transfer state machine depends on.
type PartUploader interface {
	Upload(ctx context.Context, req Request, onProgress func(sent int64)) (models.PartResult, error)
}

// Uploader implements PartUploader over net/http. It never retries.
type Uploader struct {
	client *http.Client
}

// New returns an Uploader; a nil client means http.DefaultClient. Timeouts are
// whatever the client's transport enforces.
func New(client *http.Client) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{client: client}
}

var _ PartUploader = (*Uploader)(nil)

// Upload sends req.Body and returns the receipt. Progress reports are
// cumulative bytes and never decrease.
func (u *Uploader) Upload(ctx context.Context, req Request, onProgress func(sent int64)) (models.PartResult, error) {
	var report netx.ProgressFunc
	if onProgress != nil {
		var last int64
		report = func(sent int64) {
			if sent > last {
				last = sent
				onProgress(sent)
			}
		}
	}

	headers, err := netx.Put(ctx, u.client, req.URL, req.Body, req.Size, req.ContentType, report)
	if err != nil {
		return models.PartResult{}, transferError(req.PartNumber, err)
	}

	etag := strings.Trim(headers.Get(etagHeader), `"`)
	if etag == "" && req.PartNumber > 0 {
		return models.PartResult{}, fmt.Errorf("%w: part %d response has no %s header", common.ErrMissingReceipt, req.PartNumber, etagHeader)
	}

	return models.PartResult{Number: max(req.PartNumber, 1), ETag: etag}, nil
}

func transferError(part int, err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		reason := http.StatusText(se.StatusCode)
		if se.Body != "" {
			reason = fmt.Sprintf("%s: %s", reason, se.Body)
		}
		return &common.TransferError{PartNumber: part, StatusCode: se.StatusCode, Reason: reason}
	}
	return &common.TransferError{PartNumber: part, Reason: err.Error()}
}
