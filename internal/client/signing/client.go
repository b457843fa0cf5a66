// Package signing talks to the service that issues pre-authorized transfer
// URLs and multipart sessions. Storage credentials never leave that service.
package signing

import (
	"context"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

// Client is the transfer-URL contract. Every method may fail with an error
// wrapping common.ErrSigningUnavailable; callers decide whether to retry.
type Client interface {
	// RequestSingleShotURL returns a URL for one PUT of the whole file and the
	// storage key the object will have.
	RequestSingleShotURL(ctx context.Context, name, contentType string) (url, key string, err error)

	// BeginMultipart opens a multipart session.
	BeginMultipart(ctx context.Context, name, contentType string) (uploadID, key string, err error)

	// RequestPartURL returns the URL for one part of an open session.
	RequestPartURL(ctx context.Context, key, uploadID string, partNumber int) (string, error)

	// CompleteMultipart combines the parts; receipts must be in ascending order.
	CompleteMultipart(ctx context.Context, key, uploadID string, receipts []models.PartResult) error

	// AbortMultipart discards an open session.
	AbortMultipart(ctx context.Context, key, uploadID string) error
}
