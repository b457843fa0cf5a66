package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("attempt 1: %w", &TransferError{PartNumber: 7, StatusCode: 503, Reason: "Service Unavailable"})

	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.NotErrorIs(t, err, ErrSigningUnavailable)

	var te *TransferError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, 7, te.PartNumber)
	assert.Contains(t, err.Error(), "upload of part 7 failed: 503 Service Unavailable")
}

func TestTransferError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *TransferError
		want string
	}{
		{"single shot with status", &TransferError{StatusCode: 403, Reason: "Forbidden"}, "upload of file failed: 403 Forbidden"},
		{"transport error", &TransferError{PartNumber: 2, Reason: "connection reset"}, "upload of part 2 failed: connection reset"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestSigningError_UnwrapsToSentinel(t *testing.T) {
	err := &SigningError{Endpoint: "/upload", StatusCode: 500, Reason: "boom"}

	assert.ErrorIs(t, err, ErrSigningUnavailable)
	assert.Equal(t, "signing /upload: 500 boom", err.Error())

	err = &SigningError{Endpoint: "/upload", Reason: "dial tcp: refused"}
	assert.Equal(t, "signing /upload: dial tcp: refused", err.Error())
}
