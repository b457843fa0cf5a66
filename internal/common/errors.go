// Package common defines the error taxonomy and shared constants used across
// the upload engine, its host CLI and the signing service. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Transfer pipeline errors.
	ErrInvalidInput       = errors.New("invalid input")
	ErrSigningUnavailable = errors.New("signing service unavailable")
	ErrTransferFailed     = errors.New("transfer failed")
	ErrMissingReceipt     = errors.New("missing receipt")
	ErrCompletionFailed   = errors.New("multipart completion failed")

	// Scheduler contract errors.
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSchedulerStopped  = errors.New("scheduler stopped")

	// Signing service errors.
	ErrorNotFound      = errors.New("not found")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrStorageBackend  = errors.New("storage backend error")
	ErrorMissingFields = errors.New("missing required fields")
)

// TransferError describes a failed PUT against a pre-authorized URL.
// PartNumber is 0 for single-shot transfers. StatusCode is 0 when the request
// never produced a response.
type TransferError struct {
	PartNumber int
	StatusCode int
	Reason     string
}

func (e *TransferError) Error() string {
	target := "file"
	if e.PartNumber > 0 {
		target = fmt.Sprintf("part %d", e.PartNumber)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("upload of %s failed: %d %s", target, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("upload of %s failed: %s", target, e.Reason)
}

func (e *TransferError) Unwrap() error {
	return ErrTransferFailed
}

// SigningError describes a failed call to the signing service.
type SigningError struct {
	Endpoint   string
	StatusCode int
	Reason     string
}

func (e *SigningError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("signing %s: %d %s", e.Endpoint, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("signing %s: %s", e.Endpoint, e.Reason)
}

func (e *SigningError) Unwrap() error {
	return ErrSigningUnavailable
}
