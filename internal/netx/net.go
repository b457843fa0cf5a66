// Package netx performs raw PUTs against pre-authorized URLs and reports how
// many body bytes the transport has consumed.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response body ends up in StatusError.
const maxErrorBody = 1 << 10

// ProgressFunc receives the cumulative number of body bytes sent.
type ProgressFunc func(sent int64)

// StatusError is returned when the store answers a PUT with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload failed: %s", e.Status)
	}
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, e.Body)
}

// Put sends size bytes read from body to url with one PUT request and returns
// the response headers on a 2xx answer. Transport errors are returned as-is.
func Put(ctx context.Context, hc *http.Client, url string, body io.Reader, size int64, contentType string, onProgress ProgressFunc) (http.Header, error) {
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, newProgressReader(body, onProgress))
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.Header, nil
}
