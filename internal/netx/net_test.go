package netx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut(t *testing.T) {
	file := bytes.Repeat([]byte("0123456789"), 10_000)

	t.Run("success returns headers and reports progress", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string
		var gotLen int64

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotLen = r.ContentLength
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("ETag", `"abc123"`)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		var reports []int64
		h, err := Put(context.Background(), ts.Client(), ts.URL+"/bucket/key?X-Amz-Signature=abc",
			bytes.NewReader(file), int64(len(file)), "video/mp4",
			func(sent int64) { reports = append(reports, sent) })
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "video/mp4", gotCT)
		assert.Equal(t, int64(len(file)), gotLen)
		assert.Equal(t, file, gotBody)
		assert.Equal(t, `"abc123"`, h.Get("ETag"))

		require.NotEmpty(t, reports)
		for i := 1; i < len(reports); i++ {
			assert.GreaterOrEqual(t, reports[i], reports[i-1])
		}
		assert.Equal(t, int64(len(file)), reports[len(reports)-1])
	})

	t.Run("default content type", func(t *testing.T) {
		var gotCT string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
		}))
		defer ts.Close()

		_, err := Put(context.Background(), nil, ts.URL, strings.NewReader("x"), 1, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", gotCT)
	})

	t.Run("non-2xx returns StatusError with body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error>SignatureDoesNotMatch</Error>\n"))
		}))
		defer ts.Close()

		_, err := Put(context.Background(), ts.Client(), ts.URL, bytes.NewReader(file), int64(len(file)), "image/png", nil)
		require.Error(t, err)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusForbidden, se.StatusCode)
		assert.Equal(t, "<Error>SignatureDoesNotMatch</Error>", se.Body)
		assert.Contains(t, err.Error(), "upload failed: 403")
	})

	t.Run("transport error is returned as-is", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()

		_, err := Put(context.Background(), nil, url, strings.NewReader("x"), 1, "", nil)
		require.Error(t, err)

		var se *StatusError
		assert.False(t, errors.As(err, &se))
	})
}
