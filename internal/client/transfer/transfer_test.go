package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/client/uploader"
	"github.com/dmitrijs2005/mediavault/internal/common"
)

type fakeSigner struct {
	mu          sync.Mutex
	calls       []string
	partURLs    []int
	completed   []models.PartResult
	aborted     bool
	failSign    error
	failPartURL int
	failAbort   error
	failDone    error
}

func (f *fakeSigner) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSigner) RequestSingleShotURL(_ context.Context, name, _ string) (string, string, error) {
	f.record("single")
	if f.failSign != nil {
		return "", "", f.failSign
	}
	return "https://store/single", "uploads/" + name, nil
}

func (f *fakeSigner) BeginMultipart(_ context.Context, name, _ string) (string, string, error) {
	f.record("begin")
	if f.failSign != nil {
		return "", "", f.failSign
	}
	return "upload-1", "uploads/" + name, nil
}

func (f *fakeSigner) RequestPartURL(_ context.Context, _, _ string, part int) (string, error) {
	f.record(fmt.Sprintf("sign-%d", part))
	f.mu.Lock()
	f.partURLs = append(f.partURLs, part)
	f.mu.Unlock()
	if part == f.failPartURL {
		return "", &common.SigningError{Endpoint: "/upload/multipart/sign-part", StatusCode: 500, Reason: "boom"}
	}
	return fmt.Sprintf("https://store/part/%d", part), nil
}

func (f *fakeSigner) CompleteMultipart(_ context.Context, _, _ string, receipts []models.PartResult) error {
	f.record("complete")
	f.completed = append([]models.PartResult(nil), receipts...)
	return f.failDone
}

func (f *fakeSigner) AbortMultipart(ctx context.Context, _, _ string) error {
	f.record("abort")
	f.aborted = true
	return f.failAbort
}

type fakeUploader struct {
	mu       sync.Mutex
	requests []uploader.Request
	bodies   [][]byte
	failPart int
}

func (f *fakeUploader) Upload(_ context.Context, req uploader.Request, onProgress func(int64)) (models.PartResult, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return models.PartResult{}, err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	if req.PartNumber > 0 && req.PartNumber == f.failPart {
		if onProgress != nil {
			onProgress(int64(len(body)) / 2)
		}
		return models.PartResult{}, &common.TransferError{PartNumber: req.PartNumber, StatusCode: 503, Reason: "Service Unavailable"}
	}

	if onProgress != nil {
		half := int64(len(body)) / 2
		onProgress(half)
		onProgress(int64(len(body)))
	}
	return models.PartResult{Number: max(req.PartNumber, 1), ETag: fmt.Sprintf("etag-%d", req.PartNumber)}, nil
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) report(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) progress() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, u := range r.updates {
		out = append(out, u.Progress)
	}
	return out
}

type trackedSource struct {
	io.ReaderAt
	closed bool
}

func (s *trackedSource) Close() error {
	s.closed = true
	return nil
}

func fileOf(name string, size int) (models.FileSpec, *trackedSource, []byte) {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	src := &trackedSource{}
	return models.FileSpec{
		Name:        name,
		ContentType: "video/mp4",
		Size:        int64(size),
		Open: func() (models.Source, error) {
			src.ReaderAt = newReaderAt(data)
			src.closed = false
			return src, nil
		},
	}, src, data
}

type readerAt []byte

func newReaderAt(b []byte) readerAt { return readerAt(b) }

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(r)) {
		return 0, io.EOF
	}
	n := copy(p, r[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Small thresholds keep the fixtures tiny: threshold 50 bytes, parts of 8.
func newTestTransfer(s *fakeSigner, u *fakeUploader) *Transfer {
	return New(s, u, WithThresholds(50, 8))
}

func assertMonotonic(t *testing.T, values []int) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress regressed at %d: %v", i, values)
	}
}

func TestRun_SingleShot(t *testing.T) {
	s, u, rec := &fakeSigner{}, &fakeUploader{}, &recorder{}
	file, src, data := fileOf("clip.mp4", 10)

	status := newTestTransfer(s, u).Run(context.Background(), models.TransferTask{ID: "t1", File: file}, rec.report)

	require.Equal(t, models.Succeeded{StorageKey: "uploads/clip.mp4"}, status)
	assert.Equal(t, []string{"single"}, s.calls)
	require.Len(t, u.requests, 1)
	assert.Equal(t, 0, u.requests[0].PartNumber)
	assert.Equal(t, data, u.bodies[0])
	assert.True(t, src.closed)

	progress := rec.progress()
	assertMonotonic(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
	assert.Contains(t, progress, 50)

	assert.Equal(t, models.ModeSingle, rec.updates[0].Mode)
	assert.Len(t, rec.updates[0].Parts, 1)
}

func TestRun_MultipartUploadsPartsInOrder(t *testing.T) {
	s, u, rec := &fakeSigner{}, &fakeUploader{}, &recorder{}
	file, src, data := fileOf("movie.mp4", 75) // 10 parts, last is 3 bytes

	status := newTestTransfer(s, u).Run(context.Background(), models.TransferTask{ID: "t1", File: file}, rec.report)

	require.Equal(t, models.Succeeded{StorageKey: "uploads/movie.mp4"}, status)
	assert.True(t, src.closed)

	require.Len(t, s.completed, 10)
	var joined []byte
	for i, r := range s.completed {
		assert.Equal(t, i+1, r.Number)
		assert.Equal(t, fmt.Sprintf("etag-%d", i+1), r.ETag)
		assert.Equal(t, i+1, u.requests[i].PartNumber)
		joined = append(joined, u.bodies[i]...)
	}
	assert.Equal(t, data, joined)
	assert.Len(t, u.bodies[9], 3)
	assert.Equal(t, "complete", s.calls[len(s.calls)-1])
	assert.False(t, s.aborted)

	progress := rec.progress()
	assertMonotonic(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])

	assert.Equal(t, models.ModeMultipart, rec.updates[0].Mode)
	assert.Len(t, rec.updates[0].Parts, 10)
	assert.Equal(t, "uploads/movie.mp4", rec.updates[1].StorageKey)
}

func TestRun_PartSevenOfTenFails(t *testing.T) {
	s, u, rec := &fakeSigner{}, &fakeUploader{failPart: 7}, &recorder{}
	file, src, _ := fileOf("movie.mp4", 80)

	status := newTestTransfer(s, u).Run(context.Background(), models.TransferTask{ID: "t1", File: file}, rec.report)

	failed, ok := status.(models.Failed)
	require.True(t, ok, "got %T", status)
	assert.Equal(t, "upload of part 7 failed: 503 Service Unavailable", failed.Message)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, s.partURLs)
	assert.True(t, s.aborted)
	assert.Nil(t, s.completed)
	assert.Equal(t, "abort", s.calls[len(s.calls)-1])
	assert.True(t, src.closed)
	assertMonotonic(t, rec.progress())
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		signer    *fakeSigner
		wantMsg   string
		wantAbort bool
	}{
		{
			name:    "signing unavailable for single shot",
			size:    10,
			signer:  &fakeSigner{failSign: &common.SigningError{Endpoint: "/upload", StatusCode: 502, Reason: "bad gateway"}},
			wantMsg: "signing /upload: 502 bad gateway",
		},
		{
			name:      "part url refused",
			size:      60,
			signer:    &fakeSigner{failPartURL: 3},
			wantMsg:   "signing /upload/multipart/sign-part: 500 boom",
			wantAbort: true,
		},
		{
			name:    "completion failed",
			size:    60,
			signer:  &fakeSigner{failDone: errors.New("complete rejected")},
			wantMsg: "multipart completion failed: complete rejected",
		},
		{
			name:      "abort failure is not fatal to reporting",
			size:      60,
			signer:    &fakeSigner{failPartURL: 1, failAbort: errors.New("gone")},
			wantMsg:   "signing /upload/multipart/sign-part: 500 boom",
			wantAbort: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, src, _ := fileOf("f.mp4", tt.size)
			tr := newTestTransfer(tt.signer, &fakeUploader{})

			status := tr.Run(context.Background(), models.TransferTask{ID: "t", File: file}, nil)

			failed, ok := status.(models.Failed)
			require.True(t, ok, "got %T", status)
			assert.Equal(t, tt.wantMsg, failed.Message)
			assert.Equal(t, tt.wantAbort, tt.signer.aborted)
			assert.True(t, src.closed)
		})
	}
}

func TestRun_CompletionFailedMessage(t *testing.T) {
	s := &fakeSigner{failDone: &common.SigningError{Endpoint: "/upload/multipart/complete", StatusCode: 500, Reason: "boom"}}
	file, _, _ := fileOf("f.mp4", 60)

	status := newTestTransfer(s, &fakeUploader{}).Run(context.Background(), models.TransferTask{ID: "t", File: file}, nil)
	assert.Equal(t, models.Failed{Message: "multipart completion failed: signing /upload/multipart/complete: 500 boom"}, status)
}

func TestRun_InvalidInput(t *testing.T) {
	s := &fakeSigner{}
	status := newTestTransfer(s, &fakeUploader{}).Run(context.Background(), models.TransferTask{
		ID:   "t",
		File: models.MemoryFile("empty.png", "image/png", nil),
	}, nil)

	_, ok := status.(models.Failed)
	require.True(t, ok)
	assert.Empty(t, s.calls)
}

func TestRun_OpenFailure(t *testing.T) {
	s := &fakeSigner{}
	file := models.FileSpec{
		Name: "gone.png", ContentType: "image/png", Size: 5,
		Open: func() (models.Source, error) { return nil, errors.New("no such file") },
	}

	status := newTestTransfer(s, &fakeUploader{}).Run(context.Background(), models.TransferTask{ID: "t", File: file}, nil)

	failed, ok := status.(models.Failed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "no such file")
	assert.Empty(t, s.calls)
}

func TestRun_DefaultThresholds(t *testing.T) {
	tr := New(&fakeSigner{}, &fakeUploader{})
	assert.Equal(t, common.DefaultSinglePartThreshold, tr.threshold)
	assert.Equal(t, common.DefaultPartSize, tr.partSize)
}
