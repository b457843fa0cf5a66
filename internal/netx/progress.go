package netx

import (
	"io"
	"sync/atomic"
)

// progressReader counts bytes handed to the transport.
type progressReader struct {
	inner      io.Reader
	sent       atomic.Int64
	onProgress ProgressFunc
}

func newProgressReader(inner io.Reader, onProgress ProgressFunc) io.Reader {
	if inner == nil {
		return nil
	}
	if onProgress == nil {
		return inner
	}
	return &progressReader{inner: inner, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	if n > 0 {
		p.onProgress(p.sent.Add(int64(n)))
	}
	return n, err
}
