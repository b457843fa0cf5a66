package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is an open handle on a file's bytes for one transfer attempt.
type Source interface {
	io.ReaderAt
	io.Closer
}

// FileSpec describes a file handed to the engine.
//
// Open is called once per transfer attempt; the returned Source is closed as
// soon as the attempt reaches a terminal state, so a retry reopens it.
type FileSpec struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (Source, error)
}

// LocalFile describes a file on disk. The content type is left empty; callers
// that need one run validation.DetectContentType.
func LocalFile(path string) (FileSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileSpec{}, err
	}
	if info.IsDir() {
		return FileSpec{}, fmt.Errorf("%s is a directory", path)
	}

	return FileSpec{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (Source, error) {
			return os.Open(path)
		},
	}, nil
}

// MemoryFile describes an in-memory file.
func MemoryFile(name, contentType string, data []byte) FileSpec {
	return FileSpec{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (Source, error) {
			return nopCloser{bytes.NewReader(data)}, nil
		},
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
