package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	s := NewSnapshot()
	s.Tasks = []TransferTask{
		{ID: "a", Status: Succeeded{StorageKey: "uploads/a.png"}, Progress: 100, Parts: []PartSpec{{Number: 1, Length: 10}}},
		{ID: "b", Status: Uploading{}, Progress: 41},
		{ID: "c", Status: Failed{Message: "boom"}, Progress: 7},
		{ID: "d", Status: Pending{}},
	}
	s.Progress = map[string]int{"a": 100, "b": 41, "c": 7}
	s.Errors = map[string]string{"c": "boom"}
	return s
}

func TestSnapshot_CountsAndProgress(t *testing.T) {
	s := sampleSnapshot()

	counts := s.Counts()
	assert.Equal(t, 1, counts[StatusSuccess])
	assert.Equal(t, 1, counts[StatusUploading])
	assert.Equal(t, 1, counts[StatusError])
	assert.Equal(t, 1, counts[StatusPending])

	// (100 + 41 + 7 + 0) / 4 = 37
	assert.Equal(t, 37, s.TotalProgress())
	assert.True(t, s.IsUploading())
	assert.Equal(t, 0, NewSnapshot().TotalProgress())
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := sampleSnapshot()
	c := s.Clone()

	c.Progress["b"] = 99
	c.Errors["c"] = "changed"
	c.Tasks[0].Parts[0].Length = 1
	c.Tasks[1].Progress = 99

	assert.Equal(t, 41, s.Progress["b"])
	assert.Equal(t, "boom", s.Errors["c"])
	assert.Equal(t, int64(10), s.Tasks[0].Parts[0].Length)
	assert.Equal(t, 41, s.Tasks[1].Progress)
}

func TestSnapshot_Task(t *testing.T) {
	s := sampleSnapshot()

	task, ok := s.Task("c")
	require.True(t, ok)
	assert.Equal(t, StatusError, task.Status.Kind())
	assert.Equal(t, "boom", task.Status.(Failed).Message)

	_, ok = s.Task("missing")
	assert.False(t, ok)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(Succeeded{}))
	assert.True(t, IsTerminal(Failed{Message: "x"}))
	assert.False(t, IsTerminal(Pending{}))
	assert.False(t, IsTerminal(Uploading{}))
}

func TestMemoryFile_OpenReadsData(t *testing.T) {
	f := MemoryFile("a.txt", "text/plain", []byte("hello world"))
	require.Equal(t, int64(11), f.Size)

	src, err := f.Open()
	require.NoError(t, err)
	defer src.Close()

	buf := make([]byte, 5)
	_, err = src.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf))
}
