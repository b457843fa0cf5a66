package models

import "math"

// Snapshot is a consistent, fully-applied view of the upload queue.
type Snapshot struct {
	Tasks    []TransferTask
	Progress map[string]int
	Errors   map[string]string
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		Tasks:    []TransferTask{},
		Progress: map[string]int{},
		Errors:   map[string]string{},
	}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tasks:    make([]TransferTask, len(s.Tasks)),
		Progress: make(map[string]int, len(s.Progress)),
		Errors:   make(map[string]string, len(s.Errors)),
	}
	for i, t := range s.Tasks {
		out.Tasks[i] = t.Clone()
	}
	for k, v := range s.Progress {
		out.Progress[k] = v
	}
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

// Task looks a task up by id.
func (s Snapshot) Task(id string) (TransferTask, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TransferTask{}, false
}

// Counts tallies tasks per status.
func (s Snapshot) Counts() map[StatusKind]int {
	counts := map[StatusKind]int{}
	for _, t := range s.Tasks {
		counts[t.Status.Kind()]++
	}
	return counts
}

// IsUploading reports whether any task is pending or uploading.
func (s Snapshot) IsUploading() bool {
	for _, t := range s.Tasks {
		switch t.Status.Kind() {
		case StatusPending, StatusUploading:
			return true
		}
	}
	return false
}

// TotalProgress is the rounded mean progress over all tasks, 0 when empty.
func (s Snapshot) TotalProgress() int {
	if len(s.Tasks) == 0 {
		return 0
	}
	total := 0
	for _, t := range s.Tasks {
		total += s.Progress[t.ID]
	}
	return int(math.Round(float64(total) / float64(len(s.Tasks))))
}
