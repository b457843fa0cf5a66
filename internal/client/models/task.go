// Package models defines the data the upload engine passes between its
// planner, transfer state machine, scheduler and observers.
package models

// TransferTask is one file in the upload queue.
//
// A task is owned by its transfer while uploading and read-only once terminal.
// Snapshots hand out copies, so observers never share a task with the writer.
type TransferTask struct {
	// ID is an opaque identifier assigned at enqueue.
	ID string

	// File is the source file description.
	File FileSpec

	// Parts is the plan of the current attempt; empty until planned.
	Parts []PartSpec

	// Mode is the transfer mode of the current attempt; empty until planned.
	Mode Mode

	// Status is the current state.
	Status Status

	// Progress is the aggregate progress 0..100 of the current attempt.
	Progress int

	// Error is the last error message; cleared on retry.
	Error string

	// StorageKey is the object key once the signing service assigned one.
	StorageKey string

	// Attempts counts admissions of this task.
	Attempts int
}

// Clone returns a copy that shares no slices with t.
func (t TransferTask) Clone() TransferTask {
	out := t
	if t.Parts != nil {
		out.Parts = append([]PartSpec(nil), t.Parts...)
	}
	return out
}
