package models

// StatusKind names a TransferStatus variant.
type StatusKind string

const (
	StatusPending   StatusKind = "pending"
	StatusUploading StatusKind = "uploading"
	StatusSuccess   StatusKind = "success"
	StatusError     StatusKind = "error"
)

// Status is the closed set of task states. Each variant carries only the
// fields that are meaningful in that state.
type Status interface {
	Kind() StatusKind
	isStatus()
}

// Pending is the initial state, and the state a failed task returns to on retry.
type Pending struct{}

// Uploading is entered on scheduler admission.
type Uploading struct{}

// Succeeded is terminal; the object is stored under StorageKey.
type Succeeded struct {
	StorageKey string
}

// Failed is terminal until an explicit retry.
type Failed struct {
	Message string
}

func (Pending) Kind() StatusKind   { return StatusPending }
func (Uploading) Kind() StatusKind { return StatusUploading }
func (Succeeded) Kind() StatusKind { return StatusSuccess }
func (Failed) Kind() StatusKind    { return StatusError }

func (Pending) isStatus()   {}
func (Uploading) isStatus() {}
func (Succeeded) isStatus() {}
func (Failed) isStatus()    {}

// IsTerminal reports whether s is Succeeded or Failed.
func IsTerminal(s Status) bool {
	switch s.(type) {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}
