package models

// Mode selects how a file is transferred.
type Mode string

const (
	// ModeSingle sends the whole file in one PUT.
	ModeSingle Mode = "single"
	// ModeMultipart splits the file into parts combined by a completion call.
	ModeMultipart Mode = "multipart"
)

// PartSpec is one byte range of a file.
//
// Number is 1-based and contiguous across a plan; the ranges of a plan
// partition [0, size) with no gaps or overlaps.
type PartSpec struct {
	Number int
	Offset int64
	Length int64
}

// End returns the exclusive end offset of the range.
func (p PartSpec) End() int64 {
	return p.Offset + p.Length
}

// PartResult is the receipt the store returned for one uploaded part.
type PartResult struct {
	Number int    `json:"PartNumber"`
	ETag   string `json:"ETag"`
}

// Plan is the output of the part planner for one file.
type Plan struct {
	Mode  Mode
	Size  int64
	Parts []PartSpec
}
