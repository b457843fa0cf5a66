// Package models defines the media descriptors and multipart receipts the
// signing service exchanges with clients.
package models

import "time"

// MediaFile describes one stored object in the gallery listing.
type MediaFile struct {
	// Key is the full storage key, e.g. "uploads/<uuid>.jpg".
	Key string `json:"key"`
	// FileName is the last path segment of Key.
	FileName string `json:"fileName"`
	// URL is the public address of the object.
	URL          string    `json:"url"`
	LastModified time.Time `json:"lastModified"`
	FileSize     int64     `json:"fileSize"`
	Metadata     Metadata  `json:"metadata"`
}

// Metadata carries derived, non-authoritative facts about a stored object.
type Metadata struct {
	// MimeType is inferred from the key's extension.
	MimeType string `json:"mimeType"`
}

// CompletedPart is the receipt of one uploaded part.
type CompletedPart struct {
	ETag       string `json:"ETag"`
	PartNumber int32  `json:"PartNumber"`
}
