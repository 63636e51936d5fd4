// Package models defines the client-side data model: server-confirmed file
// records, upload progress entries, sync state and notifications.
package models

// FileMetadata is the server-confirmed record of an uploaded file, created by
// a successful finalize call or received from a listing call. Immutable once
// created.
type FileMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
