// Package api implements the wire-level client for the filedrop HTTP
// service: upload session operations plus the device-scoped file listing.
// Every request carries the current device identifier.
package api

import (
	"context"

	"github.com/dmitrijs2005/filedrop/internal/client/models"
)

// InitiateUploadResponse is the server's answer to an initiate call: the
// session id plus the agreed chunk geometry.
type InitiateUploadResponse struct {
	FileID    string `json:"fileId"`
	UploadURL string `json:"uploadUrl"`
	Chunks    int    `json:"chunks"`
	ChunkSize int    `json:"chunkSize"`
}

// UploadChunk is one chunk send: payload plus its position in the session.
// Data always holds the raw bytes; the transport decides whether they go out
// as binary or base64 text.
type UploadChunk struct {
	FileID      string
	ChunkIndex  int
	TotalChunks int
	Data        []byte
	MimeType    string
}

// UploadStatusResponse is the server-side view of an in-progress session.
type UploadStatusResponse struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// Client is the upload session client. Implementations resolve the current
// device identity per call and attach it to every request.
type Client interface {
	InitiateUpload(ctx context.Context, name string, size int64, mimeType string) (*InitiateUploadResponse, error)
	UploadChunk(ctx context.Context, chunk *UploadChunk) error
	FinalizeUpload(ctx context.Context, fileID, fileName string) (*models.FileMetadata, error)
	GetUploadStatus(ctx context.Context, fileID string) (*UploadStatusResponse, error)
	CancelUpload(ctx context.Context, fileID string) error
	ListFiles(ctx context.Context) ([]models.FileMetadata, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// DeviceIDSource yields the device identifier attached to outgoing requests.
type DeviceIDSource interface {
	GetDeviceID(ctx context.Context) string
}
