package models

// UploadStatus is the lifecycle state of one file's upload. The engine moves
// Pending → Uploading → {Completed | Error}; Paused exists in the model but
// no engine transition emits it yet.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusPaused    UploadStatus = "paused"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusError     UploadStatus = "error"
)

// UploadProgress tracks one file's in-flight or last-known upload outcome.
// Progress is fractional in [0,1]; display layers multiply by 100.
type UploadProgress struct {
	FileID   string       `json:"fileId"`
	Progress float64      `json:"progress"`
	Status   UploadStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
}

// SyncStatus reflects the state of the most recent reconciliation attempt.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

// UploadState is the persisted snapshot of the progress/history store.
// UploadHistory is most-recent-first; every entry id is unique.
type UploadState struct {
	Files         []FileMetadata            `json:"files"`
	ActiveUploads map[string]UploadProgress `json:"activeUploads"`
	UploadHistory []FileMetadata            `json:"uploadHistory"`
	SyncStatus    SyncStatus                `json:"syncStatus"`
	LastSyncTime  string                    `json:"lastSyncTime,omitempty"`
}
