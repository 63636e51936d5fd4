// Package store owns the client-side upload state: per-file progress
// entries, the persisted upload history and the sync status. All mutations
// go through the store's methods, which are safe for concurrent use and
// persist a snapshot through the durable key-value layer.
//
// Cross-cutting effects are explicit events: mutations that the user should
// hear about emit a models.Notification through the attached Notifier.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/google/uuid"
)

const uploadStateKey = "upload-store"

// Notifier receives structured notification events emitted by the stores.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// NopNotifier discards events; useful in tests and headless runs.
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, n models.Notification) {}

// UploadStore is the state-owning service for upload progress and history.
// It is handed by reference to whichever component needs to read or mutate
// upload state; there are no package-level singletons.
type UploadStore struct {
	mu       sync.Mutex
	kv       metadata.Repository
	notifier Notifier
	log      logging.Logger
	state    models.UploadState
}

// NewUploadStore builds a store, loading the persisted snapshot if one
// exists. A corrupt or missing snapshot starts the store empty.
func NewUploadStore(ctx context.Context, kv metadata.Repository, notifier Notifier, log logging.Logger) *UploadStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &UploadStore{kv: kv, notifier: notifier, log: log}
	s.state.ActiveUploads = make(map[string]models.UploadProgress)
	s.state.SyncStatus = models.SyncStatusSynced

	if data, err := kv.Get(ctx, uploadStateKey); err != nil {
		log.Warn(ctx, "upload state not loaded", "error", err)
	} else if len(data) > 0 {
		var state models.UploadState
		if err := json.Unmarshal(data, &state); err != nil {
			log.Warn(ctx, "upload state corrupt, starting empty", "error", err)
		} else {
			s.state = state
			if s.state.ActiveUploads == nil {
				s.state.ActiveUploads = make(map[string]models.UploadProgress)
			}
		}
	}
	return s
}

// TrackUpload establishes the progress entry for a new upload session.
func (s *UploadStore) TrackUpload(ctx context.Context, p models.UploadProgress) {
	s.mu.Lock()
	s.state.ActiveUploads[p.FileID] = p
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// UpdateProgress replaces the progress entry for p.FileID. Updates for
// entries that no longer exist are dropped: a chunk result racing a cancel
// must not resurrect the entry. An update carrying an error description
// emits an error notification.
func (s *UploadStore) UpdateProgress(ctx context.Context, p models.UploadProgress) {
	s.mu.Lock()
	if _, ok := s.state.ActiveUploads[p.FileID]; !ok {
		s.mu.Unlock()
		return
	}
	s.state.ActiveUploads[p.FileID] = p
	s.persistLocked(ctx)
	s.mu.Unlock()

	if p.Error != "" {
		s.notifier.Notify(ctx, NewNotification(models.NotificationError, "Upload failed", p.Error))
	}
}

// AddFile records a finalized upload: prepended to history (most recent
// first) and to the file list.
func (s *UploadStore) AddFile(ctx context.Context, meta models.FileMetadata) {
	s.mu.Lock()
	s.state.UploadHistory = append([]models.FileMetadata{meta}, s.state.UploadHistory...)
	s.state.Files = append([]models.FileMetadata{meta}, s.state.Files...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, NewNotification(models.NotificationSuccess, "Upload complete", meta.Name))
}

// RemoveFile drops a file from history, the file list and active uploads.
// Removing an unknown id is a silent no-op.
func (s *UploadStore) RemoveFile(ctx context.Context, fileID string) {
	s.mu.Lock()

	history, inHistory := withoutFile(s.state.UploadHistory, fileID)
	files, inFiles := withoutFile(s.state.Files, fileID)
	_, inProgress := s.state.ActiveUploads[fileID]

	if !inHistory && !inFiles && !inProgress {
		s.mu.Unlock()
		return
	}

	s.state.UploadHistory = history
	s.state.Files = files
	delete(s.state.ActiveUploads, fileID)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Notify(ctx, NewNotification(models.NotificationInfo, "File removed", fileID))
}

// SetSyncStatus updates the reconciliation state. The last-sync timestamp
// advances only on a successful sync; a failed sync emits an error event.
func (s *UploadStore) SetSyncStatus(ctx context.Context, status models.SyncStatus) {
	s.mu.Lock()
	s.state.SyncStatus = status
	if status == models.SyncStatusSynced {
		s.state.LastSyncTime = time.Now().UTC().Format(time.RFC3339)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if status == models.SyncStatusError {
		s.notifier.Notify(ctx, NewNotification(models.NotificationError, "Sync failed", "could not reconcile with server"))
	}
}

// ReplaceHistory swaps history and the file list wholesale with the merged
// listing produced by reconciliation. Progress entries are untouched.
func (s *UploadStore) ReplaceHistory(ctx context.Context, files []models.FileMetadata) {
	copied := make([]models.FileMetadata, len(files))
	copy(copied, files)

	s.mu.Lock()
	s.state.UploadHistory = copied
	s.state.Files = copied
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// ClearHistory empties the upload history only; the file list and active
// uploads are deliberately untouched (maintenance operation, distinct from
// RemoveFile).
func (s *UploadStore) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	s.state.UploadHistory = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// History returns a copy of the upload history, most recent first.
func (s *UploadStore) History() []models.FileMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FileMetadata, len(s.state.UploadHistory))
	copy(out, s.state.UploadHistory)
	return out
}

// Files returns a copy of the full file list.
func (s *UploadStore) Files() []models.FileMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FileMetadata, len(s.state.Files))
	copy(out, s.state.Files)
	return out
}

// Progress returns the progress entry for fileID, if one exists.
func (s *UploadStore) Progress(fileID string) (models.UploadProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.ActiveUploads[fileID]
	return p, ok
}

// ActiveUploads returns a copy of all progress entries.
func (s *UploadStore) ActiveUploads() map[string]models.UploadProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.UploadProgress, len(s.state.ActiveUploads))
	for id, p := range s.state.ActiveUploads {
		out[id] = p
	}
	return out
}

// SyncStatus returns the reconciliation state and the last successful sync
// time (RFC 3339, empty if never synced).
func (s *UploadStore) SyncStatus() (models.SyncStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SyncStatus, s.state.LastSyncTime
}

func (s *UploadStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error(ctx, "failed to serialize upload state", "error", err)
		return
	}
	if err := s.kv.Set(ctx, uploadStateKey, data); err != nil {
		s.log.Error(ctx, "failed to persist upload state", "error", err)
	}
}

func withoutFile(files []models.FileMetadata, fileID string) ([]models.FileMetadata, bool) {
	out := files[:0:0]
	found := false
	for _, f := range files {
		if f.ID == fileID {
			found = true
			continue
		}
		out = append(out, f)
	}
	return out, found
}

// NewNotification builds a notification event with a fresh id and the
// current timestamp.
func NewNotification(kind models.NotificationType, title, message string) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}
