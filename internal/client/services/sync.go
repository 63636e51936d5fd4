package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/store"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"golang.org/x/sync/singleflight"
)

// SyncService reconciles local upload history with the server's listing.
// The server is authoritative: files it no longer reports are dropped, files
// it newly reports are added at the front.
type SyncService interface {
	SyncWithRemote(ctx context.Context) error
	DeleteFile(ctx context.Context, fileID string) error
	StartSyncWatcher(ctx context.Context, interval time.Duration)
}

type syncService struct {
	client   api.Client
	store    *store.UploadStore
	notifier store.Notifier
	log      logging.Logger

	group singleflight.Group
}

func NewSyncService(client api.Client, st *store.UploadStore, notifier store.Notifier, log logging.Logger) SyncService {
	if notifier == nil {
		notifier = store.NopNotifier{}
	}
	return &syncService{client: client, store: st, notifier: notifier, log: log}
}

// SyncWithRemote fetches the server's file listing and replaces local
// history with it, keeping local ordering for files both sides know about.
// Concurrent calls collapse into a single fetch. On failure the history is
// left untouched and the sync status is set to error.
func (s *syncService) SyncWithRemote(ctx context.Context) error {
	_, err, _ := s.group.Do("sync", func() (interface{}, error) {
		return nil, s.syncOnce(ctx)
	})
	return err
}

func (s *syncService) syncOnce(ctx context.Context) error {
	s.store.SetSyncStatus(ctx, models.SyncStatusSyncing)

	remote, err := s.client.ListFiles(ctx)
	if err != nil {
		s.store.SetSyncStatus(ctx, models.SyncStatusError)
		return fmt.Errorf("listing remote files: %w", err)
	}

	remoteIDs := make(map[string]bool, len(remote))
	for _, f := range remote {
		remoteIDs[f.ID] = true
	}

	// local entries the server still reports, in their local order
	var kept []models.FileMetadata
	keptIDs := make(map[string]bool)
	for _, f := range s.store.History() {
		if remoteIDs[f.ID] {
			kept = append(kept, f)
			keptIDs[f.ID] = true
		}
	}

	// server entries this client has never seen go first
	var fresh []models.FileMetadata
	for _, f := range remote {
		if !keptIDs[f.ID] {
			fresh = append(fresh, f)
		}
	}

	s.store.ReplaceHistory(ctx, append(fresh, kept...))
	s.store.SetSyncStatus(ctx, models.SyncStatusSynced)

	if len(fresh) > 0 {
		s.notifier.Notify(ctx, store.NewNotification(models.NotificationInfo,
			"Files synced", fmt.Sprintf("%d new file(s) from other devices", len(fresh))))
	}

	return nil
}

// DeleteFile removes a file on the server and locally, then resyncs so the
// listing reflects the server's view.
func (s *syncService) DeleteFile(ctx context.Context, fileID string) error {
	if err := s.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}

	s.store.RemoveFile(ctx, fileID)

	if err := s.SyncWithRemote(ctx); err != nil {
		s.log.Warn(ctx, "post-delete sync failed", "fileID", fileID, "error", err)
	}
	return nil
}

// StartSyncWatcher reconciles on a fixed interval until ctx is done.
// Failures are logged; the next tick tries again.
func (s *syncService) StartSyncWatcher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SyncWithRemote(ctx); err != nil {
					s.log.Warn(ctx, "background sync failed", "error", err)
				}
			}
		}
	}()
}
