package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/chunkx"
	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/source"
	"github.com/dmitrijs2005/filedrop/internal/client/store"
	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the fixed chunk size used for every upload session.
const ChunkSize = 1 << 20

// maxConcurrentUploads bounds UploadAll parallelism.
const maxConcurrentUploads = 3

// UploadService drives chunked upload sessions against the server and keeps
// the local store in step with their progress.
type UploadService interface {
	UploadFile(ctx context.Context, desc source.Descriptor) (*models.FileMetadata, error)
	UploadAll(ctx context.Context, descs []source.Descriptor) error
	CancelUpload(ctx context.Context, fileID string) error
	StartStatusWatcher(ctx context.Context, interval time.Duration)
}

type uploadService struct {
	client api.Client
	store  *store.UploadStore
	log    logging.Logger

	// newReader resolves a locator to its byte source.
	newReader func(locator string) source.Reader

	// newBackoff builds the per-chunk retry schedule. The default allows
	// three attempts with delays of 2s and 4s between them.
	newBackoff func() retry.Backoff
}

func NewUploadService(client api.Client, st *store.UploadStore, log logging.Logger) UploadService {
	return &uploadService{
		client: client,
		store:  st,
		log:    log,
		newReader: func(locator string) source.Reader {
			return source.NewReader(locator, http.DefaultClient)
		},
		newBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(2*time.Second))
		},
	}
}

// UploadFile runs one full upload session: initiate, send chunks in order
// with bounded retries, finalize. The source is checked before any network
// call; a missing source fails with common.ErrSourceMissing.
func (s *uploadService) UploadFile(ctx context.Context, desc source.Descriptor) (*models.FileMetadata, error) {
	reader := s.newReader(desc.Locator)

	info, err := reader.Info(ctx, desc.Locator)
	if err != nil {
		return nil, fmt.Errorf("resolving source %q: %w", desc.Locator, err)
	}
	if !info.Exists {
		return nil, fmt.Errorf("source %q: %w", desc.Locator, common.ErrSourceMissing)
	}

	resp, err := s.client.InitiateUpload(ctx, desc.Name, info.Size, desc.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("initiating upload: %w", err)
	}
	fileID := resp.FileID

	s.store.TrackUpload(ctx, models.UploadProgress{
		FileID: fileID,
		Status: models.UploadStatusPending,
	})

	data, err := reader.ReadAll(ctx, desc.Locator)
	if err != nil {
		return nil, s.failUpload(ctx, fileID, fmt.Errorf("reading source: %w", err))
	}

	chunks := chunkx.Split(data, ChunkSize)
	total := len(chunks)

	for i, chunk := range chunks {
		send := &api.UploadChunk{
			FileID:      fileID,
			ChunkIndex:  i,
			TotalChunks: total,
			Data:        chunk,
			MimeType:    desc.MIMEType,
		}

		err := retry.Do(ctx, s.newBackoff(), func(ctx context.Context) error {
			if err := s.client.UploadChunk(ctx, send); err != nil {
				s.log.Warn(ctx, "chunk send failed, retrying", "fileID", fileID, "chunk", i, "error", err)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			return nil, s.failUpload(ctx, fileID, fmt.Errorf("chunk %d of %d: %w", i+1, total, err))
		}

		s.store.UpdateProgress(ctx, models.UploadProgress{
			FileID:   fileID,
			Progress: float64(i+1) / float64(total),
			Status:   models.UploadStatusUploading,
		})
	}

	meta, err := s.client.FinalizeUpload(ctx, fileID, desc.Name)
	if err != nil {
		return nil, s.failUpload(ctx, fileID, fmt.Errorf("finalizing upload: %w", err))
	}

	s.store.UpdateProgress(ctx, models.UploadProgress{
		FileID:   fileID,
		Progress: 1,
		Status:   models.UploadStatusCompleted,
	})
	s.store.AddFile(ctx, *meta)

	return meta, nil
}

// failUpload marks the session failed in the store and returns err.
func (s *uploadService) failUpload(ctx context.Context, fileID string, err error) error {
	s.store.UpdateProgress(ctx, models.UploadProgress{
		FileID: fileID,
		Status: models.UploadStatusError,
		Error:  err.Error(),
	})
	return err
}

// UploadAll uploads several sources concurrently, at most three at a time.
// Each file keeps its own progress entry; the first failure cancels the
// remaining uploads.
func (s *uploadService) UploadAll(ctx context.Context, descs []source.Descriptor) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)

	for _, desc := range descs {
		g.Go(func() error {
			_, err := s.UploadFile(ctx, desc)
			return err
		})
	}

	return g.Wait()
}

// CancelUpload abandons an in-flight session. The server-side cancel is
// best-effort: a failure is logged and the local entry is removed anyway.
func (s *uploadService) CancelUpload(ctx context.Context, fileID string) error {
	if err := s.client.CancelUpload(ctx, fileID); err != nil {
		s.log.Warn(ctx, "server-side cancel failed", "fileID", fileID, "error", err)
	}
	s.store.RemoveFile(ctx, fileID)
	return nil
}

// StartStatusWatcher polls the server for the state of sessions still
// pending or uploading and folds the answers into the store. It returns
// immediately; the watcher stops when ctx is done.
func (s *uploadService) StartStatusWatcher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollActive(ctx)
			}
		}
	}()
}

func (s *uploadService) pollActive(ctx context.Context) {
	for fileID, p := range s.store.ActiveUploads() {
		if p.Status != models.UploadStatusPending && p.Status != models.UploadStatusUploading {
			continue
		}

		resp, err := s.client.GetUploadStatus(ctx, fileID)
		if err != nil {
			s.log.Warn(ctx, "status poll failed", "fileID", fileID, "error", err)
			continue
		}

		s.store.UpdateProgress(ctx, models.UploadProgress{
			FileID:   fileID,
			Progress: resp.Progress,
			Status:   models.UploadStatus(resp.Status),
		})
	}
}
