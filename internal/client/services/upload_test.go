package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filedrop/internal/client/source"
	"github.com/dmitrijs2005/filedrop/internal/client/store"
	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) *store.UploadStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)

	kv := metadata.NewSQLiteRepository(db)
	return store.NewUploadStore(context.Background(), kv, nil, testLogger())
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// fakeClient records calls and lets tests script chunk failures.
type fakeClient struct {
	mu sync.Mutex

	initiated  []string
	chunks     []api.UploadChunk
	finalized  []string
	cancelled  []string
	deleted    []string
	listResult []models.FileMetadata
	listErr    error

	// failuresPerChunk[i] is how many times chunk i fails before succeeding.
	failuresPerChunk map[int]int
	attempts         map[int]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		failuresPerChunk: make(map[int]int),
		attempts:         make(map[int]int),
	}
}

func (f *fakeClient) InitiateUpload(ctx context.Context, name string, size int64, mimeType string) (*api.InitiateUploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiated = append(f.initiated, name)
	return &api.InitiateUploadResponse{FileID: "file-" + name}, nil
}

func (f *fakeClient) UploadChunk(ctx context.Context, chunk *api.UploadChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[chunk.ChunkIndex]++
	if f.attempts[chunk.ChunkIndex] <= f.failuresPerChunk[chunk.ChunkIndex] {
		return errors.New("chunk rejected")
	}
	copied := *chunk
	copied.Data = bytes.Clone(chunk.Data)
	f.chunks = append(f.chunks, copied)
	return nil
}

func (f *fakeClient) FinalizeUpload(ctx context.Context, fileID, fileName string) (*models.FileMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized = append(f.finalized, fileID)
	return &models.FileMetadata{ID: fileID, Name: fileName}, nil
}

func (f *fakeClient) GetUploadStatus(ctx context.Context, fileID string) (*api.UploadStatusResponse, error) {
	return &api.UploadStatusResponse{Status: string(models.UploadStatusUploading), Progress: 0.5}, nil
}

func (f *fakeClient) CancelUpload(ctx context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, fileID)
	return nil
}

func (f *fakeClient) ListFiles(ctx context.Context) ([]models.FileMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listResult, f.listErr
}

func (f *fakeClient) DeleteFile(ctx context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileID)
	return nil
}

func newTestUploadService(t *testing.T, client api.Client, st *store.UploadStore) *uploadService {
	t.Helper()
	svc := NewUploadService(client, st, testLogger()).(*uploadService)
	// no delays between attempts in tests
	svc.newBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		}))
	}
	return svc
}

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploadFile_ChunksInOrder(t *testing.T) {
	client := newFakeClient()
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)
	ctx := context.Background()

	// 2.5 MiB splits into 1 MiB, 1 MiB, 0.5 MiB
	path := writeTempFile(t, "big.bin", 2*ChunkSize+ChunkSize/2)

	meta, err := svc.UploadFile(ctx, source.Descriptor{
		Name: "big.bin", MIMEType: "application/octet-stream", Locator: path,
	})
	require.NoError(t, err)
	require.NotNil(t, meta)

	require.Len(t, client.chunks, 3)
	for i, c := range client.chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, 3, c.TotalChunks)
	}
	assert.Len(t, client.chunks[0].Data, ChunkSize)
	assert.Len(t, client.chunks[1].Data, ChunkSize)
	assert.Len(t, client.chunks[2].Data, ChunkSize/2)

	require.Len(t, client.finalized, 1)
	assert.Equal(t, meta.ID, client.finalized[0])

	p, ok := st.Progress(meta.ID)
	require.True(t, ok)
	assert.Equal(t, models.UploadStatusCompleted, p.Status)
	assert.InDelta(t, 1.0, p.Progress, 1e-9)

	history := st.History()
	require.Len(t, history, 1)
	assert.Equal(t, "big.bin", history[0].Name)
}

func TestUploadFile_RetryTwiceThenSucceed(t *testing.T) {
	client := newFakeClient()
	client.failuresPerChunk[0] = 2
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)

	path := writeTempFile(t, "small.bin", 100)

	meta, err := svc.UploadFile(context.Background(), source.Descriptor{
		Name: "small.bin", Locator: path,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, client.attempts[0], "two failures plus the success")
	require.Len(t, client.finalized, 1)

	p, _ := st.Progress(meta.ID)
	assert.Equal(t, models.UploadStatusCompleted, p.Status)
}

func TestUploadFile_RetriesExhausted(t *testing.T) {
	client := newFakeClient()
	client.failuresPerChunk[0] = 100 // never succeeds
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)

	path := writeTempFile(t, "doomed.bin", 100)

	_, err := svc.UploadFile(context.Background(), source.Descriptor{
		Name: "doomed.bin", Locator: path,
	})
	require.Error(t, err)

	assert.Equal(t, 3, client.attempts[0], "exactly three attempts, then give up")
	assert.Empty(t, client.finalized, "a failed session is never finalized")

	p, ok := st.Progress("file-doomed.bin")
	require.True(t, ok)
	assert.Equal(t, models.UploadStatusError, p.Status)
	assert.NotEmpty(t, p.Error)
}

func TestUploadFile_EmptyFileGoesStraightToFinalize(t *testing.T) {
	client := newFakeClient()
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)

	path := writeTempFile(t, "empty.bin", 0)

	meta, err := svc.UploadFile(context.Background(), source.Descriptor{
		Name: "empty.bin", Locator: path,
	})
	require.NoError(t, err)

	assert.Empty(t, client.chunks)
	require.Len(t, client.finalized, 1)

	p, _ := st.Progress(meta.ID)
	assert.Equal(t, models.UploadStatusCompleted, p.Status)
}

func TestUploadFile_MissingSource(t *testing.T) {
	client := newFakeClient()
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)

	_, err := svc.UploadFile(context.Background(), source.Descriptor{
		Name: "nope.bin", Locator: filepath.Join(t.TempDir(), "nope.bin"),
	})
	require.ErrorIs(t, err, common.ErrSourceMissing)
	assert.Empty(t, client.initiated, "missing source fails before any network call")
}

func TestUploadAll_IndependentProgress(t *testing.T) {
	client := newFakeClient()
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)

	descs := []source.Descriptor{
		{Name: "a.bin", Locator: writeTempFile(t, "a.bin", 10)},
		{Name: "b.bin", Locator: writeTempFile(t, "b.bin", 20)},
	}
	require.NoError(t, svc.UploadAll(context.Background(), descs))

	assert.Len(t, client.finalized, 2)
	assert.Len(t, st.History(), 2)
}

func TestCancelUpload_RemovesLocalEntry(t *testing.T) {
	client := newFakeClient()
	st := setupStore(t)
	svc := newTestUploadService(t, client, st)
	ctx := context.Background()

	st.TrackUpload(ctx, models.UploadProgress{FileID: "f", Status: models.UploadStatusUploading})

	require.NoError(t, svc.CancelUpload(ctx, "f"))

	assert.Equal(t, []string{"f"}, client.cancelled)
	_, ok := st.Progress("f")
	assert.False(t, ok)
}
