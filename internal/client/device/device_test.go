package device

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/dmitrijs2005/filedrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupProvider(t *testing.T) *Provider {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return NewProvider(metadata.NewSQLiteRepository(db), log)
}

// failingKV simulates a broken persistence layer.
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("store broken")
}
func (failingKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("store broken")
}
func (failingKV) Delete(ctx context.Context, key string) error { return errors.New("store broken") }
func (failingKV) List(ctx context.Context) (map[string][]byte, error) {
	return nil, errors.New("store broken")
}
func (failingKV) Clear(ctx context.Context) error { return errors.New("store broken") }

func TestGetDeviceID_StableAcrossCalls(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	first := p.GetDeviceID(ctx)
	second := p.GetDeviceID(ctx)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Regexp(t, uuidFormat, first)
}

func TestClearDeviceID_NextCallGeneratesFresh(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	first := p.GetDeviceID(ctx)
	require.NoError(t, p.ClearDeviceID(ctx))
	second := p.GetDeviceID(ctx)

	assert.NotEqual(t, first, second)
}

func TestSetDeviceID_Valid(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	const id = "123E4567-e89b-12d3-a456-426614174000"
	require.NoError(t, p.SetDeviceID(ctx, id))
	assert.Equal(t, id, p.GetDeviceID(ctx))
}

func TestSetDeviceID_InvalidFormatKeepsStoredValue(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	stored := p.GetDeviceID(ctx)

	tests := []string{
		"",
		"not-a-uuid",
		"123e4567e89b12d3a456426614174000",
		"123e4567-e89b-12d3-a456-42661417400",   // one hex digit short
		"123e4567-e89b-12d3-a456-4266141740000", // one hex digit long
		"xyze4567-e89b-12d3-a456-426614174000",
	}
	for _, id := range tests {
		err := p.SetDeviceID(ctx, id)
		require.ErrorIs(t, err, common.ErrInvalidDeviceID, "id %q", id)
	}

	assert.Equal(t, stored, p.GetDeviceID(ctx))
}

func TestGetDeviceID_BrokenStoreFallsBackToEphemeral(t *testing.T) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	p := NewProvider(failingKV{}, log)
	ctx := context.Background()

	first := p.GetDeviceID(ctx)
	second := p.GetDeviceID(ctx)

	// the degraded mode still yields usable ids, but not stable ones
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}
