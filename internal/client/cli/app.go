package cli

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/config"
	"github.com/dmitrijs2005/filedrop/internal/client/device"
	"github.com/dmitrijs2005/filedrop/internal/client/repositories"
	"github.com/dmitrijs2005/filedrop/internal/client/services"
	"github.com/dmitrijs2005/filedrop/internal/client/store"
	"github.com/dmitrijs2005/filedrop/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive filedrop client: a REPL over the upload and sync
// services, sharing one local database.
type App struct {
	config        *config.Config
	repos         *repositories.Repositories
	device        *device.Provider
	uploadStore   *store.UploadStore
	notifications *store.NotificationStore
	uploadService services.UploadService
	syncService   services.SyncService
	log           logging.Logger
	reader        *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	repos, err := repositories.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	deviceProvider := device.NewProvider(repos.Metadata, log)

	transport := api.TransportBinary
	if c.ChunkTransport == config.TransportBase64 {
		transport = api.TransportBase64
	}
	apiClient := api.NewHTTPClient(c.ServerBaseURL, &http.Client{Timeout: c.RequestTimeout}, deviceProvider, transport)

	notifications := store.NewNotificationStore(ctx, repos.Metadata, log)
	uploadStore := store.NewUploadStore(ctx, repos.Metadata, notifications, log)

	return &App{
		config:        c,
		repos:         repos,
		device:        deviceProvider,
		uploadStore:   uploadStore,
		notifications: notifications,
		uploadService: services.NewUploadService(apiClient, uploadStore, log),
		syncService:   services.NewSyncService(apiClient, uploadStore, notifications, log),
		log:           log,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.Close()

	a.syncService.StartSyncWatcher(ctx, a.config.SyncInterval)
	a.uploadService.StartStatusWatcher(ctx, a.config.StatusPollInterval)

	a.Root(ctx)
}
