package cli

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/client/source"
)

// upload sends the given paths or URLs to the server, rendering one
// aggregate progress bar fed from the store while the engine runs.
func (a *App) upload(ctx context.Context, locators []string) {
	descs := make([]source.Descriptor, 0, len(locators))
	for _, locator := range locators {
		descs = append(descs, source.Descriptor{
			Name:     filepath.Base(locator),
			MIMEType: guessMIMEType(locator),
			Locator:  locator,
		})
	}

	// entries from earlier sessions stay out of this bar
	previous := make(map[string]bool)
	for id := range a.uploadStore.ActiveUploads() {
		previous[id] = true
	}

	bar := pb.New(100 * len(descs))
	bar.Start()

	done := make(chan error, 1)
	go func() {
		done <- a.uploadService.UploadAll(ctx, descs)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	render := func() {
		total := 0
		for id, p := range a.uploadStore.ActiveUploads() {
			if previous[id] {
				continue
			}
			total += int(p.Progress * 100)
		}
		bar.SetCurrent(int64(total))
	}

	for {
		select {
		case <-ticker.C:
			render()
		case err := <-done:
			render()
			bar.Finish()
			if err != nil {
				fmt.Println("Upload failed:", err)
			} else {
				fmt.Printf("Uploaded %d file(s)\n", len(descs))
			}
			return
		case <-ctx.Done():
			bar.Finish()
			return
		}
	}
}

func guessMIMEType(locator string) string {
	if t := mime.TypeByExtension(filepath.Ext(locator)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// cancelActive abandons every still-active session.
func (a *App) cancelActive(ctx context.Context) {
	for id, p := range a.uploadStore.ActiveUploads() {
		if p.Status == models.UploadStatusPending || p.Status == models.UploadStatusUploading {
			_ = a.uploadService.CancelUpload(ctx, id)
			fmt.Println("Cancelled", id)
		}
	}
}
