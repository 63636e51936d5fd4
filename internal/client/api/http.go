package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/filedrop/internal/chunkx"
	"github.com/dmitrijs2005/filedrop/internal/client/models"
	"github.com/dmitrijs2005/filedrop/internal/common"
)

const deviceIDHeader = "X-Device-ID"

// ChunkTransport is the capability of the chunk payload channel, selected
// once at client construction.
type ChunkTransport int

const (
	// TransportBinary sends raw chunk bytes as a multipart file part.
	TransportBinary ChunkTransport = iota
	// TransportBase64 sends base64 text with an isBase64 marker, for
	// channels that cannot carry raw binary.
	TransportBase64
)

// HTTPClient talks to the filedrop service over plain HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	deviceID   DeviceIDSource
	transport  ChunkTransport
}

func NewHTTPClient(baseURL string, httpClient *http.Client, deviceID DeviceIDSource, transport ChunkTransport) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		deviceID:   deviceID,
		transport:  transport,
	}
}

func (c *HTTPClient) InitiateUpload(ctx context.Context, name string, size int64, mimeType string) (*InitiateUploadResponse, error) {
	deviceID := c.deviceID.GetDeviceID(ctx)

	body := map[string]any{
		"fileName": name,
		"fileSize": size,
		"mimeType": mimeType,
		"deviceId": deviceID,
	}

	var resp InitiateUploadResponse
	if err := c.postJSON(ctx, "/upload/initiate", deviceID, body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInitiateRejected, err)
	}
	return &resp, nil
}

func (c *HTTPClient) UploadChunk(ctx context.Context, chunk *UploadChunk) error {
	deviceID := c.deviceID.GetDeviceID(ctx)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"fileId":      chunk.FileID,
		"chunkIndex":  strconv.Itoa(chunk.ChunkIndex),
		"totalChunks": strconv.Itoa(chunk.TotalChunks),
		"deviceId":    deviceID,
		"mimeType":    chunk.MimeType,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	switch c.transport {
	case TransportBase64:
		if err := w.WriteField("isBase64", "true"); err != nil {
			return fmt.Errorf("failed to write form field isBase64: %w", err)
		}
		if err := w.WriteField("chunk", chunkx.EncodeForTransport(chunk.Data)); err != nil {
			return fmt.Errorf("failed to write chunk field: %w", err)
		}
	default:
		part, err := w.CreateFormFile("chunk", "blob")
		if err != nil {
			return fmt.Errorf("failed to create chunk part: %w", err)
		}
		if _, err := part.Write(chunk.Data); err != nil {
			return fmt.Errorf("failed to write chunk part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/chunk", &buf)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrChunkRejected, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(deviceIDHeader, deviceID)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%w: chunk %d/%d: %v", common.ErrChunkRejected, chunk.ChunkIndex, chunk.TotalChunks, err)
	}
	return nil
}

func (c *HTTPClient) FinalizeUpload(ctx context.Context, fileID, fileName string) (*models.FileMetadata, error) {
	deviceID := c.deviceID.GetDeviceID(ctx)

	body := map[string]any{
		"fileId":   fileID,
		"fileName": fileName,
		"deviceId": deviceID,
	}

	var meta models.FileMetadata
	if err := c.postJSON(ctx, "/upload/finalize", deviceID, body, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFinalizeRejected, err)
	}
	return &meta, nil
}

func (c *HTTPClient) GetUploadStatus(ctx context.Context, fileID string) (*UploadStatusResponse, error) {
	deviceID := c.deviceID.GetDeviceID(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/upload/status/"+fileID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(deviceIDHeader, deviceID)

	var status UploadStatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, fmt.Errorf("failed to get upload status: %w", err)
	}
	return &status, nil
}

func (c *HTTPClient) CancelUpload(ctx context.Context, fileID string) error {
	deviceID := c.deviceID.GetDeviceID(ctx)

	body := map[string]any{
		"fileId":   fileID,
		"deviceId": deviceID,
	}
	if err := c.postJSON(ctx, "/upload/cancel", deviceID, body, nil); err != nil {
		return fmt.Errorf("failed to cancel upload: %w", err)
	}
	return nil
}

func (c *HTTPClient) ListFiles(ctx context.Context) ([]models.FileMetadata, error) {
	deviceID := c.deviceID.GetDeviceID(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/device/"+deviceID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(deviceIDHeader, deviceID)

	var files []models.FileMetadata
	if err := c.do(req, &files); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID string) error {
	deviceID := c.deviceID.GetDeviceID(ctx)

	payload, err := json.Marshal(map[string]any{"deviceId": deviceID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+fileID, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deviceIDHeader, deviceID)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// postJSON sends a JSON POST and decodes the response into out (if non-nil).
func (c *HTTPClient) postJSON(ctx context.Context, path, deviceID string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deviceIDHeader, deviceID)

	return c.do(req, out)
}

// do executes a request, maps non-2xx responses to errors carrying the
// server-provided message, and decodes a JSON body into out when requested.
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", common.ErrNotFound, serverMessage(resp.Body))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, serverMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// serverMessage extracts the error text from a {"error": ...} or
// {"message": ...} body, falling back to a generic marker.
func serverMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "request rejected"
}
