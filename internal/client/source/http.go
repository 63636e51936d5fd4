package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

// HTTPReader reads resources addressed by http(s) URLs, e.g. object URLs
// handed over by a web picker. Info fetches the resource to learn its size,
// mirroring how a browser client resolves blob references.
type HTTPReader struct {
	client *http.Client
}

func NewHTTPReader(client *http.Client) *HTTPReader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPReader{client: client}
}

func (r *HTTPReader) Info(ctx context.Context, locator string) (Info, error) {
	data, err := r.fetch(ctx, locator)
	if err != nil {
		return Info{}, nil
	}
	return Info{Exists: true, Size: int64(len(data))}, nil
}

func (r *HTTPReader) ReadAll(ctx context.Context, locator string) ([]byte, error) {
	data, err := r.fetch(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrResourceUnavailable, locator, err)
	}
	return data, nil
}

func (r *HTTPReader) fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// NewReader selects a Reader implementation by locator scheme: http(s)
// locators get an HTTPReader, everything else is treated as a filesystem
// path.
func NewReader(locator string, client *http.Client) Reader {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return NewHTTPReader(client)
	}
	return NewFileReader()
}
