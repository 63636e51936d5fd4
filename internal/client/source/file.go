package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

// FileReader reads resources addressed by local filesystem paths.
type FileReader struct{}

func NewFileReader() *FileReader {
	return &FileReader{}
}

func (r *FileReader) Info(ctx context.Context, locator string) (Info, error) {
	st, err := os.Stat(locator)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", locator, err)
	}
	if st.IsDir() {
		return Info{}, nil
	}
	return Info{Exists: true, Size: st.Size()}, nil
}

func (r *FileReader) ReadAll(ctx context.Context, locator string) ([]byte, error) {
	data, err := os.ReadFile(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrResourceUnavailable, locator, err)
	}
	return data, nil
}
