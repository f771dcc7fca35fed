package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
)

// ReadRFP loads the text of an inbox document. Unsupported extensions, empty
// documents and documents larger than constants.MaxRFPBytes are rejected
// with common.ErrInvalidInput.
func ReadRFP(path string) (string, error) {
	if !constants.IsInboxExt(filepath.Ext(path)) {
		return "", fmt.Errorf("%s: unsupported extension: %w", path, common.ErrInvalidInput)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return readCapped(f, path)
}

// ReadRFPFrom is ReadRFP for an already open stream (e.g. stdin).
func ReadRFPFrom(r io.Reader, name string) (string, error) {
	return readCapped(r, name)
}

func readCapped(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, constants.MaxRFPBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > constants.MaxRFPBytes {
		return "", fmt.Errorf("%s exceeds %d bytes: %w", name, constants.MaxRFPBytes, common.ErrInvalidInput)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty: %w", name, common.ErrInvalidInput)
	}
	return text, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
