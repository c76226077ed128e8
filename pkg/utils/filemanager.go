// =============================================================================
// PayPal to GnuCash Importer - File Utilities
// =============================================================================
//
// File handling helpers shared across the importer:
//   - Transparent reading of gzip-compressed or plain files (GnuCash writes
//     either, depending on the user's compression preference)
//   - Atomic output writing (temp file + rename) so an aborted run never
//     leaves a truncated ledger behind
//
// =============================================================================

package utils

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// =============================================================================
// READING
// =============================================================================

// ReadFileMaybeGzip reads a file, attempting gzip decompression first and
// falling back to the raw bytes.
//
// PARAMETERS:
//   - path: The path to the file.
//
// RETURNS:
//   - The decompressed (or raw) file contents.
//   - An error if the file cannot be read.
func ReadFileMaybeGzip(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		// Not gzip: return the raw bytes.
		return data, nil
	}
	defer zr.Close()

	decompressed, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress file: %w", err)
	}
	return decompressed, nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteFileAtomic writes data to path via a temporary file in the same
// directory followed by a rename. Readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// FileExists reports whether the path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
