// Package imageio handles the image plumbing around tool results: MIME
// sniffing, base64 encoding, output paths, and fitting images under the
// protocol's payload limit.
package imageio

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// DetectMIMEType detects the image MIME type from file header bytes.
//
// Magic-byte detection rather than extension, so the result reflects the true
// encoding of the file on disk.
func DetectMIMEType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	header := make([]byte, 12)
	n, _ := f.Read(header)
	header = header[:n]

	switch {
	case len(header) >= 8 && string(header[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png", nil
	case len(header) >= 2 && header[0] == 0xff && header[1] == 0xd8:
		return "image/jpeg", nil
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WEBP":
		return "image/webp", nil
	case len(header) >= 4 && string(header[:4]) == "GIF8":
		return "image/gif", nil
	case len(header) >= 2 && string(header[:2]) == "BM":
		return "image/bmp", nil
	case len(header) >= 4 && (string(header[:4]) == "II\x2a\x00" || string(header[:4]) == "MM\x00\x2a"):
		return "image/tiff", nil
	}

	// Fall back to an extension-based guess.
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t, nil
	}
	return "application/octet-stream", nil
}

// EncodeBase64 returns the standard base64 encoding of b.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ReadFile reads an image file, rejecting directory paths with a clear error.
func ReadFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("path %s is a directory, not a file", path)
	}
	return os.ReadFile(path)
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
