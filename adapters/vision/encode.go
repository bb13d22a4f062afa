package vision

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/prasraka/docvoice/domain/entities"
)

// EncodeImage reads the file at path and returns its base64 encoding
// together with the MIME type inferred from the extension.
func EncodeImage(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", &entities.IOError{Op: "read image", Path: path, Err: err}
	}
	return base64.StdEncoding.EncodeToString(data), mimeTypeFor(path), nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
