package storage

import (
	"mime"
	"path/filepath"

	"github.com/wailsapp/mimetype"
)

// DefaultContentType is used when neither extension nor content identify the file
const DefaultContentType = "audio/wav"

const octetStream = "application/octet-stream"

// DetectContentType guesses a MIME type by extension first, then by sniffing content
func DetectContentType(path string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil || detected.Is(octetStream) {
		return DefaultContentType
	}
	return detected.String()
}
