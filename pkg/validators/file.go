package validators

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("No file uploaded")
)

const maxFileNameSize = 245

// allowedTypes maps each accepted extension to a MIME type the sniffed
// content must be, or descend from. Code and markup files are only
// recognisable as text.
var allowedTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/x-ole-storage",
	".docx": "application/zip",
	".txt":  "text/plain",
	".md":   "text/plain",
	".js":   "text/plain",
	".ts":   "text/plain",
	".jsx":  "text/plain",
	".tsx":  "text/plain",
	".css":  "text/plain",
	".html": "text/plain",
	".json": "text/plain",
	".xml":  "text/plain",
	".svg":  "text/plain",
}

// FileValidator checks an upload's name, size and content and returns the
// sniffed MIME type. The extension and the content both have to be on the
// allow list. f is rewound before returning.
func FileValidator(name string, size, maxSize int64, f io.ReadSeeker) (string, error) {
	if f == nil {
		return "", ErrNoFile
	}

	if len(name) > maxFileNameSize {
		return "", ErrFileNameTooLong
	}

	want, ok := allowedTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", ErrFileTypeUnsupported
	}

	if size > maxSize {
		return "", ErrFileTooLarge
	}

	// The declared size is easy to spoof, so make sure nothing exists past
	// the limit in the actual content
	if _, err := f.Seek(maxSize, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek upload, %w", err)
	}

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload, %w", err)
	}

	if n > 0 {
		return "", ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload, %w", err)
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type, %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload, %w", err)
	}

	for m := mime; m != nil; m = m.Parent() {
		if m.Is(want) {
			return mime.String(), nil
		}
	}

	return "", ErrFileTypeUnsupported
}
