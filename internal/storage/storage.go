// Package storage keeps the binary content of uploaded files. Keys are flat
// storage names, never paths.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Browsers run script in these when rendered inline
var attachmentExts = map[string]struct{}{
	".htm":  {},
	".html": {},
	".svg":  {},
	".xml":  {},
}

// ForceDownload reports whether key has to be served as an attachment
// rather than rendered from our origin
func ForceDownload(key string) bool {
	_, ok := attachmentExts[strings.ToLower(filepath.Ext(key))]
	return ok
}

type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

type Storage interface {
	// Put writes r under key, replacing anything already there
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
	// List returns the stored objects whose key starts with prefix
	List(ctx context.Context, prefix string) ([]Object, error)
}

// FileSystem is implemented by backends that serve objects in-process
type FileSystem interface {
	FS() http.FileSystem
}

// Redirector is implemented by backends whose objects live behind their
// own public URL
type Redirector interface {
	URL(key string) string
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}

	return nil
}
