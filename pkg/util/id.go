// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StoragePrefix starts every name built by StorageName
const StoragePrefix = "file-"

var storageNameRe = regexp.MustCompile(`^file-\d+-\d{10}(\.[a-z0-9]+)?$`)

const (
	charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits  = "0123456789"
)

// NewID returns a 16 character alphanumeric ID used for users and the
// entries owned by a project
func NewID() (string, error) {
	return gonanoid.Generate(charset, 16)
}

// NewProjectID returns a URL-safe 21 character ID. The project ID doubles as
// the public share handle, so it uses the full nanoid alphabet.
func NewProjectID() (string, error) {
	return gonanoid.New()
}

// RandStr returns a random alphanumeric string of length n
func RandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}

// StorageName builds a collision-resistant name for an uploaded file. The
// original extension is kept, lowercased.
func StorageName(originalName string, now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(digits, 10)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s%d-%s%s", StoragePrefix, now.UnixMilli(), suffix, ext), nil
}

// IsStorageName reports whether name has the shape StorageName produces
func IsStorageName(name string) bool {
	return storageNameRe.MatchString(name)
}
