package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Local keeps uploads on an afero filesystem. In production that is a
// BasePathFs over the uploads directory.
type Local struct {
	fs afero.Fs
}

func NewLocal(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

// NewLocalDir creates dir if needed and roots a Local there
func NewLocalDir(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory, %w", err)
	}

	return NewLocal(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := validKey(key); err != nil {
		return err
	}

	if err := afero.WriteReader(l.fs, "/"+key, r); err != nil {
		return fmt.Errorf("failed to write %s, %w", key, err)
	}

	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	err := l.fs.Remove("/" + key)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s, %w", key, err)
	}

	return nil
}

func (l *Local) List(_ context.Context, prefix string) ([]Object, error) {
	entries, err := afero.ReadDir(l.fs, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads, %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}

		objects = append(objects, Object{
			Key:     e.Name(),
			Size:    e.Size(),
			ModTime: e.ModTime(),
		})
	}

	return objects, nil
}

func (l *Local) FS() http.FileSystem {
	return afero.NewHttpFs(l.fs)
}
