package service

import (
	"bitwise74/devdoc-api/db"
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/util"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.New("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

func newUser(t *testing.T, conn *gorm.DB, email string) string {
	t.Helper()

	id := util.RandStr(16)
	require.NoError(t, conn.Create(&model.User{ID: id, Email: email, PasswordHash: "x"}).Error)

	return id
}

// clock hands out strictly increasing timestamps so ordering by update
// time is deterministic
type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// stored reports whether key is present in the fixture's storage
func (f *fixture) stored(t *testing.T, key string) bool {
	t.Helper()

	ok, err := afero.Exists(f.fs, "/"+key)
	require.NoError(t, err)

	return ok
}

type fixture struct {
	db       *gorm.DB
	fs       afero.Fs
	store    *storage.Local
	projects *ProjectService
	files    *FileService
	owner    string
	other    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := newTestDB(t)
	fs := afero.NewMemMapFs()
	store := storage.NewLocal(fs)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	projects := NewProjectService(conn, store, "https://vault.example/")
	projects.now = c.Now

	files := NewFileService(conn, store, 1<<20)
	files.now = c.Now

	return &fixture{
		db:       conn,
		fs:       fs,
		store:    store,
		projects: projects,
		files:    files,
		owner:    newUser(t, conn, "owner@example.com"),
		other:    newUser(t, conn, "other@example.com"),
	}
}
