package db

import (
	"bitwise74/devdoc-api/internal/model"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("sqlite creates schema and records migrations", func(t *testing.T) {
		db, err := New("sqlite", filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)

		for _, table := range []string{"users", "projects", "snippets", "links", "files", "migrations"} {
			assert.True(t, db.Migrator().HasTable(table), table)
		}

		var names []string
		require.NoError(t, db.Model(&model.Migration{}).Order("id").Pluck("name", &names).Error)
		assert.Len(t, names, len(migrations))
		assert.True(t, db.Migrator().HasIndex(&model.Project{}, "idx_projects_owner_updated"))
	})

	t.Run("migrations run once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")

		_, err := New("sqlite", path)
		require.NoError(t, err)

		db, err := New("sqlite", path)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&model.Migration{}).Count(&count).Error)
		assert.Equal(t, int64(len(migrations)), count)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New("mysql", "whatever")
		assert.Error(t, err)
	})
}

func TestCheckMounted(t *testing.T) {
	// Postgres never needs a mounted file
	assert.NoError(t, CheckMounted("postgres", "host=localhost"))
}
