// Package db opens the database and keeps its schema up to date
package db

import (
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/pkg/util"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a connection with the given driver ("sqlite" or "postgres")
// and migrates the schema.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// CheckMounted refuses to let a container create a fresh SQLite file. The
// host should instead mount it using volumes.
func CheckMounted(driver, dsn string) error {
	if driver != "sqlite" || !util.IsRunningInDocker() {
		return nil
	}

	if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
	}

	return nil
}

// Migrate runs AutoMigrate followed by any named migration that hasn't
// been applied yet.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	for _, m := range migrations {
		var applied int64
		if err := db.Model(&model.Migration{}).Where("name = ?", m.name).Count(&applied).Error; err != nil {
			return fmt.Errorf("failed to check migration %s, %w", m.name, err)
		}

		if applied > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}

			return tx.Create(&model.Migration{Name: m.name}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s, %w", m.name, err)
		}
	}

	return nil
}
