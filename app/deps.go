package app

import (
	"bitwise74/devdoc-api/config"
	"bitwise74/devdoc-api/db"
	"bitwise74/devdoc-api/internal"
	"bitwise74/devdoc-api/internal/metrics"
	"bitwise74/devdoc-api/internal/service"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/security"
	"context"
	"fmt"
	"time"
)

// orphanGrace keeps the sweeper away from uploads whose record is still
// being written
const orphanGrace = time.Hour

// NewDeps opens the database, storage and cache described by cfg and wires
// the services on top of them
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	if err := db.CheckMounted(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		return nil, err
	}

	conn, err := db.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	store, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacheStore, err := NewCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	d := &internal.Deps{
		Config:   cfg,
		DB:       conn,
		Storage:  store,
		Users:    service.NewUserService(conn, security.New(), security.NewTokenMaker(cfg.JWT.Secret, cfg.JWT.TTL)),
		Projects: service.NewProjectService(conn, store, cfg.Host.PublicURL),
		Files:    service.NewFileService(conn, store, cfg.Upload.MaxSize),
		Janitor:  service.NewJanitor(conn, store, orphanGrace),
		Cache:    cacheStore,
	}

	if cfg.Metrics.Enabled {
		d.Metrics = metrics.New()
	}

	return d, nil
}

// NewStorage returns the backend selected by storage.type
func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "s3":
		s3, err := storage.NewS3(ctx, storage.S3Options{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			Endpoint:        cfg.Storage.S3.Endpoint,
			PublicURL:       cfg.Storage.S3.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return s3, nil
	case "local":
		local, err := storage.NewLocalDir(cfg.Storage.LocalPath)
		if err != nil {
			return nil, err
		}

		return local, nil
	}

	return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
}
