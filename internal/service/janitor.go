package service

import (
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/util"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepBatch = 500

// Janitor periodically removes stored objects that no file record points
// to, which happens when a database write fails after the upload landed.
type Janitor struct {
	db    *gorm.DB
	store storage.Storage
	grace time.Duration
	cron  *cron.Cron
}

// NewJanitor only sweeps objects older than grace, so uploads still being
// recorded are left alone
func NewJanitor(db *gorm.DB, store storage.Storage, grace time.Duration) *Janitor {
	return &Janitor{
		db:    db,
		store: store,
		grace: grace,
		cron:  cron.New(),
	}
}

// Start schedules Sweep with a cron expression like "@daily". An empty schedule
// disables the janitor.
func (j *Janitor) Start(schedule string) error {
	if schedule == "" {
		return nil
	}

	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := j.Sweep(ctx); err != nil {
			zap.L().Error("Orphan sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q, %w", schedule, err)
	}

	zap.L().Debug("Orphan sweep attached", zap.String("schedule", schedule))

	j.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	objects, err := j.store.List(ctx, util.StoragePrefix)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-j.grace)

	// Only names this app generates are ours to remove, the bucket may be shared
	var candidates []string
	for _, o := range objects {
		if util.IsStorageName(o.Key) && !o.ModTime.After(cutoff) {
			candidates = append(candidates, o.Key)
		}
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	known := make(map[string]struct{}, len(candidates))
	for batch := range slices.Chunk(candidates, sweepBatch) {
		var names []string

		err := j.db.WithContext(ctx).
			Model(&model.File{}).
			Where("filename IN ?", batch).
			Pluck("filename", &names).
			Error
		if err != nil {
			return 0, fmt.Errorf("failed to query db for known files, %w", err)
		}

		for _, n := range names {
			known[n] = struct{}{}
		}
	}

	removed := 0
	for _, key := range candidates {
		if _, ok := known[key]; ok {
			continue
		}

		if err := j.store.Delete(ctx, key); err != nil {
			zap.L().Warn("Failed to remove orphaned upload", zap.String("file", key), zap.Error(err))
			continue
		}

		removed++
	}

	if removed > 0 {
		zap.L().Info("Removed orphaned uploads", zap.Int("count", removed))
	}

	return removed, nil
}
