package service

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/internal/storage"
	"bitwise74/devdoc-api/pkg/util"
	"bitwise74/devdoc-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const uploadsPath = "/uploads/"

var errFileNotFound = apperr.NotFound("File not found")

// Upload is a file as received from the client
type Upload struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

type FileService struct {
	db      *gorm.DB
	store   storage.Storage
	maxSize int64
	now     func() time.Time
}

func NewFileService(db *gorm.DB, store storage.Storage, maxSize int64) *FileService {
	return &FileService{
		db:      db,
		store:   store,
		maxSize: maxSize,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Store validates up, writes it to storage and attaches a file record to
// the project.
func (s *FileService) Store(ctx context.Context, ownerID, projectID string, up Upload) (*model.File, error) {
	if err := checkOwned(s.db.WithContext(ctx), ownerID, projectID); err != nil {
		return nil, err
	}

	mime, err := validators.FileValidator(up.Name, up.Size, s.maxSize, up.Body)
	if err != nil {
		return nil, s.validationErr(err)
	}

	now := s.now()

	name, err := util.StorageName(up.Name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage name, %w", err)
	}

	id, err := util.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file ID, %w", err)
	}

	body := &countingReader{r: up.Body}
	if err := s.store.Put(ctx, name, body, up.Size, mime); err != nil {
		return nil, fmt.Errorf("failed to store upload, %w", err)
	}

	rec := model.File{
		ID:           id,
		ProjectID:    projectID,
		Filename:     name,
		OriginalName: up.Name,
		Path:         uploadsPath + name,
		Size:         body.n,
		MimeType:     mime,
		UploadedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The project may have been deleted while the upload was streaming
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		return touch(tx, projectID, now)
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			zap.L().Warn("Failed to remove upload after failed save", zap.String("file", name), zap.Error(delErr))
		}

		return nil, wrap("failed to save file record", err)
	}

	return &rec, nil
}

// Delete removes the stored object, tolerating it being gone already, and
// then the record.
func (s *FileService) Delete(ctx context.Context, ownerID, projectID, fileID string) error {
	var f model.File

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwned(tx, ownerID, projectID); err != nil {
			return err
		}

		if err := tx.Where("id = ? AND project_id = ?", fileID, projectID).First(&f).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errFileNotFound
			}
			return err
		}

		return nil
	})
	if err != nil {
		return wrap("failed to fetch file", err)
	}

	if err := s.store.Delete(ctx, f.Filename); err != nil {
		return fmt.Errorf("failed to delete stored file, %w", err)
	}

	now := s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND project_id = ?", fileID, projectID).Delete(&model.File{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return errFileNotFound
		}

		return touch(tx, projectID, now)
	})

	return wrap("failed to delete file record", err)
}

func (s *FileService) validationErr(err error) error {
	switch {
	case errors.Is(err, validators.ErrFileTooLarge):
		return apperr.Validation(fmt.Sprintf("File exceeds the maximum size of %d MB", s.maxSize>>20))
	case errors.Is(err, validators.ErrFileTypeUnsupported):
		return apperr.Validation("File type not allowed")
	case errors.Is(err, validators.ErrFileNameTooLong),
		errors.Is(err, validators.ErrNoFile):
		return apperr.Validation(err.Error())
	}

	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
