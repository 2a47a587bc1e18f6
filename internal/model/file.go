package model

import "time"

type File struct {
	ID           string    `gorm:"primaryKey;size:16" json:"id"`
	ProjectID    string    `gorm:"index;size:21;not null" json:"-"`
	Filename     string    `gorm:"uniqueIndex;not null" json:"filename"` // Storage key, avoids name conflicts
	OriginalName string    `gorm:"not null" json:"originalName"`
	Path         string    `gorm:"not null" json:"path"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}
