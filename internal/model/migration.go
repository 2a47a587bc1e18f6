package model

import "time"

// Migration records a named one-off schema change that already ran
type Migration struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// All lists every model AutoMigrate has to know about
func All() []any {
	return []any{&User{}, &Project{}, &Snippet{}, &Link{}, &File{}, &Migration{}}
}
