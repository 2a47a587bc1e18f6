package db

import "gorm.io/gorm"

type migration struct {
	name string
	up   func(tx *gorm.DB) error
}

// Append only. Names are recorded in the migrations table once applied.
var migrations = []migration{
	{
		// Dashboard listing filters by owner and sorts by update time
		name: "0001_projects_owner_updated_idx",
		up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_projects_owner_updated ON projects (user_id, updated_at)").Error
		},
	},
	{
		// Rows written before emails were normalized on registration
		name: "0002_normalize_user_emails",
		up: func(tx *gorm.DB) error {
			return tx.Exec("UPDATE users SET email = LOWER(TRIM(email)) WHERE email <> LOWER(TRIM(email))").Error
		},
	},
}
