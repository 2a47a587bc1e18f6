package internal

import (
	"bitwise74/devdoc-api/config"
	"bitwise74/devdoc-api/internal/metrics"
	"bitwise74/devdoc-api/internal/service"
	"bitwise74/devdoc-api/internal/storage"

	"github.com/chenyahui/gin-cache/persist"
	"gorm.io/gorm"
)

// Deps is everything handlers need. Metrics and Cache may be nil when
// disabled.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Storage  storage.Storage
	Users    *service.UserService
	Projects *service.ProjectService
	Files    *service.FileService
	Janitor  *service.Janitor
	Metrics  *metrics.Metrics
	Cache    persist.CacheStore
}
