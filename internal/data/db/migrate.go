package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(glucose.Models()...)
}

// Service is implemented by PostgresService and SQLiteService.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
}

// Open selects the driver named by driver ("postgres" or "sqlite").
func Open(log *logger.Logger, driver, sqliteDSN string) (Service, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql":
		return NewPostgresService(log)
	case "sqlite", "sqlite3":
		return NewSQLiteService(log, sqliteDSN)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
