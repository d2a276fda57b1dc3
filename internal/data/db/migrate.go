package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/hotflow/internal/domain"
	"github.com/yungbote/hotflow/internal/platform/apierr"
)

// CreateSchema creates any missing tables, columns and indexes. Existing data
// is never touched, so it is safe to run on every command.
func CreateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Item{},
		&types.Creative{},
	); err != nil {
		return apierr.Persistence("create_schema", fmt.Errorf("create schema: %w", err))
	}
	return nil
}
