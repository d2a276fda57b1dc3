package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/hotflow/internal/data/repos/creatives"
	"github.com/yungbote/hotflow/internal/data/repos/items"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

type ItemRepo = items.ItemRepo
type ItemFilter = items.ItemFilter

type CreativeRepo = creatives.CreativeRepo
type CreativeFilter = creatives.CreativeFilter

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return items.NewItemRepo(db, baseLog)
}

func NewCreativeRepo(db *gorm.DB, baseLog *logger.Logger) CreativeRepo {
	return creatives.NewCreativeRepo(db, baseLog)
}
