package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/hotflow/internal/data/repos"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

type Repos struct {
	Item     repos.ItemRepo
	Creative repos.CreativeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Debug("Wiring repos...")
	return Repos{
		Item:     repos.NewItemRepo(db, log),
		Creative: repos.NewCreativeRepo(db, log),
	}
}
