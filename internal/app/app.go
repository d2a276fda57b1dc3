package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/hotflow/internal/data/db"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

// App holds what one CLI invocation needs: a logger, one database handle and
// the repos on top of it. Clients for the external APIs are built on demand
// because only some commands need their credentials.
type App struct {
	Log   *logger.Logger
	DB    *gorm.DB
	Cfg   *Settings
	Repos Repos
}

// New opens the database and makes sure the schema exists.
func New(cfg *Settings, log *logger.Logger) (*App, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	theDB, err := db.Open(cfg.DatabaseURL, log, db.Options{LogSQL: cfg.Verbose})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.CreateSchema(theDB); err != nil {
		_ = db.Close(theDB)
		return nil, err
	}
	return &App{
		Log:   log,
		DB:    theDB,
		Cfg:   cfg,
		Repos: wireRepos(theDB, log),
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if err := db.Close(a.DB); err != nil {
		a.Log.Warn("close database", "error", err)
	}
	a.DB = nil
}
