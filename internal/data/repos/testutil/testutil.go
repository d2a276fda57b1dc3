package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/hotflow/internal/data/db"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		if os.Getenv("TEST_LOG") == "" {
			logg = logger.Nop()
			return
		}
		logg, logErr = logger.NewWithOptions(logger.Options{Mode: "development", Verbose: true})
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// URL returns TEST_DATABASE_URL, or a fresh sqlite file under tb.TempDir().
func URL(tb testing.TB) string {
	tb.Helper()
	if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
		return u
	}
	return "sqlite:///" + filepath.Join(tb.TempDir(), "hotflow_test.db")
}

// DB opens a migrated database that is closed when the test ends. Against a
// shared TEST_DATABASE_URL, wrap work in Tx to keep tests isolated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb, err := db.Open(URL(tb), Logger(tb), db.Options{})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close(gdb) })
	if err := db.CreateSchema(gdb); err != nil {
		tb.Fatalf("create schema: %v", err)
	}
	return gdb
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
