package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos use Tx when set and fall back to their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// InTx runs fn inside a transaction on db, or on dbc.Tx when the caller is
// already in one (gorm turns that into a savepoint). fn's error rolls back.
func InTx(dbc Context, db *gorm.DB, fn func(dbc Context) error) error {
	conn := dbc.Tx
	if conn == nil {
		conn = db
	}
	return conn.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
