package tx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type (
	ctxKey     struct{}
	gormCtxKey struct{}
)

var (
	txKey     = ctxKey{}
	gormTxKey = gormCtxKey{}
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context so stores outside the
// transaction owner (audit outbox) join it.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Executor returns the transaction in ctx, falling back to db.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// WithGormTx stores a gorm transaction handle in context. The SQLite driver
// runs on a single connection, so every store touched inside a transaction
// must use this handle or it blocks on the pool.
func WithGormTx(ctx context.Context, tx *gorm.DB) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, gormTxKey, tx)
}

// Gorm returns the gorm transaction in ctx, falling back to db. The result is
// bound to ctx.
func Gorm(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := GormFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// GormFrom extracts a gorm transaction from context if present.
func GormFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(gormTxKey).(*gorm.DB)
	return tx, ok
}
