package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager starts gorm transactions and hands the bound connection to
// repositories through the context. Every repository call made inside the
// callback runs on the same transaction connection; some drivers reject
// interleaved statements across connections mid-transaction.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction connection carried by ctx, or the
// repository's own handle outside a transaction.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
