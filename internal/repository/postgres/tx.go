package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sva/internal/port"
)

type txManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager whose repositories share one sqlx.Tx.
func NewTxManager(db *sqlx.DB) port.TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("txManager.WithinTx begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	repos := port.Repositories{
		Orders:   &orderRepo{db: tx},
		Items:    &orderItemRepo{db: tx},
		Products: &productRepo{db: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txManager.WithinTx commit: %w", err)
	}
	return nil
}
