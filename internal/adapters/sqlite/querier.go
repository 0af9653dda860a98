// Package sqlite contains SQLite implementations of the repository
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/catalogd/internal/ports/secondary"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every repository is built against it so the same code runs standalone
// or inside an orchestrator transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewRepositories binds every repository to the given querier.
func NewRepositories(q Querier) secondary.Repositories {
	return secondary.Repositories{
		DriftFlags:      NewDriftFlagRepository(q),
		Services:        NewServiceRepository(q),
		ManifestConfigs: NewManifestConfigRepository(q),
		SyncHistory:     NewSyncHistoryRepository(q),
		Teams:           NewTeamRepository(q),
		Users:           NewUserRepository(q),
	}
}

// TxRunner implements secondary.TxRunner over a *sql.DB.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a transaction runner for the given database.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunInTx runs fn against transaction-bound repositories, committing on
// nil and rolling back on error or panic.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(repos secondary.Repositories) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Check foreign keys at commit, not per statement: a sync run
	// creates drift flags referencing its history row before that row
	// is appended at the end of the transaction.
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer foreign keys: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewRepositories(tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ensure TxRunner implements the interface
var _ secondary.TxRunner = (*TxRunner)(nil)
