package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/questline/internal/ports/secondary"
)

// dialect supplies the locking statements for a driver.
// Both lock calls run as the first statement of a progression transaction.
type dialect interface {
	lockRoadmap(ctx context.Context, tx *sqlx.Tx, roadmapID string) error
	lockGeneration(ctx context.Context, tx *sqlx.Tx, userID, domain string, now time.Time) error
}

func dialectFor(driver string) dialect {
	if driver == "postgres" {
		return postgresDialect{}
	}
	return sqliteDialect{}
}

// sqliteDialect takes the database write lock with a no-op write. SQLite has
// a single writer, so holding it serializes every progression transaction.
type sqliteDialect struct{}

func (sqliteDialect) lockRoadmap(ctx context.Context, tx *sqlx.Tx, roadmapID string) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE roadmaps SET is_active = is_active WHERE id = ?"), roadmapID)
	if err != nil {
		return fmt.Errorf("failed to lock roadmap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to lock roadmap: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("roadmap %s: %w", roadmapID, secondary.ErrNotFound)
	}
	return nil
}

func (sqliteDialect) lockGeneration(ctx context.Context, tx *sqlx.Tx, userID, _ string, now time.Time) error {
	if err := ensureProfile(ctx, tx, userID, now); err != nil {
		return fmt.Errorf("failed to lock generation: %w", err)
	}
	return nil
}

// postgresDialect uses row locks for roadmaps and a transaction-scoped
// advisory lock keyed on (user, domain) for generation, since no row exists yet.
type postgresDialect struct{}

func (postgresDialect) lockRoadmap(ctx context.Context, tx *sqlx.Tx, roadmapID string) error {
	var id string
	err := tx.QueryRowxContext(ctx, "SELECT id FROM roadmaps WHERE id = $1 FOR UPDATE", roadmapID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("roadmap %s: %w", roadmapID, secondary.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock roadmap: %w", err)
	}
	return nil
}

func (postgresDialect) lockGeneration(ctx context.Context, tx *sqlx.Tx, userID, domain string, _ time.Time) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", userID+":"+domain); err != nil {
		return fmt.Errorf("failed to lock generation: %w", err)
	}
	return nil
}

// ensureProfile provisions a default profile row. Concurrent callers are safe.
func ensureProfile(ctx context.Context, q sqlx.ExtContext, userID string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		q.Rebind("INSERT INTO profiles (user_id, created_at, updated_at) VALUES (?, ?, ?) ON CONFLICT (user_id) DO NOTHING"),
		userID, now, now,
	)
	return err
}
