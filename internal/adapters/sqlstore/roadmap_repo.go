// Package sqlstore contains SQL implementations of the persistence ports.
// The same queries serve SQLite and Postgres; placeholders are rebound per driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/questline/internal/ports/secondary"
)

const roadmapSelectCols = "id, user_id, domain, is_active, created_at, completed_at"

const nodeSelectCols = "id, roadmap_id, title, description, status, position, xp_reward, coin_reward"

type roadmapRow struct {
	ID          string       `db:"id"`
	UserID      string       `db:"user_id"`
	Domain      string       `db:"domain"`
	IsActive    bool         `db:"is_active"`
	CreatedAt   time.Time    `db:"created_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

func (r roadmapRow) record() *secondary.RoadmapRecord {
	rec := &secondary.RoadmapRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Domain:    r.Domain,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		rec.CompletedAt = &t
	}
	return rec
}

type nodeRow struct {
	ID          string `db:"id"`
	RoadmapID   string `db:"roadmap_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Status      string `db:"status"`
	Position    int    `db:"position"`
	XPReward    int    `db:"xp_reward"`
	CoinReward  int    `db:"coin_reward"`
}

func (r nodeRow) record() *secondary.NodeRecord {
	return &secondary.NodeRecord{
		ID:          r.ID,
		RoadmapID:   r.RoadmapID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Order:       r.Position,
		XPReward:    r.XPReward,
		CoinReward:  r.CoinReward,
	}
}

// RoadmapRepository implements secondary.RoadmapRepository and
// secondary.ProgressionStore.
type RoadmapRepository struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
	newID   func() string
}

// NewRoadmapRepository creates a new roadmap repository.
func NewRoadmapRepository(db *sqlx.DB) *RoadmapRepository {
	return &RoadmapRepository{
		db:      db,
		dialect: dialectFor(db.DriverName()),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// FindActive returns the user's active roadmap for a domain, or nil if none.
func (r *RoadmapRepository) FindActive(ctx context.Context, userID, domain string) (*secondary.RoadmapRecord, error) {
	return findActive(ctx, r.db, userID, domain)
}

// GetForUser retrieves a roadmap owned by the user.
func (r *RoadmapRepository) GetForUser(ctx context.Context, roadmapID, userID string) (*secondary.RoadmapRecord, error) {
	var row roadmapRow
	err := sqlx.GetContext(ctx, r.db, &row,
		r.db.Rebind("SELECT "+roadmapSelectCols+" FROM roadmaps WHERE id = ? AND user_id = ?"),
		roadmapID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("roadmap %s: %w", roadmapID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return row.record(), nil
}

// List retrieves roadmaps matching the given filters, newest first.
func (r *RoadmapRepository) List(ctx context.Context, filters secondary.RoadmapFilters) ([]*secondary.RoadmapRecord, error) {
	query := "SELECT " + roadmapSelectCols + " FROM roadmaps WHERE user_id = ?"
	args := []any{filters.UserID}

	if filters.Domain != "" {
		query += " AND domain = ?"
		args = append(args, filters.Domain)
	}
	if !filters.IncludeInactive {
		query += " AND is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY created_at DESC, id"

	var rows []roadmapRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}

	records := make([]*secondary.RoadmapRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

// ListNodes retrieves a roadmap's nodes ordered by position.
func (r *RoadmapRepository) ListNodes(ctx context.Context, roadmapID string) ([]*secondary.NodeRecord, error) {
	return listNodes(ctx, r.db, roadmapID)
}

// GetNodeForUser retrieves a node whose roadmap is owned by the user.
func (r *RoadmapRepository) GetNodeForUser(ctx context.Context, nodeID, userID string) (*secondary.NodeRecord, error) {
	cols := "n." + strings.ReplaceAll(nodeSelectCols, ", ", ", n.")

	var row nodeRow
	err := sqlx.GetContext(ctx, r.db, &row,
		r.db.Rebind("SELECT "+cols+" FROM roadmap_nodes n JOIN roadmaps r ON r.id = n.roadmap_id WHERE n.id = ? AND r.user_id = ?"),
		nodeID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", nodeID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return row.record(), nil
}

// WithGenerationLock runs fn in a transaction serialized per (user, domain).
func (r *RoadmapRepository) WithGenerationLock(ctx context.Context, userID, domain string, fn func(tx secondary.ProgressionTx) error) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.dialect.lockGeneration(ctx, tx, userID, domain, r.now()); err != nil {
			return err
		}
		return fn(r.progressionTx(tx))
	})
}

// WithRoadmapLock runs fn in a transaction holding the roadmap's lock.
func (r *RoadmapRepository) WithRoadmapLock(ctx context.Context, roadmapID string, fn func(tx secondary.ProgressionTx) error) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.dialect.lockRoadmap(ctx, tx, roadmapID); err != nil {
			return err
		}
		return fn(r.progressionTx(tx))
	})
}

func (r *RoadmapRepository) progressionTx(tx *sqlx.Tx) *progressionTx {
	return &progressionTx{tx: tx, now: r.now, newID: r.newID}
}

func (r *RoadmapRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func findActive(ctx context.Context, q sqlx.ExtContext, userID, domain string) (*secondary.RoadmapRecord, error) {
	var row roadmapRow
	err := sqlx.GetContext(ctx, q, &row,
		q.Rebind("SELECT "+roadmapSelectCols+" FROM roadmaps WHERE user_id = ? AND domain = ? AND is_active = ?"),
		userID, domain, true,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active roadmap: %w", err)
	}
	return row.record(), nil
}

func listNodes(ctx context.Context, q sqlx.ExtContext, roadmapID string) ([]*secondary.NodeRecord, error) {
	var rows []nodeRow
	err := sqlx.SelectContext(ctx, q, &rows,
		q.Rebind("SELECT "+nodeSelectCols+" FROM roadmap_nodes WHERE roadmap_id = ? ORDER BY position"),
		roadmapID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	records := make([]*secondary.NodeRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

// Ensure RoadmapRepository implements the interfaces
var (
	_ secondary.RoadmapRepository = (*RoadmapRepository)(nil)
	_ secondary.ProgressionStore  = (*RoadmapRepository)(nil)
)
