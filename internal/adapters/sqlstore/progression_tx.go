package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/questline/internal/ports/secondary"
)

// progressionTx implements secondary.ProgressionTx on an open transaction.
type progressionTx struct {
	tx    *sqlx.Tx
	now   func() time.Time
	newID func() string
}

func (p *progressionTx) FindActive(ctx context.Context, userID, domain string) (*secondary.RoadmapRecord, error) {
	return findActive(ctx, p.tx, userID, domain)
}

func (p *progressionTx) ListNodes(ctx context.Context, roadmapID string) ([]*secondary.NodeRecord, error) {
	return listNodes(ctx, p.tx, roadmapID)
}

// CreateRoadmap persists a roadmap with its nodes.
func (p *progressionTx) CreateRoadmap(ctx context.Context, roadmap *secondary.RoadmapRecord, nodes []*secondary.NodeRecord) error {
	createdAt := roadmap.CreatedAt
	if createdAt.IsZero() {
		createdAt = p.now()
	}

	_, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("INSERT INTO roadmaps (id, user_id, domain, is_active, created_at) VALUES (?, ?, ?, ?, ?)"),
		roadmap.ID, roadmap.UserID, roadmap.Domain, roadmap.IsActive, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create roadmap: %w", err)
	}

	insertNode := p.tx.Rebind("INSERT INTO roadmap_nodes (" + nodeSelectCols + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	for _, n := range nodes {
		if _, err := p.tx.ExecContext(ctx, insertNode,
			n.ID, roadmap.ID, n.Title, n.Description, n.Status, n.Order, n.XPReward, n.CoinReward,
		); err != nil {
			return fmt.Errorf("failed to create node %d: %w", n.Order, err)
		}
	}
	return nil
}

// UpdateNodeStatus sets the node's status only if it still holds from.
func (p *progressionTx) UpdateNodeStatus(ctx context.Context, nodeID, from, to string) error {
	res, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("UPDATE roadmap_nodes SET status = ? WHERE id = ? AND status = ?"),
		to, nodeID, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update node status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update node status: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("node %s expected %s: %w", nodeID, from, secondary.ErrStatusConflict)
	}
	return nil
}

func (p *progressionTx) DeactivateRoadmap(ctx context.Context, roadmapID string, at time.Time) error {
	if at.IsZero() {
		at = p.now()
	}
	_, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("UPDATE roadmaps SET is_active = ?, completed_at = ? WHERE id = ?"),
		false, at, roadmapID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate roadmap: %w", err)
	}
	return nil
}

func (p *progressionTx) GrantXP(ctx context.Context, userID string, amount int) error {
	now := p.now()
	if err := ensureProfile(ctx, p.tx, userID, now); err != nil {
		return fmt.Errorf("failed to provision profile: %w", err)
	}
	_, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("UPDATE profiles SET xp = xp + ?, updated_at = ? WHERE user_id = ?"),
		amount, now, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to grant xp: %w", err)
	}
	return nil
}

func (p *progressionTx) CreditWallet(ctx context.Context, userID string, amount int, description string) error {
	now := p.now()
	if _, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, 0, ?) ON CONFLICT (user_id) DO NOTHING"),
		userID, now,
	); err != nil {
		return fmt.Errorf("failed to provision wallet: %w", err)
	}
	if _, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE user_id = ?"),
		amount, now, userID,
	); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	if _, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("INSERT INTO wallet_transactions (id, user_id, amount, transaction_type, description, created_at) VALUES (?, ?, ?, 'EARN', ?, ?)"),
		p.newID(), userID, amount, description, now,
	); err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	return nil
}

func (p *progressionTx) AppendAudit(ctx context.Context, entry *secondary.AuditRecord) error {
	if entry.ID == "" {
		entry.ID = p.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = p.now()
	}
	_, err := p.tx.ExecContext(ctx,
		p.tx.Rebind("INSERT INTO audit_log ("+auditSelectCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		entry.ID, entry.UserID, entry.EntityType, entry.EntityID, entry.Action,
		entry.FieldName, entry.OldValue, entry.NewValue, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

var _ secondary.ProgressionTx = (*progressionTx)(nil)
