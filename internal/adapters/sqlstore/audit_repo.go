package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/questline/internal/ports/secondary"
)

const auditSelectCols = "id, user_id, entity_type, entity_id, action, field_name, old_value, new_value, created_at"

type auditRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Action     string    `db:"action"`
	FieldName  string    `db:"field_name"`
	OldValue   string    `db:"old_value"`
	NewValue   string    `db:"new_value"`
	CreatedAt  time.Time `db:"created_at"`
}

// AuditRepository implements secondary.AuditRepository.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// List returns the user's audit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, userID string, limit int) ([]*secondary.AuditRecord, error) {
	query := "SELECT " + auditSelectCols + " FROM audit_log WHERE user_id = ? ORDER BY created_at DESC, id"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []auditRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	records := make([]*secondary.AuditRecord, len(rows))
	for i, row := range rows {
		records[i] = &secondary.AuditRecord{
			ID:         row.ID,
			UserID:     row.UserID,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Action:     row.Action,
			FieldName:  row.FieldName,
			OldValue:   row.OldValue,
			NewValue:   row.NewValue,
			CreatedAt:  row.CreatedAt,
		}
	}
	return records, nil
}

var _ secondary.AuditRepository = (*AuditRepository)(nil)
