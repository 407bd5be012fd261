package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gatekeeper/internal/domain/audit"
)

type auditRow struct {
	ID        uuid.UUID `db:"id"`
	TableName string    `db:"table_name"`
	RecordID  string    `db:"record_id"`
	Action    string    `db:"action"`
	OldValues []byte    `db:"old_values"`
	NewValues []byte    `db:"new_values"`
	UserID    string    `db:"user_id"`
	UserEmail string    `db:"user_email"`
	CreatedAt time.Time `db:"created_at"`
}

type AuditLogRepo struct {
	db *sqlx.DB
}

func NewAuditLogRepo(db *sqlx.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

func (r *AuditLogRepo) Append(ctx context.Context, entry audit.Entry) error {
	before, err := json.Marshal(entry.Before)
	if err != nil {
		return fmt.Errorf("could not marshal audit old values: %w", err)
	}
	after, err := json.Marshal(entry.After)
	if err != nil {
		return fmt.Errorf("could not marshal audit new values: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, table_name, record_id, action, old_values, new_values, user_id, user_email, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT DO NOTHING
	`,
		entry.ID,
		entry.TableName,
		entry.RecordID,
		entry.Action,
		string(before),
		string(after),
		entry.ActorID,
		entry.ActorEmail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("could not insert audit log entry for %s %s: %w", entry.TableName, entry.RecordID, err)
	}

	return nil
}

func (r *AuditLogRepo) ForRecord(ctx context.Context, tableName, recordID string) ([]audit.Entry, error) {
	var rows []auditRow

	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, table_name, record_id, action, old_values, new_values, user_id, user_email, created_at
		FROM audit_logs
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at
	`, tableName, recordID)
	if err != nil {
		return nil, fmt.Errorf("could not select audit log of %s %s: %w", tableName, recordID, err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entry := audit.Entry{
			ID:         row.ID,
			TableName:  row.TableName,
			RecordID:   row.RecordID,
			Action:     row.Action,
			ActorID:    row.UserID,
			ActorEmail: row.UserEmail,
			CreatedAt:  row.CreatedAt.UTC(),
		}
		if len(row.OldValues) > 0 {
			if err := json.Unmarshal(row.OldValues, &entry.Before); err != nil {
				return nil, fmt.Errorf("could not unmarshal audit old values: %w", err)
			}
		}
		if len(row.NewValues) > 0 {
			if err := json.Unmarshal(row.NewValues, &entry.After); err != nil {
				return nil, fmt.Errorf("could not unmarshal audit new values: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
