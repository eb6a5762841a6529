package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/V4T54L/winloss/internal/domain"
)

const changesTableDDL = `CREATE TABLE IF NOT EXISTS entity_changes (
	event_id     UUID PRIMARY KEY,
	collection   TEXT NOT NULL,
	action       TEXT NOT NULL,
	entity_id    TEXT NOT NULL,
	occurred_at  TIMESTAMPTZ NOT NULL,
	payload      JSONB,
	pii_redacted BOOLEAN NOT NULL DEFAULT FALSE
)`

// ChangeRepository implements domain.ChangeSink for PostgreSQL. It is the
// audit trail of every entity write.
type ChangeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewChangeRepository creates a new PostgreSQL change sink.
func NewChangeRepository(db *sql.DB, logger *slog.Logger) *ChangeRepository {
	return &ChangeRepository{db: db, logger: logger.With("component", "postgres_change_repository")}
}

// EnsureSchema creates the entity_changes table if it does not exist.
func (r *ChangeRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, changesTableDDL); err != nil {
		return fmt.Errorf("failed to create entity_changes table: %w", err)
	}
	return nil
}

// WriteBatch writes a batch of change events using the COPY protocol.
// It uses an ON CONFLICT clause so redelivered events are idempotent.
func (r *ChangeRepository) WriteBatch(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	// Stage into a temporary table, then merge into the main table.
	const tempTableName = "entity_changes_import"
	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+tempTableName+` (LIKE entity_changes INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn(tempTableName, "event_id", "collection", "action", "entity_id", "occurred_at", "payload", "pii_redacted"))
	if err != nil {
		return fmt.Errorf("failed to prepare COPY: %w", err)
	}

	for _, event := range events {
		var payload any
		if len(event.Payload) > 0 {
			payload = string(event.Payload)
		}
		_, err = stmt.ExecContext(ctx, event.ID, event.Collection, string(event.Action), event.EntityID, event.OccurredAt, payload, event.PIIRedacted)
		if err != nil {
			_ = stmt.Close()
			return fmt.Errorf("failed to stage event %s: %w", event.ID, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("failed to flush COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close COPY: %w", err)
	}

	upsertQuery := `
		INSERT INTO entity_changes (event_id, collection, action, entity_id, occurred_at, payload, pii_redacted)
		SELECT event_id, collection, action, entity_id, occurred_at, payload, pii_redacted FROM ` + tempTableName + `
		ON CONFLICT (event_id) DO NOTHING;
	`
	if _, err = txn.ExecContext(ctx, upsertQuery); err != nil {
		return fmt.Errorf("failed to merge staged events: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit change batch: %w", err)
	}
	r.logger.Debug("wrote change batch", "count", len(events))
	return nil
}
