package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// AuditRepository implements port.AuditRepository over the append-only
// activity log
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit event. Runs inside the caller's transaction when
// one is present, so the event commits with the mutation it records.
func (r *AuditRepository) Create(ctx context.Context, event *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, details)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		event.ActorUserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.Details,
	)
	if err != nil {
		r.logger.Error("Failed to create audit event", zap.Error(err))
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// List retrieves audit events since the given time, most recent first
func (r *AuditRepository) List(ctx context.Context, since time.Time, limit int) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, actor_user_id, action, entity_type, entity_id, details, created_at
		FROM audit_events
		WHERE created_at >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, since.UTC(), limit)
	if err != nil {
		r.logger.Error("Failed to list audit events", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*entity.AuditEvent
	for rows.Next() {
		var event entity.AuditEvent
		err := rows.Scan(
			&event.ID,
			&event.ActorUserID,
			&event.Action,
			&event.EntityType,
			&event.EntityID,
			&event.Details,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// CountByAction returns raw per-action counts since the given time
func (r *AuditRepository) CountByAction(ctx context.Context, since time.Time) (map[entity.AuditAction]int, error) {
	query := `
		SELECT action, COUNT(*)
		FROM audit_events
		WHERE created_at >= ?
		GROUP BY action
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, since.UTC())
	if err != nil {
		r.logger.Error("Failed to count audit events", zap.Error(err))
		return nil, fmt.Errorf("failed to count audit events: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.AuditAction]int)
	for rows.Next() {
		var action entity.AuditAction
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("failed to scan audit count: %w", err)
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
