package port

import (
	"context"
	"time"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

// TransactionManager runs a function inside a database transaction. Nested
// calls reuse the surrounding transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
}

// AttendanceFilter narrows an attendance ledger read. Nil fields match
// everything.
type AttendanceFilter struct {
	UserID    *int64
	ProjectID *int64
	Status    *entity.AttendanceStatus
	From      *time.Time
	To        *time.Time
}

// AttendanceRepository defines persistence operations for the append-only
// attendance ledger. There is deliberately no Delete.
type AttendanceRepository interface {
	Create(ctx context.Context, record *entity.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error)
	List(ctx context.Context, filter AttendanceFilter) ([]*entity.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, id int64, status entity.AttendanceStatus) error
}

// PayrollRepository defines persistence operations for PayrollRecord
type PayrollRepository interface {
	// Insert persists a new record. It returns entity.ErrConflict when a
	// non-rejected record already holds the (user, project, month) key.
	Insert(ctx context.Context, record *entity.PayrollRecord) error

	GetByID(ctx context.Context, id int64) (*entity.PayrollRecord, error)
	List(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error)

	// UpdateStatus transitions approved from one state to another with an
	// optimistic predicate on the current state. It reports whether a row
	// actually changed; false means the record was already past the
	// expected state and the caller lost (or no-ops) the race.
	UpdateStatus(ctx context.Context, id int64, from, to entity.PayrollStatus) (bool, error)
}

// AuditRepository defines persistence operations for the activity log
type AuditRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
	List(ctx context.Context, since time.Time, limit int) ([]*entity.AuditEvent, error)
	CountByAction(ctx context.Context, since time.Time) (map[entity.AuditAction]int, error)
}
