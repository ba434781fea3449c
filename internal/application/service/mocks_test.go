package service

import (
	"context"
	"fmt"
	"time"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// In-memory fakes for the persistence ports, in the spirit of the
// hand-rolled mocks used across the service tests.

type memProjectRepo struct {
	projects map[int64]*entity.Project
}

func newMemProjectRepo(projects ...*entity.Project) *memProjectRepo {
	repo := &memProjectRepo{projects: make(map[int64]*entity.Project)}
	for _, p := range projects {
		repo.projects[p.ID] = p
	}
	return repo
}

func (m *memProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	project.ID = int64(len(m.projects) + 1)
	m.projects[project.ID] = project
	return nil
}

func (m *memProjectRepo) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: project %d", entity.ErrNotFound, id)
	}
	return project, nil
}

func (m *memProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	var projects []*entity.Project
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	return projects, nil
}

type memAttendanceRepo struct {
	records []*entity.AttendanceRecord
	nextID  int64
}

func (m *memAttendanceRepo) Create(ctx context.Context, record *entity.AttendanceRecord) error {
	m.nextID++
	record.ID = m.nextID
	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

func (m *memAttendanceRepo) GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			clone := *r
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: attendance record %d", entity.ErrNotFound, id)
}

func (m *memAttendanceRepo) List(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error) {
	var out []*entity.AttendanceRecord
	for _, r := range m.records {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.ProjectID != nil && r.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.From != nil && r.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !r.Timestamp.Before(*filter.To) {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memAttendanceRepo) UpdateStatus(ctx context.Context, id int64, status entity.AttendanceStatus) error {
	for _, r := range m.records {
		if r.ID == id {
			r.Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: attendance record %d", entity.ErrNotFound, id)
}

// memPayrollRepo enforces the (user, project, month) uniqueness of
// non-rejected records the way the partial unique index does.
type memPayrollRepo struct {
	records []*entity.PayrollRecord
	nextID  int64
}

func (m *memPayrollRepo) Insert(ctx context.Context, record *entity.PayrollRecord) error {
	for _, r := range m.records {
		if r.UserID == record.UserID && r.ProjectID == record.ProjectID &&
			r.Month == record.Month && r.Approved != entity.PayrollRejected {
			return fmt.Errorf("%w: payroll record for user %d project %d month %s",
				entity.ErrConflict, record.UserID, record.ProjectID, record.Month)
		}
	}
	m.nextID++
	record.ID = m.nextID
	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

func (m *memPayrollRepo) GetByID(ctx context.Context, id int64) (*entity.PayrollRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			clone := *r
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: payroll record %d", entity.ErrNotFound, id)
}

func (m *memPayrollRepo) List(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error) {
	var out []*entity.PayrollRecord
	for _, r := range m.records {
		if r.Month != month {
			continue
		}
		if projectID != nil && r.ProjectID != *projectID {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memPayrollRepo) UpdateStatus(ctx context.Context, id int64, from, to entity.PayrollStatus) (bool, error) {
	for _, r := range m.records {
		if r.ID == id && r.Approved == from {
			r.Approved = to
			return true, nil
		}
	}
	return false, nil
}

type memAuditRepo struct {
	events []*entity.AuditEvent
	nextID int64
}

func (m *memAuditRepo) Create(ctx context.Context, event *entity.AuditEvent) error {
	m.nextID++
	event.ID = m.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	clone := *event
	m.events = append(m.events, &clone)
	return nil
}

func (m *memAuditRepo) List(ctx context.Context, since time.Time, limit int) ([]*entity.AuditEvent, error) {
	var out []*entity.AuditEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].CreatedAt.Before(since) {
			continue
		}
		clone := *m.events[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memAuditRepo) CountByAction(ctx context.Context, since time.Time) (map[entity.AuditAction]int, error) {
	counts := make(map[entity.AuditAction]int)
	for _, e := range m.events {
		if e.CreatedAt.Before(since) {
			continue
		}
		counts[e.Action]++
	}
	return counts, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func ptr(v float64) *float64 { return &v }

func int64ptr(v int64) *int64 { return &v }
