package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
	"github.com/malqarni/sitepay/internal/domain/workflow"
	"github.com/malqarni/sitepay/internal/payroll"
)

// PreviewResult is a non-persisted compute run over one month
type PreviewResult struct {
	Month    string               `json:"month"`
	Records  []payroll.PreviewRow `json:"records"`
	Warnings []payroll.Warning    `json:"warnings,omitempty"`
}

// GenerateResult reports the outcome of a generate run. Skipped rows lost
// the idempotency check against an existing non-rejected record; that is a
// normal outcome, not an error.
type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// PayrollService orchestrates payroll preview, idempotent generation, and
// the approve/reject lifecycle of persisted records.
type PayrollService interface {
	Preview(ctx context.Context, month string, projectID *int64) (*PreviewResult, error)
	Generate(ctx context.Context, month string, projectID *int64, actorID int64) (*GenerateResult, error)
	ListRecords(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error)
	Approve(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error)
	Reject(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error)
}

type payrollServiceImpl struct {
	payrollRepo    port.PayrollRepository
	attendanceRepo port.AttendanceRepository
	projectRepo    port.ProjectRepository
	activity       ActivityService
	txManager      port.TransactionManager
	logger         Logger
}

// NewPayrollService creates a new PayrollService
func NewPayrollService(
	payrollRepo port.PayrollRepository,
	attendanceRepo port.AttendanceRepository,
	projectRepo port.ProjectRepository,
	activity ActivityService,
	txManager port.TransactionManager,
	logger Logger,
) PayrollService {
	return &payrollServiceImpl{
		payrollRepo:    payrollRepo,
		attendanceRepo: attendanceRepo,
		projectRepo:    projectRepo,
		activity:       activity,
		txManager:      txManager,
		logger:         logger,
	}
}

// scopeProjects resolves the generate/preview scope to concrete projects
func (s *payrollServiceImpl) scopeProjects(ctx context.Context, projectID *int64) ([]*entity.Project, error) {
	if projectID != nil {
		project, err := s.projectRepo.GetByID(ctx, *projectID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown project %d", entity.ErrValidation, *projectID)
			}
			return nil, err
		}
		return []*entity.Project{project}, nil
	}
	return s.projectRepo.List(ctx)
}

// computeScope runs the pure computer over every project in scope
func (s *payrollServiceImpl) computeScope(ctx context.Context, month string, projects []*entity.Project) (*PreviewResult, error) {
	start, end, err := payroll.MonthRange(month)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{Month: month, Records: []payroll.PreviewRow{}}
	approved := entity.AttendanceApproved

	for _, project := range projects {
		records, err := s.attendanceRepo.List(ctx, port.AttendanceFilter{
			ProjectID: &project.ID,
			Status:    &approved,
			From:      &start,
			To:        &end,
		})
		if err != nil {
			return nil, err
		}

		rows, warnings, err := payroll.Compute(project, records, month)
		if err != nil {
			return nil, err
		}

		result.Records = append(result.Records, rows...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

// Preview computes payroll rows for the month without persisting anything
func (s *payrollServiceImpl) Preview(ctx context.Context, month string, projectID *int64) (*PreviewResult, error) {
	projects, err := s.scopeProjects(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.computeScope(ctx, month, projects)
}

// Generate persists the month's preview rows exactly once per (worker,
// project, month). The whole scope is one transaction: either every new
// row commits or none do. Rows whose key is already held by a non-rejected
// record are counted as skipped; a rejected prior record does not block a
// fresh insert. An empty eligible set is a successful {0, 0} run.
func (s *payrollServiceImpl) Generate(ctx context.Context, month string, projectID *int64, actorID int64) (*GenerateResult, error) {
	projects, err := s.scopeProjects(ctx, projectID)
	if err != nil {
		return nil, err
	}

	preview, err := s.computeScope(ctx, month, projects)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, row := range preview.Records {
			record := &entity.PayrollRecord{
				UserID:          row.UserID,
				ProjectID:       row.ProjectID,
				Month:           row.Month,
				DaysPresent:     row.DaysPresent,
				BaseRate:        row.BaseRate,
				AllowancesTotal: row.AllowancesTotal,
				TotalAmount:     row.TotalAmount,
				Approved:        entity.PayrollPending,
			}

			if err := s.payrollRepo.Insert(txCtx, record); err != nil {
				if errors.Is(err, entity.ErrConflict) {
					result.Skipped++
					continue
				}
				return err
			}
			result.Created++
		}

		if result.Created == 0 && result.Skipped == 0 {
			return nil
		}

		details := fmt.Sprintf("payroll generate %s: created %d, skipped %d", month, result.Created, result.Skipped)
		return s.activity.Append(txCtx, actorID, entity.ActionCreate, "payroll_record", 0, details)
	})
	if err != nil {
		s.logger.Error("Failed to generate payroll records", "error", err, "month", month)
		return nil, err
	}

	s.logger.Info("Payroll generation completed",
		"month", month,
		"created", result.Created,
		"skipped", result.Skipped)
	return result, nil
}

// ListRecords returns persisted payroll records for a month
func (s *payrollServiceImpl) ListRecords(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error) {
	if _, _, err := payroll.MonthRange(month); err != nil {
		return nil, err
	}
	return s.payrollRepo.List(ctx, month, projectID)
}

// Approve transitions a payroll record to approved
func (s *payrollServiceImpl) Approve(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error) {
	return s.transition(ctx, recordID, reviewerID, workflow.TriggerApprove, entity.PayrollApproved)
}

// Reject transitions a payroll record to rejected. Approved records may be
// rejected afterwards (finance correction); rejected is terminal.
func (s *payrollServiceImpl) Reject(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error) {
	return s.transition(ctx, recordID, reviewerID, workflow.TriggerReject, entity.PayrollRejected)
}

// transition drives one reviewer action through the approval state machine
// and commits it with an optimistic predicate on the previous state, so
// two concurrent reviewers cannot interleave. Repeating an action the
// record already reflects is an idempotent no-op success.
func (s *payrollServiceImpl) transition(ctx context.Context, recordID, reviewerID int64, trigger workflow.Trigger, target entity.PayrollStatus) (*entity.PayrollRecord, error) {
	record, err := s.payrollRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	current := workflow.State(record.Approved)
	if workflow.IsNoOp(current, trigger) {
		return record, nil
	}

	machine := workflow.NewPayrollMachine(current)
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		changed, err := s.payrollRepo.UpdateStatus(txCtx, recordID, record.Approved, target)
		if err != nil {
			return err
		}
		if !changed {
			// Lost a race with another reviewer. If they landed the same
			// outcome, this call is a no-op; otherwise surface the conflict.
			fresh, err := s.payrollRepo.GetByID(txCtx, recordID)
			if err != nil {
				return err
			}
			if fresh.Approved == target {
				record = fresh
				return nil
			}
			return fmt.Errorf("%w: payroll record %d moved to %s concurrently", entity.ErrConflict, recordID, fresh.Approved)
		}

		details := fmt.Sprintf("payroll %s -> %s", record.Approved, target)
		if err := s.activity.Append(txCtx, reviewerID, entity.ActionUpdate, "payroll_record", recordID, details); err != nil {
			return err
		}

		record.Approved = target
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to transition payroll record",
			"error", err,
			"id", recordID,
			"trigger", trigger.String())
		return nil, err
	}

	s.logger.Info("Payroll record transitioned",
		"id", recordID,
		"status", string(record.Approved),
		"reviewer_id", reviewerID)
	return record, nil
}

// Verify interface compliance
var _ PayrollService = (*payrollServiceImpl)(nil)
