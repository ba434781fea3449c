package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
	"github.com/malqarni/sitepay/internal/geofence"
)

// RecordEventInput carries a worker's check-in or check-out
type RecordEventInput struct {
	UserID      int64
	ProjectID   int64
	CheckType   entity.CheckType
	Timestamp   time.Time
	Latitude    *float64
	Longitude   *float64
	EvidenceURL string
}

// AttendanceService owns the attendance ledger: recording events with
// geofence gating and the reviewer status transitions.
type AttendanceService interface {
	RecordEvent(ctx context.Context, input RecordEventInput) (*entity.AttendanceRecord, error)
	List(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error)
	SetStatus(ctx context.Context, recordID int64, status entity.AttendanceStatus, reviewerID int64) (*entity.AttendanceRecord, error)
}

type attendanceServiceImpl struct {
	attendanceRepo port.AttendanceRepository
	projectRepo    port.ProjectRepository
	activity       ActivityService
	txManager      port.TransactionManager
	logger         Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo port.AttendanceRepository,
	projectRepo port.ProjectRepository,
	activity ActivityService,
	txManager port.TransactionManager,
	logger Logger,
) AttendanceService {
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		projectRepo:    projectRepo,
		activity:       activity,
		txManager:      txManager,
		logger:         logger,
	}
}

// RecordEvent appends a check-in/check-out to the ledger. The geofence
// outcome decides the initial status: inside the radius (or geofencing
// disabled) is auto-approved, outside or missing coordinates is held
// pending for manual review. The event is recorded either way; an
// out-of-perimeter check-in is evidence, not garbage.
func (s *attendanceServiceImpl) RecordEvent(ctx context.Context, input RecordEventInput) (*entity.AttendanceRecord, error) {
	if !input.CheckType.IsValid() {
		return nil, fmt.Errorf("%w: unknown check type %q", entity.ErrValidation, input.CheckType)
	}
	if input.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: timestamp is required", entity.ErrValidation)
	}

	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown project %d", entity.ErrValidation, input.ProjectID)
		}
		return nil, err
	}

	result := geofence.Validate(input.Latitude, input.Longitude, project)

	status := entity.AttendancePending
	if result.OK {
		status = entity.AttendanceApproved
	}

	record := &entity.AttendanceRecord{
		UserID:      input.UserID,
		ProjectID:   input.ProjectID,
		CheckType:   input.CheckType,
		Timestamp:   input.Timestamp.UTC(),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      status,
		Distance:    result.Distance,
		EvidenceURL: input.EvidenceURL,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.attendanceRepo.Create(txCtx, record); err != nil {
			return err
		}
		details := fmt.Sprintf("%s recorded with status %s (%s)", record.CheckType, record.Status, result.Reason)
		return s.activity.Append(txCtx, input.UserID, entity.ActionCreate, "attendance_record", record.ID, details)
	})
	if err != nil {
		s.logger.Error("Failed to record attendance event",
			"error", err,
			"user_id", input.UserID,
			"project_id", input.ProjectID)
		return nil, err
	}

	s.logger.Info("Attendance event recorded",
		"id", record.ID,
		"user_id", record.UserID,
		"project_id", record.ProjectID,
		"status", string(record.Status),
		"reason", string(result.Reason))
	return record, nil
}

// List returns ledger events matching the filter
func (s *attendanceServiceImpl) List(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error) {
	return s.attendanceRepo.List(ctx, filter)
}

// SetStatus applies a reviewer decision to a single event. Moving a record
// to the status it already has is a no-op success. Re-reviewing a record
// that another reviewer already decided is a supervisor override: allowed,
// last committed write wins, and both actions land in the audit trail.
func (s *attendanceServiceImpl) SetStatus(ctx context.Context, recordID int64, status entity.AttendanceStatus, reviewerID int64) (*entity.AttendanceRecord, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: status must be approved or rejected, got %q", entity.ErrValidation, status)
	}

	record, err := s.attendanceRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if record.Status == status {
		return record, nil
	}

	previous := record.Status
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.attendanceRepo.UpdateStatus(txCtx, recordID, status); err != nil {
			return err
		}
		details := fmt.Sprintf("attendance status %s -> %s", previous, status)
		return s.activity.Append(txCtx, reviewerID, entity.ActionUpdate, "attendance_record", recordID, details)
	})
	if err != nil {
		s.logger.Error("Failed to set attendance status",
			"error", err,
			"id", recordID,
			"status", string(status))
		return nil, err
	}

	record.Status = status
	s.logger.Info("Attendance status updated",
		"id", recordID,
		"previous", string(previous),
		"status", string(status),
		"reviewer_id", reviewerID)
	return record, nil
}

// Verify interface compliance
var _ AttendanceService = (*attendanceServiceImpl)(nil)
