package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// AttendanceRepository implements port.AttendanceRepository over the
// append-only attendance ledger. Rows are inserted and re-statused, never
// deleted.
type AttendanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *sql.DB, logger *zap.Logger) *AttendanceRepository {
	return &AttendanceRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a new attendance event
func (r *AttendanceRepository) Create(ctx context.Context, record *entity.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (
			user_id, project_id, check_type, timestamp,
			latitude, longitude, status, distance_meters, evidence_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		record.UserID,
		record.ProjectID,
		record.CheckType,
		record.Timestamp.UTC(),
		record.Latitude,
		record.Longitude,
		record.Status,
		record.Distance,
		record.EvidenceURL,
	)
	if err != nil {
		r.logger.Error("Failed to create attendance record", zap.Error(err))
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

const attendanceColumns = `
	id, user_id, project_id, check_type, timestamp,
	latitude, longitude, status, distance_meters, evidence_url, created_at
`

func scanAttendance(row interface{ Scan(dest ...interface{}) error }) (*entity.AttendanceRecord, error) {
	var record entity.AttendanceRecord
	var lat, lng, distance sql.NullFloat64

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.ProjectID,
		&record.CheckType,
		&record.Timestamp,
		&lat,
		&lng,
		&record.Status,
		&distance,
		&record.EvidenceURL,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid {
		record.Latitude = &lat.Float64
	}
	if lng.Valid {
		record.Longitude = &lng.Float64
	}
	if distance.Valid {
		record.Distance = &distance.Float64
	}

	return &record, nil
}

// GetByID retrieves an attendance record by ID
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = ?`

	record, err := scanAttendance(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: attendance record %d", entity.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get attendance record", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// List retrieves attendance records matching the filter, oldest first
func (r *AttendanceRepository) List(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.To.UTC())
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp, id"

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list attendance records", zap.Error(err))
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AttendanceRecord
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// UpdateStatus sets the review status of a single record. The write is a
// single UPDATE so concurrent reviewers cannot interleave a
// read-modify-write; last committed write wins.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int64, status entity.AttendanceStatus) error {
	query := `UPDATE attendance_records SET status = ? WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update attendance status",
			zap.Int64("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update attendance status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: attendance record %d", entity.ErrNotFound, id)
	}

	return nil
}

// Verify interface compliance
var _ port.AttendanceRepository = (*AttendanceRepository)(nil)
