package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// PayrollRepository implements port.PayrollRepository. The partial unique
// index on (user_id, project_id, month) WHERE approved != 'rejected' is the
// idempotency enforcement point for generation.
type PayrollRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPayrollRepository creates a new payroll repository
func NewPayrollRepository(db *sql.DB, logger *zap.Logger) *PayrollRepository {
	return &PayrollRepository{
		db:     db,
		logger: logger,
	}
}

// Insert persists a new payroll record. A unique-index violation means a
// non-rejected record already holds the period key; that surfaces as
// entity.ErrConflict so the generator can count it as skipped.
func (r *PayrollRepository) Insert(ctx context.Context, record *entity.PayrollRecord) error {
	query := `
		INSERT INTO payroll_records (
			user_id, project_id, month, days_present,
			base_rate, allowances_total, total_amount, approved
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		record.UserID,
		record.ProjectID,
		record.Month,
		record.DaysPresent,
		record.BaseRate,
		record.AllowancesTotal,
		record.TotalAmount,
		record.Approved,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: payroll record for user %d project %d month %s",
				entity.ErrConflict, record.UserID, record.ProjectID, record.Month)
		}
		r.logger.Error("Failed to insert payroll record", zap.Error(err))
		return fmt.Errorf("failed to insert payroll record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

const payrollColumns = `
	id, user_id, project_id, month, days_present,
	base_rate, allowances_total, total_amount, approved, created_at
`

func scanPayroll(row interface{ Scan(dest ...interface{}) error }) (*entity.PayrollRecord, error) {
	var record entity.PayrollRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.ProjectID,
		&record.Month,
		&record.DaysPresent,
		&record.BaseRate,
		&record.AllowancesTotal,
		&record.TotalAmount,
		&record.Approved,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByID retrieves a payroll record by ID
func (r *PayrollRepository) GetByID(ctx context.Context, id int64) (*entity.PayrollRecord, error) {
	query := `SELECT ` + payrollColumns + ` FROM payroll_records WHERE id = ?`

	record, err := scanPayroll(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payroll record %d", entity.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get payroll record", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return record, nil
}

// List retrieves payroll records for a month, optionally scoped to a project
func (r *PayrollRepository) List(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error) {
	query := `SELECT ` + payrollColumns + ` FROM payroll_records WHERE month = ?`
	args := []interface{}{month}

	if projectID != nil {
		query += " AND project_id = ?"
		args = append(args, *projectID)
	}
	query += " ORDER BY total_amount DESC, id"

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list payroll records", zap.Error(err))
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []*entity.PayrollRecord
	for rows.Next() {
		record, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// UpdateStatus transitions a record's approval state with an optimistic
// predicate on the expected current state. A zero row count means the
// record is no longer in the expected state (or does not exist); the
// caller distinguishes the two.
func (r *PayrollRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.PayrollStatus) (bool, error) {
	query := `UPDATE payroll_records SET approved = ? WHERE id = ? AND approved = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("Failed to update payroll status",
			zap.Int64("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return false, fmt.Errorf("failed to update payroll status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// Verify interface compliance
var _ port.PayrollRepository = (*PayrollRepository)(nil)
