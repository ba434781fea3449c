package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// ProjectRepository implements port.ProjectRepository
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	allowances, err := json.Marshal(project.Allowances)
	if err != nil {
		return fmt.Errorf("failed to marshal allowances: %w", err)
	}

	query := `
		INSERT INTO projects (
			name, pay_type, pay_rate, allowances,
			location_lat, location_lng, radius, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		project.Name,
		project.PayType,
		project.PayRate,
		string(allowances),
		project.LocationLat,
		project.LocationLng,
		project.EffectiveRadius(),
		project.StartDate,
		project.EndDate,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	return nil
}

const projectColumns = `
	id, name, pay_type, pay_rate, allowances,
	location_lat, location_lng, radius, start_date, end_date, created_at
`

func scanProject(row interface{ Scan(dest ...interface{}) error }) (*entity.Project, error) {
	var project entity.Project
	var payRate, lat, lng sql.NullFloat64
	var startDate, endDate sql.NullTime
	var allowances string

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.PayType,
		&payRate,
		&allowances,
		&lat,
		&lng,
		&project.Radius,
		&startDate,
		&endDate,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if payRate.Valid {
		project.PayRate = &payRate.Float64
	}
	if lat.Valid {
		project.LocationLat = &lat.Float64
	}
	if lng.Valid {
		project.LocationLng = &lng.Float64
	}
	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if endDate.Valid {
		project.EndDate = &endDate.Time
	}

	if err := json.Unmarshal([]byte(allowances), &project.Allowances); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowances: %w", err)
	}

	return &project, nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: project %d", entity.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// List retrieves all projects
func (r *ProjectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
