package service

import (
	"context"
	"fmt"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// ProjectService exposes the project configuration the engine reads.
// Projects are owned by the project-management side; the engine validates
// pay configuration and geofence shape at this boundary and otherwise
// treats them as read-only.
type ProjectService interface {
	Create(ctx context.Context, project *entity.Project, actorID int64) (*entity.Project, error)
	Get(ctx context.Context, id int64) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
}

type projectServiceImpl struct {
	projectRepo port.ProjectRepository
	activity    ActivityService
	txManager   port.TransactionManager
	logger      Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo port.ProjectRepository,
	activity ActivityService,
	txManager port.TransactionManager,
	logger Logger,
) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		activity:    activity,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create validates and persists a project
func (s *projectServiceImpl) Create(ctx context.Context, project *entity.Project, actorID int64) (*entity.Project, error) {
	if project.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", entity.ErrValidation)
	}
	if !project.PayType.IsValid() {
		return nil, fmt.Errorf("%w: unknown pay type %q", entity.ErrValidation, project.PayType)
	}
	if project.PayRate != nil && *project.PayRate < 0 {
		return nil, fmt.Errorf("%w: pay rate must not be negative", entity.ErrValidation)
	}
	if err := project.Allowances.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if (project.LocationLat == nil) != (project.LocationLng == nil) {
		return nil, fmt.Errorf("%w: location requires both latitude and longitude", entity.ErrValidation)
	}
	if project.Allowances == nil {
		project.Allowances = entity.Allowances{}
	}
	if project.Radius <= 0 {
		project.Radius = entity.DefaultRadiusMeters
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return err
		}
		return s.activity.Append(txCtx, actorID, entity.ActionCreate, "project", project.ID, fmt.Sprintf("project %q created", project.Name))
	})
	if err != nil {
		s.logger.Error("Failed to create project", "error", err, "name", project.Name)
		return nil, err
	}

	s.logger.Info("Project created", "id", project.ID, "name", project.Name)
	return project, nil
}

// Get retrieves a project by ID
func (s *projectServiceImpl) Get(ctx context.Context, id int64) (*entity.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// List retrieves all projects
func (s *projectServiceImpl) List(ctx context.Context) ([]*entity.Project, error) {
	return s.projectRepo.List(ctx)
}

// Verify interface compliance
var _ ProjectService = (*projectServiceImpl)(nil)
