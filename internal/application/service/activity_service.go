package service

import (
	"context"
	"time"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/domain/entity"
)

// ActivityService is the audit sink every mutating operation reports to.
// Append is durable: when called inside a transaction the event commits
// with the mutation, and a failed append fails the whole operation.
type ActivityService interface {
	Append(ctx context.Context, actorID int64, action entity.AuditAction, entityType string, entityID int64, details string) error
	List(ctx context.Context, rng string, limit int) ([]*entity.AuditEvent, error)
	Summarize(ctx context.Context, rng string) (map[entity.AuditAction]int, error)
}

type activityServiceImpl struct {
	auditRepo port.AuditRepository
	logger    Logger
	now       func() time.Time
}

// NewActivityService creates a new ActivityService
func NewActivityService(auditRepo port.AuditRepository, logger Logger) ActivityService {
	return &activityServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// Append records one audit event
func (s *activityServiceImpl) Append(ctx context.Context, actorID int64, action entity.AuditAction, entityType string, entityID int64, details string) error {
	event := &entity.AuditEvent{
		ActorUserID: actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Details:     details,
	}

	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.logger.Error("Failed to append audit event",
			"error", err,
			"action", string(action),
			"entity_type", entityType)
		return err
	}

	return nil
}

// List returns audit events in the range, most recent first
func (s *activityServiceImpl) List(ctx context.Context, rng string, limit int) ([]*entity.AuditEvent, error) {
	since, err := ParseRange(rng, s.now())
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.auditRepo.List(ctx, since, limit)
}

// Summarize folds raw action counts into the five dashboard categories.
// Every category is present in the result, zero when empty.
func (s *activityServiceImpl) Summarize(ctx context.Context, rng string) (map[entity.AuditAction]int, error) {
	since, err := ParseRange(rng, s.now())
	if err != nil {
		return nil, err
	}

	raw, err := s.auditRepo.CountByAction(ctx, since)
	if err != nil {
		return nil, err
	}

	summary := map[entity.AuditAction]int{
		entity.ActionCreate: 0,
		entity.ActionOTP:    0,
		entity.ActionUpdate: 0,
		entity.ActionDelete: 0,
		entity.ActionOther:  0,
	}
	for action, count := range raw {
		summary[action.Category()] += count
	}

	return summary, nil
}
