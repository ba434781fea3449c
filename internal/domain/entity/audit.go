package entity

import "time"

// AuditAction categorizes a mutation for the activity summary tiles
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionOTP    AuditAction = "otp"
	ActionOther  AuditAction = "other"
)

// Category folds an arbitrary recorded action into one of the summary
// buckets; unrecognized actions count as "other".
func (a AuditAction) Category() AuditAction {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionOTP:
		return a
	default:
		return ActionOther
	}
}

// AuditEvent is one append-only activity log entry. Every mutating
// operation in the engine writes one before it acknowledges.
type AuditEvent struct {
	ID          int64       `json:"id"`
	ActorUserID int64       `json:"actor_user_id"`
	Action      AuditAction `json:"action"`
	EntityType  string      `json:"entity_type"`
	EntityID    int64       `json:"entity_id"`
	Details     string      `json:"details,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
