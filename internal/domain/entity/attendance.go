package entity

import "time"

// CheckType distinguishes the two attendance event kinds
type CheckType string

const (
	CheckIn  CheckType = "check_in"
	CheckOut CheckType = "check_out"
)

// IsValid returns true if the check type is recognized
func (c CheckType) IsValid() bool {
	return c == CheckIn || c == CheckOut
}

// AttendanceStatus is the review status of an attendance event
type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceApproved AttendanceStatus = "approved"
	AttendanceRejected AttendanceStatus = "rejected"
)

// IsValid returns true if the status is recognized
func (s AttendanceStatus) IsValid() bool {
	return s == AttendancePending || s == AttendanceApproved || s == AttendanceRejected
}

// IsTerminal returns true once a reviewer has acted on the record
func (s AttendanceStatus) IsTerminal() bool {
	return s == AttendanceApproved || s == AttendanceRejected
}

// AttendanceRecord represents a single check-in or check-out event.
// Records are append-only: they are never deleted, and only the review
// status is ever mutated.
type AttendanceRecord struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"user_id"`
	ProjectID   int64            `json:"project_id"`
	CheckType   CheckType        `json:"check_type"`
	Timestamp   time.Time        `json:"timestamp"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Status      AttendanceStatus `json:"status"`
	Distance    *float64         `json:"distance_meters,omitempty"`
	EvidenceURL string           `json:"evidence_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Day returns the UTC calendar day the event belongs to, used for
// distinct-day payroll counting.
func (r *AttendanceRecord) Day() time.Time {
	t := r.Timestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
