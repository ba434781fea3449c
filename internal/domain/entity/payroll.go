package entity

import "time"

// PayrollStatus is the approval state of a persisted payroll record
type PayrollStatus string

const (
	PayrollPending  PayrollStatus = "pending"
	PayrollApproved PayrollStatus = "approved"
	PayrollRejected PayrollStatus = "rejected"
)

// IsValid returns true if the status is recognized
func (s PayrollStatus) IsValid() bool {
	return s == PayrollPending || s == PayrollApproved || s == PayrollRejected
}

// PayrollRecord is a persisted payroll line for one worker on one project
// in one month. Non-rejected records are unique on (user_id, project_id,
// month); that triple is the generation idempotency key.
type PayrollRecord struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	ProjectID       int64         `json:"project_id"`
	Month           string        `json:"month"`
	DaysPresent     int           `json:"days_present"`
	BaseRate        float64       `json:"base_rate"`
	AllowancesTotal float64       `json:"allowances_total"`
	TotalAmount     float64       `json:"total_amount"`
	Approved        PayrollStatus `json:"approved"`
	CreatedAt       time.Time     `json:"created_at"`
}
