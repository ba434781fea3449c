// Package payroll computes monthly payroll previews from attendance
// events and project pay configuration. Everything here is pure: no I/O,
// no clock, no persistence. The generator in the application layer is
// responsible for turning previews into durable records.
package payroll

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

// PreviewRow is a computed payroll line for one worker on one project.
// It is not persisted; the generator copies it into a PayrollRecord.
type PreviewRow struct {
	UserID          int64   `json:"user_id"`
	ProjectID       int64   `json:"project_id"`
	Month           string  `json:"month"`
	DaysPresent     int     `json:"days_present"`
	BaseRate        float64 `json:"base_rate"`
	AllowancesTotal float64 `json:"allowances_total"`
	TotalAmount     float64 `json:"total_amount"`
}

// Warning is a non-fatal condition attached to a compute run. The caller
// decides whether it blocks generation.
type Warning struct {
	ProjectID int64  `json:"project_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// WarnMissingPayRate flags a project with no configured pay rate; affected
// rows carry a zero base component instead of failing the run.
const WarnMissingPayRate = "missing_pay_rate"

// MonthRange parses a YYYY-MM month key and returns its half-open UTC
// interval [start, end).
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be YYYY-MM, got %q", entity.ErrValidation, month)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// RoundCurrency rounds to the currency's minor unit using round-half-up
func RoundCurrency(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Compute aggregates approved check-ins for one project into preview rows
// for the given month.
//
// Only approved check_in events inside the month window count. A worker's
// days_present is the number of distinct UTC calendar days with at least
// one qualifying check-in; repeated check-ins on the same day count once.
// Rows are ordered by descending total for presentation; callers must not
// attach meaning to the order.
func Compute(project *entity.Project, records []*entity.AttendanceRecord, month string) ([]PreviewRow, []Warning, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, nil, err
	}

	// Distinct qualifying days per worker
	daysByUser := make(map[int64]map[time.Time]struct{})
	for _, rec := range records {
		if rec.ProjectID != project.ID {
			continue
		}
		if rec.Status != entity.AttendanceApproved || rec.CheckType != entity.CheckIn {
			continue
		}
		ts := rec.Timestamp.UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}

		days, ok := daysByUser[rec.UserID]
		if !ok {
			days = make(map[time.Time]struct{})
			daysByUser[rec.UserID] = days
		}
		days[rec.Day()] = struct{}{}
	}

	var warnings []Warning

	rate := 0.0
	if project.PayRate != nil {
		rate = *project.PayRate
	} else if len(daysByUser) > 0 {
		warnings = append(warnings, Warning{
			ProjectID: project.ID,
			Code:      WarnMissingPayRate,
			Message:   fmt.Sprintf("project %d has no pay rate; base component set to 0", project.ID),
		})
	}

	allowancesTotal := RoundCurrency(project.Allowances.Total())

	rows := make([]PreviewRow, 0, len(daysByUser))
	for userID, days := range daysByUser {
		daysPresent := len(days)

		var baseComponent float64
		switch project.PayType {
		case entity.PayTypeMonthly:
			// Flat monthly rate. Workers with zero qualifying days never
			// enter daysByUser, so no row is emitted for them at all.
			baseComponent = rate
		case entity.PayTypeWeekly:
			baseComponent = RoundCurrency(rate * float64(daysPresent) / 7)
		default:
			// daily and hourly are both per-day-equivalent rates
			baseComponent = rate * float64(daysPresent)
		}

		rows = append(rows, PreviewRow{
			UserID:          userID,
			ProjectID:       project.ID,
			Month:           month,
			DaysPresent:     daysPresent,
			BaseRate:        rate,
			AllowancesTotal: allowancesTotal,
			TotalAmount:     RoundCurrency(baseComponent + allowancesTotal),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalAmount != rows[j].TotalAmount {
			return rows[i].TotalAmount > rows[j].TotalAmount
		}
		return rows[i].UserID < rows[j].UserID
	})

	return rows, warnings, nil
}
