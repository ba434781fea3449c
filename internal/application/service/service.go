// Package service contains the application services that orchestrate the
// attendance ledger, payroll generation, and the approval workflow over
// the persistence ports.
package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ParseRange parses a dashboard range value such as "7d", "30d" or "24h"
// into the instant where the range starts, relative to now.
func ParseRange(rng string, now time.Time) (time.Time, error) {
	if rng == "" {
		rng = "7d"
	}

	unit := rng[len(rng)-1]
	value, err := strconv.Atoi(strings.TrimSuffix(rng, string(unit)))
	if err != nil || value <= 0 {
		return time.Time{}, fmt.Errorf("%w: range must look like 7d or 24h, got %q", entity.ErrValidation, rng)
	}

	switch unit {
	case 'd':
		return now.AddDate(0, 0, -value), nil
	case 'h':
		return now.Add(-time.Duration(value) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("%w: range must look like 7d or 24h, got %q", entity.ErrValidation, rng)
	}
}
