package entity

import (
	"fmt"
	"math"
	"time"
)

// PayType determines how a project's pay rate is applied
type PayType string

const (
	PayTypeMonthly PayType = "monthly"
	PayTypeWeekly  PayType = "weekly"
	PayTypeDaily   PayType = "daily"
	PayTypeHourly  PayType = "hourly"
)

var validPayTypes = map[PayType]bool{
	PayTypeMonthly: true,
	PayTypeWeekly:  true,
	PayTypeDaily:   true,
	PayTypeHourly:  true,
}

// IsValid returns true if the pay type is one of the supported types
func (p PayType) IsValid() bool {
	return validPayTypes[p]
}

// DefaultRadiusMeters is the geofence radius applied when a project does not configure one
const DefaultRadiusMeters = 200.0

// Allowances maps an allowance name to a flat monthly amount
type Allowances map[string]float64

// Validate rejects malformed allowance payloads at the boundary
func (a Allowances) Validate() error {
	for name, amount := range a {
		if name == "" {
			return fmt.Errorf("allowance name must not be empty")
		}
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("allowance %q must be a non-negative amount", name)
		}
	}
	return nil
}

// Total returns the flat sum of all allowances
func (a Allowances) Total() float64 {
	var sum float64
	for _, amount := range a {
		sum += amount
	}
	return sum
}

// Project represents a work site with pay configuration and an optional geofence
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	PayType     PayType    `json:"pay_type"`
	PayRate     *float64   `json:"pay_rate"`
	Allowances  Allowances `json:"allowances"`
	LocationLat *float64   `json:"location_lat"`
	LocationLng *float64   `json:"location_lng"`
	Radius      float64    `json:"radius"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasLocation returns true if the project has a configured geofence center
func (p *Project) HasLocation() bool {
	return p.LocationLat != nil && p.LocationLng != nil
}

// EffectiveRadius returns the configured radius or the default
func (p *Project) EffectiveRadius() float64 {
	if p.Radius > 0 {
		return p.Radius
	}
	return DefaultRadiusMeters
}

// Status derives the project lifecycle status from its date range
func (p *Project) Status(now time.Time) string {
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return "upcoming"
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return "completed"
	}
	return "active"
}
