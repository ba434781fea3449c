// Package geofence validates reported check-in coordinates against a
// project's circular work perimeter. It is pure computation: callers decide
// what to do with the outcome, writes are never blocked here.
package geofence

import (
	"math"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

const earthRadiusMeters = 6371000

// Reason classifies why a validation produced its outcome
type Reason string

const (
	// ReasonInside means the reported position is within the radius
	ReasonInside Reason = "inside_radius"

	// ReasonOutside means the reported position is beyond the radius
	ReasonOutside Reason = "outside_radius"

	// ReasonDisabled means the project has no configured location, so
	// geofencing is off and every check-in is accepted
	ReasonDisabled Reason = "geofence_disabled"

	// ReasonMissingLocation means the project requires a geofence check but
	// the event carried no coordinates; the event is held for manual review
	ReasonMissingLocation Reason = "missing_location"
)

// Result is the outcome of a geofence validation
type Result struct {
	OK       bool
	Distance *float64
	Reason   Reason
}

// Validate checks reported coordinates against the project's perimeter.
// A nil latitude or longitude marks the event for manual review when the
// project has a configured location.
func Validate(lat, lng *float64, project *entity.Project) Result {
	if !project.HasLocation() {
		return Result{OK: true, Reason: ReasonDisabled}
	}

	if lat == nil || lng == nil {
		return Result{OK: false, Reason: ReasonMissingLocation}
	}

	distance := Haversine(*lat, *lng, *project.LocationLat, *project.LocationLng)

	if distance <= project.EffectiveRadius() {
		return Result{OK: true, Distance: &distance, Reason: ReasonInside}
	}
	return Result{OK: false, Distance: &distance, Reason: ReasonOutside}
}

// Haversine returns the great-circle distance in meters between two points
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	latRad1 := lat1 * math.Pi / 180
	lonRad1 := lon1 * math.Pi / 180
	latRad2 := lat2 * math.Pi / 180
	lonRad2 := lon2 * math.Pi / 180

	diffLat := latRad2 - latRad1
	diffLon := lonRad2 - lonRad1

	a := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*
			math.Sin(diffLon/2)*math.Sin(diffLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
