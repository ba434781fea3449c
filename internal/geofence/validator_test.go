package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malqarni/sitepay/internal/domain/entity"
)

func ptr(v float64) *float64 { return &v }

func siteProject(radius float64) *entity.Project {
	return &entity.Project{
		ID:          1,
		Name:        "Riyadh Site",
		LocationLat: ptr(24.71),
		LocationLng: ptr(46.67),
		Radius:      radius,
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Riyadh to Jeddah is roughly 850 km
	d := Haversine(24.7136, 46.6753, 21.4858, 39.1925)
	assert.InDelta(t, 850000, d, 20000)
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(24.71, 46.67, 24.71, 46.67)
	assert.Equal(t, 0.0, d)
}

func TestValidate_InsideRadius(t *testing.T) {
	project := siteProject(200)

	// ~50m north of the site center
	res := Validate(ptr(24.71045), ptr(46.67), project)

	require.True(t, res.OK)
	assert.Equal(t, ReasonInside, res.Reason)
	require.NotNil(t, res.Distance)
	assert.Less(t, *res.Distance, 200.0)
}

func TestValidate_OutsideRadius(t *testing.T) {
	project := siteProject(200)

	// ~1.1km north of the site center
	res := Validate(ptr(24.72), ptr(46.67), project)

	require.False(t, res.OK)
	assert.Equal(t, ReasonOutside, res.Reason)
	require.NotNil(t, res.Distance)
	assert.Greater(t, *res.Distance, 200.0)
}

func TestValidate_NoProjectLocationDisablesGeofence(t *testing.T) {
	project := &entity.Project{ID: 2, Name: "No geofence"}

	res := Validate(ptr(0), ptr(0), project)

	assert.True(t, res.OK)
	assert.Equal(t, ReasonDisabled, res.Reason)
	assert.Nil(t, res.Distance)
}

func TestValidate_MissingCoordinates(t *testing.T) {
	project := siteProject(200)

	res := Validate(nil, nil, project)

	assert.False(t, res.OK)
	assert.Equal(t, ReasonMissingLocation, res.Reason)
	assert.Nil(t, res.Distance)
}

func TestValidate_DefaultRadiusApplied(t *testing.T) {
	project := siteProject(0) // unset radius falls back to 200m

	// ~150m north of the site center
	res := Validate(ptr(24.71135), ptr(46.67), project)

	assert.True(t, res.OK)
	assert.Equal(t, ReasonInside, res.Reason)
}
