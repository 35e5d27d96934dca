package institution

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/geo"
)

type Institution struct {
	ID           string
	Name         string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64
	GPSEnabled   bool
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fence returns the geofence registered for the institution. Center is nil
// when no coordinates are on file.
func (i Institution) Fence() geo.Fence {
	f := geo.Fence{Enabled: i.GPSEnabled, RadiusMeters: i.RadiusMeters}
	if i.Latitude != nil && i.Longitude != nil {
		f.Center = &geo.Point{Latitude: *i.Latitude, Longitude: *i.Longitude}
	}
	return f
}

// Location loads the institution's timezone, falling back when it is empty or unknown.
func (i Institution) Location(fallback *time.Location) *time.Location {
	if i.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
