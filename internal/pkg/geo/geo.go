package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distances.
const EarthRadiusMeters = 6371000

var (
	ErrGPSNotConfigured     = errors.New("GPS is enabled but the institution has no registered coordinates")
	ErrLocationRequired     = errors.New("a device location is required for GPS-validated attendance")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")
)

// Point is a WGS-84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinRadius reports whether distance lies inside the fence; the
// boundary itself counts as inside.
func IsWithinRadius(distance, radiusMeters float64) bool {
	return distance <= radiusMeters
}

// Fence is the circular boundary registered for an institution.
type Fence struct {
	Enabled      bool
	Center       *Point
	RadiusMeters float64
}

// Result is the outcome of a geofence check. Distance is nil when the check
// was not applicable.
type Result struct {
	Applicable bool
	Distance   *float64
	Within     bool
}

// Validated returns the tri-state location flag recorded on attendance:
// nil when the check did not apply.
func (r Result) Validated() *bool {
	if !r.Applicable {
		return nil
	}
	v := r.Within
	return &v
}

// Validate checks a reported position against fence. A disabled fence, a
// non-positive radius, or skip all accept unconditionally without measuring.
func Validate(fence Fence, position *Point, skip bool) (Result, error) {
	if skip || !fence.Enabled || fence.RadiusMeters <= 0 {
		return Result{Applicable: false, Within: true}, nil
	}
	if fence.Center == nil || (fence.Center.Latitude == 0 && fence.Center.Longitude == 0) {
		return Result{}, ErrGPSNotConfigured
	}
	if position == nil {
		return Result{}, ErrLocationRequired
	}

	d := Distance(*position, *fence.Center)
	res := Result{Applicable: true, Distance: &d, Within: IsWithinRadius(d, fence.RadiusMeters)}
	if !res.Within {
		return res, ErrOutsideAllowedRadius
	}
	return res, nil
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
