// Package geo provides the great-circle math every other component
// builds on. Distances use the haversine formula on a spherical Earth;
// antimeridian and polar edge cases are out of scope since missions
// are regional.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in meters.
const EarthRadiusM = 6371000.0

// Point is a 3-D position: latitude/longitude in degrees, altitude in
// meters above ground.
type Point struct {
	Lat float64
	Lng float64
	Alt float64
}

// Distance returns the great-circle distance in meters between two
// points, ignoring altitude. Returns 0 when a == b.
func Distance(a, b Point) float64 {
	if a.Lat == b.Lat && a.Lng == b.Lng {
		return 0
	}

	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// DistanceKm returns the great-circle distance in kilometers.
func DistanceKm(a, b Point) float64 {
	return Distance(a, b) / 1000.0
}

// Distance3D returns the straight-line distance in meters including
// the altitude difference.
func Distance3D(a, b Point) float64 {
	horiz := Distance(a, b)
	dAlt := b.Alt - a.Alt
	return math.Sqrt(horiz*horiz + dAlt*dAlt)
}

// BearingVector returns a unit direction vector from a to b scaled by
// speed (m/s), as (vLat, vLng, vAlt) velocity components in meters per
// second. The flat-Earth approximation (111 km per degree, longitude
// scaled by cos(lat)) is fine at mission scale.
func BearingVector(a, b Point, speed float64) (vLat, vLng, vAlt float64) {
	if Distance(a, b) == 0 && a.Alt == b.Alt {
		return 0, 0, 0
	}

	dLat := (b.Lat - a.Lat) * 111000.0
	dLng := (b.Lng - a.Lng) * 111000.0 * math.Cos(a.Lat*math.Pi/180.0)
	dAlt := b.Alt - a.Alt

	total := math.Sqrt(dLat*dLat + dLng*dLng + dAlt*dAlt)
	if total == 0 {
		return 0, 0, 0
	}

	return dLat / total * speed, dLng / total * speed, dAlt / total * speed
}
