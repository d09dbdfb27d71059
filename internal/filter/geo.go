package filter

import (
	"math"

	"github.com/mkaelin/limmat-events/internal/event"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// WGS84 points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WithinRadius reports whether an event lies within radiusKm of origin.
// Events without coordinates pass: geocoding failures must not silently
// erase events from the region.
func WithinRadius(ev *event.Canonical, origin event.Coordinates, radiusKm float64) bool {
	if ev.Lat == nil || ev.Lon == nil {
		return true
	}
	return Haversine(origin.Lat, origin.Lon, *ev.Lat, *ev.Lon) <= radiusKm
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
