// Package geo contains pure geographic and fare computation helpers.
//
// Two fare variants exist on purpose: the dynamic variant applies the peak
// multiplier and keeps fractional amounts, the legacy variant ignores the
// multiplier and rounds to the nearest whole amount. On-demand callers
// predate the multiplier and depend on the rounded figure, so the variants
// must stay distinct.
package geo

import (
	"math"

	"github.com/SabaShahdin/ms/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees (haversine on a spherical earth).
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance is DistanceKm over Point values.
func Distance(a, b types.Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Fare computes the dynamic fare: base + perKm*distance*peak. A zero peak
// multiplier means "not configured" and is treated as 1. Returns NaN when
// any input is non-finite; callers must check before formatting.
func Fare(distanceKm, baseFare, perKmRate, peakMultiplier float64) float64 {
	if peakMultiplier == 0 {
		peakMultiplier = 1
	}
	if !finite(distanceKm) || !finite(baseFare) || !finite(perKmRate) || !finite(peakMultiplier) {
		return math.NaN()
	}
	return baseFare + perKmRate*distanceKm*peakMultiplier
}

// LegacyFare computes the on-demand fare: base + perKm*distance, rounded to
// the nearest whole amount. The peak multiplier is deliberately not applied.
// Returns NaN when any input is non-finite.
func LegacyFare(distanceKm, baseFare, perKmRate float64) float64 {
	if !finite(distanceKm) || !finite(baseFare) || !finite(perKmRate) {
		return math.NaN()
	}
	return math.Round(baseFare + perKmRate*distanceKm)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
