package service

import "math"

const earthRadiusKm = 6371.0

// minBookingDistanceKm is the billing floor applied to every booking.
const minBookingDistanceKm = 0.5

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// bookingDistanceKm computes the billable distance between two points:
// great-circle distance rounded to 2 decimals, floored at 0.5 km.
func bookingDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	d := round2(haversineKm(lat1, lng1, lat2, lng2))
	if d < minBookingDistanceKm {
		return minBookingDistanceKm
	}
	return d
}
