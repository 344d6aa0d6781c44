package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// Clamp before Asin so antipodal rounding never produces NaN.
	c := 2 * math.Asin(math.Min(1, math.Sqrt(a)))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
