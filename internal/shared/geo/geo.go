package geo

import "math"

const earthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// PathKm sums the legs of a route.
func PathKm(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return total
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
