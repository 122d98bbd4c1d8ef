package geo

import "math"

// EarthRadiusKm радиус сферы, на которой считается расстояние.
const EarthRadiusKm = 6372.8

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm возвращает длину дуги большого круга между a и b в километрах
// (формула гаверсинусов, сферическая модель Земли).
func DistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lon1 := toRadians(a.Longitude)
	lat2 := toRadians(b.Latitude)
	lon2 := toRadians(b.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)

	// почти антиподальные точки дают h чуть больше 1, NaN сводится к нулю
	if h > 1 {
		h = 1
	} else if !(h >= 0) {
		h = 0
	}

	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}
