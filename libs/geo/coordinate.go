package geo

import "fmt"

// Coordinate точка на поверхности Земли в градусах.
// Диапазоны широты и долготы не проверяются.
type Coordinate struct {
	Latitude  float64 `json:"latitude" msgpack:"latitude"`
	Longitude float64 `json:"longitude" msgpack:"longitude"`
}

func NewCoordinate(latitude, longitude float64) Coordinate {
	return Coordinate{Latitude: latitude, Longitude: longitude}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}
