package storage

import (
	"encoding/json"
	"time"

	"github.com/daniil11ru/geotrack/libs/geo"
)

// Leg один отрезок пути между двумя последовательными координатами
type Leg struct {
	From            geo.Coordinate `json:"from"`
	To              geo.Coordinate `json:"to"`
	DistanceKm      float64        `json:"distance_km"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	RecordedAt      time.Time      `json:"recorded_at"`
}

func (l Leg) ToBytes() ([]byte, error) {
	return json.Marshal(l)
}
