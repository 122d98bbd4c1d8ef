// Package codec кодирует координаты для передачи через брокер сообщений.
package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/daniil11ru/geotrack/libs/geo"
)

var ErrDecode = errors.New("некорректное сообщение о местоположении")
var ErrUnknownCodec = errors.New("кодек не поддерживается")

// Codec преобразует координату в полезную нагрузку сообщения и обратно
type Codec interface {
	Name() string
	Encode(geo.Coordinate) ([]byte, error)
	// Decode возвращает ошибку, обёрнутую в ErrDecode, если нагрузка
	// не является координатой
	Decode([]byte) (geo.Coordinate, error)
}

// ByName возвращает кодек по имени из конфига, пустое имя означает json
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}

// wireCoordinate собирает поля объекта по мере разбора. Ключи сравниваются
// с учётом регистра, каждый допускается один раз.
type wireCoordinate struct {
	latitude     *float64
	longitude    *float64
	hasLatitude  bool
	hasLongitude bool
}

func (w *wireCoordinate) set(key string, value *float64) error {
	switch key {
	case "latitude":
		if w.hasLatitude {
			return fmt.Errorf("%w: поле latitude повторяется", ErrDecode)
		}
		w.latitude, w.hasLatitude = value, true
	case "longitude":
		if w.hasLongitude {
			return fmt.Errorf("%w: поле longitude повторяется", ErrDecode)
		}
		w.longitude, w.hasLongitude = value, true
	default:
		return fmt.Errorf("%w: неизвестное поле %q", ErrDecode, key)
	}
	return nil
}

func (w *wireCoordinate) coordinate() (geo.Coordinate, error) {
	if w.latitude == nil {
		return geo.Coordinate{}, fmt.Errorf("%w: отсутствует поле latitude", ErrDecode)
	}
	if w.longitude == nil {
		return geo.Coordinate{}, fmt.Errorf("%w: отсутствует поле longitude", ErrDecode)
	}
	if !isFinite(*w.latitude) || !isFinite(*w.longitude) {
		return geo.Coordinate{}, fmt.Errorf("%w: координата должна быть конечным числом", ErrDecode)
	}
	return geo.NewCoordinate(*w.latitude, *w.longitude), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
