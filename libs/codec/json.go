package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/daniil11ru/geotrack/libs/geo"
)

// JSON формат по умолчанию: {"latitude": <float>, "longitude": <float>}
type JSON struct{}

func (JSON) Name() string {
	return "json"
}

func (JSON) Encode(c geo.Coordinate) ([]byte, error) {
	return json.Marshal(c)
}

func (JSON) Decode(payload []byte) (geo.Coordinate, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))

	tok, err := dec.Token()
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return geo.Coordinate{}, fmt.Errorf("%w: ожидается объект", ErrDecode)
	}

	var w wireCoordinate
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		key, _ := tok.(string)

		var value *float64
		if err = dec.Decode(&value); err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: поле %s: %v", ErrDecode, key, err)
		}
		if err = w.set(key, value); err != nil {
			return geo.Coordinate{}, err
		}
	}

	// закрывающая скобка
	if _, err = dec.Token(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err = dec.Token(); err != io.EOF {
		return geo.Coordinate{}, fmt.Errorf("%w: лишние данные после объекта", ErrDecode)
	}

	return w.coordinate()
}
