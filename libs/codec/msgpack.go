package codec

import (
	"bytes"
	"fmt"

	"github.com/daniil11ru/geotrack/libs/geo"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// Msgpack карта из двух ключей latitude и longitude
type Msgpack struct{}

func (Msgpack) Name() string {
	return "msgpack"
}

func (Msgpack) Encode(c geo.Coordinate) ([]byte, error) {
	return msgpack.Marshal(c)
}

func (Msgpack) Decode(payload []byte) (geo.Coordinate, error) {
	if len(payload) == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: пустое сообщение", ErrDecode)
	}

	r := bytes.NewReader(payload)
	dec := msgpack.NewDecoder(r)

	n, err := dec.DecodeMapLen()
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if n != 2 {
		return geo.Coordinate{}, fmt.Errorf("%w: ожидается 2 поля, получено %d", ErrDecode, n)
	}

	var w wireCoordinate
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		raw, err := dec.DecodeInterface()
		if err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: поле %s: %v", ErrDecode, key, err)
		}
		value, err := number(raw)
		if err != nil {
			return geo.Coordinate{}, fmt.Errorf("%w: поле %s: %v", ErrDecode, key, err)
		}
		if err = w.set(key, value); err != nil {
			return geo.Coordinate{}, err
		}
	}

	if r.Len() > 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: лишние данные после объекта", ErrDecode)
	}

	return w.coordinate()
}

func number(v interface{}) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	default:
		return nil, fmt.Errorf("ожидается число, получено %T", v)
	}
	return &f, nil
}
