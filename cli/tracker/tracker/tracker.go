// Package tracker накапливает пройденное расстояние по потоку координат.
package tracker

import (
	"sync"
	"time"

	"github.com/daniil11ru/geotrack/cli/tracker/metrics"
	"github.com/daniil11ru/geotrack/cli/tracker/storage"
	"github.com/daniil11ru/geotrack/libs/codec"
	"github.com/daniil11ru/geotrack/libs/geo"
	log "github.com/sirupsen/logrus"
)

var now = time.Now

// State состояние трекера. LastPosition == nil, пока не получено ни одной
// корректной координаты.
type State struct {
	LastPosition    *geo.Coordinate
	TotalDistanceKm float64
}

// Tracking true после первой корректной координаты
func (s State) Tracking() bool {
	return s.LastPosition != nil
}

type Snapshot struct {
	Tracking        bool     `json:"tracking"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	TotalDistanceKm float64  `json:"total_distance_km"`
	Messages        uint64   `json:"messages"`
	DecodeErrors    uint64   `json:"decode_errors"`
}

// Tracker обработчик сообщений топика с координатами. Вызовы OnMessage
// сериализуются мьютексом.
type Tracker struct {
	mu           sync.Mutex
	state        *State
	codec        codec.Codec
	journal      storage.Saver
	messages     uint64
	decodeErrors uint64
}

// New создаёт трекер поверх переданного состояния. journal может быть nil.
func New(state *State, c codec.Codec, journal storage.Saver) *Tracker {
	if state == nil {
		state = &State{}
	}
	if c == nil {
		c = codec.JSON{}
	}
	return &Tracker{state: state, codec: c, journal: journal}
}

// OnMessage обрабатывает одно входящее сообщение
func (t *Tracker) OnMessage(payload []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages++

	current, err := t.codec.Decode(payload)
	if err != nil {
		t.decodeErrors++
		metrics.TrackerMessages.WithLabelValues(metrics.ResultDecodeError).Inc()
		log.WithFields(log.Fields{"err": err, "payload": string(payload)}).Error("Ошибка разбора сообщения")
		return
	}
	metrics.TrackerMessages.WithLabelValues(metrics.ResultOK).Inc()

	if t.state.LastPosition == nil {
		t.state.LastPosition = &current
		log.WithField("position", current).Info("Получена первая координата, начат подсчёт расстояния")
		return
	}

	previous := *t.state.LastPosition
	distance := geo.DistanceKm(previous, current)
	t.state.TotalDistanceKm += distance
	t.state.LastPosition = &current

	metrics.TrackerLastLeg.Set(distance)
	metrics.TrackerDistance.Set(t.state.TotalDistanceKm)
	log.Infof("Расстояние между двумя последними точками: %.2f км", distance)
	log.Infof("Всего пройдено: %.2f км", t.state.TotalDistanceKm)

	if t.journal == nil {
		return
	}
	leg := storage.Leg{
		From:            previous,
		To:              current,
		DistanceKm:      distance,
		TotalDistanceKm: t.state.TotalDistanceKm,
		RecordedAt:      now().UTC(),
	}
	if err := t.journal.Save(leg); err != nil {
		log.WithField("err", err).Error("Не удалось записать отрезок в журнал")
	}
}

// State копия текущего состояния
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{TotalDistanceKm: t.state.TotalDistanceKm}
	if t.state.LastPosition != nil {
		last := *t.state.LastPosition
		s.LastPosition = &last
	}
	return s
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Tracking:        t.state.LastPosition != nil,
		TotalDistanceKm: t.state.TotalDistanceKm,
		Messages:        t.messages,
		DecodeErrors:    t.decodeErrors,
	}
	if t.state.LastPosition != nil {
		lat, lon := t.state.LastPosition.Latitude, t.state.LastPosition.Longitude
		s.Latitude = &lat
		s.Longitude = &lon
	}
	return s
}
