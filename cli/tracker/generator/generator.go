// Package generator имитирует поток координат случайным блужданием.
package generator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/daniil11ru/geotrack/cli/tracker/metrics"
	"github.com/daniil11ru/geotrack/libs/broker"
	"github.com/daniil11ru/geotrack/libs/codec"
	"github.com/daniil11ru/geotrack/libs/geo"
	log "github.com/sirupsen/logrus"
)

// DefaultStep масштаб нормального шума в градусах
const DefaultStep = 0.01

var ErrSerialize = errors.New("не удалось сериализовать координату")

// RandomSource источник стандартного нормального распределения, *rand.Rand подходит
type RandomSource interface {
	NormFloat64() float64
}

// State курсор генератора
type State struct {
	Latitude  float64
	Longitude float64
}

func (s State) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(s.Latitude, s.Longitude)
}

// Step сдвигает курсор на два независимых нормальных отсчёта, умноженных
// на step: первый прибавляется к широте, второй к долготе. Границы
// координат не проверяются.
func Step(state *State, rng RandomSource, step float64) geo.Coordinate {
	state.Latitude += rng.NormFloat64() * step
	state.Longitude += rng.NormFloat64() * step
	return state.Coordinate()
}

type Generator struct {
	mu        sync.Mutex
	state     State
	step      float64
	rng       RandomSource
	codec     codec.Codec
	publisher broker.Publisher
	topic     string
}

func New(start State, rng RandomSource, c codec.Codec, publisher broker.Publisher, topic string, step float64) *Generator {
	if c == nil {
		c = codec.JSON{}
	}
	if step == 0 {
		step = DefaultStep
	}
	return &Generator{
		state:     start,
		step:      step,
		rng:       rng,
		codec:     c,
		publisher: publisher,
		topic:     topic,
	}
}

// Tick делает шаг и публикует новую координату. Курсор сдвигается
// даже если сериализация или отправка не удались.
func (g *Generator) Tick() (geo.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	position := Step(&g.state, g.rng, g.step)

	payload, err := g.codec.Encode(position)
	if err != nil {
		metrics.GeneratorTicks.WithLabelValues(metrics.ResultEncodeError).Inc()
		return position, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	if err = g.publisher.Publish(g.topic, payload); err != nil {
		metrics.GeneratorTicks.WithLabelValues(metrics.ResultPublishErr).Inc()
		return position, fmt.Errorf("не удалось опубликовать координату в %s: %w", g.topic, err)
	}

	metrics.GeneratorTicks.WithLabelValues(metrics.ResultOK).Inc()
	log.WithFields(log.Fields{"lat": position.Latitude, "lon": position.Longitude}).Info("Координата отправлена")
	return position, nil
}

// Run вызывается планировщиком, ошибки только логируются
func (g *Generator) Run() {
	if _, err := g.Tick(); err != nil {
		log.WithField("err", err).Error("Ошибка генерации координаты")
	}
}

func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
