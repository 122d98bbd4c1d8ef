// Package broker подключает транспорт сообщений, через который ходят координаты.
package broker

import (
	"errors"
	"fmt"

	"github.com/daniil11ru/geotrack/libs/broker/memory"
	"github.com/daniil11ru/geotrack/libs/broker/nats"
	"github.com/daniil11ru/geotrack/libs/broker/rabbitmq"
	"github.com/daniil11ru/geotrack/libs/broker/redis"
	"github.com/daniil11ru/geotrack/libs/broker/tarantool_queue"
)

var ErrInvalidBroker = errors.New("брокер не задан")
var ErrUnknownBroker = errors.New("брокер не поддерживается")
var ErrSeveralBrokers = errors.New("можно задать только один брокер")

// Handler обработчик полезной нагрузки входящего сообщения
type Handler = func(payload []byte)

// Publisher отправка сообщений в топик
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber подписка на топик. Сообщения одной подписки передаются
// обработчику последовательно, в порядке получения.
type Subscriber interface {
	Subscribe(topic string, handler Handler) error
}

// Broker плагин транспорта
type Broker interface {
	// Init установка соединения с брокером
	Init(map[string]string) error
	Publisher
	Subscriber
	// Close закрытие соединения и всех подписок
	Close() error
}

// New возвращает неинициализированный плагин по имени
func New(name string) (Broker, error) {
	switch name {
	case "memory":
		return &memory.Connector{}, nil
	case "nats":
		return &nats.Connector{}, nil
	case "rabbitmq":
		return &rabbitmq.Connector{}, nil
	case "redis":
		return &redis.Connector{}, nil
	case "tarantool_queue":
		return &tarantool_queue.Connector{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBroker, name)
	}
}

// Load создаёт и подключает брокер из секции конфига. Секция должна
// содержать ровно один брокер.
func Load(brokers map[string]map[string]string) (Broker, error) {
	if len(brokers) == 0 {
		return nil, ErrInvalidBroker
	}
	if len(brokers) > 1 {
		return nil, ErrSeveralBrokers
	}

	for name, params := range brokers {
		b, err := New(name)
		if err != nil {
			return nil, err
		}
		if params == nil {
			params = map[string]string{}
		}
		if err := b.Init(params); err != nil {
			return nil, fmt.Errorf("не удалось подключиться к брокеру %s: %w", name, err)
		}
		return b, nil
	}

	return nil, ErrInvalidBroker
}
