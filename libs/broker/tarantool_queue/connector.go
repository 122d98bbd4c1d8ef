package tarantool_queue

/*
Плагин для работы с Tarantool queue.

Раздел настроек, которые должны отвечать в конфиге для подключения брокера:

host = "localhost"
port = "3301"
user = "user"
password = "pass"
max_recons = 5
timeout = 1
reconnect = 1
queue = "locations"

Если queue не задан, используется имя топика.
*/

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarantool/go-tarantool"
	"github.com/tarantool/go-tarantool/queue"
)

const takeTimeout = time.Second

type Connector struct {
	connection *tarantool.Connection
	config     map[string]string

	mu     sync.Mutex
	queues map[string]queue.Queue
	done   chan struct{}
	wg     sync.WaitGroup
}

func parseOptions(cfg map[string]string) (tarantool.Opts, error) {
	maxRecons, err := strconv.Atoi(cfg["max_recons"])
	if err != nil {
		return tarantool.Opts{}, fmt.Errorf("не удалось получить MaxReconnects: %w", err)
	}
	timeout, err := strconv.Atoi(cfg["timeout"])
	if err != nil {
		return tarantool.Opts{}, fmt.Errorf("не удалось получить timeout: %w", err)
	}
	reconnect, err := strconv.Atoi(cfg["reconnect"])
	if err != nil {
		return tarantool.Opts{}, fmt.Errorf("не удалось получить reconnect: %w", err)
	}

	return tarantool.Opts{
		Timeout:       time.Duration(timeout) * time.Second,
		Reconnect:     time.Duration(reconnect) * time.Second,
		MaxReconnects: uint(maxRecons),
		User:          cfg["user"],
		Pass:          cfg["password"],
	}, nil
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	c.config = cfg
	opts, err := parseOptions(c.config)
	if err != nil {
		return err
	}

	conStr := fmt.Sprintf("%s:%s", c.config["host"], c.config["port"])
	c.connection, err = tarantool.Connect(conStr, opts)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к Tarantool: %w", err)
	}

	c.queues = map[string]queue.Queue{}
	c.done = make(chan struct{})
	return nil
}

func (c *Connector) queueFor(topic string) queue.Queue {
	name := c.config["queue"]
	if name == "" {
		name = topic
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[name]
	if !ok {
		q = queue.New(c.connection, name)
		c.queues[name] = q
	}
	return q
}

func (c *Connector) Publish(topic string, payload []byte) error {
	if _, err := c.queueFor(topic).Put(payload); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %w", err)
	}
	return nil
}

// Subscribe забирает задачи из очереди в отдельной горутине и подтверждает
// их после обработки
func (c *Connector) Subscribe(topic string, handler func([]byte)) error {
	q := c.queueFor(topic)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.done:
				return
			default:
			}

			task, err := q.TakeTimeout(takeTimeout)
			if err != nil {
				log.WithField("err", err).Error("Ошибка получения задачи из очереди Tarantool")
				select {
				case <-c.done:
					return
				case <-time.After(takeTimeout):
				}
				continue
			}
			if task == nil {
				continue
			}

			payload, ok := taskPayload(task.Data())
			if !ok {
				log.WithField("data", task.Data()).Warn("Задача Tarantool не содержит полезной нагрузки")
				_ = task.Bury()
				continue
			}

			handler(payload)
			if err := task.Ack(); err != nil {
				log.WithField("err", err).Error("Не удалось подтвердить задачу Tarantool")
			}
		}
	}()

	return nil
}

func taskPayload(data interface{}) ([]byte, bool) {
	switch v := data.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

func (c *Connector) Close() error {
	if c.done != nil {
		close(c.done)
		c.wg.Wait()
		c.done = nil
	}
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
