package memory

/*
Шина сообщений внутри процесса. Подходит для запуска генератора и трекера
в одном процессе без внешнего брокера.

Параметры:

buffer = "1024"
*/

import (
	"fmt"
	"sync"

	"github.com/daniil11ru/geotrack/libs/settings"
)

const defaultBuffer = 1024

type subscription struct {
	ch   chan []byte
	done chan struct{}
}

type Connector struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	buffer int
	closed bool
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	buffer, err := settings.Int(cfg, "buffer", defaultBuffer)
	if err != nil {
		return err
	}
	if buffer < 0 {
		return fmt.Errorf("размер буфера не может быть отрицательным: %d", buffer)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = buffer
	c.subs = map[string][]*subscription{}
	return nil
}

// Publish передаёт копию сообщения всем подписчикам топика. Если буфер
// подписчика заполнен, вызов ждёт.
func (c *Connector) Publish(topic string, payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("шина сообщений закрыта")
	}

	for _, s := range c.subs[topic] {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		s.ch <- msg
	}
	return nil
}

func (c *Connector) Subscribe(topic string, handler func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("шина сообщений закрыта")
	}
	if c.subs == nil {
		c.subs = map[string][]*subscription{}
	}

	s := &subscription{
		ch:   make(chan []byte, c.buffer),
		done: make(chan struct{}),
	}
	c.subs[topic] = append(c.subs[topic], s)

	go func() {
		defer close(s.done)
		for msg := range s.ch {
			handler(msg)
		}
	}()

	return nil
}

// Close дожидается, пока подписчики обработают уже принятые сообщения
func (c *Connector) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.mu.Unlock()

	for _, topicSubs := range subs {
		for _, s := range topicSubs {
			close(s.ch)
			<-s.done
		}
	}
	return nil
}
