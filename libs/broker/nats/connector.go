package nats

/*
Плагин для работы с NATS.

Раздел настроек, которые могут быть в конфиге для подключения брокера:

url = "nats://localhost:4222"
max_reconnects = "60"
reconnect_wait = "2"
*/

import (
	"fmt"
	"time"

	"github.com/daniil11ru/geotrack/libs/settings"
	"github.com/nats-io/nats.go"
)

type Connector struct {
	connection *nats.Conn
	config     map[string]string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	maxReconnects, err := settings.Int(c.config, "max_reconnects", nats.DefaultMaxReconnect)
	if err != nil {
		return err
	}
	reconnectWait, err := settings.Seconds(c.config, "reconnect_wait", nats.DefaultReconnectWait)
	if err != nil {
		return err
	}

	url := settings.Value(c.config, "url", nats.DefaultURL)
	c.connection, err = nats.Connect(url,
		nats.Name("geotrack"),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к NATS: %w", err)
	}
	return nil
}

func (c *Connector) Publish(topic string, payload []byte) error {
	if err := c.connection.Publish(topic, payload); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %w", err)
	}
	return nil
}

// Subscribe асинхронная подписка: NATS вызывает обработчик одной подписки
// из одной горутины
func (c *Connector) Subscribe(topic string, handler func([]byte)) error {
	_, err := c.connection.Subscribe(topic, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("не удалось подписаться на %s: %w", topic, err)
	}

	return c.connection.Flush()
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	c.connection.Close()
	return nil
}
