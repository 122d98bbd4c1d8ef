package rabbitmq

/*
Плагин для работы с RabbitMQ.

Раздел настроек, которые могут быть в конфиге для подключения брокера:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "geotrack"
queue = "locations"
*/

import (
	"fmt"
	"net/url"
	"time"

	"github.com/daniil11ru/geotrack/libs/settings"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	config     map[string]string
	exchange   string
}

func amqpURL(cfg map[string]string) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(settings.Value(cfg, "user", "guest"), settings.Value(cfg, "password", "guest")),
		Host:   settings.Value(cfg, "host", "localhost") + ":" + settings.Value(cfg, "port", "5672"),
		Path:   "/",
	}
	return u.String()
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg
	c.exchange = settings.Value(c.config, "exchange", "geotrack")

	if c.connection, err = amqp.Dial(amqpURL(c.config)); err != nil {
		return fmt.Errorf("ошибка подключения к RabbitMQ: %w", err)
	}

	if c.channel, err = c.connection.Channel(); err != nil {
		c.connection.Close()
		return fmt.Errorf("ошибка открытия канала RabbitMQ: %w", err)
	}

	if err = c.channel.ExchangeDeclare(c.exchange, "topic", true, false, false, false, nil); err != nil {
		c.Close()
		return fmt.Errorf("не удалось объявить exchange %s: %w", c.exchange, err)
	}
	return nil
}

func (c *Connector) Publish(topic string, payload []byte) error {
	err := c.channel.Publish(c.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/octet-stream",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %w", err)
	}
	return nil
}

// Subscribe привязывает очередь к exchange по ключу topic. Без имени очереди
// в конфиге создаётся временная эксклюзивная очередь.
func (c *Connector) Subscribe(topic string, handler func([]byte)) error {
	queueName := c.config["queue"]
	named := queueName != ""

	q, err := c.channel.QueueDeclare(queueName, named, !named, !named, false, nil)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь: %w", err)
	}

	if err = c.channel.QueueBind(q.Name, topic, c.exchange, false, nil); err != nil {
		return fmt.Errorf("не удалось привязать очередь %s: %w", q.Name, err)
	}

	deliveries, err := c.channel.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("не удалось подписаться на очередь %s: %w", q.Name, err)
	}

	go func() {
		for d := range deliveries {
			handler(d.Body)
		}
		log.WithField("queue", q.Name).Info("Канал доставки RabbitMQ закрыт")
	}()

	return nil
}

func (c *Connector) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.connection != nil {
		return c.connection.Close()
	}
	return nil
}
