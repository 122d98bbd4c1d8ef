package redis

/*
Плагин для работы с Redis Pub/Sub.

Раздел настроек, которые могут быть в конфиге для подключения брокера:

host = "localhost"
port = "6379"
password = ""
db = "0"
*/

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/daniil11ru/geotrack/libs/settings"
	"github.com/go-redis/redis/v8"
)

const connectTimeout = 5 * time.Second

type Connector struct {
	client *redis.Client
	config map[string]string

	mu   sync.Mutex
	subs []*redis.PubSub
	wg   sync.WaitGroup
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	db, err := settings.Int(c.config, "db", 0)
	if err != nil {
		return err
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     settings.Value(c.config, "host", "localhost") + ":" + settings.Value(c.config, "port", "6379"),
		Password: c.config["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err = c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis недоступен: %w", err)
	}
	return nil
}

func (c *Connector) Publish(topic string, payload []byte) error {
	if err := c.client.Publish(context.Background(), topic, payload).Err(); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %w", err)
	}
	return nil
}

func (c *Connector) Subscribe(topic string, handler func([]byte)) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	ps := c.client.Subscribe(ctx, topic)
	// ждём подтверждения, чтобы не потерять сообщения, отправленные сразу после подписки
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("не удалось подписаться на %s: %w", topic, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, ps)
	c.mu.Unlock()

	ch := ps.Channel()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for msg := range ch {
			handler([]byte(msg.Payload))
		}
	}()

	return nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, ps := range subs {
		_ = ps.Close()
	}
	c.wg.Wait()

	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
