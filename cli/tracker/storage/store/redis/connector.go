package redis

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "6379"
password = ""
db = "0"
key = "geotrack:legs"
max_len = "10000"

Отрезки добавляются в конец списка key. Если max_len больше нуля, в списке
остаются только последние max_len записей.
*/

import (
	"context"
	"fmt"
	"time"

	"github.com/daniil11ru/geotrack/libs/settings"
	"github.com/go-redis/redis/v8"
)

const timeout = 5 * time.Second

type Connector struct {
	client *redis.Client
	config map[string]string
	key    string
	maxLen int64
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
	maxLen, err := settings.Int(c.config, "max_len", 0)
	if err != nil {
		return err
	}
	c.maxLen = int64(maxLen)
	c.key = settings.Value(c.config, "key", "geotrack:legs")

	c.client = redis.NewClient(&redis.Options{
		Addr:     settings.Value(c.config, "host", "localhost") + ":" + settings.Value(c.config, "port", "6379"),
		Password: c.config["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err = c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis недоступен: %w", err)
	}
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("некорректная ссылка на отрезок")
	}

	leg, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("ошибка сериализации отрезка: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, c.key, leg)
	if c.maxLen > 0 {
		pipe.LTrim(ctx, c.key, -c.maxLen, -1)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("не удалось записать отрезок в Redis: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
