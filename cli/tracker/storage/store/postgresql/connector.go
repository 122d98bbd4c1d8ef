package postgresql

/*
Настройки, которые могут (а не которые – должны) быть в конфиге для подключения хранилища:

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "geotrack"
table = "legs"
leg_data_field_name = "leg_data"
sslmode = "disable"
*/

import (
	"database/sql"
	"fmt"

	"github.com/daniil11ru/geotrack/libs/settings"
	_ "github.com/lib/pq"
)

type Connector struct {
	connection *sql.DB
	config     map[string]string
	query      string
}

// DSN строка подключения lib/pq
func DSN(cfg map[string]string) string {
	return fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		settings.Value(cfg, "database", "geotrack"),
		settings.Value(cfg, "host", "localhost"),
		settings.Value(cfg, "port", "5432"),
		settings.Value(cfg, "user", "postgres"),
		settings.Value(cfg, "password", "postgres"),
		settings.Value(cfg, "sslmode", "disable"))
}

func insertQuery(cfg map[string]string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1)",
		settings.Value(cfg, "table", "legs"),
		settings.Value(cfg, "leg_data_field_name", "leg_data"))
}

func (c *Connector) Init(cfg map[string]string) error {
	var (
		err error
	)
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg
	c.query = insertQuery(c.config)

	if c.connection, err = sql.Open("postgres", DSN(c.config)); err != nil {
		return fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("PostgreSQL недоступен: %w", err)
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

	if _, err = c.connection.Exec(c.query, string(leg)); err != nil {
		return fmt.Errorf("не удалось вставить запись: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
