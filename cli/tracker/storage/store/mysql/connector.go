package mysql

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "3306"
user = "root"
password = ""
database = "geotrack"
table = "legs"
leg_data_field_name = "leg_data"
*/

import (
	"database/sql"
	"fmt"
	"net"

	"github.com/daniil11ru/geotrack/libs/settings"
	"github.com/go-sql-driver/mysql"
)

type Connector struct {
	connection *sql.DB
	config     map[string]string
	query      string
}

// DSN строка подключения go-sql-driver/mysql
func DSN(cfg map[string]string) string {
	c := mysql.NewConfig()
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(settings.Value(cfg, "host", "localhost"), settings.Value(cfg, "port", "3306"))
	c.User = settings.Value(cfg, "user", "root")
	c.Passwd = cfg["password"]
	c.DBName = settings.Value(cfg, "database", "geotrack")
	c.ParseTime = true
	return c.FormatDSN()
}

func insertQuery(cfg map[string]string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)",
		settings.Value(cfg, "table", "legs"),
		settings.Value(cfg, "leg_data_field_name", "leg_data"))
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg
	c.query = insertQuery(c.config)

	if c.connection, err = sql.Open("mysql", DSN(c.config)); err != nil {
		return fmt.Errorf("ошибка подключения к MySQL: %w", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("MySQL недоступен: %w", err)
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

	if _, err = c.connection.Exec(c.query, leg); err != nil {
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
