// Package settings читает параметры плагинов из секций конфига вида map[string]string.
package settings

import (
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Value возвращает значение параметра или defaultValue, если параметр не задан
func Value(cfg map[string]string, name string, defaultValue string) string {
	value := cfg[name]
	if value == "" {
		log.Debugf("Ключ '%s' не найден в конфигурации. Используется значение по умолчанию '%s'.", name, defaultValue)
		value = defaultValue
	}

	return value
}

func Int(cfg map[string]string, name string, defaultValue int) (int, error) {
	raw, ok := cfg[name]
	if !ok || raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить %s: %w", name, err)
	}
	return value, nil
}

// Seconds читает целое число секунд
func Seconds(cfg map[string]string, name string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := cfg[name]
	if !ok || raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить %s: %w", name, err)
	}
	return time.Duration(value) * time.Second, nil
}
