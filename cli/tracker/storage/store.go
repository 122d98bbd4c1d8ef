package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daniil11ru/geotrack/cli/tracker/storage/store/mysql"
	"github.com/daniil11ru/geotrack/cli/tracker/storage/store/postgresql"
	"github.com/daniil11ru/geotrack/cli/tracker/storage/store/redis"
)

var ErrUnknownStorage = errors.New("storage isn't support yet")

type Store interface {
	Connector
	Saver
}

// Saver интерфейс для подключения внешних хранилищ
type Saver interface {
	// Save сохранение в хранилище
	Save(interface{ ToBytes() ([]byte, error) }) error
}

// Connector интерфейс для подключения внешних хранилищ
type Connector interface {
	// Init установка соединения с хранилищем
	Init(map[string]string) error

	// Close закрытие соединения с хранилищем
	Close() error
}

// Repository набор выходных хранилищ журнала отрезков
type Repository struct {
	storages []Saver
}

// AddStore добавляет хранилище для сохранения данных
func (r *Repository) AddStore(s Saver) {
	r.storages = append(r.storages, s)
}

// Empty true, если не подключено ни одного хранилища
func (r *Repository) Empty() bool {
	return len(r.storages) == 0
}

// Save сохраняет данные во все установленные хранилища. Ошибка одного
// хранилища не мешает записи в остальные.
func (r *Repository) Save(m interface{ ToBytes() ([]byte, error) }) error {
	var errs []error
	for _, store := range r.storages {
		if err := store.Save(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadStorages загружает хранилища из структуры конфига. Пустой конфиг
// означает, что журнал не ведётся. При ошибке уже открытые хранилища
// закрываются и репозиторий остаётся пустым.
func (r *Repository) LoadStorages(storages map[string]map[string]string) error {
	names := make([]string, 0, len(storages))
	for name := range storages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, store := range names {
		var db Store
		switch store {
		case "postgresql":
			db = &postgresql.Connector{}
		case "mysql":
			db = &mysql.Connector{}
		case "redis":
			db = &redis.Connector{}
		default:
			return r.abort(fmt.Errorf("%w: %s", ErrUnknownStorage, store))
		}

		params := storages[store]
		if params == nil {
			params = map[string]string{}
		}
		if err := db.Init(params); err != nil {
			return r.abort(fmt.Errorf("не удалось подключить хранилище %s: %w", store,
				errors.Join(err, db.Close())))
		}

		r.AddStore(db)
	}
	return nil
}

func (r *Repository) abort(err error) error {
	if closeErr := r.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	r.storages = nil
	return err
}

// Close закрывает все хранилища, которые это поддерживают
func (r *Repository) Close() error {
	var errs []error
	for _, s := range r.storages {
		if c, ok := s.(Connector); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// NewRepository создает пустой репозиторий
func NewRepository() *Repository {
	return &Repository{}
}
