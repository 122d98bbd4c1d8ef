package storage

import (
	"errors"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrRepositoryClosed = errors.New("асинхронный репозиторий был закрыт")

// AsyncRepository отделяет запись в хранилища от обработки сообщений
type AsyncRepository struct {
	repo   Saver
	ch     chan interface{ ToBytes() ([]byte, error) }
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAsyncRepository(repo Saver, buffer, workers int) *AsyncRepository {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ar := &AsyncRepository{
		repo: repo,
		ch:   make(chan interface{ ToBytes() ([]byte, error) }, buffer),
	}
	for i := 0; i < workers; i++ {
		ar.wg.Add(1)
		go ar.worker()
	}
	return ar
}

func (a *AsyncRepository) worker() {
	defer a.wg.Done()
	for msg := range a.ch {
		if err := a.repo.Save(msg); err != nil {
			log.WithField("err", err).Error("Ошибка сохранения отрезка в журнал")
		}
	}
}

// Save ставит запись в очередь. Если очередь заполнена, вызов ждёт.
func (a *AsyncRepository) Save(m interface{ ToBytes() ([]byte, error) }) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrRepositoryClosed
	}
	a.ch <- m
	return nil
}

// Close перестаёт принимать записи и дожидается записи уже принятых
func (a *AsyncRepository) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	a.wg.Wait()
}
