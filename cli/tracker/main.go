package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/daniil11ru/geotrack/cli/tracker/api"
	"github.com/daniil11ru/geotrack/cli/tracker/config"
	"github.com/daniil11ru/geotrack/cli/tracker/generator"
	"github.com/daniil11ru/geotrack/cli/tracker/storage"
	"github.com/daniil11ru/geotrack/cli/tracker/tracker"
	"github.com/daniil11ru/geotrack/libs/broker"
	"github.com/daniil11ru/geotrack/libs/codec"
	"github.com/daniil11ru/geotrack/libs/settings"
	"github.com/robfig/cron"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var errNoConfigPath = errors.New("не задан путь до конфига")

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "Путь до конфигурационного файла")
	flag.Parse()
	config, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
		return
	}

	if err = configureLogging(config); err != nil {
		log.Fatalf("Не удалось настроить логирование: %v", err)
		return
	}

	if err = applyMigrations(config); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
		return
	}

	payloadCodec, err := codec.ByName(config.Codec)
	if err != nil {
		log.Fatalf("Не удалось выбрать кодек: %v", err)
		return
	}

	b, err := broker.Load(config.Broker)
	if err != nil {
		log.Fatalf("Не удалось подключиться к брокеру: %v", err)
		return
	}

	var (
		statusSource api.StatusSource
		legJournal   *journal
	)
	if config.Tracker.Enabled {
		var tr *tracker.Tracker
		tr, legJournal, err = newTracker(config, payloadCodec)
		if err != nil {
			log.Fatalf("Не удалось инициализировать трекер: %v", err)
			return
		}
		if err = b.Subscribe(config.Topic, tr.OnMessage); err != nil {
			log.Fatalf("Не удалось подписаться на топик %s: %v", config.Topic, err)
			return
		}
		statusSource = tr
		log.Infof("Трекер подписан на топик %s", config.Topic)
	}

	var scheduler *cron.Cron
	if config.Generator.Enabled {
		g := newGenerator(config, payloadCodec, b, time.Now().UnixNano())
		scheduler = cron.New()
		if err = scheduler.AddFunc(config.GetGeneratorSchedule(), g.Run); err != nil {
			log.Fatalf("Некорректное расписание генератора: %v", err)
			return
		}
		scheduler.Start()
		log.Infof("Генератор запущен с периодом %s", config.GetGeneratorInterval())
	}

	if config.ApiPort > 0 {
		go runApi(statusSource, config.ApiPort)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Infof("Получен сигнал %v, завершение работы", sig)

	if scheduler != nil {
		scheduler.Stop()
	}
	if err = b.Close(); err != nil {
		log.WithField("err", err).Error("Ошибка закрытия брокера")
	}
	legJournal.Close()
}

func getConfig(configFilePath string) (config.Settings, error) {
	var c config.Settings
	var err error

	if configFilePath == "" {
		return c, errNoConfigPath
	}

	c, err = config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}

	return c, nil
}

func configureLogging(config config.Settings) error {
	log.SetLevel(config.GetLogLevel())
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: false})
	log.SetOutput(os.Stdout)

	if config.LogFilePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(config.LogFilePath), os.ModePerm); err != nil {
		return fmt.Errorf("не получилось создать директорию для логов: %w", err)
	}

	writer := newLogFile(config)
	writers := lfshook.WriterMap{}
	for _, lvl := range log.AllLevels {
		writers[lvl] = writer
	}
	log.AddHook(lfshook.NewHook(writers, logFileFormatter(config.LogFormat)))

	return nil
}

// newLogFile файл лога с ротацией по размеру и возрасту
func newLogFile(config config.Settings) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   config.LogFilePath,
		MaxSize:    config.LogMaxSizeMb,
		MaxBackups: config.LogMaxBackups,
		MaxAge:     config.LogMaxAgeDays,
		Compress:   true,
	}
}

func logFileFormatter(format string) log.Formatter {
	if format == "json" {
		return &log.JSONFormatter{}
	}
	return &log.TextFormatter{DisableColors: true, FullTimestamp: true}
}

// journal журнал отрезков: очередь записи и хранилища за ней
type journal struct {
	async *storage.AsyncRepository
	repo  *storage.Repository
}

func (j *journal) Close() {
	if j == nil {
		return
	}
	j.async.Close()
	if err := j.repo.Close(); err != nil {
		log.WithField("err", err).Error("Ошибка закрытия хранилищ")
	}
}

func newTracker(config config.Settings, payloadCodec codec.Codec) (*tracker.Tracker, *journal, error) {
	repo := storage.NewRepository()
	if err := repo.LoadStorages(config.Store); err != nil {
		return nil, nil, err
	}

	if repo.Empty() {
		return tracker.New(&tracker.State{}, payloadCodec, nil), nil, nil
	}

	j := &journal{
		async: storage.NewAsyncRepository(repo, config.Tracker.StorageBuffer, config.Tracker.StorageWorkers),
		repo:  repo,
	}
	return tracker.New(&tracker.State{}, payloadCodec, j.async), j, nil
}

func newGenerator(config config.Settings, payloadCodec codec.Codec, publisher broker.Publisher, defaultSeed int64) *generator.Generator {
	seed := config.Generator.Seed
	if seed == 0 {
		seed = defaultSeed
	}

	start := generator.State{
		Latitude:  config.GetStartLatitude(),
		Longitude: config.GetStartLongitude(),
	}
	return generator.New(start, rand.New(rand.NewSource(seed)), payloadCodec, publisher, config.Topic, config.Generator.StepDegrees)
}

func runApi(source api.StatusSource, port int32) {
	controller := api.NewController(api.NewHandler(source))
	log.Infof("Запуск API на порту %d", port)
	if err := controller.Run(port); err != nil {
		log.Fatal(err)
	}
}

// migrationsDatabaseURL строка подключения golang-migrate к PostgreSQL из секции storage
func migrationsDatabaseURL(params map[string]string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(settings.Value(params, "user", "postgres"), settings.Value(params, "password", "postgres")),
		Host:     settings.Value(params, "host", "localhost") + ":" + settings.Value(params, "port", "5432"),
		Path:     "/" + settings.Value(params, "database", "geotrack"),
		RawQuery: "sslmode=" + settings.Value(params, "sslmode", "disable"),
	}
	return u.String()
}

func applyMigrations(config config.Settings) error {
	params, ok := config.Store["postgresql"]
	if config.MigrationsPath == "" || !ok {
		return nil
	}

	m, err := migrate.New(config.MigrationsPath, migrationsDatabaseURL(params))
	if err != nil {
		return fmt.Errorf("не удалось инициализировать миграции: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	log.Info("Миграции применены")
	return nil
}
