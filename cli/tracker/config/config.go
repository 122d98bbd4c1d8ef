package config

/*
Описание конфигурационного файла
*/

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

const (
	DefaultTopic          = "locations"
	DefaultIntervalMs     = 5000
	DefaultStartLatitude  = 40.712776
	DefaultStartLongitude = -74.005974
	DefaultStepDegrees    = 0.01
	DefaultApiPort        = 8080
	DefaultStorageBuffer  = 100
	DefaultStorageWorkers = 1
	DefaultLogMaxSizeMb   = 100
	DefaultLogMaxBackups  = 30
)

type Generator struct {
	Enabled        bool     `yaml:"enabled"`
	IntervalMs     int      `yaml:"interval_ms" validate:"gte=1000,whole_seconds"`
	StartLatitude  *float64 `yaml:"start_latitude"`
	StartLongitude *float64 `yaml:"start_longitude"`
	StepDegrees    float64  `yaml:"step_degrees" validate:"gte=0"`
	Seed           int64    `yaml:"seed"`
}

type Tracker struct {
	Enabled        bool `yaml:"enabled"`
	StorageBuffer  int  `yaml:"storage_buffer" validate:"gte=0"`
	StorageWorkers int  `yaml:"storage_workers" validate:"gte=0"`
}

type Settings struct {
	LogLevel       string                       `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	LogFilePath    string                       `yaml:"log_file_path"`
	LogMaxAgeDays  int                          `yaml:"log_max_age_days" validate:"gte=0"`
	LogMaxSizeMb   int                          `yaml:"log_max_size_mb" validate:"gte=0"`
	LogMaxBackups  int                          `yaml:"log_max_backups" validate:"gte=0"`
	LogFormat      string                       `yaml:"log_format" validate:"omitempty,oneof=text json"`
	ApiPort        int32                        `yaml:"api_port" validate:"gte=-1,lte=65535"`
	Topic          string                       `yaml:"topic"`
	Codec          string                       `yaml:"codec" validate:"omitempty,oneof=json msgpack"`
	Broker         map[string]map[string]string `yaml:"broker" validate:"len=1"`
	Store          map[string]map[string]string `yaml:"storage"`
	MigrationsPath string                       `yaml:"migrations_path"`
	Generator      Generator                    `yaml:"generator"`
	Tracker        Tracker                      `yaml:"tracker"`
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

// GetGeneratorInterval период тиков генератора
func (s *Settings) GetGeneratorInterval() time.Duration {
	return time.Duration(s.Generator.IntervalMs) * time.Millisecond
}

// GetGeneratorSchedule расписание в формате cron
func (s *Settings) GetGeneratorSchedule() string {
	return fmt.Sprintf("@every %ds", s.Generator.IntervalMs/1000)
}

func (s *Settings) GetStartLatitude() float64 {
	if s.Generator.StartLatitude == nil {
		return DefaultStartLatitude
	}
	return *s.Generator.StartLatitude
}

func (s *Settings) GetStartLongitude() float64 {
	if s.Generator.StartLongitude == nil {
		return DefaultStartLongitude
	}
	return *s.Generator.StartLongitude
}

// планировщик не различает доли секунды
func wholeSeconds(fl validator.FieldLevel) bool {
	return fl.Field().Int()%1000 == 0
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("whole_seconds", wholeSeconds)
	return v
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if c.LogMaxSizeMb == 0 {
		c.LogMaxSizeMb = DefaultLogMaxSizeMb
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = DefaultLogMaxBackups
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.Codec == "" {
		c.Codec = "json"
	}
	if c.ApiPort == 0 {
		c.ApiPort = DefaultApiPort
	}
	if c.Generator.IntervalMs == 0 {
		c.Generator.IntervalMs = DefaultIntervalMs
	}
	if c.Generator.StepDegrees == 0 {
		c.Generator.StepDegrees = DefaultStepDegrees
	}
	if c.Tracker.StorageBuffer == 0 {
		c.Tracker.StorageBuffer = DefaultStorageBuffer
	}
	if c.Tracker.StorageWorkers == 0 {
		c.Tracker.StorageWorkers = DefaultStorageWorkers
	}

	if err = newValidator().Struct(c); err != nil {
		return c, fmt.Errorf("некорректный конфиг: %w", err)
	}

	if !c.Generator.Enabled && !c.Tracker.Enabled {
		log.Warn("Генератор и трекер выключены, процесс будет только обслуживать API")
	}

	return c, nil
}
