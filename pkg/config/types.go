// Package config loads the enrichment service's YAML + environment
// configuration, grounded on the teacher's pkg/config/loader.go +
// envexpand.go + validator.go idiom (YAML file → env-var expansion →
// mergo defaults merge → go-playground/validator struct validation).
package config

import (
	"time"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/queue"
)

// YAMLConfig is the on-disk shape of enrich.yaml, mirroring the teacher's
// TarsyYAMLConfig grouping (top-level sections, each optional so the file
// may omit anything and fall back to defaults).
type YAMLConfig struct {
	Server   *ServerYAMLConfig   `yaml:"server"`
	Database *DatabaseYAMLConfig `yaml:"database"`
	Queue    *QueueYAMLConfig    `yaml:"queue"`
	Search   *SearchYAMLConfig   `yaml:"search"`
	LLM      *LLMYAMLConfig      `yaml:"llm"`
}

type ServerYAMLConfig struct {
	Port int `yaml:"port"`
}

type DatabaseYAMLConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
}

type QueueYAMLConfig struct {
	WorkerCount        int    `yaml:"worker_count"`
	PollInterval       string `yaml:"poll_interval"`
	PollIntervalJitter string `yaml:"poll_interval_jitter"`
	IncidentTimeout    string `yaml:"incident_timeout"`
}

type SearchYAMLConfig struct {
	APIKeyEnv string  `yaml:"api_key_env"`
	QPS       float64 `yaml:"qps"`
}

type LLMYAMLConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// Config is the resolved, validated configuration the service runs with.
type Config struct {
	ServerPort int `validate:"gt=0,lt=65536"`

	Database incidentdb.Config

	Queue queue.Config

	SearchAPIKey string  `validate:"required"`
	SearchQPS    float64 `validate:"gt=0"`

	LLMAPIKey string `validate:"required"`
	LLMModel  string `validate:"required"`

	MaxRetries int `validate:"gte=0"`
}

// Defaults returns the built-in defaults applied before YAML/env overrides,
// mirroring the teacher's DefaultQueueConfig/GetBuiltinConfig pattern of a
// pure function returning a baseline struct.
func Defaults() Config {
	return Config{
		ServerPort: 8080,
		Database: incidentdb.Config{
			Host:            "localhost",
			Port:            5432,
			User:            "enrich",
			Database:        "tji_incidents",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 15 * time.Minute,
		},
		Queue:      queue.DefaultConfig(),
		SearchQPS:  2,
		LLMModel:   "claude-3-5-haiku-latest",
		MaxRetries: 3,
	}
}
