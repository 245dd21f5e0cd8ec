package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/queue"
)

// Initialize loads enrich.yaml from configDir (if present), expands
// environment variables, merges it over Defaults(), resolves secrets from
// the environment, and validates the result — mirroring the teacher's
// config.Initialize entry point (load → merge → validate → return).
func Initialize(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration initialized successfully", "server_port", cfg.ServerPort, "worker_count", cfg.Queue.WorkerCount)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	yamlCfg, err := loadYAML(filepath.Join(configDir, "enrich.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	applyYAML(&cfg, yamlCfg)
	applyEnvSecrets(&cfg)
	return &cfg, nil
}

// loadYAML reads and parses enrich.yaml. A missing file is not an error —
// the service runs on Defaults() plus env secrets alone, matching the
// teacher's tolerance for an absent optional YAML section.
func loadYAML(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &YAMLConfig{}, nil
		}
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

// applyYAML merges non-zero YAML fields onto the defaults-seeded cfg,
// grounded on the teacher's mergo.Merge(queueConfig, tarsyConfig.Queue,
// mergo.WithOverride) pattern for the queue section.
func applyYAML(cfg *Config, y *YAMLConfig) {
	if y.Server != nil && y.Server.Port != 0 {
		cfg.ServerPort = y.Server.Port
	}

	if y.Database != nil {
		dbOverride := dbConfigFromYAML(*y.Database)
		if err := mergo.Merge(&cfg.Database, &dbOverride, mergo.WithOverride); err != nil {
			slog.Warn("failed to merge database config, keeping defaults", "error", err)
		}
	}

	if y.Queue != nil {
		qOverride := queueConfigFromYAML(*y.Queue)
		if err := mergo.Merge(&cfg.Queue, &qOverride, mergo.WithOverride); err != nil {
			slog.Warn("failed to merge queue config, keeping defaults", "error", err)
		}
	}

	if y.Search != nil && y.Search.QPS != 0 {
		cfg.SearchQPS = y.Search.QPS
	}

	if y.LLM != nil && y.LLM.Model != "" {
		cfg.LLMModel = y.LLM.Model
	}
}

func dbConfigFromYAML(y DatabaseYAMLConfig) incidentdb.Config {
	lifetime, _ := time.ParseDuration(y.ConnMaxLifetime)
	idleTime, _ := time.ParseDuration(y.ConnMaxIdleTime)
	return incidentdb.Config{
		Host:            y.Host,
		Port:            y.Port,
		User:            y.User,
		Database:        y.Database,
		SSLMode:         y.SSLMode,
		MaxOpenConns:    y.MaxOpenConns,
		MaxIdleConns:    y.MaxIdleConns,
		ConnMaxLifetime: lifetime,
		ConnMaxIdleTime: idleTime,
	}
}

func queueConfigFromYAML(y QueueYAMLConfig) queue.Config {
	poll, _ := time.ParseDuration(y.PollInterval)
	jitter, _ := time.ParseDuration(y.PollIntervalJitter)
	timeout, _ := time.ParseDuration(y.IncidentTimeout)
	return queue.Config{
		WorkerCount:        y.WorkerCount,
		PollInterval:       poll,
		PollIntervalJitter: jitter,
		IncidentTimeout:    timeout,
	}
}

// applyEnvSecrets reads secrets from the fixed environment variables
// TAVILY_API_KEY, ANTHROPIC_API_KEY and DB_PASSWORD, so no secret needs to
// live in YAML. The YAML api_key_env fields are parsed but not consulted.
func applyEnvSecrets(cfg *Config) {
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.SearchAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
}
