package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.SearchAPIKey = "tavily-key"
	cfg.LLMAPIKey = "anthropic-key"
	cfg.Database.Password = "secret"
	return cfg
}

func TestValidate_AcceptsFullyPopulatedConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, Validate(&cfg))
}

func TestValidate_RejectsMissingSearchAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.SearchAPIKey = ""
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsMissingLLMAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLMAPIKey = ""
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsOutOfRangeServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.ServerPort = 0
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)

	cfg.ServerPort = 70000
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsNonPositiveSearchQPS(t *testing.T) {
	cfg := validConfig()
	cfg.SearchQPS = 0
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsMissingDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = ""
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsZeroWorkerCount(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.WorkerCount = 0
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsIdleConnsExceedingOpenConns(t *testing.T) {
	cfg := validConfig()
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 10
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}

func TestValidate_RejectsNegativeMaxRetries(t *testing.T) {
	cfg := validConfig()
	cfg.MaxRetries = -1
	assert.ErrorIs(t, Validate(&cfg), ErrValidationFailed)
}
