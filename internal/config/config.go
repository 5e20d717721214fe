package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Lock       LockConfig       `mapstructure:"lock" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains bearer-token settings. An empty secret disables
// authentication on the API routes.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// Enabled reports whether API routes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// LLMConfig contains provider integration settings. API keys are supplied per
// request and are never part of the configuration.
type LLMConfig struct {
	DefaultModel          string  `mapstructure:"default_model" validate:"required"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	Temperature           float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens       int     `mapstructure:"max_output_tokens" validate:"required,gt=0"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RetryBaseDelayMillis  int     `mapstructure:"retry_base_delay_millis" validate:"gte=0"`
	OpenAIBaseURL         string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	DeepSeekBaseURL       string  `mapstructure:"deepseek_base_url" validate:"required,url"`
	OllamaBaseURL         string  `mapstructure:"ollama_base_url" validate:"required,url"`
}

// WorstCaseCall bounds one provider call: every attempt runs to its timeout
// and each retry waits the longest backoff.
func (l LLMConfig) WorstCaseCall() time.Duration {
	timeout := time.Duration(l.RequestTimeoutSeconds) * time.Second
	base := time.Duration(l.RetryBaseDelayMillis) * time.Millisecond
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	total := timeout * time.Duration(l.MaxRetries+1)
	for attempt := 0; attempt < l.MaxRetries; attempt++ {
		total += base << attempt
	}
	return total
}

// GenerationConfig bounds exercise generation requests.
type GenerationConfig struct {
	DefaultQuestionCount int    `mapstructure:"default_question_count" validate:"required,gt=0"`
	MaxQuestionCount     int    `mapstructure:"max_question_count" validate:"required,gtefield=DefaultQuestionCount"`
	DefaultDifficulty    string `mapstructure:"default_difficulty" validate:"required,oneof=basic medium advanced"`
}

// LockConfig selects how generation requests for the same course and kind are
// serialized.
type LockConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,oneof=memory redis"`
	RedisURL   string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"required,gt=0"`
}

// checkLockTTL rejects a redis lock that could expire while its holder is
// still waiting on a provider.
func (c Config) checkLockTTL() error {
	if c.Lock.Backend != "redis" {
		return nil
	}
	ttl := time.Duration(c.Lock.TTLSeconds) * time.Second
	if worst := c.LLM.WorstCaseCall(); ttl <= worst {
		return fmt.Errorf("lock.ttl_seconds (%s) must exceed the worst-case provider call (%s)", ttl, worst)
	}
	return nil
}
