// Package config provides Viper-based configuration loading for the
// escape-room server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds telnet listener settings.
type ServerConfig struct {
	// Host is the bind address for the telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the duration of inactivity after which a warning is sent.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// IdleGracePeriod is the additional duration after IdleTimeout before disconnecting.
	IdleGracePeriod time.Duration `mapstructure:"idle_grace_period"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GameConfig holds room content and turn-resolution settings.
type GameConfig struct {
	// RoomFile is the path to the room definition YAML.
	RoomFile string `mapstructure:"room_file"`
	// ScriptInstructionLimit caps Lua opcodes per hook call when the room
	// definition does not set its own limit.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// InterpreterTimeout bounds one interpreter model call.
	InterpreterTimeout time.Duration `mapstructure:"interpreter_timeout"`
	// NarratorTimeout bounds one narrator model call.
	NarratorTimeout time.Duration `mapstructure:"narrator_timeout"`
}

// AnthropicConfig holds model API settings.
type AnthropicConfig struct {
	// APIKey authenticates against the Anthropic API. Usually supplied via
	// the ESCAPE_ANTHROPIC_API_KEY environment variable; front ends that
	// talk to the live model fail fast when it is empty.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier both adapters call.
	Model string `mapstructure:"model"`
	// BaseURL overrides the API endpoint. Empty means the public endpoint.
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig holds PostgreSQL connection settings for the transcript store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Game      GameConfig      `mapstructure:"game"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAnthropic(c.Anthropic); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.RoomFile == "" {
		errs = append(errs, "game.room_file must not be empty")
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if g.InterpreterTimeout <= 0 {
		errs = append(errs, "game.interpreter_timeout must be positive")
	}
	if g.NarratorTimeout <= 0 {
		errs = append(errs, "game.narrator_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// validateAnthropic deliberately does not require the API key: tooling that
// never calls the model (migrations, room linting, offline play) shares the
// same configuration file.
func validateAnthropic(a AnthropicConfig) error {
	if a.Model == "" {
		return errors.New("anthropic.model must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ESCAPE_ prefix
	v.SetEnvPrefix("ESCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "5m")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "5m")
	v.SetDefault("server.idle_grace_period", "1m")

	v.SetDefault("game.room_file", "content/rooms/behind-bars.yaml")
	v.SetDefault("game.script_instruction_limit", 1000000)
	v.SetDefault("game.interpreter_timeout", "15s")
	v.SetDefault("game.narrator_timeout", "20s")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-20241022")
	v.SetDefault("anthropic.base_url", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "escaperoom")
	v.SetDefault("database.password", "escaperoom")
	v.SetDefault("database.name", "escaperoom")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
