// Package config provides Viper-based configuration loading for skyjump.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. SKYJUMP_LOGGING_LEVEL.
const EnvPrefix = "SKYJUMP"

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
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

// StorageConfig selects where player statistics are persisted.
type StorageConfig struct {
	// Backend is "postgres", "file", or "memory".
	Backend string `mapstructure:"backend"`
	// FilePath is the JSON stats file used by the "file" backend.
	FilePath string `mapstructure:"file_path"`
}

// GameConfig holds round timing and content settings.
type GameConfig struct {
	RoundDuration time.Duration `mapstructure:"round_duration"`
	LobbyDuration time.Duration `mapstructure:"lobby_duration"`
	JumpCooldown  time.Duration `mapstructure:"jump_cooldown"`
	// TickInterval is how often the round clock checks its deadlines.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// MaxArguments is the fixed argument arity of parsed chat commands.
	MaxArguments int `mapstructure:"max_arguments"`
	// CharactersFile is an optional YAML catalog; empty uses the built-in one.
	CharactersFile string `mapstructure:"characters_file"`
	// ScriptDir holds Lua reaction hooks; empty disables scripting.
	ScriptDir              string `mapstructure:"script_dir"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// ChatConfig holds chat intake settings.
type ChatConfig struct {
	// QueueSize bounds the events waiting for the game loop.
	QueueSize int `mapstructure:"queue_size"`
	// RatePerSecond is the per-sender message rate; 0 disables throttling.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	// Burst is the per-sender burst allowance.
	Burst int `mapstructure:"burst"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Game     GameConfig     `mapstructure:"game"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

// Validate checks all configuration invariants. Database settings are only
// checked for the postgres backend.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateChat(c.Chat); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendPostgres, BackendMemory:
		return nil
	case BackendFile:
		if s.FilePath == "" {
			return errors.New("storage.file_path must not be empty for the file backend")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be one of [postgres, file, memory], got %q", s.Backend)
	}
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.RoundDuration <= 0 {
		errs = append(errs, fmt.Sprintf("game.round_duration must be > 0, got %s", g.RoundDuration))
	}
	if g.LobbyDuration < 0 {
		errs = append(errs, "game.lobby_duration must not be negative")
	}
	if g.JumpCooldown < 0 {
		errs = append(errs, "game.jump_cooldown must not be negative")
	}
	if g.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("game.tick_interval must be > 0, got %s", g.TickInterval))
	}
	if g.MaxArguments < 1 {
		errs = append(errs, fmt.Sprintf("game.max_arguments must be >= 1, got %d", g.MaxArguments))
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, "game.script_instruction_limit must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateChat(c ChatConfig) error {
	var errs []string
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("chat.queue_size must be >= 1, got %d", c.QueueSize))
	}
	if c.RatePerSecond < 0 {
		errs = append(errs, "chat.rate_per_second must not be negative")
	}
	if c.Burst < 1 {
		errs = append(errs, fmt.Sprintf("chat.burst must be >= 1, got %d", c.Burst))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. Variables from a .env file in the
// working directory are loaded first without replacing ones already set. An
// empty path uses defaults and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadDotEnv loads environment variables from the given files. Missing files
// are ignored.
//
// Postcondition: Returns an error only for unreadable or malformed files.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file or environment
// overrides are present.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: unmarshalling defaults: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skyjump")
	v.SetDefault("database.password", "skyjump")
	v.SetDefault("database.name", "skyjump")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.file_path", "data/players.json")

	v.SetDefault("game.round_duration", "3m")
	v.SetDefault("game.lobby_duration", "30s")
	v.SetDefault("game.jump_cooldown", "2s")
	v.SetDefault("game.tick_interval", "250ms")
	v.SetDefault("game.max_arguments", 2)
	v.SetDefault("game.characters_file", "")
	v.SetDefault("game.script_dir", "")
	v.SetDefault("game.script_instruction_limit", 100000)

	v.SetDefault("chat.queue_size", 256)
	v.SetDefault("chat.rate_per_second", 2.0)
	v.SetDefault("chat.burst", 3)
}
