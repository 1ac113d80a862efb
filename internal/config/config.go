// Package config loads server and client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	DefaultAddr         = "127.0.0.1:6000"
	DefaultQuitCommand  = "/quit"
	DefaultMaxLineBytes = 4096
)

// Server holds the relay server settings.
type Server struct {
	Addr         string        `env:"CHAT_ADDR,default=127.0.0.1:6000"`
	MetricsAddr  string        `env:"CHAT_METRICS_ADDR"`
	QuitCommand  string        `env:"CHAT_QUIT_COMMAND,default=/quit"`
	MaxLineBytes int           `env:"CHAT_MAX_LINE_BYTES,default=4096"`
	WriteTimeout time.Duration `env:"CHAT_WRITE_TIMEOUT,default=0s"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
}

// Client holds the interactive client settings.
type Client struct {
	ServerAddr   string `env:"CHAT_SERVER_ADDR,default=127.0.0.1:6000"`
	QuitCommand  string `env:"CHAT_QUIT_COMMAND,default=/quit"`
	MaxLineBytes int    `env:"CHAT_MAX_LINE_BYTES,default=4096"`
	LogLevel     string `env:"LOG_LEVEL,default=warn"`
}

// DefaultServer returns the server settings used when nothing is configured.
func DefaultServer() Server {
	return Server{
		Addr:         DefaultAddr,
		QuitCommand:  DefaultQuitCommand,
		MaxLineBytes: DefaultMaxLineBytes,
		LogLevel:     "info",
	}
}

// LoadServer reads an optional .env file and then the process environment.
func LoadServer() (Server, error) {
	loadDotEnv()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Server{}, fmt.Errorf("config: read environment: %w", err)
	}
	return ServerFromEnvSet(es)
}

// ServerFromEnvSet decodes and validates server settings from es.
func ServerFromEnvSet(es env.EnvSet) (Server, error) {
	var cfg Server
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Server{}, fmt.Errorf("config: decode server env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid server setting.
func (c Server) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: CHAT_ADDR must not be empty")
	}
	if strings.TrimSpace(c.QuitCommand) == "" {
		return errors.New("config: CHAT_QUIT_COMMAND must not be empty")
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("config: CHAT_MAX_LINE_BYTES must be positive, got %d", c.MaxLineBytes)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("config: CHAT_WRITE_TIMEOUT must not be negative, got %s", c.WriteTimeout)
	}
	return nil
}

// LoadClient reads an optional .env file and then the process environment.
func LoadClient() (Client, error) {
	loadDotEnv()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Client{}, fmt.Errorf("config: read environment: %w", err)
	}
	return ClientFromEnvSet(es)
}

// ClientFromEnvSet decodes and validates client settings from es.
func ClientFromEnvSet(es env.EnvSet) (Client, error) {
	var cfg Client
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Client{}, fmt.Errorf("config: decode client env: %w", err)
	}
	if strings.TrimSpace(cfg.ServerAddr) == "" {
		return Client{}, errors.New("config: CHAT_SERVER_ADDR must not be empty")
	}
	if strings.TrimSpace(cfg.QuitCommand) == "" {
		return Client{}, errors.New("config: CHAT_QUIT_COMMAND must not be empty")
	}
	if cfg.MaxLineBytes <= 0 {
		return Client{}, fmt.Errorf("config: CHAT_MAX_LINE_BYTES must be positive, got %d", cfg.MaxLineBytes)
	}
	return cfg, nil
}

// ParseLevel maps a LOG_LEVEL value onto a slog level. Unknown values fall back to info.
func ParseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// A missing .env file is the normal case.
func loadDotEnv() {
	_ = godotenv.Load()
}
