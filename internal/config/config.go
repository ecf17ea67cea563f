// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default values.
const (
	DefaultAPIURL      = "http://localhost:5000/api"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultTimeout     = 5 * time.Second
	DefaultDeleteDelay = 480 * time.Millisecond
	DefaultServerAddr  = ":5000"

	appName = "todo"
)

// Config holds the full configuration for the client and the server.
type Config struct {
	APIURL      string   `toml:"api_url"`
	DataDir     string   `toml:"data_dir"`
	LogLevel    string   `toml:"log_level"`
	LogFormat   string   `toml:"log_format"`
	Timeout     Duration `toml:"timeout"`
	DeleteDelay Duration `toml:"delete_delay"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig configures todo-server.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
}

// Duration is a time.Duration written as a string ("5s", "480ms") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogPath is where the TUI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, appName+".log")
}

// ServerDBPath is the server's database file.
func (c *Config) ServerDBPath() string {
	if c.Server.DBPath != "" {
		return c.Server.DBPath
	}
	return filepath.Join(c.DataDir, "server.db")
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/todo/config.toml, falling back
// to ~/.config/todo/config.toml.
func DefaultConfigPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// DefaultDataDir returns $XDG_DATA_HOME/todo, falling back to
// ~/.local/share/todo.
func DefaultDataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName), nil
}
