package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Overrides are values given on the command line. Empty fields are ignored.
type Overrides struct {
	APIURL   string
	DataDir  string
	LogLevel string
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (path, or the default location when path is empty)
// 3. Environment variables
// 4. Command-line overrides
//
// A missing file at the default location is not an error; a missing file
// named explicitly is.
func Load(path string, o Overrides) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := loadConfigFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)
	applyOverrides(cfg, o)

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.APIURL = DefaultAPIURL
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Timeout = Duration{DefaultTimeout}
	cfg.DeleteDelay = Duration{DefaultDeleteDelay}
	cfg.Server.Addr = DefaultServerAddr
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TODO_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TODO_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = Duration{d}
		}
	}
	if v := os.Getenv("TODO_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TODO_SERVER_DB"); v != "" {
		cfg.Server.DBPath = v
	}
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.APIURL != "" {
		cfg.APIURL = o.APIURL
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}

func finalizeConfig(cfg *Config) error {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return fmt.Errorf("api_url %q must start with http:// or https://", cfg.APIURL)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return err
		}
		cfg.DataDir = dir
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	if cfg.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.DeleteDelay.Duration < 0 {
		return fmt.Errorf("delete_delay must not be negative, got %s", cfg.DeleteDelay)
	}
	return nil
}
