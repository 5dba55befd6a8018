package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/previewkit/internal/credentials"
)

// Config holds harness configuration.
type Config struct {
	Database DatabaseConfig                    `mapstructure:"database"`
	Log      LogConfig                         `mapstructure:"log"`
	Preview  PreviewConfig                     `mapstructure:"preview"`
	Users    map[string]credentials.UserConfig `mapstructure:"users"`
}

// DatabaseConfig holds sqlite settings for the previewed app.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds zap settings. File receives the log while the TUI owns the
// terminal.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

// PreviewConfig holds runner settings.
type PreviewConfig struct {
	AwaitTimeout time.Duration `mapstructure:"await_timeout"`
	ScenarioFile string        `mapstructure:"scenario_file"`
	Scenario     string        `mapstructure:"scenario"`
	VaultPath    string        `mapstructure:"vault_path"`
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "previewkit")
}

// DefaultPath is where Load looks when PREVIEWKIT_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "previewkit", "config.toml")
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(dataDir(), "preview.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir(), "preview.log"))
	v.SetDefault("log.development", false)
	v.SetDefault("preview.await_timeout", "5s")
	v.SetDefault("preview.scenario_file", "scenarios.toml")
	v.SetDefault("preview.scenario", "")
	v.SetDefault("preview.vault_path", "")
	v.SetDefault("preview.width", 80)
	v.SetDefault("preview.height", 24)
	v.SetDefault("users.admin.username", "admin")
	v.SetDefault("users.admin.password", "admin-pass")
	v.SetDefault("users.guest.username", "guest")
	v.SetDefault("users.guest.password", "guest-pass")

	v.SetConfigType("toml")
	v.SetEnvPrefix("PREVIEWKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix
// PREVIEWKIT_.
func Load() (Config, error) {
	path := os.Getenv("PREVIEWKIT_CONFIG")
	if path == "" {
		path = DefaultPath()
	}
	return LoadFile(path)
}

// LoadFile reads path if it exists; a missing file leaves the defaults.
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Preview.AwaitTimeout <= 0 {
		return Config{}, fmt.Errorf("preview.await_timeout must be positive")
	}
	return c, nil
}

// Save writes cfg to path, creating the directory if needed. Test-user
// passwords are written as configured; prefer the vault for real secrets.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.development", cfg.Log.Development)
	v.Set("preview.await_timeout", cfg.Preview.AwaitTimeout.String())
	v.Set("preview.scenario_file", cfg.Preview.ScenarioFile)
	v.Set("preview.scenario", cfg.Preview.Scenario)
	v.Set("preview.vault_path", cfg.Preview.VaultPath)
	v.Set("preview.width", cfg.Preview.Width)
	v.Set("preview.height", cfg.Preview.Height)
	for key, u := range cfg.Users {
		v.Set("users."+key+".username", u.Username)
		v.Set("users."+key+".password", u.Password)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
