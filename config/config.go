// ABOUTME: Application configuration read through viper
// ABOUTME: Merges defaults, an optional config file, .env files and GRIMOIRE_* env vars
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/logger"
)

const (
	AppName   = "grimoire"
	EnvPrefix = "GRIMOIRE"
)

type Config struct {
	Backend          string
	DataDir          string
	OrganizationID   string
	UserID           string
	LogLevel         string
	LogFormat        string
	InteractionLimit int
	Demo             bool
}

// Source tells Load where to look. The zero value reads only env vars and
// defaults.
type Source struct {
	ConfigDirs []string
	EnvFiles   []string
}

// DefaultSource looks for config.{yaml,json,toml} under the XDG config dir
// and a .env in the working directory.
func DefaultSource() Source {
	return Source{
		ConfigDirs: []string{filepath.Join(xdg.ConfigHome, AppName), "."},
		EnvFiles:   []string{".env"},
	}
}

// DefaultDataDir is where persistent backends keep their files.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Load reads configuration. Environment variables win over the config file,
// which wins over defaults. .env files never override variables that are
// already set.
func Load(src Source) (*Config, error) {
	for _, f := range src.EnvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	for _, dir := range src.ConfigDirs {
		v.AddConfigPath(dir)
	}
	if len(src.ConfigDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Backend:          v.GetString("backend"),
		DataDir:          v.GetString("data_dir"),
		OrganizationID:   v.GetString("org"),
		UserID:           v.GetString("user"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
		InteractionLimit: v.GetInt("interaction_limit"),
		Demo:             v.GetBool("demo"),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", string(db.BackendSQLite))
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("org", db.DemoOrganizationID)
	v.SetDefault("user", db.DemoUserID)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("interaction_limit", db.DefaultInteractionLimit)
	v.SetDefault("demo", false)
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	if _, err := db.ParseBackend(c.Backend); err != nil {
		return err
	}
	if c.Backend != string(db.BackendMemory) && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir is required for the %s backend", c.Backend)
	}
	if strings.TrimSpace(c.OrganizationID) == "" {
		return errors.New("organization id is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user id is required")
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %q (valid: auto, console, json)", c.LogFormat)
	}
	if c.InteractionLimit < 1 {
		return fmt.Errorf("interaction limit must be positive, got %d", c.InteractionLimit)
	}
	return nil
}
