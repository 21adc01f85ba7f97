package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML. Environment
// variables and CLI flags override it at runtime; neither is written back.
//
// config_version: bump when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Calendar      CalendarConfig `yaml:"calendar"`
	Store         StoreConfig    `yaml:"store"`
	Web           WebConfig      `yaml:"web"`
	TUI           TUIConfig      `yaml:"tui"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type CalendarConfig struct {
	// CarryYear moves the year along when month navigation wraps around.
	// false reproduces the legacy picker, which kept the year.
	CarryYear bool `yaml:"carry_year"`
}

type StoreConfig struct {
	// Path of the SQLite database holding field values. Empty means
	// <user data dir>/datepick/fields.sqlite.
	Path string `yaml:"path"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
	Open bool   `yaml:"open"`
}

type TUIConfig struct {
	// Fields are the target fields shown in the form (and on the web page).
	Fields []string `yaml:"fields"`
	// Theme is light|dark|auto.
	Theme string `yaml:"theme"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Calendar:      CalendarConfig{CarryYear: true},
		Web:           WebConfig{Addr: "127.0.0.1:3336", Open: true},
		TUI:           TUIConfig{Fields: []string{"start", "end"}, Theme: "auto"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir = "DATEPICK_CONFIG_DIR"
	EnvDB        = "DATEPICK_DB"
	EnvAddr      = "DATEPICK_ADDR"
	EnvCarryYear = "DATEPICK_CARRY_YEAR"
	EnvFields    = "DATEPICK_FIELDS"
	EnvTheme     = "DATEPICK_TUI_THEME"
	EnvLogLevel  = "DATEPICK_LOG_LEVEL"
	EnvLogFormat = "DATEPICK_LOG_FORMAT"
	EnvLogFile   = "DATEPICK_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	if d := strings.TrimSpace(os.Getenv(EnvConfigDir)); d != "" {
		return filepath.Join(d, "config.yaml"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "datepick", "config.yaml"), nil
}

// DefaultDBPath is where the field store lives when store.path is empty.
func DefaultDBPath() (string, error) {
	if d := strings.TrimSpace(os.Getenv(EnvConfigDir)); d != "" {
		return filepath.Join(d, "fields.sqlite"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "datepick", "fields.sqlite"), nil
}

// Load reads the config at path (missing file is fine), applies defaults and
// then environment overrides. An empty path means Path().
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg AppConfig) error {
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ResolveDBPath returns the configured database path or the default.
func (c AppConfig) ResolveDBPath() (string, error) {
	if p := strings.TrimSpace(c.Store.Path); p != "" {
		return p, nil
	}
	return DefaultDBPath()
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Web.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCarryYear)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Calendar.CarryYear = b
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFields)); v != "" {
		cfg.TUI.Fields = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.TUI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func normalize(cfg *AppConfig) {
	fields := make([]string, 0, len(cfg.TUI.Fields))
	seen := map[string]bool{}
	for _, f := range cfg.TUI.Fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		fields = Defaults().TUI.Fields
	}
	cfg.TUI.Fields = fields
	cfg.TUI.Theme = strings.ToLower(strings.TrimSpace(cfg.TUI.Theme))
	if cfg.Web.Addr = strings.TrimSpace(cfg.Web.Addr); cfg.Web.Addr == "" {
		cfg.Web.Addr = Defaults().Web.Addr
	}
}
