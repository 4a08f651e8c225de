package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ktanaka/shucal/internal/schedule"
)

// Config is the top-level application configuration. Values come from the
// YAML config file, then SHUCAL_* environment variables, then CLI flags.
type Config struct {
	// StoreURL is the base URL of the remote schedule store API.
	StoreURL string `yaml:"store_url" envconfig:"STORE_URL"`

	// OwnerID is the opaque user id whose schedules are shown. The last
	// used id is written back here so it survives restarts.
	OwnerID string `yaml:"owner_id" envconfig:"OWNER_ID"`

	// Locale selects the display label set: "ja" or "ko".
	Locale string `yaml:"locale" envconfig:"LOCALE"`

	// LocalStore is an optional path to a JSON schedule file used instead
	// of (or merged with) the remote store.
	LocalStore string `yaml:"local_store" envconfig:"LOCAL_STORE"`

	// LogFile receives zap output; the terminal belongs to the TUI.
	LogFile string `yaml:"log_file" envconfig:"LOG_FILE"`

	Notify NotifyConfig `yaml:"notify"`
}

// NotifyConfig controls the deadline reminder runner.
type NotifyConfig struct {
	// Cron is the sweep schedule in cron syntax.
	Cron string `yaml:"cron" envconfig:"NOTIFY_CRON"`

	// Offsets are the days-before-event marks that trigger a reminder.
	Offsets []int `yaml:"offsets" envconfig:"NOTIFY_OFFSETS"`

	// StateFile records already-sent reminders so each fires once.
	StateFile string `yaml:"state_file" envconfig:"NOTIFY_STATE_FILE"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		StoreURL: "http://localhost:8000/api",
		OwnerID:  "",
		Locale:   string(schedule.LocaleJA),
		LogFile:  filepath.Join(stateDir(), "shucal.log"),
		Notify: NotifyConfig{
			Cron:      "0 8 * * *",
			Offsets:   []int{10, 5, 3, 1},
			StateFile: filepath.Join(stateDir(), "notified.json"),
		},
	}
}

// Normalize fills missing or invalid values with defaults so older or
// partial config files still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.StoreURL == "" {
		c.StoreURL = def.StoreURL
	}
	switch c.Locale {
	case string(schedule.LocaleJA), string(schedule.LocaleKO):
	default:
		c.Locale = string(schedule.LocaleJA)
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.Notify.Cron == "" {
		c.Notify.Cron = def.Notify.Cron
	}
	if len(c.Notify.Offsets) == 0 {
		c.Notify.Offsets = append([]int(nil), def.Notify.Offsets...)
	}
	if c.Notify.StateFile == "" {
		c.Notify.StateFile = def.Notify.StateFile
	}
}

// DefaultPath returns the config file location, honoring SHUCAL_CONFIG and
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if p := os.Getenv("SHUCAL_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shucal", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shucal", "config.yaml")
}

// Load reads the config at path, creating a default file on first run, and
// applies SHUCAL_* environment overrides on top.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		cfg = DefaultConfig()
		// Best effort: a read-only home should not stop the program.
		_ = Save(path, cfg)
	default:
		return nil, err
	}

	cfg.Normalize()

	if err := envconfig.Process("shucal", cfg); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".shucal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// SaveOwner persists the last-used owner id back to the config file, the
// only client-side state kept between runs.
func SaveOwner(path string, cfg *Config, owner string) error {
	cfg.OwnerID = owner
	if path == "" {
		path = DefaultPath()
	}
	return Save(path, cfg)
}

func stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "shucal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "shucal")
}
