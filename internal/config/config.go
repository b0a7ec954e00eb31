// Package config loads the settings shared by the pagebuilder server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up inside Dir().
const FileName = "config.yaml"

// Config holds the outer surface settings.
type Config struct {
	Addr   string       `yaml:"addr"`
	Store  StoreConfig  `yaml:"store"`
	Mirror string       `yaml:"mirror_path"`
	Editor EditorConfig `yaml:"editor"`
	Log    LogConfig    `yaml:"log"`
	Theme  string       `yaml:"theme"`
}

// StoreConfig selects and configures the page store.
type StoreConfig struct {
	// Driver is memory, sqlite, postgres, mysql or mongo.
	Driver     string        `yaml:"driver"`
	DSN        string        `yaml:"dsn"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
}

// EditorConfig tunes the canvas controller.
type EditorConfig struct {
	RestorePolicy string `yaml:"restore_policy"`
	HistoryDepth  int    `yaml:"history_depth"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr: ":8080",
		Store: StoreConfig{
			Driver:     "memory",
			Database:   "pagebuilder",
			Collection: "pages",
			Timeout:    5 * time.Second,
			Retries:    1,
		},
		Editor: EditorConfig{RestorePolicy: "append", HistoryDepth: 100},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// Dir returns the pagebuilder configuration directory.
//
// Resolution:
//   - $PAGEBUILDER_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/pagebuilder if set
//   - %AppData%/pagebuilder on Windows
//   - ~/.config/pagebuilder elsewhere
func Dir() string {
	if dir := os.Getenv("PAGEBUILDER_CONFIG_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pagebuilder")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "pagebuilder")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pagebuilder")
}

// LoadEnvFiles loads .env.local, .env and Dir()/env. Variables already set
// in the environment are never overwritten and missing files are skipped.
func LoadEnvFiles() {
	files := []string{".env.local", ".env"}
	if dir := Dir(); dir != "" {
		files = append(files, filepath.Join(dir, "env"))
	}
	for _, file := range files {
		_ = godotenv.Load(file)
	}
}

// Load reads path, or Dir()/config.yaml when path is empty, over Default()
// and applies PAGEBUILDER_* overrides. A missing default file is not an
// error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if dir := Dir(); dir != "" {
			path = filepath.Join(dir, FileName)
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PAGEBUILDER_ADDR":             &c.Addr,
		"PAGEBUILDER_STORE_DRIVER":     &c.Store.Driver,
		"PAGEBUILDER_STORE_DSN":        &c.Store.DSN,
		"PAGEBUILDER_STORE_DATABASE":   &c.Store.Database,
		"PAGEBUILDER_STORE_COLLECTION": &c.Store.Collection,
		"PAGEBUILDER_MIRROR_PATH":      &c.Mirror,
		"PAGEBUILDER_EDITOR_RESTORE":   &c.Editor.RestorePolicy,
		"PAGEBUILDER_LOG_LEVEL":        &c.Log.Level,
		"PAGEBUILDER_LOG_FORMAT":       &c.Log.Format,
		"PAGEBUILDER_LOG_PATH":         &c.Log.Path,
		"PAGEBUILDER_THEME":            &c.Theme,
	}
	for name, target := range strs {
		if value, ok := lookup(name); ok && value != "" {
			*target = value
		}
	}
	if value, ok := lookup("PAGEBUILDER_STORE_TIMEOUT"); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: PAGEBUILDER_STORE_TIMEOUT: %w", err)
		}
		c.Store.Timeout = d
	}
	ints := map[string]*int{
		"PAGEBUILDER_STORE_RETRIES": &c.Store.Retries,
		"PAGEBUILDER_HISTORY_DEPTH": &c.Editor.HistoryDepth,
	}
	for name, target := range ints {
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*target = n
	}
	return nil
}

var drivers = []string{"memory", "sqlite", "postgres", "mysql", "mongo"}

// Validate checks the store driver and numeric bounds.
func (c Config) Validate() error {
	driver := strings.ToLower(c.Store.Driver)
	known := false
	for _, d := range drivers {
		if d == driver {
			known = true
		}
	}
	switch {
	case !known:
		return fmt.Errorf("config: unknown store driver %q (want one of %s)", c.Store.Driver, strings.Join(drivers, ", "))
	case driver != "memory" && c.Store.DSN == "":
		return fmt.Errorf("config: store driver %s needs a dsn", driver)
	case c.Store.Timeout < 0 || c.Store.Retries < 0:
		return errors.New("config: store timeout and retries must not be negative")
	}
	return nil
}
