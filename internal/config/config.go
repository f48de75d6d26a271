package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/learnlog/internal/store"
)

//go:embed config.cue
var configCUE string

// Environment variables that override file settings.
const (
	EnvHome   = "LEARNLOG_HOME"
	EnvConfig = "LEARNLOG_CONFIG"
	EnvDB     = "LEARNLOG_DB"
)

const (
	dirName        = ".learnlog"
	configFileName = "config.yaml"
	dbFileName     = "learnings.db"
)

// Config is the resolved configuration. Zero fields in the file are filled
// from Default.
type Config struct {
	Database Database `yaml:"database"`
	Review   Review   `yaml:"review"`
	Export   Export   `yaml:"export"`
	Log      Log      `yaml:"log"`
}

// Database selects the store file and driver.
type Database struct {
	Path          string `yaml:"path"`
	Driver        string `yaml:"driver"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// Review sets due-for-review defaults.
type Review struct {
	Staleness Duration `yaml:"staleness"`
	Limit     int      `yaml:"limit"`
}

// Export sets export defaults.
type Export struct {
	Days       int `yaml:"days"`
	MaxPerKind int `yaml:"max_per_kind"`
}

// Log configures logging. File, when set, receives log output instead of
// stderr so editor hooks stay silent.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Duration is a time.Duration written as a Go duration string ("72h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// HomeDir returns $LEARNLOG_HOME, or ~/.learnlog.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Default returns the built-in configuration rooted at home.
func Default(home string) Config {
	return Config{
		Database: Database{
			Path:          filepath.Join(home, dbFileName),
			Driver:        store.DriverPure,
			BusyTimeoutMS: int(store.DefaultBusyTimeout / time.Millisecond),
		},
		Review: Review{
			Staleness: Duration(72 * time.Hour),
			Limit:     20,
		},
		Export: Export{
			Days:       7,
			MaxPerKind: 50,
		},
		Log: Log{Level: "info"},
	}
}

// Load resolves the configuration.
//
// path is the config file; when empty, $LEARNLOG_CONFIG and then
// <home>/config.yaml are tried, and a missing file means defaults. An
// explicit path must exist. $LEARNLOG_DB overrides database.path.
func Load(path string) (Config, error) {
	home, err := HomeDir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(home)

	explicit := path != ""
	if !explicit {
		if path = os.Getenv(EnvConfig); path != "" {
			explicit = true
		} else {
			path = filepath.Join(home, configFileName)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, path, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if db := os.Getenv(EnvDB); db != "" {
		cfg.Database.Path = db
	}
	return cfg, nil
}

// Parse validates data against the config schema and decodes it over cfg.
// Keys absent from data keep their value in cfg.
func Parse(data []byte, filename string, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := validate(data, filename); err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", filename, err)
	}
	return nil
}

func validate(data []byte, filename string) error {
	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(configCUE, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}
	if err := schema.LookupPath(cue.ParsePath("#Config")).Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return nil
}

// EnsureDir creates the directory holding the database.
func (c Config) EnsureDir() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// StoreOptions returns the store options for the database settings.
func (c Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithDriver(c.Database.Driver),
		store.WithBusyTimeout(time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond),
	}
}

// LogLevel returns the configured slog level. Unknown names map to Info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
