// Package config loads the budget command's settings from a TOML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/howeyc/budget"
	"github.com/pelletier/go-toml"
	"golang.org/x/text/language"
)

// Environment variables consulted by Load.
const (
	EnvConfig   = "BUDGET_CONFIG"
	EnvDataFile = "BUDGET_DATA_FILE"
	EnvLogLevel = "BUDGET_LOG_LEVEL"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var ErrInvalidColorMode = errors.New("color must be auto, always or never")

// Template holds the text used for empty fields of a recurring rule.
type Template struct {
	Title       string `toml:"title"`
	Category    string `toml:"category"`
	Bank        string `toml:"bank"`
	AccountType string `toml:"account_type"`
}

// Theme holds the "#rrggbb" colors of the debts table.
type Theme struct {
	Receive string `toml:"receive"`
	Give    string `toml:"give"`
}

type Config struct {
	DataFile      string   `toml:"data_file"`
	LogLevel      string   `toml:"log_level"`
	Color         string   `toml:"color"`
	Collation     string   `toml:"collation"`
	MaxIterations int      `toml:"max_iterations"`
	Defaults      Template `toml:"defaults"`
	Theme         Theme    `toml:"theme"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataFile:      "budget.json",
		LogLevel:      "info",
		Color:         ColorAuto,
		Collation:     "fr",
		MaxIterations: budget.DefaultMaxIterations,
		Defaults: Template{
			Title:       budget.DefaultTemplate.Title,
			Category:    budget.DefaultTemplate.Category,
			Bank:        budget.DefaultTemplate.Bank,
			AccountType: budget.DefaultTemplate.AccountType,
		},
		Theme: Theme{
			Receive: "#2e7d32",
			Give:    "#c62828",
		},
	}
}

// DefaultPath returns the file Load reads when no path is given and
// BUDGET_CONFIG is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "budget", "config.toml")
}

// Load builds the configuration from the built-in defaults, the TOML file
// and the environment, in that order. An explicit path, given directly or
// through BUDGET_CONFIG, must exist; the default path may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if path = os.Getenv(EnvConfig); path != "" {
			explicit = true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.merge(data); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, err
		}
	}

	if v := os.Getenv(EnvDataFile); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return cfg, cfg.Validate()
}

// Parse decodes a TOML document on top of the built-in defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.merge(data); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// merge overwrites the fields set in the document.
func (c *Config) merge(data []byte) error {
	var f Config
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}

	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&c.DataFile, f.DataFile)
	set(&c.LogLevel, f.LogLevel)
	set(&c.Color, f.Color)
	set(&c.Collation, f.Collation)
	set(&c.Defaults.Title, f.Defaults.Title)
	set(&c.Defaults.Category, f.Defaults.Category)
	set(&c.Defaults.Bank, f.Defaults.Bank)
	set(&c.Defaults.AccountType, f.Defaults.AccountType)
	set(&c.Theme.Receive, f.Theme.Receive)
	set(&c.Theme.Give, f.Theme.Give)
	if f.MaxIterations > 0 {
		c.MaxIterations = f.MaxIterations
	}
	return nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%q: %w", c.Color, ErrInvalidColorMode)
	}
	if _, err := language.Parse(c.Collation); err != nil {
		return fmt.Errorf("collation %q: %w", c.Collation, err)
	}
	return nil
}

// TemplateDefaults converts the [defaults] table for the scheduler.
func (c Config) TemplateDefaults() budget.Defaults {
	return budget.Defaults{
		Title:       c.Defaults.Title,
		Category:    c.Defaults.Category,
		Bank:        c.Defaults.Bank,
		AccountType: c.Defaults.AccountType,
	}
}

// Language returns the collation tag, or French if it does not parse.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Collation)
	if err != nil {
		return language.French
	}
	return tag
}
