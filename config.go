package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	configFileName = "pinboard.toml"
	envPrefix      = "PINBOARD_"
)

type Config struct {
	SaveDirectory   string  `koanf:"save_directory"`
	Confirmations   bool    `koanf:"confirmations"`
	HistoryLimit    int     `koanf:"history_limit" validate:"gte=1"`
	ConnectorOffset float64 `koanf:"connector_offset"`
	CellWidth       float64 `koanf:"cell_width" validate:"gt=0"`
	CellHeight      float64 `koanf:"cell_height" validate:"gt=0"`
	LogFile         string  `koanf:"log_file"`
	LogLevel        string  `koanf:"log_level" validate:"oneof=debug info warn error"`
	Open            string  `koanf:"open"`
}

func defaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"save_directory":   "",
		"confirmations":    true,
		"history_limit":    defaultHistoryLimit,
		"connector_offset": defaultConnectorOffset,
		"cell_width":       defaultCellWidth,
		"cell_height":      defaultCellHeight,
		"log_file":         "",
		"log_level":        "info",
		"open":             "",
	}
}

// newFlagSet declares the command line. Flag names use dashes; they map onto
// the underscore config keys.
func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("pinboard", pflag.ContinueOnError)
	f.String("save-directory", "", "directory exports are written to")
	f.Bool("confirmations", true, "ask before deleting a node")
	f.Int("history-limit", defaultHistoryLimit, "number of undo steps kept")
	f.Float64("connector-offset", defaultConnectorOffset, "how far connectors bow away from the straight line")
	f.String("log-file", "", "write a debug log here")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("open", "", "whiteboard JSON file to load at startup")
	return f
}

// loadConfig merges defaults, ~/.pinboard.toml, ./pinboard.toml, PINBOARD_*
// environment variables and flags, later sources winning.
func loadConfig(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(defaultSettings()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range configFiles() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(fl.Name, "-", "_"), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SaveDirectory = expandPath(cfg.SaveDirectory)
	cfg.LogFile = expandPath(cfg.LogFile)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", formatValidationError(err))
	}
	return &cfg, nil
}

func configFiles() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+configFileName))
	}
	return append(paths, configFileName)
}

func expandPath(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
