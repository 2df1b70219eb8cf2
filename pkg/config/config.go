// Package config loads flowcanvas settings from a TOML file.
//
// Every section has defaults, so an empty or missing file is valid:
//
//	[history]
//	limit = 100
//	grouped = ["MoveElement"]
//
//	[storage]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Keys that are not listed here are rejected by [Load] so that typos do
// not silently fall back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/history"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	History HistoryConfig `toml:"history"`
	Debug   DebugConfig   `toml:"debug"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Layout  LayoutConfig  `toml:"layout"`
}

// HistoryConfig configures the undo/redo manager of every document.
type HistoryConfig struct {
	Limit     int      `toml:"limit"`
	Grouped   []string `toml:"grouped"`
	Blacklist []string `toml:"blacklist"`
}

// DebugConfig enables the store assertion decorator.
type DebugConfig struct {
	AssertState     bool `toml:"assert_state"`
	AssertRoundTrip bool `toml:"assert_round_trip"`
}

// StorageConfig selects and configures the document store backend.
type StorageConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LayoutConfig configures free-form placement.
type LayoutConfig struct {
	ColumnWidth float64 `toml:"column_width"`
	RowHeight   float64 `toml:"row_height"`
	OriginX     float64 `toml:"origin_x"`
	OriginY     float64 `toml:"origin_y"`
}

// Default returns the built-in settings.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		History: HistoryConfig{
			Grouped:   typeNames(history.DefaultGrouped()),
			Blacklist: typeNames(history.DefaultBlacklist()),
		},
		Storage: StorageConfig{
			Backend:         BackendFile,
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "flowcanvas:flow:",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "flowcanvas",
			MongoCollection: "flows",
		},
		Server: ServerConfig{Addr: ":8080"},
		Layout: LayoutConfig{
			ColumnWidth: lo.ColumnWidth,
			RowHeight:   lo.RowHeight,
			OriginX:     lo.OriginX,
			OriginY:     lo.OriginY,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/flowcanvas/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowcanvas", "config.toml")
}

// Load reads path over the defaults. A missing file at the default path
// yields the defaults; a missing file anywhere else is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and action type names.
func (c Config) Validate() error {
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0, got %d", c.History.Limit)
	}
	for _, name := range slices.Concat(c.History.Grouped, c.History.Blacklist) {
		t, err := action.ParseType(name)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		if t.IsHistory() {
			return fmt.Errorf("history: %s cannot be grouped or blacklisted", t)
		}
	}
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("storage.backend must be one of file, memory, redis, mongo, got %q", c.Storage.Backend)
	}
	if c.Layout.ColumnWidth < 0 || c.Layout.RowHeight < 0 {
		return fmt.Errorf("layout spacing must not be negative")
	}
	return nil
}

// HistoryOptions converts the history section into manager options.
func (c Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithLimit(c.History.Limit),
		history.WithGrouped(parseTypes(c.History.Grouped)...),
		history.WithBlacklist(parseTypes(c.History.Blacklist)...),
	}
}

// LayoutOptions converts the layout section into conversion options. Zero
// values fall back to the layout defaults.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		ColumnWidth: c.Layout.ColumnWidth,
		RowHeight:   c.Layout.RowHeight,
		OriginX:     c.Layout.OriginX,
		OriginY:     c.Layout.OriginY,
	}
}

func typeNames(types []action.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// parseTypes skips names Validate would reject.
func parseTypes(names []string) []action.Type {
	out := make([]action.Type, 0, len(names))
	for _, n := range names {
		if t, err := action.ParseType(n); err == nil {
			out = append(out, t)
		}
	}
	return out
}
