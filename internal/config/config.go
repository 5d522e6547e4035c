// Package config loads the application's TOML configuration: where the state
// database lives, where the shell server listens, how verbose logging is, and
// which settings to seed into a fresh state.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"

	"github.com/tonimelisma/switchboard/internal/browser"
)

// maxSuggestionDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxSuggestionDistance = 3

// Config is the parsed application configuration.
type Config struct {
	// DBPath is the SQLite database location. "~" expands to the home
	// directory; ":memory:" runs ephemeral.
	DBPath string `toml:"db_path"`

	// Listen is the host:port the shell websocket server binds to.
	Listen string `toml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Settings seeds the state's settings table on first run. Values must
	// be TOML booleans, integers, or strings.
	Settings map[string]any `toml:"settings"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		DBPath:   "~/.local/share/switchboard/state.db",
		Listen:   "127.0.0.1:8040",
		LogLevel: "info",
		Settings: map[string]any{},
	}
}

// DefaultPath returns the conventional config file location. When the home
// directory cannot be determined the relative fallback keeps the daemon
// usable in minimal environments.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "switchboard.toml"
	}

	return filepath.Join(home, ".config", "switchboard", "config.toml")
}

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are treated as fatal errors with "did you
// mean?" suggestions — silently ignoring a typo in a config file leads to
// hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. This supports the zero-config
// first-run experience.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Validate checks field-level constraints.
func Validate(cfg *Config) error {
	var errs []error

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", cfg.LogLevel))
	}

	if cfg.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}

	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		errs = append(errs, fmt.Errorf("listen must be host:port: %w", err))
	}

	if _, err := cfg.SeedSettings(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SeedSettings converts the [settings] table into typed setting values.
// Only booleans, integers, and strings are representable.
func (c *Config) SeedSettings() (map[string]browser.SettingValue, error) {
	out := make(map[string]browser.SettingValue, len(c.Settings))
	for key, raw := range c.Settings {
		switch v := raw.(type) {
		case bool:
			out[key] = browser.BoolSetting(v)
		case int64:
			out[key] = browser.IntSetting(v)
		case string:
			out[key] = browser.TextSetting(v)
		default:
			return nil, fmt.Errorf("setting %q has unsupported type %T (want bool, integer, or string)", key, raw)
		}
	}

	return out, nil
}

// ResolvedDBPath expands a leading "~" in DBPath to the user's home
// directory.
func (c *Config) ResolvedDBPath() (string, error) {
	if !strings.HasPrefix(c.DBPath, "~") {
		return c.DBPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(c.DBPath, "~")), nil
}

// knownKeys are the valid top-level keys in the config file.
var knownKeys = map[string]bool{
	"db_path": true, "listen": true, "log_level": true, "settings": true,
}

// knownKeysList is the sorted slice form of knownKeys for edit-distance
// matching. Sorted for deterministic suggestions when two candidates have
// the same distance.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns an
// error with "did you mean?" suggestions for each unknown key. Keys under
// [settings] are free-form and never flagged.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	for _, key := range md.Undecoded() {
		keyStr := key.String()
		topKey := strings.SplitN(keyStr, ".", 2)[0]
		if topKey == "settings" {
			continue
		}

		if suggestion := closestKnownKey(topKey); suggestion != "" {
			errs = append(errs, fmt.Errorf("unknown config key %q (did you mean %q?)", keyStr, suggestion))
		} else {
			errs = append(errs, fmt.Errorf("unknown config key %q", keyStr))
		}
	}

	return errors.Join(errs...)
}

func closestKnownKey(unknown string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, known := range knownKeysList {
		if d := levenshtein.ComputeDistance(unknown, known); d < bestDistance {
			best = known
			bestDistance = d
		}
	}

	return best
}
