// Package config loads and persists the tool's on-disk settings. Callers
// load once and inject the struct; there is no package-level state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the persisted settings. Effective values layer flags and
// environment variables on top; that resolution happens at the CLI
// boundary, not here.
type Config struct {
	Email             string `json:"email,omitempty"`
	TavilyAPIKey      string `json:"tavily_api_key,omitempty"`
	Institution       string `json:"institution,omitempty"`
	InstitutionDomain string `json:"institution_domain,omitempty"`
}

const (
	configDirName  = "oat"
	configFileName = "config.json"
	legacyFileName = ".oat.json"
)

// ErrUnknownKey is returned for configuration keys that do not exist.
var ErrUnknownKey = errors.New("unknown configuration key")

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{"email", "tavily_api_key", "institution", "institution_domain"}
}

// Path returns the config file location: $XDG_CONFIG_HOME/oat/config.json,
// defaulting to ~/.config/oat/config.json. A legacy ~/.oat.json is used
// only when it exists and the default does not.
func Path() string {
	def := defaultPath()
	if def == "" {
		return legacyPath()
	}
	if _, err := os.Stat(def); err == nil {
		return def
	}
	if legacy := legacyPath(); legacy != "" {
		if _, err := os.Stat(legacy); err == nil {
			return legacy
		}
	}
	return def
}

func defaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDirName, configFileName)
}

func legacyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, legacyFileName)
}

// Load reads the configuration at path. A missing file yields a zero
// config; a file that exists but does not parse is an error rather than a
// silent reset, so a typo cannot wipe saved keys.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration atomically: a temp file in the target
// directory, then a rename. The file carries API keys, so it stays 0600.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

// Get returns the value stored under a key. Dashes normalize to
// underscores, so "tavily-api-key" works; "tavily-key" is a shorthand.
func (c Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case "email":
		return c.Email, nil
	case "tavily_api_key", "tavily_key":
		return c.TavilyAPIKey, nil
	case "institution":
		return c.Institution, nil
	case "institution_domain":
		return c.InstitutionDomain, nil
	}
	return "", fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
}

// Set stores a value under a key, with the same normalization as Get.
func (c *Config) Set(key, value string) error {
	switch normalizeKey(key) {
	case "email":
		c.Email = value
	case "tavily_api_key", "tavily_key":
		c.TavilyAPIKey = value
	case "institution":
		c.Institution = value
	case "institution_domain":
		c.InstitutionDomain = value
	default:
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return nil
}
