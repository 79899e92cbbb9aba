package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathUsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "oat", "config.json")
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestPathLegacyFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	legacy := filepath.Join(home, ".oat.json")
	if err := os.WriteFile(legacy, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := Path(); got != legacy {
		t.Errorf("Path() = %q, want legacy %q", got, legacy)
	}

	// Once the default exists it wins over the legacy file.
	def := filepath.Join(home, ".config", "oat", "config.json")
	if err := os.MkdirAll(filepath.Dir(def), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(def, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Path(); got != def {
		t.Errorf("Path() = %q, want default %q", got, def)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("cfg = %+v, want zero config", cfg)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("corrupt config must error, not silently reset")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := Config{
		Email:             "dept@example.edu",
		TavilyAPIKey:      "tvly-secret",
		Institution:       "Colorado State University",
		InstitutionDomain: "colostate.edu",
	}

	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := Save(path, Config{Email: "a@b.edu"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want only config.json", names)
	}
}

func TestGetSet(t *testing.T) {
	var cfg Config

	if err := cfg.Set("email", "a@b.edu"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("tavily-api-key", "tvly-x"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set(" Institution ", "CSU"); err != nil {
		t.Fatal(err)
	}

	if v, _ := cfg.Get("email"); v != "a@b.edu" {
		t.Errorf("email = %q", v)
	}
	if v, _ := cfg.Get("tavily_api_key"); v != "tvly-x" {
		t.Errorf("tavily_api_key = %q", v)
	}
	if v, _ := cfg.Get("tavily-key"); v != "tvly-x" {
		t.Errorf("tavily-key shorthand = %q", v)
	}
	if v, _ := cfg.Get("institution"); v != "CSU" {
		t.Errorf("institution = %q", v)
	}
}

func TestGetSetUnknownKey(t *testing.T) {
	var cfg Config

	if err := cfg.Set("nope", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set error = %v, want ErrUnknownKey", err)
	}
	if _, err := cfg.Get("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get error = %v, want ErrUnknownKey", err)
	}
}
