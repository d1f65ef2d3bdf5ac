package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeFile writes content to name inside dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default ChecksPath is checks.json", func(t *testing.T) {
		t.Parallel()
		if cfg.ChecksPath != "checks.json" {
			t.Errorf("expected ChecksPath to be 'checks.json', got '%s'", cfg.ChecksPath)
		}
	})

	t.Run("default Format is json", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != FormatJSON {
			t.Errorf("expected Format to be json, got '%s'", cfg.Format)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("no source is selected by default", func(t *testing.T) {
		t.Parallel()
		if cfg.File != "" || cfg.URL != "" {
			t.Error("expected File and URL to be empty")
		}
		if cfg.SourceType() != "" {
			t.Errorf("expected empty source type, got %q", cfg.SourceType())
		}
	})

	t.Run("history is not saved by default", func(t *testing.T) {
		t.Parallel()
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
		if !strings.HasSuffix(cfg.DBDir, AppName) {
			t.Errorf("expected DBDir to end with %q, got %q", AppName, cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	checks := writeFile(t, dir, "checks.json", `["h1"]`)
	page := writeFile(t, dir, "index.html", `<html><h1>Hi</h1></html>`)

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.ChecksPath = checks
		cfg.File = page
		return cfg
	}

	t.Run("valid file config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("valid url config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.File = ""
		cfg.URL = "https://example.com/index.html"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("missing checks file returns MissingFileError", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ChecksPath = filepath.Join(dir, "nope.json")

		err := cfg.Validate()
		if !errors.Is(err, ErrFileNotExist) {
			t.Fatalf("expected ErrFileNotExist, got %v", err)
		}
		var missing *MissingFileError
		if !errors.As(err, &missing) {
			t.Fatalf("expected *MissingFileError, got %T", err)
		}
		want := cfg.ChecksPath + " does not exist. Exiting."
		if err.Error() != want {
			t.Errorf("expected message %q, got %q", want, err.Error())
		}
	})

	t.Run("missing html file returns MissingFileError", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.File = "nonexistent.html"

		err := cfg.Validate()
		if err == nil || err.Error() != "nonexistent.html does not exist. Exiting." {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("file wins over url", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.URL = "not a url"
		if cfg.SourceType() != "file" {
			t.Errorf("expected file source, got %q", cfg.SourceType())
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected url to be ignored, got %v", err)
		}
	})

	t.Run("no source returns ErrNoSource", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.File = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})

	t.Run("relative url returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.File = ""
		cfg.URL = "/index.html"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("ftp url returns ErrInvalidURL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.File = ""
		cfg.URL = "ftp://example.com/index.html"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("unknown format returns ErrInvalidFormat", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Format = "xml"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("markdown and text formats are valid", func(t *testing.T) {
		t.Parallel()
		for _, format := range []string{FormatMarkdown, FormatText} {
			cfg := validConfig()
			cfg.Format = format
			if err := cfg.Validate(); err != nil {
				t.Errorf("format %s: expected no error, got %v", format, err)
			}
		}
	})
}

// TestLoadChecks tests the LoadChecks function.
func TestLoadChecks(t *testing.T) {
	t.Parallel()

	t.Run("loads selectors in file order", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `["h1#title", "div.container", "a"]`)

		checks, err := LoadChecks(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"h1#title", "div.container", "a"}
		if len(checks) != len(want) {
			t.Fatalf("expected %d checks, got %d", len(want), len(checks))
		}
		for i := range want {
			if checks[i] != want[i] {
				t.Errorf("check %d: expected %q, got %q", i, want[i], checks[i])
			}
		}
	})

	t.Run("empty array is valid", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `[]`)

		checks, err := LoadChecks(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(checks) != 0 {
			t.Errorf("expected no checks, got %v", checks)
		}
	})

	t.Run("missing file returns MissingFileError", func(t *testing.T) {
		t.Parallel()
		_, err := LoadChecks(filepath.Join(t.TempDir(), "missing.json"))
		if !errors.Is(err, ErrFileNotExist) {
			t.Errorf("expected ErrFileNotExist, got %v", err)
		}
	})

	t.Run("invalid JSON returns ErrInvalidChecks", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `["h1",`)

		_, err := LoadChecks(path)
		if !errors.Is(err, ErrInvalidChecks) {
			t.Fatalf("expected ErrInvalidChecks, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("expected error to name the file, got %v", err)
		}
	})

	t.Run("object instead of array returns ErrInvalidChecks", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `{"h1": true}`)
		if _, err := LoadChecks(path); !errors.Is(err, ErrInvalidChecks) {
			t.Errorf("expected ErrInvalidChecks, got %v", err)
		}
	})

	t.Run("non-string elements return ErrInvalidChecks", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `["h1", 42]`)
		if _, err := LoadChecks(path); !errors.Is(err, ErrInvalidChecks) {
			t.Errorf("expected ErrInvalidChecks, got %v", err)
		}
	})

	t.Run("null returns ErrInvalidChecks", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "checks.json", `null`)
		if _, err := LoadChecks(path); !errors.Is(err, ErrInvalidChecks) {
			t.Errorf("expected ErrInvalidChecks, got %v", err)
		}
	})
}

// TestLoadSettingsFile tests the LoadSettingsFile function.
func TestLoadSettingsFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrSettingsNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		s, err := LoadSettingsFile("/nonexistent/path/.htmlgrader")
		if !errors.Is(err, ErrSettingsNotFound) {
			t.Fatalf("expected ErrSettingsNotFound, got: %v", err)
		}
		if s != nil {
			t.Error("expected nil settings when file not found")
		}
	})

	t.Run("loads valid YAML settings", func(t *testing.T) {
		t.Parallel()

		content := `userAgent: "custom-agent/2.0"
timeout: 10s
proxy: socks5://127.0.0.1:9050
maxBodySize: 1024
headers:
  Authorization: "Bearer token"
`
		path := writeFile(t, t.TempDir(), ".htmlgrader", content)

		s, err := LoadSettingsFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.UserAgent != "custom-agent/2.0" {
			t.Errorf("expected user agent 'custom-agent/2.0', got %q", s.UserAgent)
		}
		if s.Timeout != 10*time.Second {
			t.Errorf("expected timeout 10s, got %v", s.Timeout)
		}
		if s.Proxy != "socks5://127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", s.Proxy)
		}
		if s.MaxBodySize != 1024 {
			t.Errorf("expected max body size 1024, got %d", s.MaxBodySize)
		}
		if s.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header, got %v", s.Headers)
		}
	})

	t.Run("empty file yields empty settings", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), ".htmlgrader", "")
		s, err := LoadSettingsFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Headers == nil {
			t.Error("expected Headers to be initialized")
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), ".htmlgrader", "headers: [unclosed")
		if _, err := LoadSettingsFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindSettingsFile tests the FindSettingsFile function.
func TestFindSettingsFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path when it exists", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "custom.yaml", "timeout: 5s\n")
		if got := FindSettingsFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty string for missing explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindSettingsFile("/nonexistent/custom.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestApplySettings tests merging settings into a Config.
func TestApplySettings(t *testing.T) {
	t.Parallel()

	settings := &Settings{
		UserAgent:   "from-settings",
		Timeout:     5 * time.Second,
		Proxy:       "socks5://127.0.0.1:9050",
		MaxBodySize: 2048,
		Headers: map[string]string{
			"Authorization": "Bearer settings",
			"X-Extra":       "1",
		},
	}

	t.Run("nil settings is a no-op", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplySettings(nil, nil)
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", cfg.UserAgent)
		}
	})

	t.Run("settings override defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplySettings(settings, nil)

		if cfg.UserAgent != "from-settings" {
			t.Errorf("expected user agent from settings, got %q", cfg.UserAgent)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", cfg.Timeout)
		}
		if cfg.Proxy != "socks5://127.0.0.1:9050" {
			t.Errorf("expected proxy from settings, got %q", cfg.Proxy)
		}
		if cfg.MaxBodySize != 2048 {
			t.Errorf("expected max body 2048, got %d", cfg.MaxBodySize)
		}
		if len(cfg.Headers) != 2 {
			t.Errorf("expected 2 headers, got %v", cfg.Headers)
		}
	})

	t.Run("explicit flags win over settings", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.UserAgent = "from-flag"
		cfg.Timeout = time.Minute
		cfg.Headers["Authorization"] = "Bearer flag"

		cfg.ApplySettings(settings, map[string]bool{"user-agent": true, "timeout": true})

		if cfg.UserAgent != "from-flag" {
			t.Errorf("expected flag user agent, got %q", cfg.UserAgent)
		}
		if cfg.Timeout != time.Minute {
			t.Errorf("expected flag timeout, got %v", cfg.Timeout)
		}
		if cfg.Headers["Authorization"] != "Bearer flag" {
			t.Errorf("expected flag header to win, got %q", cfg.Headers["Authorization"])
		}
		if cfg.Headers["X-Extra"] != "1" {
			t.Errorf("expected settings header to be merged, got %v", cfg.Headers)
		}
	})
}
