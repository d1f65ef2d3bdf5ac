package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is the default settings file name.
const DefaultSettingsFile = ".htmlgrader"

// Settings holds HTTP defaults loaded from the YAML settings file.
// Zero values mean "not set" and leave the corresponding Config field alone.
type Settings struct {
	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout overrides the fetch timeout (e.g. "10s", "1m").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is a proxy URL such as socks5://127.0.0.1:9050.
	Proxy string `yaml:"proxy,omitempty"`

	// MaxBodySize overrides the maximum body size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Headers are extra HTTP headers sent with every fetch.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoadSettingsFile loads settings from a YAML file.
// If the file does not exist, it returns ErrSettingsNotFound.
// Callers decide whether that is fatal based on whether the path was
// explicitly specified by the user.
func LoadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided settings path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if s.Headers == nil {
		s.Headers = make(map[string]string)
	}

	return &s, nil
}

// FindSettingsFile searches for the settings file in the following order:
// 1. If settingsPath is specified, use it directly
// 2. Look for .htmlgrader in the current directory
// 3. Look for .htmlgrader in the user's home directory
//
// Returns the path to the settings file if found, or empty string if not found.
func FindSettingsFile(settingsPath string) string {
	if settingsPath != "" {
		if _, err := os.Stat(settingsPath); err == nil {
			return settingsPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdSettings := filepath.Join(cwd, DefaultSettingsFile)
		if _, err := os.Stat(cwdSettings); err == nil {
			return cwdSettings
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeSettings := filepath.Join(home, DefaultSettingsFile)
		if _, err := os.Stat(homeSettings); err == nil {
			return homeSettings
		}
	}

	return ""
}

// ApplySettings copies non-zero settings into c. Fields named in explicit
// were set on the command line and are left untouched. Headers are merged;
// a header already present in c wins.
func (c *Config) ApplySettings(s *Settings, explicit map[string]bool) {
	if s == nil {
		return
	}
	if s.UserAgent != "" && !explicit["user-agent"] {
		c.UserAgent = s.UserAgent
	}
	if s.Timeout > 0 && !explicit["timeout"] {
		c.Timeout = s.Timeout
	}
	if s.Proxy != "" && !explicit["proxy"] {
		c.Proxy = s.Proxy
	}
	if s.MaxBodySize > 0 {
		c.MaxBodySize = s.MaxBodySize
	}
	if len(s.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range s.Headers {
			if _, ok := c.Headers[k]; !ok {
				c.Headers[k] = v
			}
		}
	}
}
