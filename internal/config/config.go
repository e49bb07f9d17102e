// Package config loads the optional YAML configuration file.
//
// A config file lets operators keep the target URL, output prefix and
// browser settings next to a project instead of retyping flags. Values from
// the file sit below environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-authpdf/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength    = 2048 // Browser limit
	MaxAuthLength   = 8192 // Typical server header size limit
	MaxOutputLength = 255  // Common filename limit
	MaxBinLength    = 4096 // PATH_MAX
	MaxEngineLength = 20
)

// MaxFileSize limits config input to prevent memory exhaustion (1MB).
const MaxFileSize = 1 << 20

// configDirName is the per-user directory searched for named configs.
const configDirName = "go-authpdf"

// validEngines mirrors the engines the exporter accepts.
var validEngines = []string{"rod", "chromedp"}

// Config holds every value the export run can take from a file.
type Config struct {
	URL     string        `yaml:"url"`
	Auth    string        `yaml:"auth"`   // Prefer AUTHPDF_AUTH over committing secrets
	Output  string        `yaml:"output"` // Output prefix, ".pdf" is appended
	Browser BrowserConfig `yaml:"browser"`
}

// BrowserConfig defines how the browser is launched.
type BrowserConfig struct {
	Engine    string `yaml:"engine"`    // "rod" (default) or "chromedp"
	Headless  *bool  `yaml:"headless"`  // nil = not set
	Timeout   string `yaml:"timeout"`   // Go duration, e.g. "45s"; "0" disables
	Bin       string `yaml:"bin"`       // Chrome/Chromium executable
	NoSandbox bool   `yaml:"noSandbox"` // Required as root in containers
}

// DefaultConfig returns an empty configuration: every value falls back to
// the CLI defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate checks field lengths and enumerated values.
func (c *Config) Validate() error {
	if err := validateFieldLength("url", c.URL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("auth", c.Auth, MaxAuthLength); err != nil {
		return err
	}
	if err := validateFieldLength("output", c.Output, MaxOutputLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxBinLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.engine", c.Browser.Engine, MaxEngineLength); err != nil {
		return err
	}

	if c.Browser.Engine != "" && !isValidEngine(c.Browser.Engine) {
		return fmt.Errorf("%w: browser.engine %q (must be %s)",
			ErrInvalidValue, c.Browser.Engine, strings.Join(validEngines, " or "))
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses browser.timeout. An unset field yields zero; use
// HasTimeout to tell it apart from an explicit "0".
func (c *Config) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Browser.Timeout)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout %q: %v", ErrInvalidValue, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: browser.timeout must not be negative, got %s", ErrInvalidValue, raw)
	}
	return d, nil
}

// HasTimeout reports whether browser.timeout is set.
func (c *Config) HasTimeout() bool {
	return strings.TrimSpace(c.Browser.Timeout) != ""
}

func isValidEngine(name string) bool {
	for _, e := range validEngines {
		if strings.EqualFold(name, e) {
			return true
		}
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data. Unknown keys are rejected
// so a typo like "ouput" does not silently fall back to the default.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the candidate files for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries the current directory first, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
