package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// envPrefix namespaces every environment variable read by the CLI.
const envPrefix = "AUTHPDF_"

// envConfig holds configuration from environment variables.
// Lets CI jobs pass the URL and token without flags or files.
type envConfig struct {
	// Request
	URL    string // AUTHPDF_URL: page to load
	Auth   string // AUTHPDF_AUTH: Authorization header value
	Output string // AUTHPDF_OUTPUT: output prefix
	Config string // AUTHPDF_CONFIG: config file name or path

	// Browser
	Engine     string // AUTHPDF_ENGINE: rod, chromedp
	Timeout    string // AUTHPDF_TIMEOUT: Go duration, "0" disables
	Headless   *bool  // AUTHPDF_HEADLESS: nil = not set or unparsable
	BrowserBin string // AUTHPDF_BROWSER_BIN: Chrome executable
	NoSandbox  bool   // AUTHPDF_NO_SANDBOX: "1" or "true"
}

// knownEnvVars lists valid AUTHPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"AUTHPDF_URL":         true,
	"AUTHPDF_AUTH":        true,
	"AUTHPDF_OUTPUT":      true,
	"AUTHPDF_CONFIG":      true,
	"AUTHPDF_ENGINE":      true,
	"AUTHPDF_TIMEOUT":     true,
	"AUTHPDF_HEADLESS":    true,
	"AUTHPDF_BROWSER_BIN": true,
	"AUTHPDF_NO_SANDBOX":  true,
	"AUTHPDF_CONTAINER":   true, // doctor override
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable booleans are ignored rather than failing the run.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		URL:        os.Getenv("AUTHPDF_URL"),
		Auth:       os.Getenv("AUTHPDF_AUTH"),
		Output:     os.Getenv("AUTHPDF_OUTPUT"),
		Config:     os.Getenv("AUTHPDF_CONFIG"),
		Engine:     os.Getenv("AUTHPDF_ENGINE"),
		Timeout:    strings.TrimSpace(os.Getenv("AUTHPDF_TIMEOUT")),
		BrowserBin: os.Getenv("AUTHPDF_BROWSER_BIN"),
	}

	if v := os.Getenv("AUTHPDF_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = &b
		}
	}

	if v := os.Getenv("AUTHPDF_NO_SANDBOX"); v != "" {
		b, err := strconv.ParseBool(v)
		cfg.NoSandbox = err == nil && b
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized AUTHPDF_* variables.
// Helps catch typos like AUTHPDF_HEADLES.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}
