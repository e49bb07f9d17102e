// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-authpdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// HasDisplay reports whether a visible browser window can be opened.
// Only X11/Wayland platforms can lack one; macOS and Windows always have a
// desktop session when a user runs the CLI.
var HasDisplay = func() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" && runtime.GOOS != "openbsd" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// InCI reports whether a CI provider is detected from its environment.
func InCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserLaunch returns hints for browser launch errors.
// headless tells whether the failed launch asked for a hidden window.
func ForBrowserLaunch(headless bool) string {
	var hints []string

	if !headless && !HasDisplay() {
		hints = append(hints, "no display available; pass --headless")
	}

	if (InCI() || IsInContainer()) && os.Getenv("AUTHPDF_NO_SANDBOX") != "1" && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set AUTHPDF_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("AUTHPDF_BROWSER_BIN") == "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set AUTHPDF_BROWSER_BIN to use a custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow pages.
func ForTimeout() string {
	return format("for slow pages, raise --timeout (e.g. --timeout 2m)")
}

// ForNavigation returns a hint matching a Chrome network error code found
// in msg, or "" when nothing specific applies.
func ForNavigation(msg string) string {
	switch {
	case strings.Contains(msg, "ERR_NAME_NOT_RESOLVED"):
		return format("check the host name in --url")
	case strings.Contains(msg, "ERR_CERT_"):
		return format("the server certificate was rejected; check the URL scheme and host")
	case strings.Contains(msg, "ERR_INVALID_URL"), strings.Contains(msg, "invalid URL"):
		return format("--url must be absolute, e.g. https://example.atlassian.net/wiki/...")
	case strings.Contains(msg, "ERR_CONNECTION_REFUSED"), strings.Contains(msg, "ERR_CONNECTION_TIMED_OUT"):
		return format("the server is unreachable; check VPN or proxy settings")
	case strings.Contains(msg, "ERR_TOO_MANY_REDIRECTS"):
		return format("redirect loop; the --auth value may be rejected by the server")
	}
	return ""
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "go-authpdf/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for artifact write errors.
func ForOutputDirectory() string {
	return format("check the --output directory is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
