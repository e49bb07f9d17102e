package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-authpdf/internal/config"
	"github.com/alnah/go-authpdf/internal/fileutil"
	"github.com/alnah/go-authpdf/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// versionTimeout bounds "chrome --version".
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Source  string `json:"source,omitempty"` // env var name or "lookup"
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	Display       bool   `json:"display"`
}

// systemInfo holds system check results.
type systemInfo struct {
	WorkDir         string `json:"work_dir"`
	WorkDirWritable bool   `json:"work_dir_writable"`
}

// doctorHost abstracts the host so checks can be tested without Chrome.
type doctorHost struct {
	getenv        func(string) string
	lookPath      func() (string, bool)
	fileExists    func(string) bool
	chromeVersion func(path string) (string, error)
	hasDisplay    func() bool
	workDir       func() (string, error)
	dirWritable   func(string) bool
}

// defaultHost inspects the real host.
func defaultHost() doctorHost {
	return doctorHost{
		getenv:        os.Getenv,
		lookPath:      launcher.LookPath,
		fileExists:    fileutil.FileExists,
		chromeVersion: chromeVersion,
		hasDisplay:    hints.HasDisplay,
		workDir:       os.Getwd,
		dirWritable:   fileutil.DirWritable,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	configName := fs.StringP("config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: doctor: %v\n", err)
		printDoctorUsage(env.Stderr)
		return ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(env.Stderr, "error: doctor: unexpected argument %s\n", fs.Arg(0))
		printDoctorUsage(env.Stderr)
		return ExitUsage
	}

	// Same lookup as an export run, so both see the same browser settings
	cfg := config.DefaultConfig()
	if name := firstNonEmpty(*configName, os.Getenv("AUTHPDF_CONFIG")); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			err = fmt.Errorf("loading config: %w", err)
			printError(env.Stderr, err, &runSettings{configName: name})
			return exitCodeFor(err)
		}
		cfg = loaded
	}

	result := runDoctor(defaultHost(), cfg.Browser)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
// browser holds the config file's browser section; zero when none is loaded.
func runDoctor(p doctorHost, browser config.BrowserConfig) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkChrome(result, p, browser)
	checkEnvironment(result, p, browser)
	checkSystem(result, p)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome locates Chrome the way an export does: AUTHPDF_BROWSER_BIN,
// then browser.bin from the config file, then ROD_BROWSER_BIN, then rod's
// launcher lookup.
func checkChrome(result *doctorResult, p doctorHost, browser config.BrowserConfig) {
	path, source := "", ""
	switch {
	case p.getenv("AUTHPDF_BROWSER_BIN") != "":
		path, source = p.getenv("AUTHPDF_BROWSER_BIN"), "AUTHPDF_BROWSER_BIN"
	case browser.Bin != "":
		path, source = browser.Bin, "config browser.bin"
	case p.getenv("ROD_BROWSER_BIN") != "":
		path, source = p.getenv("ROD_BROWSER_BIN"), "ROD_BROWSER_BIN"
	}

	if path == "" {
		var found bool
		path, found = p.lookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set AUTHPDF_BROWSER_BIN")
			return
		}
		source = "lookup"
	}

	if !p.fileExists(path) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s (from %s)", path, source))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = path
	result.Chrome.Source = source

	if v, err := p.chromeVersion(path); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = !browser.NoSandbox && !sandboxDisabled(p.getenv)
}

// checkEnvironment detects container, CI and display.
func checkEnvironment(result *doctorResult, p doctorHost, browser config.BrowserConfig) {
	result.Env.Container, result.Env.ContainerHint = isContainer(p)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if p.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !browser.NoSandbox && !sandboxDisabled(p.getenv) {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but sandbox is enabled. Set AUTHPDF_NO_SANDBOX=1")
	}

	result.Env.Display = p.hasDisplay()
	if !result.Env.Display {
		result.Warnings = append(result.Warnings,
			"No display available. Run exports with --headless")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(p doctorHost) (bool, string) {
	if p.getenv("AUTHPDF_CONTAINER") == "1" {
		return true, "AUTHPDF_CONTAINER=1"
	}
	if p.fileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := p.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if p.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies artifacts can be written to the working directory.
func checkSystem(result *doctorResult, p doctorHost) {
	dir, err := p.workDir()
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Cannot determine working directory: %v", err))
		return
	}
	result.System.WorkDir = dir

	if !p.dirWritable(dir) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Working directory not writable: %s", dir))
		return
	}
	result.System.WorkDirWritable = true
}

// sandboxDisabled reports whether the env disables Chrome's sandbox.
func sandboxDisabled(getenv func(string) string) bool {
	if b, err := strconv.ParseBool(getenv("AUTHPDF_NO_SANDBOX")); err == nil && b {
		return true
	}
	return getenv("ROD_NO_SANDBOX") == "1"
}

// chromeVersion runs "<chrome> --version".
func chromeVersion(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path comes from env or rod lookup
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "authpdf doctor")

	section(w, "Chrome/Chromium")
	if r.Chrome.Found {
		check(w, "OK", "Found at %s (%s)", r.Chrome.Path, r.Chrome.Source)
		if r.Chrome.Version != "" {
			check(w, "OK", "Version: %s", r.Chrome.Version)
		}
		check(w, "OK", "Sandbox: %s", onOff(r.Chrome.Sandbox, "enabled", "disabled"))
	} else {
		check(w, "ERROR", "Not found")
	}

	section(w, "Environment")
	check(w, "OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		check(w, "OK", "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		check(w, "OK", "CI: detected")
	}
	if r.Env.Display {
		check(w, "OK", "Display: available")
	} else {
		check(w, "WARN", "Display: none (headless only)")
	}

	section(w, "System")
	if r.System.WorkDirWritable {
		check(w, "OK", "Working directory: writable (%s)", r.System.WorkDir)
	} else {
		check(w, "ERROR", "Working directory: not writable")
	}

	listMessages(w, "Warnings:", "WARN", r.Warnings)
	listMessages(w, "Errors:", "ERROR", r.Errors)

	fmt.Fprintln(w)
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// section starts a titled block, separated from the previous one.
func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

// check prints one "[LEVEL] message" line.
func check(w io.Writer, level, format string, args ...any) {
	fmt.Fprintf(w, "  [%s] %s\n", level, fmt.Sprintf(format, args...))
}

func listMessages(w io.Writer, title, level string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	section(w, title)
	for _, m := range msgs {
		check(w, level, "%s", m)
	}
}

func onOff(b bool, on, off string) string {
	if b {
		return on
	}
	return off
}
