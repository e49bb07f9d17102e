package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-authpdf"
	"github.com/alnah/go-authpdf/internal/config"
	"github.com/alnah/go-authpdf/internal/fileutil"
	"github.com/alnah/go-authpdf/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrMissingRequired = errors.New("missing required value")
	ErrUnknownCommand  = errors.New("unknown command")
)

const defaultOutputPrefix = authpdf.DefaultOutputPrefix

// runSettings is everything one export run needs after flags, env and
// config file have been merged.
type runSettings struct {
	request    authpdf.Request
	exporter   exporterSettings
	configName string
	quiet      bool
	verbose    bool
}

// consoleReporter prints exporter progress on stdout and failed
// sub-requests on stderr. Safe for concurrent use.
type consoleReporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// Progress prints one progress line unless quiet.
func (r *consoleReporter) Progress(msg string) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, msg)
}

// RequestFailed prints a failed sub-request, even when quiet.
func (r *consoleReporter) RequestFailed(url, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errOut, "Request failed: %s - %s\n", url, reason)
}

// runExportCmd parses export flags, resolves settings and runs one export.
func runExportCmd(ctx context.Context, args []string, env *Environment) int {
	f, positional, err := parseExportFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if f.version {
		printVersion(env.Stdout)
		return ExitSuccess
	}

	if len(positional) > 0 {
		fmt.Fprintf(env.Stderr, "error: %v: %s\n", ErrUnknownCommand, positional[0])
		printUsage(env.Stderr)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	settings, err := resolveSettings(f, loadEnvConfig())
	if err != nil {
		printError(env.Stderr, err, settings)
		if errors.Is(err, ErrMissingRequired) {
			fmt.Fprintln(env.Stderr)
			printUsage(env.Stderr)
		}
		return exitCodeFor(err)
	}

	if err := runExport(ctx, settings, env); err != nil {
		printError(env.Stderr, err, settings)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runExport builds the exporter and runs one export.
func runExport(ctx context.Context, s *runSettings, env *Environment) error {
	s.exporter.Reporter = &consoleReporter{
		out:    env.Stdout,
		errOut: env.Stderr,
		quiet:  s.quiet,
	}

	if s.verbose {
		fmt.Fprintf(env.Stdout, "Engine: %s, headless: %t, timeout: %s\n",
			s.exporter.Engine, s.exporter.Headless, formatTimeout(s.exporter.Timeout))
	}

	exp, err := env.NewExporter(s.exporter)
	if err != nil {
		return err
	}

	start := env.Now()
	result, err := exp.Export(ctx, s.request)
	if err != nil {
		return err
	}

	if s.verbose {
		fmt.Fprintf(env.Stdout, "Done in %s (PDF: %d bytes, screenshot: %d bytes)\n",
			env.Now().Sub(start).Round(time.Millisecond), result.PDFSize, result.ScreenshotSize)
	}
	return nil
}

// resolveSettings merges flags, environment and config file.
// Precedence: CLI flags > env vars > config file > defaults.
// Returns partial settings alongside an error so hints can still use them.
func resolveSettings(f *exportFlags, env *envConfig) (*runSettings, error) {
	s := &runSettings{
		quiet:   f.common.quiet,
		verbose: f.common.verbose,
	}

	s.configName = firstNonEmpty(f.common.config, env.Config)
	cfg := config.DefaultConfig()
	if s.configName != "" {
		loaded, err := config.LoadConfig(s.configName)
		if err != nil {
			return s, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	// Headless first so launch hints are right even when a later step fails
	s.exporter.Headless = resolveHeadless(f, env, cfg)

	s.request = authpdf.Request{
		URL:           firstNonEmpty(f.url, env.URL, cfg.URL),
		Authorization: firstNonEmpty(f.auth, env.Auth, cfg.Auth),
		OutputPrefix:  resolveOutput(f, env, cfg),
	}

	var missing []string
	if s.request.URL == "" {
		missing = append(missing, "--url")
	}
	if s.request.Authorization == "" {
		missing = append(missing, "--auth")
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	engine, err := authpdf.ParseEngine(firstNonEmpty(f.browser.engine, env.Engine, cfg.Browser.Engine))
	if err != nil {
		return s, err
	}
	s.exporter.Engine = engine

	timeout, err := resolveTimeout(f.browser.timeout, env.Timeout, cfg)
	if err != nil {
		return s, err
	}
	s.exporter.Timeout = timeout

	s.exporter.BrowserBin = firstNonEmpty(env.BrowserBin, cfg.Browser.Bin)
	s.exporter.NoSandbox = env.NoSandbox || cfg.Browser.NoSandbox

	return s, nil
}

// resolveOutput keeps the flag default ("output") below env and config
// unless --output was given explicitly.
func resolveOutput(f *exportFlags, env *envConfig, cfg *config.Config) string {
	if f.changed != nil && f.changed("output") {
		return f.output
	}
	return firstNonEmpty(env.Output, cfg.Output, defaultOutputPrefix)
}

// resolveHeadless returns the first explicit headless setting.
func resolveHeadless(f *exportFlags, env *envConfig, cfg *config.Config) bool {
	if f.changed != nil && f.changed("headless") {
		return f.browser.headless
	}
	if env.Headless != nil {
		return *env.Headless
	}
	if cfg.Browser.Headless != nil {
		return *cfg.Browser.Headless
	}
	return false
}

// resolveTimeout parses the first timeout set by flag or env, then falls
// back to the config file. Unset everywhere means authpdf.DefaultTimeout;
// "0" disables the limit.
func resolveTimeout(flagValue, envValue string, cfg *config.Config) (time.Duration, error) {
	raw := strings.TrimSpace(firstNonEmpty(flagValue, envValue))
	if raw == "" {
		if cfg.HasTimeout() {
			return cfg.Timeout()
		}
		return authpdf.DefaultTimeout, nil
	}
	if raw == "0" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (use a duration like 30s or 2m)", authpdf.ErrInvalidTimeout, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %q must not be negative", authpdf.ErrInvalidTimeout, raw)
	}
	return d, nil
}

// printError prints the top-level error followed by any matching hint.
// s may be partially resolved or nil.
func printError(w io.Writer, err error, s *runSettings) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err, s))

	var stageErr *authpdf.StageError
	if s != nil && s.verbose && errors.As(err, &stageErr) {
		fmt.Fprintf(w, "last completed stage: %s\n", stageErr.Stage)
	}
}

// hintFor picks an actionable hint for err, or "".
func hintFor(err error, s *runSettings) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, authpdf.ErrBrowserLaunch):
		headless := s != nil && s.exporter.Headless
		return hints.ForBrowserLaunch(headless)
	case errors.Is(err, authpdf.ErrNavigation):
		return hints.ForNavigation(err.Error())
	case errors.Is(err, authpdf.ErrWriteFile):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		if s == nil || fileutil.IsFilePath(s.configName) {
			return ""
		}
		return hints.ForConfigNotFound(config.SearchPaths(s.configName))
	}
	return ""
}

func formatTimeout(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
