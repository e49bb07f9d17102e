package authpdf

import "time"

// DefaultTimeout bounds a whole export when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	engine     Engine
	headless   bool
	timeout    time.Duration // 0 = no limit
	browserBin string
	noSandbox  bool
	workDir    string
}

// WithEngine selects the browser automation backend.
func WithEngine(engine Engine) Option {
	return func(e *Exporter) {
		e.cfg.engine = engine
	}
}

// WithHeadless hides the browser window. Exports run with a visible window
// by default so operators can watch the page load.
func WithHeadless(headless bool) Option {
	return func(e *Exporter) {
		e.cfg.headless = headless
	}
}

// WithTimeout bounds the whole export, navigation included. Zero disables
// the limit; negative values are rejected by NewExporter.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithBrowserBin sets the Chrome/Chromium executable.
// Without it, ROD_BROWSER_BIN is honored, then the engine's own lookup.
func WithBrowserBin(path string) Option {
	return func(e *Exporter) {
		e.cfg.browserBin = path
	}
}

// WithNoSandbox disables Chrome's sandbox, required when running as root in
// containers.
func WithNoSandbox(noSandbox bool) Option {
	return func(e *Exporter) {
		e.cfg.noSandbox = noSandbox
	}
}

// WithReporter receives progress messages and failed sub-requests.
// A nil reporter discards them.
func WithReporter(r Reporter) Option {
	return func(e *Exporter) {
		e.reporter = r
	}
}

// WithWorkDir sets the directory relative artifact paths resolve against.
// Empty means the process working directory.
func WithWorkDir(dir string) Option {
	return func(e *Exporter) {
		e.cfg.workDir = dir
	}
}
