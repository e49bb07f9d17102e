package main

// Notes:
// - Tests that read AUTHPDF_* variables use t.Setenv and cannot run in
//   parallel; pure resolution helpers are tested in parallel.
// - The exporter is faked through Environment.NewExporter; browser behavior
//   is covered by the library tests.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-authpdf"
	"github.com/alnah/go-authpdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunExport - End-to-end CLI behavior with a fake exporter
// ---------------------------------------------------------------------------

func TestRunExport_Success(t *testing.T) {
	clearEnv(t)

	te := newTestEnv(&fakeExporter{})
	code := runMain([]string{"authpdf", "-u", "https://example.com/wiki", "-a", "Bearer t", "-o", "report"}, te.env)

	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, te.stderr.String())
	}

	want := authpdf.Request{URL: "https://example.com/wiki", Authorization: "Bearer t", OutputPrefix: "report"}
	if te.exporter.req != want {
		t.Errorf("request = %+v, want %+v", te.exporter.req, want)
	}
	if te.exporter.calls != 1 {
		t.Errorf("Export called %d times, want 1", te.exporter.calls)
	}

	out := te.stdout.String()
	for _, line := range []string{"Navigating to URL: https://example.com/wiki", "PDF saved as 'report.pdf'"} {
		if !strings.Contains(out, line) {
			t.Errorf("stdout should contain %q, got %q", line, out)
		}
	}
	if te.stderr.Len() != 0 {
		t.Errorf("stderr should be empty, got %q", te.stderr.String())
	}
}

func TestRunExport_Defaults(t *testing.T) {
	clearEnv(t)

	te := newTestEnv(&fakeExporter{})
	code := runMain([]string{"authpdf", "--url", "https://example.com", "--auth", "Basic x"}, te.env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
	}

	if te.exporter.req.OutputPrefix != "output" {
		t.Errorf("OutputPrefix = %q, want output", te.exporter.req.OutputPrefix)
	}
	s := te.settings
	if s.Engine != authpdf.EngineRod {
		t.Errorf("Engine = %q, want rod", s.Engine)
	}
	if s.Headless {
		t.Error("Headless = true, want false by default")
	}
	if s.Timeout != authpdf.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, authpdf.DefaultTimeout)
	}
	if s.Reporter == nil {
		t.Error("Reporter should be installed")
	}
}

func TestRunExport_MissingRequired(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		args    []string
		missing string
	}{
		{"no flags", []string{"authpdf"}, "--url, --auth"},
		{"missing auth", []string{"authpdf", "-u", "https://example.com"}, "--auth"},
		{"missing url", []string{"authpdf", "-a", "Bearer t"}, "--url"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(&fakeExporter{})
			code := runMain(tt.args, te.env)

			if code != ExitUsage {
				t.Errorf("runMain() = %d, want %d", code, ExitUsage)
			}
			if te.builds != 0 || te.exporter.calls != 0 {
				t.Errorf("exporter must not run: builds=%d calls=%d", te.builds, te.exporter.calls)
			}
			errOut := te.stderr.String()
			if !strings.Contains(errOut, "missing required value: "+tt.missing) {
				t.Errorf("stderr should name %q, got %q", tt.missing, errOut)
			}
			if !strings.Contains(errOut, "Usage: authpdf") {
				t.Errorf("stderr should contain usage, got %q", errOut)
			}
			if te.stdout.Len() != 0 {
				t.Errorf("stdout should be empty, got %q", te.stdout.String())
			}
		})
	}
}

func TestRunExport_Quiet(t *testing.T) {
	clearEnv(t)

	exp := &fakeExporter{failed: [][2]string{{"https://cdn.example.com/a.js", "net::ERR_BLOCKED_BY_CLIENT"}}}
	te := newTestEnv(exp)
	code := runMain([]string{"authpdf", "-q", "-u", "https://example.com", "-a", "Bearer t"}, te.env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
	}

	if te.stdout.Len() != 0 {
		t.Errorf("quiet mode should print nothing on stdout, got %q", te.stdout.String())
	}
	want := "Request failed: https://cdn.example.com/a.js - net::ERR_BLOCKED_BY_CLIENT\n"
	if te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
}

func TestRunExport_Verbose(t *testing.T) {
	clearEnv(t)

	te := newTestEnv(&fakeExporter{})
	code := runMain([]string{"authpdf", "-v", "-u", "https://example.com", "-a", "Bearer t", "-t", "0"}, te.env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
	}

	out := te.stdout.String()
	if !strings.Contains(out, "Engine: rod, headless: false, timeout: none") {
		t.Errorf("verbose should describe the engine, got %q", out)
	}
	if !strings.Contains(out, "PDF: 1024 bytes, screenshot: 512 bytes") {
		t.Errorf("verbose should print artifact sizes, got %q", out)
	}
}

func TestRunExport_ExportErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "navigation failure",
			err:        &authpdf.StageError{Stage: authpdf.StageHeadersSet, Err: fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", authpdf.ErrNavigation)},
			wantCode:   ExitBrowser,
			wantStderr: "hint: check the host name",
		},
		{
			name:       "timeout",
			err:        &authpdf.StageError{Stage: authpdf.StageHeadersSet, Err: fmt.Errorf("%w: %w", authpdf.ErrNavigation, context.DeadlineExceeded)},
			wantCode:   ExitBrowser,
			wantStderr: "raise --timeout",
		},
		{
			name:       "write failure",
			err:        &authpdf.StageError{Stage: authpdf.StageNavigated, Err: fmt.Errorf("%w: %w", authpdf.ErrWriteFile, os.ErrPermission)},
			wantCode:   ExitIO,
			wantStderr: "hint: check the --output directory",
		},
		{
			name:       "pdf failure",
			err:        &authpdf.StageError{Stage: authpdf.StageScreenshotTaken, Err: fmt.Errorf("%w: printing failed", authpdf.ErrPDFGeneration)},
			wantCode:   ExitBrowser,
			wantStderr: "error: PDF generation failed: printing failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(&fakeExporter{err: tt.err})
			code := runMain([]string{"authpdf", "-u", "https://example.com", "-a", "Bearer t"}, te.env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr should contain %q, got %q", tt.wantStderr, te.stderr.String())
			}
			if n := strings.Count(te.stderr.String(), "error: "); n != 1 {
				t.Errorf("error should be logged once, got %d times: %q", n, te.stderr.String())
			}
		})
	}
}

func TestRunExport_VerboseShowsStage(t *testing.T) {
	clearEnv(t)

	stageErr := &authpdf.StageError{Stage: authpdf.StageNavigated, Err: fmt.Errorf("%w: boom", authpdf.ErrScreenshot)}
	te := newTestEnv(&fakeExporter{err: stageErr})
	runMain([]string{"authpdf", "-v", "-u", "https://example.com", "-a", "Bearer t"}, te.env)

	if !strings.Contains(te.stderr.String(), "last completed stage: navigated") {
		t.Errorf("stderr should name the stage, got %q", te.stderr.String())
	}
}

func TestRunExport_FactoryError(t *testing.T) {
	clearEnv(t)

	te := newTestEnv(&fakeExporter{})
	te.env.NewExporter = func(exporterSettings) (Exporter, error) {
		return nil, fmt.Errorf("%w: bad", authpdf.ErrInvalidEngine)
	}
	code := runMain([]string{"authpdf", "-u", "https://example.com", "-a", "Bearer t"}, te.env)
	if code != ExitUsage {
		t.Errorf("runMain() = %d, want %d", code, ExitUsage)
	}
}

func TestRunExport_InvalidValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid engine", []string{"-e", "firefox"}},
		{"invalid timeout", []string{"-t", "soon"}},
		{"negative timeout", []string{"--timeout=-5s"}},
		{"unknown flag", []string{"--bogus"}},
		{"unknown positional", []string{"convert"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(&fakeExporter{})
			args := append([]string{"authpdf", "-u", "https://example.com", "-a", "Bearer t"}, tt.args...)
			code := runMain(args, te.env)

			if code != ExitUsage {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, ExitUsage, te.stderr.String())
			}
			if te.exporter.calls != 0 {
				t.Error("exporter must not run")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveSettings - Flag, env and config precedence
// ---------------------------------------------------------------------------

func TestResolveSettings_Precedence(t *testing.T) {
	clearEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "wiki.yaml")
	cfgData := `url: https://config.example.com
auth: Basic config
output: from-config
browser:
  engine: chromedp
  headless: false
  timeout: 45s
  bin: /opt/config/chrome
  noSandbox: true
`
	if err := os.WriteFile(cfgPath, []byte(cfgData), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("config only", func(t *testing.T) {
		te := newTestEnv(&fakeExporter{})
		code := runMain([]string{"authpdf", "-c", cfgPath}, te.env)
		if code != ExitSuccess {
			t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
		}

		want := authpdf.Request{URL: "https://config.example.com", Authorization: "Basic config", OutputPrefix: "from-config"}
		if te.exporter.req != want {
			t.Errorf("request = %+v, want %+v", te.exporter.req, want)
		}
		s := te.settings
		if s.Engine != authpdf.EngineChromedp || s.Headless || s.Timeout != 45*time.Second ||
			s.BrowserBin != "/opt/config/chrome" || !s.NoSandbox {
			t.Errorf("unexpected settings: %+v", *s)
		}
	})

	t.Run("env over config", func(t *testing.T) {
		t.Setenv("AUTHPDF_URL", "https://env.example.com")
		t.Setenv("AUTHPDF_OUTPUT", "from-env")
		t.Setenv("AUTHPDF_HEADLESS", "true")
		t.Setenv("AUTHPDF_TIMEOUT", "0")
		t.Setenv("AUTHPDF_ENGINE", "rod")

		te := newTestEnv(&fakeExporter{})
		code := runMain([]string{"authpdf", "-c", cfgPath}, te.env)
		if code != ExitSuccess {
			t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
		}

		if te.exporter.req.URL != "https://env.example.com" {
			t.Errorf("URL = %q, want env value", te.exporter.req.URL)
		}
		if te.exporter.req.Authorization != "Basic config" {
			t.Errorf("Authorization = %q, want config value", te.exporter.req.Authorization)
		}
		if te.exporter.req.OutputPrefix != "from-env" {
			t.Errorf("OutputPrefix = %q, want from-env", te.exporter.req.OutputPrefix)
		}
		s := te.settings
		if !s.Headless || s.Timeout != 0 || s.Engine != authpdf.EngineRod {
			t.Errorf("unexpected settings: %+v", *s)
		}
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("AUTHPDF_URL", "https://env.example.com")
		t.Setenv("AUTHPDF_OUTPUT", "from-env")
		t.Setenv("AUTHPDF_HEADLESS", "true")

		te := newTestEnv(&fakeExporter{})
		args := []string{"authpdf", "-c", cfgPath, "-u", "https://flag.example.com", "-o", "output", "--headless=false", "-t", "2m"}
		code := runMain(args, te.env)
		if code != ExitSuccess {
			t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
		}

		if te.exporter.req.URL != "https://flag.example.com" {
			t.Errorf("URL = %q, want flag value", te.exporter.req.URL)
		}
		if te.exporter.req.OutputPrefix != "output" {
			t.Errorf("explicit --output must win, got %q", te.exporter.req.OutputPrefix)
		}
		if te.settings.Headless {
			t.Error("explicit --headless=false must win over env")
		}
		if te.settings.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v, want 2m", te.settings.Timeout)
		}
	})

	t.Run("config from env var", func(t *testing.T) {
		t.Setenv("AUTHPDF_CONFIG", cfgPath)

		te := newTestEnv(&fakeExporter{})
		if code := runMain([]string{"authpdf"}, te.env); code != ExitSuccess {
			t.Fatalf("runMain() = %d\nstderr: %s", code, te.stderr.String())
		}
		if te.exporter.req.URL != "https://config.example.com" {
			t.Errorf("URL = %q, want config value", te.exporter.req.URL)
		}
	})
}

func TestResolveSettings_ConfigErrors(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Run("named config not found", func(t *testing.T) {
		te := newTestEnv(&fakeExporter{})
		code := runMain([]string{"authpdf", "-c", "absent", "-u", "https://example.com", "-a", "x"}, te.env)

		if code != ExitUsage {
			t.Errorf("runMain() = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(te.stderr.String(), "hint: use --config") {
			t.Errorf("stderr should contain config hint, got %q", te.stderr.String())
		}
	})

	t.Run("malformed config", func(t *testing.T) {
		if err := os.WriteFile("bad.yaml", []byte("ouput: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		te := newTestEnv(&fakeExporter{})
		code := runMain([]string{"authpdf", "-c", "bad"}, te.env)

		if code != ExitUsage {
			t.Errorf("runMain() = %d, want %d", code, ExitUsage)
		}
		if te.builds != 0 {
			t.Error("exporter must not be built")
		}
	})
}

func TestResolveSettings_BrowserFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTHPDF_BROWSER_BIN", "/usr/bin/chromium")
	t.Setenv("AUTHPDF_NO_SANDBOX", "1")

	f, _, err := parseExportFlags([]string{"-u", "https://example.com", "-a", "x"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := resolveSettings(f, loadEnvConfig())
	if err != nil {
		t.Fatalf("resolveSettings() error = %v", err)
	}
	if s.exporter.BrowserBin != "/usr/bin/chromium" || !s.exporter.NoSandbox {
		t.Errorf("unexpected settings: %+v", s.exporter)
	}
}

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		flag, env, cfgValue string
		want                time.Duration
		wantErr             bool
	}{
		{"all empty uses default", "", "", "", authpdf.DefaultTimeout, false},
		{"flag wins", "10s", "20s", "30s", 10 * time.Second, false},
		{"env over config", "", "20s", "30s", 20 * time.Second, false},
		{"config last", "", "", "30s", 30 * time.Second, false},
		{"zero disables", "0", "20s", "", 0, false},
		{"zero duration disables", "0s", "", "", 0, false},
		{"config zero disables", "", "", "0", 0, false},
		{"blank flag and env fall back to config", " ", "", "1m", time.Minute, false},
		{"invalid flag overrides valid env", "soon", "20s", "", 0, true},
		{"negative", "-1s", "", "", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Browser: config.BrowserConfig{Timeout: tt.cfgValue}}
			got, err := resolveTimeout(tt.flag, tt.env, cfg)
			if tt.wantErr {
				if !errors.Is(err, authpdf.ErrInvalidTimeout) {
					t.Fatalf("error = %v, want ErrInvalidTimeout", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveOutputAndHeadless(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	unchanged := func(string) bool { return false }
	changed := func(string) bool { return true }

	tests := []struct {
		name         string
		flags        *exportFlags
		env          *envConfig
		cfg          *config.Config
		wantOutput   string
		wantHeadless bool
	}{
		{
			name:       "defaults",
			flags:      &exportFlags{output: "output", changed: unchanged},
			env:        &envConfig{},
			cfg:        &config.Config{},
			wantOutput: "output",
		},
		{
			name:         "config values",
			flags:        &exportFlags{output: "output", changed: unchanged},
			env:          &envConfig{},
			cfg:          &config.Config{Output: "cfg", Browser: config.BrowserConfig{Headless: &yes}},
			wantOutput:   "cfg",
			wantHeadless: true,
		},
		{
			name:       "env headless false beats config true",
			flags:      &exportFlags{output: "output", changed: unchanged},
			env:        &envConfig{Headless: &no},
			cfg:        &config.Config{Browser: config.BrowserConfig{Headless: &yes}},
			wantOutput: "output",
		},
		{
			name:         "explicit flags win",
			flags:        &exportFlags{output: "flag", browser: browserFlags{headless: true}, changed: changed},
			env:          &envConfig{Output: "env", Headless: &no},
			cfg:          &config.Config{Output: "cfg"},
			wantOutput:   "flag",
			wantHeadless: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveOutput(tt.flags, tt.env, tt.cfg); got != tt.wantOutput {
				t.Errorf("resolveOutput() = %q, want %q", got, tt.wantOutput)
			}
			if got := resolveHeadless(tt.flags, tt.env, tt.cfg); got != tt.wantHeadless {
				t.Errorf("resolveHeadless() = %v, want %v", got, tt.wantHeadless)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConsoleReporter - Output routing
// ---------------------------------------------------------------------------

func TestConsoleReporter(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder
	r := &consoleReporter{out: &out, errOut: &errOut}
	r.Progress("Generating PDF...")
	r.RequestFailed("https://example.com/x", "net::ERR_ABORTED")

	if out.String() != "Generating PDF...\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if errOut.String() != "Request failed: https://example.com/x - net::ERR_ABORTED\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no hint for plain errors", errors.New("boom"), ""},
		{"config path has no search hint", fmt.Errorf("%w: x", config.ErrConfigNotFound), ""},
		{"dns error", fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", authpdf.ErrNavigation), "host name"},
	}

	s := &runSettings{configName: "./missing.yaml"}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, s)
			if tt.want == "" && got != "" {
				t.Errorf("hintFor() = %q, want none", got)
			}
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
