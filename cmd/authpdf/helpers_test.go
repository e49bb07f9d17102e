package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-authpdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake exporter and environment
// ---------------------------------------------------------------------------

// fakeExporter records the request and replays progress through the
// reporter the CLI installed.
type fakeExporter struct {
	mu       sync.Mutex
	calls    int
	req      authpdf.Request
	reporter authpdf.Reporter
	failed   [][2]string // url, reason pairs reported before returning
	result   *authpdf.Result
	err      error
}

func (f *fakeExporter) Export(_ context.Context, req authpdf.Request) (*authpdf.Result, error) {
	f.mu.Lock()
	f.calls++
	f.req = req
	f.mu.Unlock()

	f.reporter.Progress("Navigating to URL: " + req.URL)
	for _, fr := range f.failed {
		f.reporter.RequestFailed(fr[0], fr[1])
	}
	if f.err != nil {
		return nil, f.err
	}
	f.reporter.Progress("PDF saved as '" + req.OutputPrefix + ".pdf'")

	if f.result != nil {
		return f.result, nil
	}
	return &authpdf.Result{PDFPath: req.OutputPrefix + ".pdf", PDFSize: 1024, ScreenshotSize: 512}, nil
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	env      *Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exporter *fakeExporter
	settings *exporterSettings // last settings passed to the factory
	builds   int
}

func newTestEnv(exp *fakeExporter) *testEnv {
	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		exporter: exp,
	}
	te.env = &Environment{
		Now:    time.Now,
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewExporter: func(s exporterSettings) (Exporter, error) {
			te.builds++
			te.settings = &s
			exp.reporter = s.Reporter
			return exp, nil
		},
	}
	return te
}

// clearEnv blanks every AUTHPDF_* variable the CLI reads. Empty values are
// treated as unset, so host settings cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}
