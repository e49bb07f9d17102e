package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-authpdf"
)

// Exporter runs one page export. *authpdf.Exporter satisfies it.
type Exporter interface {
	Export(ctx context.Context, req authpdf.Request) (*authpdf.Result, error)
}

// ExporterFactory builds the exporter for one run.
type ExporterFactory func(s exporterSettings) (Exporter, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and exporter construction.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	NewExporter ExporterFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		NewExporter: newExporter,
	}
}

// exporterSettings is the resolved browser configuration for one run.
type exporterSettings struct {
	Engine     authpdf.Engine
	Headless   bool
	Timeout    time.Duration
	BrowserBin string
	NoSandbox  bool
	Reporter   authpdf.Reporter
}

// options converts settings to library options.
func (s exporterSettings) options() []authpdf.Option {
	return []authpdf.Option{
		authpdf.WithEngine(s.Engine),
		authpdf.WithHeadless(s.Headless),
		authpdf.WithTimeout(s.Timeout),
		authpdf.WithBrowserBin(s.BrowserBin),
		authpdf.WithNoSandbox(s.NoSandbox),
		authpdf.WithReporter(s.Reporter),
	}
}

// newExporter creates the production exporter.
func newExporter(s exporterSettings) (Exporter, error) {
	exp, err := authpdf.NewExporter(s.options()...)
	if err != nil {
		return nil, err
	}
	return exp, nil
}
