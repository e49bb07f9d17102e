package authpdf

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-authpdf/internal/fileutil"
	"github.com/alnah/go-authpdf/internal/netidle"
)

// Exporter turns one authenticated URL into a PDF and a diagnostic
// screenshot. Each Export launches and releases its own browser.
type Exporter struct {
	cfg      exporterConfig
	reporter Reporter
	launch   launchFunc
	newIdle  func() *netidle.Tracker
}

// NewExporter creates an Exporter with default configuration: rod engine,
// visible window, DefaultTimeout.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			engine:  DefaultEngine,
			timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	engine, err := ParseEngine(string(e.cfg.engine))
	if err != nil {
		return nil, err
	}
	e.cfg.engine = engine

	if e.cfg.timeout < 0 {
		return nil, fmt.Errorf("%w: must not be negative, got %s", ErrInvalidTimeout, e.cfg.timeout)
	}

	if e.reporter == nil {
		e.reporter = nopReporter{}
	}

	if e.newIdle == nil {
		e.newIdle = netidle.New
	}

	// Launcher may already be injected (e.g., by tests)
	if e.launch == nil {
		if e.launch, err = launcherFor(e.cfg.engine); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Engine returns the configured browser backend.
func (e *Exporter) Engine() Engine {
	return e.cfg.engine
}

// Export launches a browser, loads req.URL with the authorization headers,
// waits for the network to settle, then writes the screenshot and the PDF.
//
// The browser is released exactly once on every path, including panics and
// cancellation. Errors are *StageError values wrapping one sentinel each.
// A screenshot may remain on disk when PDF generation fails.
func (e *Exporter) Export(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	stage := StageStart

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &StageError{Stage: stage, Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, &StageError{Stage: stage, Err: err}
	}

	prefix := req.OutputPrefix
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	pdfName, err := fileutil.PDFPath(prefix)
	if err != nil {
		return nil, &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", ErrWriteFile, err)}
	}
	pdfPath := fileutil.Resolve(e.cfg.workDir, pdfName)
	shotPath := fileutil.Resolve(e.cfg.workDir, ScreenshotName)

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrBrowserLaunch, err)}
	}

	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	b, err := e.launch(ctx, resolveLaunchConfig(e.cfg))
	if err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrBrowserLaunch, err)}
	}
	stage = StageBrowserLaunched

	defer func() {
		closeErr := b.Close()
		if closeErr != nil && err == nil {
			result = nil
			err = &StageError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrBrowserClose, closeErr)}
		}
	}()

	p, err := b.NewPage(ctx)
	if err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrPageCreate, err)}
	}
	stage = StagePageOpened

	if err := p.SetHeaders(ctx, RequestHeaders(req.Authorization)); err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrSetHeaders, err)}
	}
	stage = StageHeadersSet

	tracker := e.newIdle()
	tracker.OnFailure(e.reporter.RequestFailed)
	p.Observe(tracker)

	e.reporter.Progress("Navigating to URL: " + req.URL)
	finalURL, err := e.navigate(ctx, p, tracker, req.URL)
	if err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrNavigation, err)}
	}
	stage = StageNavigated
	e.reporter.Progress("Final URL: " + finalURL)

	e.reporter.Progress("Capturing screenshot...")
	shot, err := p.Screenshot(ctx)
	if err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrScreenshot, err)}
	}
	if err := fileutil.WriteFile(shotPath, shot); err != nil {
		return nil, &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", ErrWriteFile, err)}
	}
	stage = StageScreenshotTaken

	e.reporter.Progress("Generating PDF...")
	pdf, err := p.PDF(ctx, A2PrintSettings())
	if err != nil {
		return nil, &StageError{Stage: stage, Err: wrapStep(ctx, ErrPDFGeneration, err)}
	}
	if err := fileutil.WriteFile(pdfPath, pdf); err != nil {
		return nil, &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", ErrWriteFile, err)}
	}
	stage = StagePDFRendered
	e.reporter.Progress(fmt.Sprintf("PDF saved as '%s'", pdfPath))

	return &Result{
		PDFPath:        pdfPath,
		ScreenshotPath: shotPath,
		FinalURL:       finalURL,
		PDFSize:        len(pdf),
		ScreenshotSize: len(shot),
		Duration:       time.Since(start),
	}, nil
}

// navigate loads url and blocks until the network is almost idle.
// Returns the URL the page settled on after redirects.
func (e *Exporter) navigate(ctx context.Context, p page, tracker *netidle.Tracker, url string) (string, error) {
	if err := p.Navigate(ctx, url); err != nil {
		return "", err
	}
	tracker.Restart()
	if err := tracker.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for network idle (%d requests pending): %w", tracker.Inflight(), err)
	}
	return p.URL(ctx)
}

func validateRequest(req Request) error {
	if req.URL == "" {
		return ErrEmptyURL
	}
	if req.Authorization == "" {
		return ErrEmptyAuthorization
	}
	return nil
}
