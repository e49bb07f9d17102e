package authpdf

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for export operations.
var (
	ErrEmptyURL           = errors.New("URL cannot be empty")
	ErrEmptyAuthorization = errors.New("authorization value cannot be empty")
	ErrBrowserLaunch      = errors.New("failed to launch browser")
	ErrPageCreate         = errors.New("failed to create browser page")
	ErrSetHeaders         = errors.New("failed to set request headers")
	ErrNavigation         = errors.New("navigation failed")
	ErrScreenshot         = errors.New("screenshot capture failed")
	ErrPDFGeneration      = errors.New("PDF generation failed")
	ErrWriteFile          = errors.New("failed to write artifact")
	ErrBrowserClose       = errors.New("failed to close browser")

	// Exporter configuration errors.
	ErrInvalidEngine  = errors.New("invalid browser engine")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// StageError reports which stage of an export had been reached when it
// failed. Err wraps one of the sentinel errors above.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// wrapStep attaches sentinel to a browser error. Cancellation stays
// reachable through errors.Is so callers can tell a timeout from a browser
// failure.
func wrapStep(ctx context.Context, sentinel, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v (%w)", sentinel, err, ctxErr)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
