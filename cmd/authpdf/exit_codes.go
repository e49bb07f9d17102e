package main

import (
	"errors"
	"os"

	"github.com/alnah/go-authpdf"
	"github.com/alnah/go-authpdf/internal/config"
)

// Exit codes for the authpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // PDF written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or missing required values
	ExitIO      = 3 // Artifact could not be written
	ExitBrowser = 4 // Browser/Chrome errors, navigation included
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, authpdf.ErrBrowserLaunch) ||
		errors.Is(err, authpdf.ErrPageCreate) ||
		errors.Is(err, authpdf.ErrSetHeaders) ||
		errors.Is(err, authpdf.ErrNavigation) ||
		errors.Is(err, authpdf.ErrScreenshot) ||
		errors.Is(err, authpdf.ErrPDFGeneration) ||
		errors.Is(err, authpdf.ErrBrowserClose) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, authpdf.ErrWriteFile) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, authpdf.ErrEmptyURL) ||
		errors.Is(err, authpdf.ErrEmptyAuthorization) ||
		errors.Is(err, authpdf.ErrInvalidEngine) ||
		errors.Is(err, authpdf.ErrInvalidTimeout) ||
		errors.Is(err, ErrMissingRequired) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
