//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels the export on Ctrl+C. The exporter still closes
// Chrome before runMain returns.
// Note: syscall.SIGTERM is not available on Windows.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
