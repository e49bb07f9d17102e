package authpdf

import (
	"context"
	"fmt"
	"os"

	"github.com/alnah/go-authpdf/internal/netidle"
)

// launchConfig is the engine-independent description of a browser launch.
type launchConfig struct {
	headless  bool
	bin       string
	noSandbox bool
}

// launchFunc starts a browser. Engines implement one each; tests inject fakes.
type launchFunc func(ctx context.Context, cfg launchConfig) (browser, error)

// browser is a running browser owned by a single export.
type browser interface {
	NewPage(ctx context.Context) (page, error)
	// Close releases the browser process. Implementations must tolerate
	// repeated calls.
	Close() error
}

// page is the single tab an export drives.
type page interface {
	SetHeaders(ctx context.Context, headers []Header) error
	// Observe feeds network events into t until the browser is closed.
	Observe(t *netidle.Tracker)
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	PDF(ctx context.Context, s PrintSettings) ([]byte, error)
}

// launcherFor returns the launch function for an engine.
func launcherFor(engine Engine) (launchFunc, error) {
	switch engine {
	case EngineRod:
		return launchRod, nil
	case EngineChromedp:
		return launchChromedp, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidEngine, engine)
}

// resolveLaunchConfig applies environment fallbacks shared by both engines.
func resolveLaunchConfig(cfg exporterConfig) launchConfig {
	lc := launchConfig{
		headless:  cfg.headless,
		bin:       cfg.browserBin,
		noSandbox: cfg.noSandbox,
	}

	// Use pre-installed browser if specified (Docker/containerized environments)
	envBin := os.Getenv("ROD_BROWSER_BIN")
	if lc.bin == "" {
		lc.bin = envBin
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || envBin != "" {
		lc.noSandbox = true
	}
	return lc
}
