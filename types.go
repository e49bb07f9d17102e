package authpdf

import (
	"fmt"
	"strings"
	"time"
)

// DefaultOutputPrefix names the PDF when Request.OutputPrefix is empty.
const DefaultOutputPrefix = "output"

// ScreenshotName is the diagnostic capture written next to every export.
// It is overwritten on each run.
const ScreenshotName = "debug-screenshot.png"

// Header names sent with every request from the export page.
const (
	HeaderAuthorization = "Authorization"
	HeaderAtlassianXSRF = "X-Atlassian-Token"
	atlassianNoCheck    = "no-check"
)

// Request describes one page export.
type Request struct {
	URL           string // Passed to the browser verbatim
	Authorization string // Value of the Authorization header, opaque
	OutputPrefix  string // ".pdf" is appended; empty = DefaultOutputPrefix
}

// Result describes the artifacts of a successful export.
type Result struct {
	PDFPath        string
	ScreenshotPath string
	FinalURL       string // After redirects
	PDFSize        int
	ScreenshotSize int
	Duration       time.Duration
}

// Header is one outgoing HTTP header.
type Header struct {
	Name  string
	Value string
}

// RequestHeaders returns the headers attached to every request from the
// export page: the caller's authorization value and the static token that
// disables Atlassian's XSRF check for non-browser clients.
func RequestHeaders(auth string) []Header {
	return []Header{
		{Name: HeaderAuthorization, Value: auth},
		{Name: HeaderAtlassianXSRF, Value: atlassianNoCheck},
	}
}

// Engine selects the browser automation backend.
type Engine string

// Supported engines.
const (
	EngineRod      Engine = "rod"
	EngineChromedp Engine = "chromedp"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineRod

// ParseEngine parses an engine name case-insensitively.
// An empty name yields DefaultEngine.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultEngine, nil
	case EngineRod:
		return EngineRod, nil
	case EngineChromedp:
		return EngineChromedp, nil
	}
	return "", fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidEngine, name, EngineRod, EngineChromedp)
}

// Reporter receives progress and failed sub-requests during an export.
// RequestFailed is called from the engine's event goroutine, so
// implementations must be safe for concurrent use.
type Reporter interface {
	Progress(msg string)
	RequestFailed(url, reason string)
}

type nopReporter struct{}

func (nopReporter) Progress(string)              {}
func (nopReporter) RequestFailed(string, string) {}

// Stage is a step of the export lifecycle.
type Stage int

// Export stages, in order.
const (
	StageStart Stage = iota
	StageBrowserLaunched
	StagePageOpened
	StageHeadersSet
	StageNavigated
	StageScreenshotTaken
	StagePDFRendered
	StageBrowserClosed
)

var stageNames = [...]string{
	StageStart:           "start",
	StageBrowserLaunched: "browser launched",
	StagePageOpened:      "page opened",
	StageHeadersSet:      "headers set",
	StageNavigated:       "navigated",
	StageScreenshotTaken: "screenshot taken",
	StagePDFRendered:     "PDF rendered",
	StageBrowserClosed:   "browser closed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}
