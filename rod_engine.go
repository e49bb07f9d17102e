package authpdf

import (
	"context"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-authpdf/internal/netidle"
	"github.com/alnah/go-authpdf/internal/process"
)

// Compile-time interface checks
var (
	_ browser    = (*rodBrowser)(nil)
	_ page       = (*rodPage)(nil)
	_ launchFunc = launchRod
)

// rodBrowser is a Chrome process started by rod's launcher.
// Rod automatically downloads Chromium on first run if not found.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	closeOnce sync.Once
	closeErr  error
}

// launchRod starts Chrome and connects to it over CDP.
func launchRod(ctx context.Context, cfg launchConfig) (browser, error) {
	l := launcher.New().Context(ctx).Headless(cfg.headless)
	if cfg.bin != "" {
		l = l.Bin(cfg.bin)
	}
	if cfg.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		killLauncher(l)
		return nil, err
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		killLauncher(l)
		return nil, err
	}
	return &rodBrowser{browser: b, launcher: l}, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: p}, nil
}

// Close closes the CDP session, then makes sure no Chrome process survives.
func (b *rodBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.browser.Close()
		killLauncher(b.launcher)
	})
	return b.closeErr
}

// killLauncher stops the launched process and its helpers.
// Best-effort; renderer and GPU processes can outlive the main PID.
func killLauncher(l *launcher.Launcher) {
	pid := l.PID()
	l.Kill()
	process.KillTree(pid)
}

// rodPage drives one tab through rod.
type rodPage struct {
	page *rod.Page
}

func (p *rodPage) SetHeaders(ctx context.Context, headers []Header) error {
	pairs := make([]string, 0, len(headers)*2)
	for _, h := range headers {
		pairs = append(pairs, h.Name, h.Value)
	}
	// The returned cleanup is not needed: the page dies with the browser.
	_, err := p.page.Context(ctx).SetExtraHeaders(pairs)
	return err
}

func (p *rodPage) Observe(t *netidle.Tracker) {
	wait := p.page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			t.Started(string(e.RequestID), e.Request.URL)
		},
		func(e *proto.NetworkLoadingFinished) {
			t.Finished(string(e.RequestID))
		},
		func(e *proto.NetworkLoadingFailed) {
			t.Failed(string(e.RequestID), e.ErrorText)
		},
	)
	go wait()
}

// Navigate returns once the load event fired; network idle is awaited by the
// caller.
func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	return pg.WaitLoad()
}

func (p *rodPage) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

func (p *rodPage) PDF(ctx context.Context, s PrintSettings) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		Landscape:       s.Landscape,
		PrintBackground: s.PrintBackground,
		PaperWidth:      floatPtr(s.PaperWidth),
		PaperHeight:     floatPtr(s.PaperHeight),
		MarginTop:       floatPtr(s.MarginTop),
		MarginBottom:    floatPtr(s.MarginBottom),
		MarginLeft:      floatPtr(s.MarginLeft),
		MarginRight:     floatPtr(s.MarginRight),
	})
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
