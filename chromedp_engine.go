package authpdf

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/alnah/go-authpdf/internal/netidle"
)

// Compile-time interface checks
var (
	_ browser    = (*chromedpBrowser)(nil)
	_ page       = (*chromedpPage)(nil)
	_ launchFunc = launchChromedp
)

// chromedpBrowser is a Chrome process owned by a chromedp exec allocator.
// Its first tab is the export page.
type chromedpBrowser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// launchChromedp starts Chrome eagerly so launch errors surface here rather
// than on the first page action.
func launchChromedp(ctx context.Context, cfg launchConfig) (browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.bin != "" {
		opts = append(opts, chromedp.ExecPath(cfg.bin))
	}
	if cfg.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	// The allocator outlives ctx so Close can still shut Chrome down after a
	// timeout.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	b := &chromedpBrowser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
	// The first Run on browserCtx allocates Chrome and binds its lifetime to
	// that context, so it must not run on a derived one.
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		return b, nil
	case <-ctx.Done():
		_ = b.Close()
		return nil, ctx.Err()
	}
}

func (b *chromedpBrowser) NewPage(ctx context.Context) (page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &chromedpPage{browser: b}, nil
}

// Close asks Chrome to exit, then tears down the allocator, which kills the
// process if it is still running.
func (b *chromedpBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = chromedp.Cancel(b.browserCtx)
		b.browserCancel()
		b.allocCancel()
	})
	return b.closeErr
}

// run executes actions on the export tab, canceled when ctx is done.
// Canceling the derived context does not close the tab.
func (b *chromedpBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	execCtx, cancel := context.WithCancel(b.browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithDeadline(execCtx, deadline)
		defer cancelTimeout()
	}

	if err := chromedp.Run(execCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// chromedpPage drives the browser's first tab.
type chromedpPage struct {
	browser *chromedpBrowser
}

func (p *chromedpPage) SetHeaders(ctx context.Context, headers []Header) error {
	h := make(network.Headers, len(headers))
	for _, hdr := range headers {
		h[hdr.Name] = hdr.Value
	}
	return p.browser.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(h),
	)
}

func (p *chromedpPage) Observe(t *netidle.Tracker) {
	chromedp.ListenTarget(p.browser.browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			t.Started(string(e.RequestID), e.Request.URL)
		case *network.EventLoadingFinished:
			t.Finished(string(e.RequestID))
		case *network.EventLoadingFailed:
			t.Failed(string(e.RequestID), e.ErrorText)
		}
	})
}

// Navigate returns once the load event fired; network idle is awaited by the
// caller.
func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.browser.run(ctx, chromedp.Navigate(url))
}

func (p *chromedpPage) URL(ctx context.Context) (string, error) {
	var u string
	if err := p.browser.run(ctx, chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

func (p *chromedpPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// Quality 100 selects PNG encoding.
	if err := p.browser.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromedpPage) PDF(ctx context.Context, s PrintSettings) ([]byte, error) {
	var buf []byte
	err := p.browser.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = cdppage.PrintToPDF().
			WithPaperWidth(s.PaperWidth).
			WithPaperHeight(s.PaperHeight).
			WithMarginTop(s.MarginTop).
			WithMarginRight(s.MarginRight).
			WithMarginBottom(s.MarginBottom).
			WithMarginLeft(s.MarginLeft).
			WithLandscape(s.Landscape).
			WithPrintBackground(s.PrintBackground).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}
