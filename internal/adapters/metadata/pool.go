package metadata

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"

	"bubbleview/pkg/log"
)

// BrowserPool manages a single Chrome process and limits how many tabs are
// open at once (one by default).
type BrowserPool struct {
	ctx    context.Context
	cancel context.CancelFunc

	remoteURL string
	opts      []chromedp.ExecAllocatorOption

	mu    sync.Mutex
	slots *tabSlots
}

// PoolOption configures a BrowserPool.
type PoolOption func(*BrowserPool)

// WithRemoteURL attaches to an already running Chrome through its DevTools
// websocket URL instead of starting one.
func WithRemoteURL(wsURL string) PoolOption {
	return func(bp *BrowserPool) { bp.remoteURL = wsURL }
}

// WithExecPath runs the Chrome or Chromium binary at path.
func WithExecPath(path string) PoolOption {
	return func(bp *BrowserPool) {
		if path != "" {
			bp.opts = append(bp.opts, chromedp.ExecPath(path))
		}
	}
}

// WithMaxTabs allows n tabs at a time.
func WithMaxTabs(n int) PoolOption {
	return func(bp *BrowserPool) {
		if n > 0 {
			bp.slots = newTabSlots(n)
		}
	}
}

// NewBrowserPool starts Chrome (or connects to it) and checks that it
// answers.
func NewBrowserPool(options ...PoolOption) (*BrowserPool, error) {
	bp := &BrowserPool{
		opts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-extensions", true),
			chromedp.Flag("disable-sync", true),
			chromedp.Flag("disable-background-networking", true),
			chromedp.Flag("mute-audio", true),
			chromedp.Flag("no-first-run", true),
		),
		slots: newTabSlots(1),
	}
	for _, opt := range options {
		opt(bp)
	}

	if err := bp.start(); err != nil {
		return nil, err
	}
	return bp, nil
}

// start initializes or restarts the browser.
func (bp *BrowserPool) start() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if bp.remoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), bp.remoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), bp.opts...)
	}
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		ctxCancel()
		allocCancel()
		return err
	}

	bp.ctx = ctx
	bp.cancel = func() {
		ctxCancel()
		allocCancel()
	}
	log.GlobalInfo("browser pool started", "remote", bp.remoteURL != "")
	return nil
}

// WithTab runs fn with exclusive use of a tab. It waits for a free slot
// until ctx is done, and the tab is closed when ctx is canceled.
func (bp *BrowserPool) WithTab(ctx context.Context, fn func(tabCtx context.Context) error) error {
	release, err := bp.slots.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	tabCtx, tabCancel, err := bp.acquireTab()
	if err != nil {
		return err
	}
	defer tabCancel()

	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	return fn(tabCtx)
}

// acquireTab opens a tab, restarting the browser once if the tab does not
// come up.
func (bp *BrowserPool) acquireTab() (context.Context, context.CancelFunc, error) {
	bp.mu.Lock()
	tabCtx, tabCancel := chromedp.NewContext(bp.ctx)
	bp.mu.Unlock()

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		log.GlobalWarn("browser pool tab failed, restarting", "error", err)

		if restartErr := bp.start(); restartErr != nil {
			return nil, nil, restartErr
		}

		bp.mu.Lock()
		tabCtx, tabCancel = chromedp.NewContext(bp.ctx)
		bp.mu.Unlock()
	}
	return tabCtx, tabCancel, nil
}

// Close shuts down the browser.
func (bp *BrowserPool) Close() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.cancel != nil {
		bp.cancel()
		bp.cancel = nil
		log.GlobalInfo("browser pool stopped")
	}
}

// tabSlots is a counting semaphore that gives up when its context ends.
type tabSlots struct {
	ch chan struct{}
}

func newTabSlots(n int) *tabSlots {
	return &tabSlots{ch: make(chan struct{}, n)}
}

func (s *tabSlots) acquire(ctx context.Context) (release func(), err error) {
	select {
	case s.ch <- struct{}{}:
		return func() { <-s.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
