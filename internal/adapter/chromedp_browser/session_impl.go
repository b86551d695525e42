package chromedp_browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/user/catalog-scraper/internal/adapter/proxy"
	"github.com/user/catalog-scraper/internal/repository"
	"go.uber.org/zap"
)

// Options configures the browser behind every session.
type Options struct {
	Headless           bool
	UserAgent          string
	PageLoadTimeout    time.Duration
	InteractionTimeout time.Duration
	// Rotation, when set, picks a user agent per session and a proxy per browser.
	Rotation *proxy.Manager
}

// SessionFactory starts one browser per session from a shared allocator.
type SessionFactory struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	allocOpts   []chromedp.ExecAllocatorOption
	opts        Options
	logger      *zap.Logger
}

// NewSessionFactory creates a chromedp-backed session factory.
func NewSessionFactory(opts Options, logger *zap.Logger) *SessionFactory {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &SessionFactory{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		allocOpts:   allocOpts,
		opts:        opts,
		logger:      logger,
	}
}

// NewSession starts a fresh browser. The caller owns it and must Close it.
func (f *SessionFactory) NewSession(ctx context.Context) (repository.BrowserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	allocCtx, allocCancel := f.allocCtx, context.CancelFunc(func() {})
	if f.opts.Rotation != nil && f.opts.Rotation.HasProxies() {
		// Chrome takes its proxy at launch, so proxied sessions get their own allocator.
		proxyOpts := append(f.allocOpts[:len(f.allocOpts):len(f.allocOpts)], chromedp.ProxyServer(f.opts.Rotation.GetProxy().String()))
		allocCtx, allocCancel = chromedp.NewExecAllocator(f.allocCtx, proxyOpts...)
	}
	taskCtx, taskCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	cancel := func() {
		taskCancel()
		allocCancel()
	}

	// Run with no actions launches the browser so failures surface here.
	if err := chromedp.Run(taskCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	userAgent := f.opts.UserAgent
	if f.opts.Rotation != nil {
		if ua := f.opts.Rotation.GetUserAgent(); ua != "" {
			userAgent = ua
		}
	}
	return &Session{ctx: taskCtx, cancel: cancel, userAgent: userAgent, opts: f.opts, logger: f.logger}, nil
}

// Close shuts down the allocator. Sessions still open are terminated with it.
func (f *SessionFactory) Close() {
	f.allocCancel()
}

// Session is a single chromedp browser tab.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	userAgent string
	opts      Options
	logger    *zap.Logger
}

// Open navigates to url, bounded by the page load timeout.
func (s *Session) Open(ctx context.Context, url string) error {
	runCtx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	start := time.Now()
	err := chromedp.Run(runCtx,
		emulation.SetUserAgentOverride(s.userAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	s.logger.Debug("page loaded", zap.String("url", url), zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Click waits for locator to be visible and enabled, scrolls it into view and clicks it.
// The whole sequence is bounded by the interaction timeout.
func (s *Session) Click(ctx context.Context, locator string) error {
	runCtx, cancel := s.bounded(ctx, s.opts.InteractionTimeout)
	defer cancel()

	return chromedp.Run(runCtx,
		chromedp.WaitVisible(locator, chromedp.BySearch),
		chromedp.WaitEnabled(locator, chromedp.BySearch),
		chromedp.ScrollIntoView(locator, chromedp.BySearch),
		chromedp.Click(locator, chromedp.BySearch, chromedp.NodeVisible),
	)
}

// ScrollPage scrolls the viewport down by one screen height.
func (s *Session) ScrollPage(ctx context.Context) error {
	runCtx, cancel := s.bounded(ctx, s.opts.InteractionTimeout)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight);`, nil))
}

// Content returns the outer HTML of the current document.
func (s *Session) Content(ctx context.Context) (string, error) {
	runCtx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close terminates the browser behind this session.
func (s *Session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancel()
	return err
}

// bounded derives a run context from the session that also ends when the caller's
// context does.
func (s *Session) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
