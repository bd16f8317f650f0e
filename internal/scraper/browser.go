package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"
	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/internal/proxy"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

// BrowserScraper renders pages in a shared Chrome instance, one fresh tab per page
type BrowserScraper struct {
	Config *config.BrowserConfig
	Proxy  *proxy.Manager

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewBrowserScraper launches the browser used for every page of a run
func NewBrowserScraper(ctx context.Context, cfg *config.AppConfig) (*BrowserScraper, error) {
	s := &BrowserScraper{
		Config: &cfg.Browser,
		Proxy:  proxy.NewManager(&cfg.Proxies),
	}

	// Configure browser options
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.Config.Headless),
		chromedp.UserAgent(s.userAgent()),
		chromedp.WindowSize(int(s.Config.ViewportWidth), int(s.Config.ViewportHeight)),
	)
	if s.Config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if s.Config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.Config.ExecPath))
	}
	if s.Config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(s.Config.UserDataDir))
	}

	server, err := s.Proxy.BrowserServer()
	if err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeInvalidConfig, "configuring browser proxy", err)
	}
	if server != "" {
		opts = append(opts, chromedp.ProxyServer(server))
		slog.Info("browser proxy enabled", "proxy", server)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	// Start the browser now so a missing Chrome fails the run up front
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, models.NewSnapshotError(models.ErrCodeRender, "starting browser", err)
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocCancel = allocCancel
	return s, nil
}

// Render opens a new tab, loads pageURL until the network settles, scrolls it
// to trigger lazy loading and returns the rendered markup and a full-page PNG.
func (s *BrowserScraper) Render(ctx context.Context, pageURL string) (*models.RenderedPage, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tracker := newIdleTracker(s.Config.IdleMaxInflight)
	chromedp.ListenTarget(tabCtx, tracker.handle)

	// Create the tab before any timeout-bound context is derived from it
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeRender, "opening tab", err)
	}

	setup := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(s.userAgent()).Do(ctx)
		}),
		chromedp.EmulateViewport(s.Config.ViewportWidth, s.Config.ViewportHeight),
	}
	if s.Config.Stealth {
		setup = append(setup, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}))
	}
	if err := chromedp.Run(tabCtx, setup); err != nil {
		return nil, models.NewSnapshotError(models.ErrCodeRender, "preparing tab", err)
	}

	if err := s.navigate(tabCtx, pageURL, tracker); err != nil {
		return nil, err
	}

	var html string
	var loaded bool
	scrollCtx, cancelScroll := context.WithTimeout(tabCtx, s.Config.NavTimeout)
	defer cancelScroll()
	err := chromedp.Run(scrollCtx,
		chromedp.Sleep(s.Config.SettleDelay),
		chromedp.Evaluate(scrollScript(s.Config.ScrollStep, s.Config.ScrollInterval), &loaded, awaitPromise),
		chromedp.Sleep(s.Config.PostScrollDelay),
		chromedp.Evaluate(documentScript, &html),
	)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeRender, "capturing markup")
	}

	var screenshot []byte
	if err := chromedp.Run(tabCtx, chromedp.FullScreenshot(&screenshot, 100)); err != nil {
		return nil, categorizeError(err, models.ErrCodeScreenshot, "capturing screenshot")
	}

	return &models.RenderedPage{
		URL:        pageURL,
		HTML:       html,
		Screenshot: screenshot,
	}, nil
}

// navigate loads the page and waits for network idle within the navigation timeout
func (s *BrowserScraper) navigate(tabCtx context.Context, pageURL string, tracker *idleTracker) error {
	navCtx, cancel := context.WithTimeout(tabCtx, s.Config.NavTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigating to "+pageURL)
	}
	if err := tracker.Wait(navCtx, s.Config.IdleWindow); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "waiting for network idle on "+pageURL)
	}
	return nil
}

// Close shuts the browser down
func (s *BrowserScraper) Close() error {
	if s.browserCtx == nil {
		return nil
	}
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	s.browserCtx = nil
	return err
}

func (s *BrowserScraper) userAgent() string {
	if s.Config.UserAgent != "" {
		return s.Config.UserAgent
	}
	return config.DefaultUserAgent
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// categorizeError types a browser failure, turning an expired deadline into a navigation timeout
func categorizeError(err error, code, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewSnapshotError(models.ErrCodeNavigationTimeout, msg, err)
	}
	return models.NewSnapshotError(code, msg, err)
}
