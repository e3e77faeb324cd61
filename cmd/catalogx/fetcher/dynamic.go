package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/catalogx/internal/logger"
	"github.com/jmylchreest/catalogx/pkg/fetcher"
)

// DynamicFetcher renders pages in headless Chrome via chromedp. Each fetch
// gets a fresh browser context from the shared allocator.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamicFetcher creates a dynamic fetcher. Chrome is started lazily on
// the first fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	defaults := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = FindChromePath()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	} else {
		logger.Warn("no Chrome binary found - dynamic fetch mode may not work")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created",
		"chrome", cfg.ChromePath,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

// Fetch navigates to targetURL, waits for the page to be ready and returns
// the rendered document. The status is that of the main document response.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// Tear down the browser context when the caller gives up.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var setup []chromedp.Action
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		setup = append(setup, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	if opts.UserAgent != "" {
		setup = append(setup, emulation.SetUserAgentOverride(opts.UserAgent))
	}

	logger.Debug("dynamic fetch starting", "url", targetURL, "timeout", timeout)

	if len(setup) > 0 {
		if err := chromedp.Run(timeoutCtx, setup...); err != nil {
			return result, &fetcher.FetchError{URL: targetURL, Err: fmt.Errorf("browser setup: %w", err)}
		}
	}

	resp, err := chromedp.RunResponse(timeoutCtx, chromedp.Navigate(targetURL))
	if err != nil {
		return result, &fetcher.FetchError{URL: targetURL, Err: fmt.Errorf("navigate: %w", err)}
	}
	if resp != nil {
		result.StatusCode = int(resp.Status)
	}
	if !fetcher.Success(result.StatusCode) {
		return result, &fetcher.FetchError{URL: targetURL, StatusCode: result.StatusCode}
	}

	waitFor := opts.WaitForSelector
	if waitFor == "" {
		waitFor = "body"
	}
	var html string
	if err := chromedp.Run(timeoutCtx,
		chromedp.WaitReady(waitFor),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return result, &fetcher.FetchError{URL: targetURL, StatusCode: result.StatusCode, Err: fmt.Errorf("render: %w", err)}
	}

	// The DOM is serialized as UTF-8 regardless of the source encoding.
	result.HTML = []byte(html)
	result.ContentType = "text/html; charset=utf-8"

	logger.Debug("dynamic fetch complete",
		"url", targetURL,
		"status", result.StatusCode,
		"html_size", len(html))

	return result, nil
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
