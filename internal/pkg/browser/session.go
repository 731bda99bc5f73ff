// Package browser wraps a headless Chrome session for sources that render
// their pages with JavaScript and offer no usable server-side markup.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultNavTimeout = 60 * time.Second

// Link is one anchor collected from a rendered page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Session is one browser automation flow. Navigation is strictly sequential:
// a shared automation session cannot run two page flows at once, so every
// operation takes the session lock for its full duration. Create one Session
// per browser-driven resolver and fan out across resolvers, not within one.
type Session struct {
	sem       chan struct{}
	headless  bool
	userAgent string
	timeout   time.Duration
}

func NewSession(headless bool, userAgent string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = defaultNavTimeout
	}
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
	}
	return &Session{
		sem:       make(chan struct{}, 1),
		headless:  headless,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Links navigates to pageURL, waits for the page to settle and returns every
// anchor's absolute href and visible text.
func (s *Session) Links(ctx context.Context, pageURL string) ([]Link, error) {
	var links []Link
	err := s.run(ctx, pageURL, chromedp.Evaluate(
		`[...document.querySelectorAll('a[href]')].map(a => ({href: a.href, text: a.innerText}))`,
		&links,
	))
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Text navigates to pageURL and returns the rendered body text.
func (s *Session) Text(ctx context.Context, pageURL string) (string, error) {
	var text string
	err := s.run(ctx, pageURL, chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text))
	return text, err
}

func (s *Session) run(ctx context.Context, pageURL string, extract chromedp.Action) error {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	chromeDir, err := os.MkdirTemp("", "scout_chrome_")
	if err != nil {
		return fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(chromeDir)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(chromeDir),
		chromedp.UserAgent(s.userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancel()

	return chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		// Search pages populate results after load; a short settle pause is
		// more robust than guessing at their ever-changing selectors.
		chromedp.Sleep(1500*time.Millisecond),
		extract,
	)
}
