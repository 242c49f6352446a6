package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jarvest/jarvest/common"
)

// networkIdleSettle is the extra settle period WaitNetworkIdle grants for
// late token-minting requests after document ready.
const networkIdleSettle = 2 * time.Second

// ChromeDriver opens headless Chrome sessions via chromedp, binding each
// session to a cloned workspace through --user-data-dir.
type ChromeDriver struct{}

// NewChromeDriver returns the production chromedp driver.
func NewChromeDriver() *ChromeDriver {
	return &ChromeDriver{}
}

type chromeSession struct {
	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// Open launches a browser bound to the workspace. A launch failure is the
// one fatal outcome in the driver: without a session there is nothing to
// sample.
func (d *ChromeDriver) Open(ctx context.Context, opts Options) (Session, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.UserDataDir(opts.UserDataDir),
	)
	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.Flag("profile-directory", opts.ProfileDir))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Starting the browser and enabling the network domain up front keeps
	// cookie reads and injection available for the whole session.
	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("cannot open browser session: %w", err)
	}

	return &chromeSession{
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Navigate loads url and waits per the policy. All failures, including the
// timeout, come back as a soft NavResult so the caller can still sample
// whatever cookies the partial load produced.
func (s *chromeSession) Navigate(ctx context.Context, url string, policy WaitPolicy, timeout time.Duration) NavResult {
	// The caller's context is advisory: an attempt already under way runs to
	// completion bounded by its own timeout, so only a pre-cancelled context
	// short-circuits here.
	if err := ctx.Err(); err != nil {
		return NavResult{URL: url, OK: false, Reason: err.Error()}
	}

	navCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	switch policy {
	case WaitNone:
	case WaitNetworkIdle:
		actions = append(actions,
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(networkIdleSettle))
	default: // WaitDOMReady
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	if err := chromedp.Run(navCtx, actions...); err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "navigation timeout"
		}
		return NavResult{URL: url, OK: false, Reason: reason}
	}
	return NavResult{URL: url, OK: true}
}

// Cookies reads the jar, scoped to urls when given.
func (s *chromeSession) Cookies(ctx context.Context, urls ...string) ([]common.Cookie, error) {
	var raw []*network.Cookie
	err := chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(cctx context.Context) error {
		params := network.GetCookies()
		if len(urls) > 0 {
			params = params.WithURLs(urls)
		}
		var err error
		raw, err = params.Do(cctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("cannot read cookie jar: %w", err)
	}

	out := make([]common.Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := common.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		}
		if c.Expires > 0 {
			cookie.Expires = time.Unix(int64(c.Expires), 0).UTC()
		}
		out = append(out, cookie)
	}
	return out, nil
}

// SetCookies injects the given cookies into the jar. Individual failures
// abort the batch: a partially injected seed is worse than none, since the
// harvest would report cookies the target never saw together.
func (s *chromeSession) SetCookies(ctx context.Context, cookies []common.Cookie) error {
	return chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(cctx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if !c.Expires.IsZero() {
				exp := cdp.TimeSinceEpoch(c.Expires)
				params = params.WithExpires(&exp)
			}
			if err := params.Do(cctx); err != nil {
				return fmt.Errorf("cannot inject cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
}

// Close tears down the browser and its allocator.
func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.cancelCtx()
	s.cancelAlloc()
	return err
}

var _ Driver = (*ChromeDriver)(nil)
var _ Session = (*chromeSession)(nil)
