package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/handiism/domestika-downloader/internal/session"
)

// Expressions evaluated against window.__INITIAL_PROPS__, the object unit
// page scripts populate after load.
const (
	propsReadyExpression = `typeof window.__INITIAL_PROPS__ !== "undefined"`
	propsExpression      = `JSON.stringify(window.__INITIAL_PROPS__ ?? null)`
)

// DefaultUserAgent is sent instead of Chrome's headless user agent, which
// names HeadlessChrome.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"

// DefaultBlockedResources are aborted before they reach the network.
var DefaultBlockedResources = []network.ResourceType{
	network.ResourceTypeStylesheet,
	network.ResourceTypeFont,
	network.ResourceTypeImage,
}

// Wait selects what Navigate waits for before reading the page.
type Wait int

const (
	// WaitDOM waits for the document body to be ready.
	WaitDOM Wait = iota

	// WaitProps additionally waits for window.__INITIAL_PROPS__ to be set
	// by page scripts, up to Options.PropsWait.
	WaitProps
)

// Options configures the browser process and page.
type Options struct {
	// Headless runs Chrome without a window.
	Headless bool

	// ExecPath overrides the Chrome binary. Empty uses chromedp's lookup.
	ExecPath string

	// UserAgent replaces the browser's user agent. Empty keeps Chrome's own.
	UserAgent string

	// PropsWait bounds how long WaitProps polls for the props object.
	// When it elapses the page is read anyway and Props is "null".
	PropsWait time.Duration

	// BlockedResources lists request types that are aborted.
	BlockedResources []network.ResourceType
}

// DefaultOptions returns headless options blocking styles, fonts and images
// and presenting a regular desktop user agent.
func DefaultOptions() Options {
	return Options{
		Headless:         true,
		UserAgent:        DefaultUserAgent,
		PropsWait:        15 * time.Second,
		BlockedResources: DefaultBlockedResources,
	}
}

// Document is the rendered state of a page after navigation.
type Document struct {
	// URL is the requested URL.
	URL string

	// HTML is the outer HTML of the document after scripts ran.
	HTML string

	// Props is the JSON serialization of window.__INITIAL_PROPS__, or
	// "null" when the page does not define it. Only set for WaitProps.
	Props []byte
}

// NavigationError is returned when a page cannot be loaded.
type NavigationError struct {
	URL    string
	Status int64
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("navigate %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Session is one browser process with one controlled page.
//
// A Session is not safe for concurrent navigation; open one Session per
// concurrent traversal.
type Session struct {
	opts Options

	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	tabCtx      context.Context
}

// Open launches a browser and prepares its page: the credential is set,
// request interception is enabled for the blocked resource types and
// there is no navigation timeout. Cancelling ctx kills the browser.
func Open(ctx context.Context, cred *session.Credential, opts Options) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range allocatorFlags(opts) {
		allocOpts = append(allocOpts, chromedp.Flag(f.name, f.value))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:        opts,
		allocCancel: allocCancel,
		tabCancel:   tabCancel,
		tabCtx:      tabCtx,
	}

	s.listenRequests()

	actions := []chromedp.Action{network.Enable()}
	if patterns := requestPatterns(opts.BlockedResources); len(patterns) > 0 {
		actions = append(actions, fetch.Enable().WithPatterns(patterns))
	}
	if cred != nil {
		actions = append(actions, setCookie(cred))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to set up browser page: %w", err)
	}

	return s, nil
}

// Navigate loads url and returns the rendered document.
//
// ctx is checked before navigating; the browser itself is bound to the
// context given to Open. HTTP error statuses are reported as
// *NavigationError like transport failures.
func (s *Session) Navigate(ctx context.Context, url string, wait Wait) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := chromedp.RunResponse(s.tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}
	if resp != nil && resp.Status >= 400 {
		return nil, &NavigationError{URL: url, Status: resp.Status}
	}

	doc := &Document{URL: url}

	if wait == WaitProps {
		doc.Props, err = s.readProps()
		if err != nil {
			return nil, &NavigationError{URL: url, Err: err}
		}
	}

	if err := chromedp.Run(s.tabCtx, chromedp.OuterHTML("html", &doc.HTML, chromedp.ByQuery)); err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	return doc, nil
}

// readProps waits for the props object and returns its JSON form.
func (s *Session) readProps() ([]byte, error) {
	var ready bool
	err := chromedp.Run(s.tabCtx,
		chromedp.Poll(propsReadyExpression, &ready, chromedp.WithPollingTimeout(s.opts.PropsWait)),
	)
	if err != nil && !errors.Is(err, chromedp.ErrPollingTimeout) {
		return nil, err
	}

	var raw string
	if err := chromedp.Run(s.tabCtx, chromedp.Evaluate(propsExpression, &raw)); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

// Close shuts down the page and the browser process.
func (s *Session) Close() error {
	s.tabCancel()
	s.allocCancel()
	return nil
}

// listenRequests fails paused requests of blocked types and continues
// everything else. Only blocked types are paused by the fetch patterns,
// the continue branch covers patterns widened by a caller.
func (s *Session) listenRequests() {
	blocked := make(map[network.ResourceType]bool, len(s.opts.BlockedResources))
	for _, rt := range s.opts.BlockedResources {
		blocked[rt] = true
	}

	chromedp.ListenTarget(s.tabCtx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(s.tabCtx)
			execCtx := cdp.WithExecutor(s.tabCtx, c.Target)
			if blocked[paused.ResourceType] {
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				return
			}
			_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
		}()
	})
}

type allocatorFlag struct {
	name  string
	value interface{}
}

// allocatorFlags returns the Chrome command line flags layered over
// chromedp's defaults. Besides headless mode they hide the automation
// markers a site can probe: navigator.webdriver, the automation infobar
// switch and the HeadlessChrome user agent.
func allocatorFlags(opts Options) []allocatorFlag {
	flags := []allocatorFlag{
		{"headless", opts.Headless},
		{"disable-blink-features", "AutomationControlled"},
		{"enable-automation", false},
	}
	if opts.UserAgent != "" {
		flags = append(flags, allocatorFlag{"user-agent", opts.UserAgent})
	}
	return flags
}

func requestPatterns(types []network.ResourceType) []*fetch.RequestPattern {
	patterns := make([]*fetch.RequestPattern, 0, len(types))
	for _, rt := range types {
		patterns = append(patterns, &fetch.RequestPattern{
			URLPattern:   "*",
			ResourceType: rt,
			RequestStage: fetch.RequestStageRequest,
		})
	}
	return patterns
}

func setCookie(cred *session.Credential) chromedp.Action {
	return network.SetCookie(cred.Name, cred.Value).
		WithDomain(cred.Domain).
		WithPath(cred.Path).
		WithSecure(cred.Secure).
		WithHTTPOnly(cred.HTTPOnly)
}
