package fetcher

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// documentTimeout bounds how long we wait for the main document response
const documentTimeout = 30 * time.Second

// RodFetcher implements the Fetcher interface using rod (headless browser)
type RodFetcher struct {
	browser   *rod.Browser
	userAgent string
}

// NewRodFetcher launches a headless Chromium and connects to it
func NewRodFetcher(userAgent string) (*RodFetcher, error) {
	userDataDir := os.Getenv("BOT_DATA_DIR")
	if userDataDir == "" {
		userDataDir = "/tmp/climate-scraper-data"
	}
	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		log.Printf("Warning: Failed to create browser data directory %s: %v\n", userDataDir, err)
		userDataDir = ""
	}

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	// Prefer a system Chrome/Chromium over downloading one
	for _, path := range []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			l = l.Bin(path)
			break
		}
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFetcher{
		browser:   browser,
		userAgent: userAgent,
	}, nil
}

// Close closes the browser
func (rf *RodFetcher) Close() error {
	if rf.browser != nil {
		return rf.browser.Close()
	}
	return nil
}

// Fetch implements the Fetcher interface
func (rf *RodFetcher) Fetch(url string) (string, error) {
	page, err := rf.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: rf.userAgent}); err != nil {
		return "", fmt.Errorf("failed to set user agent: %w", err)
	}

	statusCode := 0
	waitDocument := page.Timeout(documentTimeout).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		statusCode = e.Response.Status
		return true
	})

	log.Printf("Fetching %s (headless browser)\n", url)
	if err := page.Navigate(url); err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	waitDocument()

	if statusCode == 0 {
		return "", &TransportError{URL: url, Err: fmt.Errorf("no document response within %s", documentTimeout)}
	}
	if statusCode != http.StatusOK {
		log.Printf("Request failure for %s: %d\n", url, statusCode)
		return "", &StatusError{URL: url, StatusCode: statusCode}
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed to wait for page load: %w", err)
	}
	if err := page.Timeout(10 * time.Second).WaitStable(500 * time.Millisecond); err != nil {
		log.Printf("Warning: Page did not stabilize within timeout, continuing anyway: %v\n", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	log.Printf("Fetched %s (%d bytes)\n", url, len(html))
	return html, nil
}
