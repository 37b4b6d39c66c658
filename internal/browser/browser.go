// Package browser owns the playwright lifecycle. Each account profile
// is bound to its own persistent Chromium user-data directory so login
// sessions survive between runs.
package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Manager is one live browser session bound to a named profile
// directory. It is not safe for concurrent use; profiles run strictly
// one at a time.
type Manager struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
	profile string
	logger  *slog.Logger
}

type Options struct {
	Headless bool
	Timeout  time.Duration
	DataDir  string
	// ResetProfileOnError deletes the profile's user-data directory
	// when the browser fails to launch, so the next attempt starts
	// from a clean slate.
	ResetProfileOnError bool
	UserAgent           string
	ViewportWidth       int
	ViewportHeight      int
	Locale              string
	TimezoneID          string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		DataDir:        "data/profile",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "ja-JP",
		TimezoneID:     "Asia/Tokyo",
	}
}

// Launch starts playwright and opens a persistent Chromium context
// rooted at the profile's user-data directory. Launch failures are
// fatal to the caller and are never retried here.
func Launch(profileName string, opts *Options) (*Manager, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	userDataDir := ProfileDir(opts.DataDir, profileName)
	if err := os.MkdirAll(userDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	context, err := pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:   &opts.Headless,
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--lang=ja-JP",
		},
	})
	if err != nil {
		pw.Stop()
		if opts.ResetProfileOnError {
			slog.Warn("browser launch failed, clearing profile data",
				"profile", profileName, "dir", userDataDir)
			if rmErr := os.RemoveAll(userDataDir); rmErr != nil {
				slog.Error("failed to clear profile data", "error", rmErr)
			}
		}
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			context.Close()
			pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Manager{
		pw:      pw,
		context: context,
		page:    page,
		profile: profileName,
		logger:  slog.Default().With("component", "browser", "profile", profileName),
	}, nil
}

func (m *Manager) Page() playwright.Page {
	return m.page
}

// CurrentURL returns the page URL, or an empty string when the session
// is already gone. Used for error logging only.
func (m *Manager) CurrentURL() string {
	if m.page == nil {
		return ""
	}
	return m.page.URL()
}

// Screenshot captures the current page as PNG bytes.
func (m *Manager) Screenshot() ([]byte, error) {
	if m.page == nil {
		return nil, fmt.Errorf("no page available")
	}
	shot, err := m.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return shot, nil
}

// Content returns the current page HTML.
func (m *Manager) Content() (string, error) {
	if m.page == nil {
		return "", fmt.Errorf("no page available")
	}
	html, err := m.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

// Close tears the session down on every exit path. Errors are
// collected but never mask the run's own outcome.
func (m *Manager) Close() error {
	var errs []error

	if m.context != nil {
		if err := m.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// ProfileDir returns the user-data directory for a named profile.
func ProfileDir(dataDir, profileName string) string {
	return filepath.Join(dataDir, profileName)
}

// ClearProfile removes a profile's on-disk browser data. Used before a
// session-invalid retry so the relaunch starts clean.
func ClearProfile(dataDir, profileName string) error {
	dir := ProfileDir(dataDir, profileName)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear profile %s: %w", profileName, err)
	}
	return nil
}

// Session-invalid fragments playwright surfaces when the browser
// process died or the automation connection broke mid-run.
var sessionInvalidFragments = []string{
	"Target page, context or browser has been closed",
	"browser has been closed",
	"browser closed",
	"Target closed",
	"Connection closed",
	"websocket: close",
}

// IsSessionInvalid reports whether err means the browser session is no
// longer usable. Only this error class is eligible for the bounded
// profile-run retry; everything else is terminal for the profile.
func IsSessionInvalid(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, fragment := range sessionInvalidFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
