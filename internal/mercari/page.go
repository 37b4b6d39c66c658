package mercari

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// waitTimeout bounds every explicit UI-element wait in the per-listing
// flow.
const waitTimeout = 15 * time.Second

var spaceRun = regexp.MustCompile(` +`)

// clickIfPresent clicks the first match if the element exists. Used
// for dialogs that may or may not appear depending on site state.
func clickIfPresent(page playwright.Page, selector string) bool {
	loc := page.Locator(selector).First()

	count, err := loc.Count()
	if err != nil || count == 0 {
		return false
	}

	if err := loc.Click(); err != nil {
		slog.Debug("optional element did not accept a click", "selector", selector, "error", err)
		return false
	}

	return true
}

func exists(page playwright.Page, selector string) bool {
	count, err := page.Locator(selector).Count()
	return err == nil && count > 0
}

// waitForTitle polls until the page title contains substr.
func waitForTitle(page playwright.Page, substr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		title, err := page.Title()
		if err != nil {
			return fmt.Errorf("failed to read page title: %w", err)
		}
		if strings.Contains(title, substr) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for title to contain %q (got %q)", substr, title)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// waitPatiently runs wait and, if the page was left half-rendered,
// reloads once and tries again. The post-submit flow is known to stall
// intermittently.
func waitPatiently(page playwright.Page, wait func() error) error {
	if err := wait(); err == nil {
		return nil
	}

	if _, err := page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}

	return wait()
}

func collapseSpaces(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}
