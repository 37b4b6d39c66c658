package mercari

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/takumidev/mercari-price-bot/internal/models"
	"github.com/takumidev/mercari-price-bot/internal/parser"
	"github.com/takumidev/mercari-price-bot/internal/progress"
)

const (
	listingsURL         = "https://jp.mercari.com/mypage/listings"
	listingListSelector = `div[data-testid="listed-item-list"]`
)

// ItemHandler processes one listing with its detail page already open.
type ItemHandler func(item models.Listing) error

// IterateOnDisplay enumerates every on-display listing and runs the
// handler against each one's detail page, reporting progress at every
// listing boundary. A handler error aborts the whole enumeration; skip
// decisions are the handler's own business.
func IterateOnDisplay(page playwright.Page, p *parser.MercariParser, obs progress.Observer, handle ItemHandler) error {
	logger := slog.Default().With("component", "listings")

	if _, err := page.Goto(listingsURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open listings page: %w", err)
	}

	if err := page.Locator(listingListSelector).WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
	}); err != nil {
		// An account with nothing on display renders no list at all.
		logger.Info("no listings on display")
		obs.OnTotalCount(0)
		return nil
	}

	html, err := page.Content()
	if err != nil {
		return fmt.Errorf("failed to read listings page: %w", err)
	}

	listings, err := p.ParseListings(html)
	if err != nil {
		return err
	}

	logger.Info("enumerated listings", "count", len(listings))
	obs.OnTotalCount(len(listings))

	for i, item := range listings {
		obs.OnItemStart(i, len(listings), item)

		if _, err := page.Goto(item.URL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		}); err != nil {
			return fmt.Errorf("failed to open listing %s: %w", item.ID, err)
		}

		if err := handle(item); err != nil {
			return err
		}

		obs.OnItemComplete(i, len(listings), item)
	}

	return nil
}
