package mercari

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/takumidev/mercari-price-bot/internal/config"
	"github.com/takumidev/mercari-price-bot/internal/logic"
	"github.com/takumidev/mercari-price-bot/internal/models"
	"github.com/takumidev/mercari-price-bot/internal/parser"
	"github.com/takumidev/mercari-price-bot/internal/ratelimit"
)

const (
	modifiedTimeXPath = `//div[@id="item-info"]//div[contains(@class, "merShowMore")]/following-sibling::p[contains(@class, "merText")]`
	closeDialogXPath  = `//span[contains(text(), "閉じる")]/following-sibling::button`
	checkoutLinkXPath = `//a[@data-testid="checkout-link"]`
	timedSaleXPath    = `//button[contains(text(), "タイムセールを終了する")]`
	auctionXPath      = `//p[contains(text(), "オークション開催中")]`
	okButtonXPath     = `//button[contains(text(), "OK")]`
	priceInputSel     = `input[name="price"]`
	shippingFeeXPath  = `//span[@data-testid="shipping-fee"]`
	shippingFeeValue  = `//span[@data-testid="shipping-fee"]/span[contains(@class, "number")]`
	submitXPath       = `//button[contains(text(), "変更する")]`
	keepListingXPath  = `//button[contains(text(), "このまま出品する")]`
	priceDisplayXPath = `//div[@data-testid="price"]`
	priceDisplayValue = `//div[@data-testid="price"]/span[2]`

	editFormTitle = "商品の情報を編集"
)

// ItemExecutor applies the discount decision to one listing through
// its edit page. In debug mode the full flow runs but the submitted
// price is left unchanged.
type ItemExecutor struct {
	parser    *parser.MercariParser
	pacer     *ratelimit.Pacer
	logger    *slog.Logger
	debugMode bool
}

func NewItemExecutor(debugMode bool) *ItemExecutor {
	return &ItemExecutor{
		parser:    parser.NewMercariParser(),
		pacer:     ratelimit.NewPacer(),
		logger:    slog.Default().With("component", "pricedown"),
		debugMode: debugMode,
	}
}

// Execute runs the per-listing state machine against the listing's
// already-open detail page. A nil return means either success or an
// intentional skip; any error aborts the whole profile run.
func (e *ItemExecutor) Execute(page playwright.Page, profile config.Profile, item models.Listing) error {
	logger := e.logger.With("item", item.ID, "name", item.Name)

	if item.Stopped() {
		logger.Info("listing is suspended, skipping")
		return nil
	}

	modifiedText, err := page.Locator(modifiedTimeXPath).First().TextContent()
	if err != nil {
		return fmt.Errorf("failed to read modified time: %w", err)
	}

	elapsed, err := logic.ParseElapsedHours(strings.TrimSpace(modifiedText))
	if err != nil {
		return err
	}
	if elapsed < profile.Interval.Hour {
		logger.Info("modified too recently, skipping", "elapsed_hours", elapsed)
		return nil
	}

	clickIfPresent(page, closeDialogXPath)

	if err := page.Locator(checkoutLinkXPath).First().Click(); err != nil {
		return fmt.Errorf("failed to open the price edit page: %w", err)
	}

	if exists(page, timedSaleXPath) {
		logger.Info("timed sale in progress, skipping")
		return nil
	}

	if exists(page, auctionXPath) {
		logger.Info("auction format, skipping")
		return nil
	}

	if err := waitForTitle(page, editFormTitle, waitTimeout); err != nil {
		return err
	}

	clickIfPresent(page, okButtonXPath)

	priceInput := page.Locator(priceInputSel)
	if err := priceInput.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("price input did not appear: %w", err)
	}

	// Carrier-managed shipping shows its fee on the edit form; the fee
	// is part of the displayed total but not of the editable price.
	shippingFee := 0
	if exists(page, shippingFeeXPath) {
		feeText, err := page.Locator(shippingFeeValue).First().TextContent()
		if err != nil {
			return fmt.Errorf("failed to read shipping fee: %w", err)
		}
		shippingFee, err = e.parser.ParsePrice(feeText)
		if err != nil {
			return fmt.Errorf("failed to parse shipping fee: %w", err)
		}
	}

	price := item.Price - shippingFee

	value, err := priceInput.InputValue()
	if err != nil || value == "" {
		return &PriceRetrievalError{}
	}
	curPrice, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return &PriceRetrievalError{}
	}
	if curPrice != price {
		return &PriceChangedError{Expected: price, Actual: curPrice}
	}

	step, ok := logic.SelectDiscount(profile.Discount, price, shippingFee, item.Favorite)
	if !ok {
		return nil
	}

	newPrice := price
	if !e.debugMode {
		newPrice = logic.RoundPrice(price - step)
	}

	if err := priceInput.Press("ControlOrMeta+a"); err != nil {
		return fmt.Errorf("failed to select the price text: %w", err)
	}
	if err := priceInput.Press("Backspace"); err != nil {
		return fmt.Errorf("failed to clear the price input: %w", err)
	}
	if err := priceInput.PressSequentially(strconv.Itoa(newPrice)); err != nil {
		return fmt.Errorf("failed to type the new price: %w", err)
	}

	e.pacer.Sleep(2 * time.Second)

	if err := page.Locator(submitXPath).First().Click(); err != nil {
		return fmt.Errorf("failed to submit the price change: %w", err)
	}

	time.Sleep(1 * time.Second)
	clickIfPresent(page, keepListingXPath)

	if err := waitPatiently(page, func() error {
		return waitForTitle(page, collapseSpaces(item.Name), waitTimeout)
	}); err != nil {
		return err
	}
	if err := waitPatiently(page, func() error {
		return page.Locator(priceDisplayXPath).WaitFor(playwright.LocatorWaitForOptions{
			Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
		})
	}); err != nil {
		return fmt.Errorf("price display did not appear: %w", err)
	}

	// The just-submitted price is sometimes not reflected until a
	// fresh page load.
	time.Sleep(3 * time.Second)
	if _, err := page.Goto(page.URL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to reload the listing page: %w", err)
	}
	if err := page.Locator(priceDisplayXPath).WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("price display did not reappear after reload: %w", err)
	}

	totalText, err := page.Locator(priceDisplayValue).First().TextContent()
	if err != nil {
		return fmt.Errorf("failed to read the displayed price: %w", err)
	}
	newTotal, err := e.parser.ParsePrice(totalText)
	if err != nil {
		return fmt.Errorf("failed to parse the displayed price: %w", err)
	}

	if newTotal != newPrice+shippingFee {
		return &PriceVerificationError{Expected: newPrice + shippingFee, Actual: newTotal}
	}

	logger.Info("price changed", "old", item.Price, "new", newTotal)
	return nil
}
