package mercari

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/takumidev/mercari-price-bot/internal/config"
	"github.com/takumidev/mercari-price-bot/internal/notify"
)

const (
	topURL    = "https://jp.mercari.com"
	signinURL = "https://jp.mercari.com/signin"

	accountButtonXPath = `//button[@data-testid="account-button"]`
	lineLoginXPath     = `//button[contains(text(), "LINEでログイン")]`
	lineUserSelector   = `input[name="tid"]`
	linePassSelector   = `input[name="tpasswd"]`
	lineSubmitXPath    = `//button[contains(text(), "ログイン")]`
	verificationXPath  = `//input[@data-testid="verification-code"]`
	loginFailedXPath   = `//*[contains(text(), "メールアドレスまたはパスワードが正しくありません")]`
)

// verificationWait is how long a human gets to complete a CAPTCHA or
// verification-code challenge after being pinged on the chat channel.
const verificationWait = 5 * time.Minute

// Login signs the profile in via the site's LINE federated login. The
// persistent browser profile usually still holds a valid session, in
// which case this is a no-op navigation.
func Login(page playwright.Page, profile config.Profile, notifier notify.Notifier) error {
	logger := slog.Default().With("component", "login", "profile", profile.Name)

	if _, err := page.Goto(topURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open top page: %w", err)
	}

	if exists(page, accountButtonXPath) {
		logger.Info("already logged in")
		return nil
	}

	if _, err := page.Goto(signinURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to open signin page: %w", err)
	}

	if err := page.Locator(lineLoginXPath).First().Click(); err != nil {
		return fmt.Errorf("failed to start LINE login: %w", err)
	}

	userInput := page.Locator(lineUserSelector)
	if err := userInput.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(waitTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("LINE login form did not appear: %w", err)
	}

	if err := userInput.Fill(profile.Line.User); err != nil {
		return fmt.Errorf("failed to enter LINE user: %w", err)
	}
	if err := page.Locator(linePassSelector).Fill(profile.Line.Pass); err != nil {
		return fmt.Errorf("failed to enter LINE password: %w", err)
	}
	if err := page.Locator(lineSubmitXPath).First().Click(); err != nil {
		return fmt.Errorf("failed to submit LINE login: %w", err)
	}

	if exists(page, loginFailedXPath) {
		return &LoginError{Reason: "credentials were rejected"}
	}

	// Verification codes need a human; ping the chat channel and wait.
	timeout := waitTimeout
	if exists(page, verificationXPath) {
		logger.Warn("verification code requested, waiting for manual input")
		if err := notifier.Info("メルカリログイン確認",
			fmt.Sprintf("確認コードの入力が必要です: %s", page.URL())); err != nil {
			logger.Warn("failed to send verification notice", "error", err)
		}
		timeout = verificationWait
	}

	if err := page.Locator(accountButtonXPath).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return &LoginError{Reason: fmt.Sprintf("login did not complete: %v", err)}
	}

	logger.Info("login completed")
	return nil
}
