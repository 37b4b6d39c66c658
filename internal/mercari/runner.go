package mercari

import (
	"errors"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/takumidev/mercari-price-bot/internal/browser"
	"github.com/takumidev/mercari-price-bot/internal/config"
	"github.com/takumidev/mercari-price-bot/internal/dump"
	"github.com/takumidev/mercari-price-bot/internal/models"
	"github.com/takumidev/mercari-price-bot/internal/notify"
	"github.com/takumidev/mercari-price-bot/internal/parser"
	"github.com/takumidev/mercari-price-bot/internal/progress"
)

const (
	errorTitle      = "メルカリ値下げエラー"
	loginErrorTitle = "メルカリログインエラー"

	// One retry per profile when the browser session dies mid-run.
	sessionRetryBudget = 1
)

// Session is the live browser bound to one profile. *browser.Manager
// is the real implementation; tests substitute fakes.
type Session interface {
	Page() playwright.Page
	CurrentURL() string
	Screenshot() ([]byte, error)
	Content() (string, error)
	Close() error
}

// Runner drives the per-profile pipeline: launch, login, enumerate,
// act per listing. Profiles run strictly sequentially; each owns its
// browser profile directory exclusively for the duration.
type Runner struct {
	Config       *config.Config
	DebugMode    bool
	ResetProfile bool
	Notifier     notify.Notifier
	Observer     progress.Observer
	Logger       *slog.Logger

	Launch  func(profile config.Profile) (Session, error)
	Login   func(s Session, profile config.Profile) error
	Iterate func(s Session, profile config.Profile, obs progress.Observer, handle ItemHandler) error
	Clear   func(profile config.Profile) error
}

// NewRunner wires a Runner against the real browser and site flows.
func NewRunner(cfg *config.Config, debugMode, resetProfile bool, notifier notify.Notifier, observer progress.Observer) *Runner {
	p := parser.NewMercariParser()

	r := &Runner{
		Config:       cfg,
		DebugMode:    debugMode,
		ResetProfile: resetProfile,
		Notifier:     notifier,
		Observer:     observer,
		Logger:       slog.Default().With("component", "runner"),
	}

	r.Launch = func(profile config.Profile) (Session, error) {
		opts := browser.DefaultOptions()
		opts.Headless = cfg.Browser.Headless
		opts.Timeout = cfg.Browser.Timeout()
		opts.DataDir = cfg.Data.Profile
		opts.ResetProfileOnError = resetProfile
		return browser.Launch(profile.Name, opts)
	}
	r.Login = func(s Session, profile config.Profile) error {
		return Login(s.Page(), profile, notifier)
	}
	r.Iterate = func(s Session, profile config.Profile, obs progress.Observer, handle ItemHandler) error {
		return IterateOnDisplay(s.Page(), p, obs, handle)
	}
	r.Clear = func(profile config.Profile) error {
		return browser.ClearProfile(cfg.Data.Profile, profile.Name)
	}

	return r
}

// Run processes every configured profile and returns the summed result
// code (0 per success, -1 per failure). A browser-launch failure is
// the one error that aborts the whole run.
func (r *Runner) Run() (int, error) {
	ret := 0

	for _, profile := range r.Config.Profiles {
		code, err := r.RunProfile(profile)
		if err != nil {
			return ret + code, err
		}
		ret += code
	}

	r.Observer.SetStatus("全プロファイル完了", false)
	return ret, nil
}

// RunProfile runs one profile to completion. Session-invalid errors
// get one retry with the profile's browser data cleared first (when
// enabled); every other failure is terminal for the profile. The
// returned error is non-nil only for a browser-launch failure, which
// is fatal to the caller.
func (r *Runner) RunProfile(profile config.Profile) (int, error) {
	maxAttempts := 1
	if r.ResetProfile {
		maxAttempts = 1 + sessionRetryBudget
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			r.Logger.Warn("session became invalid, clearing profile data and retrying",
				"profile", profile.Name, "attempt", attempt+1)
			r.Observer.SetStatus("セッション無効、リトライ中", true)
			if err := r.Clear(profile); err != nil {
				r.Logger.Error("failed to clear profile data", "profile", profile.Name, "error", err)
			}
		}

		err := r.runOnce(profile)
		if err == nil {
			return 0, nil
		}

		var launchErr *LaunchError
		if errors.As(err, &launchErr) {
			return -1, err
		}

		if browser.IsSessionInvalid(err) {
			lastErr = err
			continue
		}

		// Already reported with screenshot and page dump in runOnce.
		return -1, nil
	}

	// Session-invalid with no retry budget left. The driver may be
	// dead, so the report is text-only.
	r.Logger.Error("profile run failed", "profile", profile.Name, "error", lastErr)
	if err := r.Notifier.Error(errorTitle, lastErr, nil, ""); err != nil {
		r.Logger.Warn("failed to send error notification", "error", err)
	}
	return -1, nil
}

func (r *Runner) runOnce(profile config.Profile) error {
	r.Observer.SetStatus("ブラウザ起動中", false)

	sess, err := r.Launch(profile)
	if err != nil {
		return &LaunchError{Err: err}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			r.Logger.Warn("failed to close browser", "profile", profile.Name, "error", err)
		}
	}()

	runErr := r.runSession(sess, profile)
	if runErr == nil {
		return nil
	}

	if browser.IsSessionInvalid(runErr) {
		return runErr
	}

	r.Logger.Error("profile run failed",
		"profile", profile.Name, "url", sess.CurrentURL(), "error", runErr)
	r.report(sess, runErr)
	return runErr
}

func (r *Runner) runSession(sess Session, profile config.Profile) error {
	r.Observer.SetStatus("ログイン中", false)
	if err := r.Login(sess, profile); err != nil {
		return err
	}

	r.Observer.SetStatus("出品一覧を取得中", false)
	executor := NewItemExecutor(r.DebugMode)
	if err := r.Iterate(sess, profile, r.Observer, func(item models.Listing) error {
		return executor.Execute(sess.Page(), profile, item)
	}); err != nil {
		return err
	}

	r.Observer.SetStatus("完了", false)
	return nil
}

// report captures the failing page and notifies. Notification or dump
// failures are logged, never allowed to mask the run error.
func (r *Runner) report(sess Session, runErr error) {
	screenshot, err := sess.Screenshot()
	if err != nil {
		r.Logger.Warn("failed to capture screenshot", "error", err)
	}
	pageSource, err := sess.Content()
	if err != nil {
		r.Logger.Warn("failed to capture page source", "error", err)
	}

	if r.Config.Data.Dump != "" {
		if _, err := dump.WritePage(r.Config.Data.Dump, screenshot, pageSource); err != nil {
			r.Logger.Warn("failed to write page dump", "error", err)
		}
		if err := dump.Clean(r.Config.Data.Dump, dump.KeepDefault); err != nil {
			r.Logger.Warn("failed to clean dump directory", "error", err)
		}
	}

	title := errorTitle
	var loginErr *LoginError
	if errors.As(runErr, &loginErr) {
		title = loginErrorTitle
	}

	if err := r.Notifier.Error(title, runErr, screenshot, pageSource); err != nil {
		r.Logger.Warn("failed to send error notification", "error", err)
	}
}
