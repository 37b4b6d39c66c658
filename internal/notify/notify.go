// Package notify delivers error reports and run summaries to the
// configured chat and mail channels. Delivery is fire-and-forget from
// the caller's point of view: a failed notification is logged and must
// never mask the error being reported.
package notify

import (
	"fmt"
	"log/slog"
	"time"
)

// Notifier is the sink the run loop reports through.
type Notifier interface {
	// Error reports a failure. Screenshot (PNG bytes) and pageSource
	// may be empty when the browser is no longer usable.
	Error(title string, err error, screenshot []byte, pageSource string) error
	// Info sends a plain informational message.
	Info(title, body string) error
}

// Noop is the sink used when no notification channel is configured.
type Noop struct{}

func (Noop) Error(string, error, []byte, string) error { return nil }
func (Noop) Info(string, string) error                 { return nil }

// History tracks when each error title was last sent so repeated
// failures of the same kind do not flood the channel. It is scoped to
// one run and reset by construction.
type History struct {
	interval time.Duration
	lastSent map[string]time.Time
	now      func() time.Time
}

func NewHistory(interval time.Duration) *History {
	return &History{
		interval: interval,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// ShouldSend reports whether an error with this title may be sent now,
// and records the send when it may.
func (h *History) ShouldSend(title string) bool {
	if h.interval <= 0 {
		return true
	}

	now := h.now()
	if last, ok := h.lastSent[title]; ok && now.Sub(last) < h.interval {
		return false
	}

	h.lastSent[title] = now
	return true
}

// Limited wraps a sink with a History so repeated error titles within
// the configured interval are suppressed. Info messages always pass.
type Limited struct {
	Inner   Notifier
	History *History
}

func (l *Limited) Error(title string, err error, screenshot []byte, pageSource string) error {
	if !l.History.ShouldSend(title) {
		slog.Debug("error notification suppressed by rate limit", "title", title)
		return nil
	}
	return l.Inner.Error(title, err, screenshot, pageSource)
}

func (l *Limited) Info(title, body string) error {
	return l.Inner.Info(title, body)
}

// Multi fans a notification out to every sink, keeping the first
// failure.
type Multi []Notifier

func (m Multi) Error(title string, err error, screenshot []byte, pageSource string) error {
	var firstErr error
	for _, n := range m {
		if sendErr := n.Error(title, err, screenshot, pageSource); sendErr != nil && firstErr == nil {
			firstErr = fmt.Errorf("notification failed: %w", sendErr)
		}
	}
	return firstErr
}

func (m Multi) Info(title, body string) error {
	var firstErr error
	for _, n := range m {
		if sendErr := n.Info(title, body); sendErr != nil && firstErr == nil {
			firstErr = fmt.Errorf("notification failed: %w", sendErr)
		}
	}
	return firstErr
}
