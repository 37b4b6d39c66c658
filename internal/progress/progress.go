// Package progress reports run progress to the person watching the
// terminal. Business logic only ever sees the Observer interface; a
// no-op implementation keeps non-interactive runs identical.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/takumidev/mercari-price-bot/internal/models"
)

// Observer receives run-progress callbacks at listing boundaries and
// status transitions (browser launch, login, enumeration, completion).
type Observer interface {
	OnTotalCount(total int)
	OnItemStart(index, total int, listing models.Listing)
	OnItemComplete(index, total int, listing models.Listing)
	SetStatus(status string, isError bool)
}

// Noop discards all progress callbacks.
type Noop struct{}

func (Noop) OnTotalCount(int)                        {}
func (Noop) OnItemStart(int, int, models.Listing)    {}
func (Noop) OnItemComplete(int, int, models.Listing) {}
func (Noop) SetStatus(string, bool)                  {}

const barWidth = 30

var (
	statusStyle = color.New(color.FgWhite, color.BgRed, color.Bold)
	errorStyle  = color.New(color.FgWhite, color.BgHiRed, color.Bold)
	barStyle    = color.New(color.FgRed)
)

// Terminal renders an in-place status line and item progress bar. On a
// non-TTY stream (CI, cron) it degrades to plain log lines.
type Terminal struct {
	out    io.Writer
	isTTY  bool
	start  time.Time
	total  int
	done   int
	status string
	logger *slog.Logger
}

// NewTerminal builds an observer writing to f, detecting whether f is
// an interactive terminal.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{
		out:    f,
		isTTY:  term.IsTerminal(int(f.Fd())),
		start:  time.Now(),
		logger: slog.Default().With("component", "progress"),
	}
}

func (t *Terminal) OnTotalCount(total int) {
	t.total = total
	t.done = 0
	t.render()
}

func (t *Terminal) OnItemStart(_ int, _ int, listing models.Listing) {
	name := listing.Name
	if len([]rune(name)) > 20 {
		name = string([]rune(name)[:17]) + "..."
	}
	t.SetStatus(fmt.Sprintf("処理中: %s", name), false)
}

func (t *Terminal) OnItemComplete(_ int, _ int, _ models.Listing) {
	t.done++
	t.render()
}

func (t *Terminal) SetStatus(status string, isError bool) {
	t.status = status

	if !t.isTTY {
		if isError {
			t.logger.Error(status)
		} else {
			t.logger.Info(status)
		}
		return
	}

	style := statusStyle
	if isError {
		style = errorStyle
	}

	elapsed := time.Since(t.start)
	line := fmt.Sprintf(" メルカリ | %s | %02d:%02d ",
		status, int(elapsed.Minutes()), int(elapsed.Seconds())%60)

	fmt.Fprintf(t.out, "\r\033[K%s", style.Sprint(line))
	t.render()
}

func (t *Terminal) render() {
	if !t.isTTY || t.total == 0 {
		return
	}

	filled := t.done * barWidth / t.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	fmt.Fprintf(t.out, " %s %d/%d", barStyle.Sprint(bar), t.done, t.total)
}

// Finish terminates the in-place line so subsequent output starts
// clean.
func (t *Terminal) Finish() {
	if t.isTTY {
		fmt.Fprintln(t.out)
	}
}
