// Package logic holds the pure decision functions of the price-down
// bot: no browser, no I/O, just the rules that decide whether and by
// how much a listing's price is reduced.
package logic

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/takumidev/mercari-price-bot/internal/config"
)

// Elapsed-hour constants for the coarse phrases the site uses.
const (
	hoursPerDay   = 24
	hoursPerMonth = 24 * 30
	// 半年以上前 ("half a year or more ago") is a fixed phrase with no
	// embedded number.
	hoursHalfYear = 24 * 30 * 6
)

// TimeParseError reports a modified-time text that matched none of the
// known relative-time phrases. Text carries the offending input.
type TimeParseError struct {
	Text string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("failed to parse modified time: %q", e.Text)
}

// ParseElapsedHours converts the listing page's relative modified-time
// text (e.g. "3時間前", "2日前", "1か月前") into elapsed hours.
//
// The embedded number is the concatenation of every digit in the whole
// string, matching the site-facing behavior this bot has always had; a
// stray digit elsewhere in the text would corrupt the result.
func ParseElapsedHours(text string) (int, error) {
	switch {
	case strings.Contains(text, "秒前"), strings.Contains(text, "分前"):
		return 0, nil
	case strings.Contains(text, "時間前"):
		return extractNumber(text, 1)
	case strings.Contains(text, "日前"):
		return extractNumber(text, hoursPerDay)
	case strings.Contains(text, "か月前"):
		return extractNumber(text, hoursPerMonth)
	case strings.Contains(text, "半年以上前"):
		return hoursHalfYear, nil
	default:
		return 0, &TimeParseError{Text: text}
	}
}

func extractNumber(text string, multiplier int) (int, error) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, &TimeParseError{Text: text}
	}

	return n * multiplier, nil
}

// SelectDiscount picks the discount step for a listing, or reports
// that no discount applies. Rules are evaluated in descending
// favorite-count order and only the first rule whose threshold the
// listing's favorite count reaches is consulted: if the price sits at
// or above that rule's floor its step is returned, otherwise the
// listing is skipped. Both comparisons are inclusive.
func SelectDiscount(rules []config.DiscountRule, price, shippingFee, favorite int) (int, bool) {
	sorted := make([]config.DiscountRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FavoriteCount > sorted[j].FavoriteCount
	})

	for _, rule := range sorted {
		if favorite >= rule.FavoriteCount {
			if price >= rule.Threshold {
				return rule.Step, true
			}
			slog.Info("price is below the discount floor, skipping",
				"price", price, "shipping_fee", shippingFee, "floor", rule.Threshold)
			return 0, false
		}
	}

	slog.Info("favorite count does not meet any rule, skipping", "favorite", favorite)
	return 0, false
}

// RoundPrice floors a price to the nearest 10-yen unit.
func RoundPrice(price int) int {
	return (price / 10) * 10
}
