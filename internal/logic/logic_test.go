package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takumidev/mercari-price-bot/internal/config"
)

func TestParseElapsedHours(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "seconds ago", text: "30秒前", expected: 0},
		{name: "minutes ago", text: "15分前", expected: 0},
		{name: "one hour ago", text: "1時間前", expected: 1},
		{name: "many hours ago", text: "23時間前", expected: 23},
		{name: "one day ago", text: "1日前", expected: 24},
		{name: "a week ago", text: "7日前", expected: 168},
		{name: "one month ago", text: "1か月前", expected: 720},
		{name: "three months ago", text: "3か月前", expected: 2160},
		{name: "half a year or more", text: "半年以上前", expected: 4320},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, err := ParseElapsedHours(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hours)
		})
	}
}

func TestParseElapsedHoursUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "plain text", text: "たった今"},
		{name: "english phrase", text: "3 hours ago"},
		{name: "year phrase", text: "2年前"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseElapsedHours(tt.text)
			require.Error(t, err)

			var parseErr *TimeParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.text, parseErr.Text)
		})
	}
}

func TestParseElapsedHoursDigitConcatenation(t *testing.T) {
	// Every digit in the string is concatenated, not just the leading
	// number. Long-standing behavior, kept on purpose.
	hours, err := ParseElapsedHours("1 2時間前")
	require.NoError(t, err)
	assert.Equal(t, 12, hours)
}

func testRules() []config.DiscountRule {
	return []config.DiscountRule{
		{FavoriteCount: 10, Step: 200, Threshold: 3000},
		{FavoriteCount: 0, Step: 100, Threshold: 1000},
	}
}

func TestSelectDiscount(t *testing.T) {
	tests := []struct {
		name         string
		price        int
		favorite     int
		expectedStep int
		expectedOK   bool
	}{
		{name: "popular listing uses the high-threshold rule", price: 5000, favorite: 15, expectedStep: 200, expectedOK: true},
		{name: "favorite exactly at threshold selects the rule", price: 5000, favorite: 10, expectedStep: 200, expectedOK: true},
		{name: "low favorite falls through to the catch-all", price: 2500, favorite: 2, expectedStep: 100, expectedOK: true},
		{name: "price exactly at the floor is accepted", price: 1000, favorite: 2, expectedStep: 100, expectedOK: true},
		{name: "price below the floor is skipped", price: 900, favorite: 2, expectedStep: 0, expectedOK: false},
		{name: "popular but below the matched rule floor", price: 2500, favorite: 15, expectedStep: 0, expectedOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, ok := SelectDiscount(testRules(), tt.price, 0, tt.favorite)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedStep, step)
		})
	}
}

func TestSelectDiscountOnlyFirstMatchingRuleCounts(t *testing.T) {
	// The matched rule's floor rejects, even though the catch-all's
	// floor would have accepted. Rules are not combined.
	rules := testRules()
	step, ok := SelectDiscount(rules, 2500, 0, 15)
	assert.False(t, ok)
	assert.Zero(t, step)
}

func TestSelectDiscountIndependentOfInputOrder(t *testing.T) {
	reversed := []config.DiscountRule{
		{FavoriteCount: 0, Step: 100, Threshold: 1000},
		{FavoriteCount: 10, Step: 200, Threshold: 3000},
	}

	for _, favorite := range []int{0, 2, 9, 10, 15, 100} {
		for _, price := range []int{500, 999, 1000, 2999, 3000, 5000} {
			stepA, okA := SelectDiscount(testRules(), price, 0, favorite)
			stepB, okB := SelectDiscount(reversed, price, 0, favorite)
			assert.Equal(t, okA, okB, "favorite=%d price=%d", favorite, price)
			assert.Equal(t, stepA, stepB, "favorite=%d price=%d", favorite, price)
		}
	}
}

func TestSelectDiscountNoCatchAll(t *testing.T) {
	rules := []config.DiscountRule{
		{FavoriteCount: 5, Step: 100, Threshold: 1000},
	}

	step, ok := SelectDiscount(rules, 5000, 0, 3)
	assert.False(t, ok)
	assert.Zero(t, step)
}

func TestSelectDiscountDoesNotMutateInput(t *testing.T) {
	rules := []config.DiscountRule{
		{FavoriteCount: 0, Step: 100, Threshold: 1000},
		{FavoriteCount: 10, Step: 200, Threshold: 3000},
	}

	SelectDiscount(rules, 5000, 0, 15)
	assert.Equal(t, 0, rules[0].FavoriteCount)
	assert.Equal(t, 10, rules[1].FavoriteCount)
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		price    int
		expected int
	}{
		{price: 0, expected: 0},
		{price: 9, expected: 0},
		{price: 10, expected: 10},
		{price: 4800, expected: 4800},
		{price: 4805, expected: 4800},
		{price: 4809, expected: 4800},
		{price: 2400, expected: 2400},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoundPrice(tt.price), "price=%d", tt.price)
	}
}

func TestRoundPriceProperties(t *testing.T) {
	for price := 0; price <= 1000; price++ {
		rounded := RoundPrice(price)
		assert.Equal(t, rounded, RoundPrice(rounded), "idempotence at %d", price)
		assert.LessOrEqual(t, rounded, price)
		assert.Zero(t, rounded%10)
		assert.Less(t, price-rounded, 10)
	}
}

func TestDiscountScenarios(t *testing.T) {
	// Full decision chains as they run per listing.
	t.Run("popular listing", func(t *testing.T) {
		step, ok := SelectDiscount(testRules(), 5000, 0, 15)
		require.True(t, ok)
		assert.Equal(t, 4800, RoundPrice(5000-step))
	})

	t.Run("catch-all listing", func(t *testing.T) {
		step, ok := SelectDiscount(testRules(), 2500, 0, 2)
		require.True(t, ok)
		assert.Equal(t, 2400, RoundPrice(2500-step))
	})

	t.Run("below floor skips without mutation", func(t *testing.T) {
		_, ok := SelectDiscount(testRules(), 900, 0, 2)
		assert.False(t, ok)
	})
}

func TestTimeParseErrorUnwrapping(t *testing.T) {
	_, err := ParseElapsedHours("unknown")
	var parseErr *TimeParseError
	assert.True(t, errors.As(err, &parseErr))
}
