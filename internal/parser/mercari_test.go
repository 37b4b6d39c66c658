package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingsPageHTML = `<!DOCTYPE html>
<html>
<body>
	<div data-testid="listed-item-list">
		<div data-testid="listed-item">
			<a href="/item/m12345678901">
				<img alt="ノートパソコン" src="thumb1.jpg" />
			</a>
			<span data-testid="item-label">ノートパソコン</span>
			<span data-testid="price">¥12,800</span>
			<span data-testid="view-count">320</span>
			<span data-testid="favorite-count">15</span>
		</div>
		<div data-testid="listed-item">
			<a href="/item/m98765432109">
				<img alt="コーヒーミル" src="thumb2.jpg" />
			</a>
			<span data-testid="item-label">コーヒーミル</span>
			<span data-testid="price">¥2,500</span>
			<span data-testid="view-count">48</span>
			<span data-testid="favorite-count">2</span>
			<span data-testid="suspended-badge">公開停止中</span>
		</div>
	</div>
</body>
</html>`

func TestParseListings(t *testing.T) {
	p := NewMercariParser()

	listings, err := p.ParseListings(listingsPageHTML)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "m12345678901", first.ID)
	assert.Equal(t, "https://jp.mercari.com/item/m12345678901", first.URL)
	assert.Equal(t, "ノートパソコン", first.Name)
	assert.Equal(t, 12800, first.Price)
	assert.Equal(t, 320, first.View)
	assert.Equal(t, 15, first.Favorite)
	assert.False(t, first.Stopped())

	second := listings[1]
	assert.Equal(t, "m98765432109", second.ID)
	assert.Equal(t, 2500, second.Price)
	assert.Equal(t, 2, second.Favorite)
	assert.True(t, second.Stopped())
}

func TestParseListingsEmptyPage(t *testing.T) {
	p := NewMercariParser()

	listings, err := p.ParseListings(`<html><body><div data-testid="listed-item-list"></div></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestParseListingsMissingLink(t *testing.T) {
	p := NewMercariParser()

	html := `<div data-testid="listed-item-list">
		<div data-testid="listed-item"><span data-testid="price">¥100</span></div>
	</div>`

	_, err := p.ParseListings(html)
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	p := NewMercariParser()

	tests := []struct {
		name     string
		text     string
		expected int
		hasError bool
	}{
		{name: "plain number", text: "4800", expected: 4800},
		{name: "thousands separator", text: "12,800", expected: 12800},
		{name: "currency mark and spaces", text: " ¥ 1,234,500 ", expected: 1234500},
		{name: "zero", text: "0", expected: 0},
		{name: "no digits", text: "送料込み", hasError: true},
		{name: "empty", text: "", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := p.ParsePrice(tt.text)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, price)
			}
		})
	}
}
