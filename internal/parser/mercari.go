// Package parser turns fetched page HTML into listing values. It works
// on static HTML snapshots so the extraction rules stay testable
// without a live browser.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/takumidev/mercari-price-bot/internal/models"
)

const itemBaseURL = "https://jp.mercari.com"

type MercariParser struct {
	itemIDPattern *regexp.Regexp
	numberPattern *regexp.Regexp
}

func NewMercariParser() *MercariParser {
	return &MercariParser{
		itemIDPattern: regexp.MustCompile(`/item/(m\d+)`),
		numberPattern: regexp.MustCompile(`[0-9,]+`),
	}
}

// ParseListings extracts all listings from the "on display" page of the
// seller's item list.
func (p *MercariParser) ParseListings(html string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings page: %w", err)
	}

	var listings []models.Listing
	var parseErr error

	doc.Find(`div[data-testid="listed-item-list"] div[data-testid="listed-item"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			listing, err := p.parseListing(s)
			if err != nil {
				parseErr = err
				return false
			}
			listings = append(listings, listing)
			return true
		})

	if parseErr != nil {
		return nil, parseErr
	}

	return listings, nil
}

func (p *MercariParser) parseListing(s *goquery.Selection) (models.Listing, error) {
	href, ok := s.Find(`a[href*="/item/"]`).First().Attr("href")
	if !ok {
		return models.Listing{}, fmt.Errorf("listing without an item link")
	}

	m := p.itemIDPattern.FindStringSubmatch(href)
	if m == nil {
		return models.Listing{}, fmt.Errorf("unexpected item link: %q", href)
	}
	id := m[1]

	name := strings.TrimSpace(s.Find(`span[data-testid="item-label"]`).First().Text())
	if name == "" {
		// Fallback for layouts where only the thumbnail carries the name.
		name = strings.TrimSpace(s.Find("img").First().AttrOr("alt", ""))
	}

	price, err := p.ParsePrice(s.Find(`span[data-testid="price"]`).First().Text())
	if err != nil {
		return models.Listing{}, fmt.Errorf("listing %s: %w", id, err)
	}

	view := p.parseCount(s.Find(`span[data-testid="view-count"]`).First().Text())
	favorite := p.parseCount(s.Find(`span[data-testid="favorite-count"]`).First().Text())

	isStop := 0
	if s.Find(`span[data-testid="suspended-badge"]`).Length() > 0 {
		isStop = 1
	}

	url := href
	if strings.HasPrefix(url, "/") {
		url = itemBaseURL + url
	}

	return models.Listing{
		ID:       id,
		URL:      url,
		Name:     name,
		Price:    price,
		View:     view,
		Favorite: favorite,
		IsStop:   isStop,
	}, nil
}

// ParsePrice parses a displayed yen amount, tolerating the currency
// mark and thousands separators ("¥ 12,800" -> 12800).
func (p *MercariParser) ParsePrice(text string) (int, error) {
	m := p.numberPattern.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no price found in %q", text)
	}

	price, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %w", text, err)
	}

	return price, nil
}

// parseCount is ParsePrice for view/favorite counters, except a missing
// or malformed counter just means zero.
func (p *MercariParser) parseCount(text string) int {
	n, err := p.ParsePrice(text)
	if err != nil {
		return 0
	}
	return n
}
