package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"reloadradar/models"
	"reloadradar/utils"

	"github.com/PuerkitoBio/goquery"
)

// Parser turns one supplier's listing markup into normalized entries
type Parser interface {
	Parse(markup []byte, pageURL string) ([]models.ListingEntry, error)
}

// Selectors locate the parts of a product tile. Selectors other than Tile
// are relative to the tile. An empty Link means the tile itself is the
// anchor; an empty Name means the link text is the name.
type Selectors struct {
	Tile        string
	Name        string
	Price       string
	Link        string
	Unavailable string
}

// TileParser extracts one entry per product tile
type TileParser struct {
	Selectors   Selectors
	Corrections Corrections
	Logger      *utils.Logger
}

var _ Parser = (*TileParser)(nil)

var discard = utils.NopLogger()

// Parse returns entries in document order. It fails with a ParseError only
// when no tile matches at all; a tile with a missing name or price is skipped.
func (p *TileParser) Parse(markup []byte, pageURL string) ([]models.ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to read markup: %w", err)
	}

	tiles := doc.Find(p.Selectors.Tile)
	if tiles.Length() == 0 {
		return nil, &ParseError{Selector: p.Selectors.Tile, URL: pageURL}
	}

	base, _ := url.Parse(pageURL)

	entries := make([]models.ListingEntry, 0, tiles.Length())
	tiles.Each(func(_ int, tile *goquery.Selection) {
		link := tile
		if p.Selectors.Link != "" {
			link = tile.Find(p.Selectors.Link).First()
		}

		name := strings.TrimSpace(link.Text())
		if p.Selectors.Name != "" {
			name = strings.TrimSpace(tile.Find(p.Selectors.Name).First().Text())
		}
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			p.logger().Warn("Skipping tile without a name")
			return
		}

		if p.Selectors.Unavailable != "" && tile.Find(p.Selectors.Unavailable).Length() > 0 {
			p.logger().Debug("%s unavailable", name)
			return
		}

		price, err := ParsePrice(tile.Find(p.Selectors.Price).First().Text())
		if err != nil {
			p.logger().Warn("Skipping '%s': %v", name, err)
			return
		}

		href, _ := link.Attr("href")
		entries = append(entries, models.ListingEntry{
			Name:  p.Corrections.Apply(name),
			Price: price,
			URL:   absoluteURL(base, strings.TrimSpace(href)),
		})
	})

	return entries, nil
}

func (p *TileParser) logger() *utils.Logger {
	if p.Logger == nil {
		return discard
	}
	return p.Logger
}

func absoluteURL(base *url.URL, href string) string {
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
