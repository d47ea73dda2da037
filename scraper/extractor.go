package scraper

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"olx_harvester/models"
	"olx_harvester/normalize"
)

const (
	// cardAnchorSelector finds listing anchors inside the results grid.
	cardAnchorSelector = "div[data-testid='listing-grid'] a.css-1tqlkj0"
	// cardFallbackSelector is the alternate card wrapper OLX serves on some
	// markup variants; used only when the primary selector matches nothing.
	cardFallbackSelector = "div.css-1sw7q4x"

	priceSelector        = "p[data-testid='ad-price']"
	locationDateSelector = "p[data-testid='location-date']"
	titleAnchorSelector  = "a.css-1tqlkj0"

	boundaryMaxHops = 4
)

// Extractor recovers listing summaries from a results page. It is stateless
// per call; validation (dropping cards without URL or id) is the crawler's
// job.
type Extractor struct {
	base *url.URL
}

func NewExtractor(baseURL string) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{base: base}, nil
}

// Extract parses one page and returns a summary per detected card. The
// reference time resolves relative dates ("Сегодня", "Вчера").
func (e *Extractor) Extract(r io.Reader, now time.Time) ([]models.ListingSummary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	matches := doc.Find(cardAnchorSelector)
	if matches.Length() == 0 {
		matches = doc.Find(cardFallbackSelector)
	}

	var out []models.ListingSummary
	matches.Each(func(_ int, s *goquery.Selection) {
		card := recoverCardBoundary(s, boundaryMaxHops)
		out = append(out, e.parseCard(card, now))
	})
	return out, nil
}

// recoverCardBoundary walks up from an anchor until it reaches a block-like
// element (article/div/li), at most maxHops levels. Accepting the nearest
// reasonable container keeps a malformed-markup walk bounded.
func recoverCardBoundary(s *goquery.Selection, maxHops int) *goquery.Selection {
	cur := s
	for i := 0; i < maxHops; i++ {
		if isBlockElement(cur) {
			break
		}
		parent := cur.Parent()
		if parent.Length() == 0 {
			break
		}
		cur = parent
	}
	return cur
}

func isBlockElement(s *goquery.Selection) bool {
	node := s.Get(0)
	if node == nil {
		return false
	}
	switch node.Data {
	case "article", "div", "li":
		return true
	}
	return false
}

func (e *Extractor) parseCard(card *goquery.Selection, now time.Time) models.ListingSummary {
	var row models.ListingSummary

	anchor := card.Find(titleAnchorSelector).First()
	if anchor.Length() > 0 {
		if h4 := anchor.Find("h4").First(); h4.Length() > 0 {
			row.Title = normalize.CollapseSpace(h4.Text())
		} else {
			row.Title = normalize.CollapseSpace(anchor.Text())
		}
		if href, ok := anchor.Attr("href"); ok && href != "" {
			row.URL = e.resolveURL(href)
		}
	}

	row.PriceRaw = normalize.CollapseSpace(card.Find(priceSelector).Text())
	row.PriceValue, row.PriceCurrency = derefPrice(normalize.ParsePrice(row.PriceRaw))

	loc, datePart := normalize.SplitLocationDate(card.Find(locationDateSelector).Text())
	row.LocationText = normalize.CollapseSpace(loc)
	row.PostedDateRaw = normalize.CollapseSpace(datePart)
	date, hhmm := normalize.ParseListingDate(row.PostedDateRaw, now)
	if date != nil {
		row.PostedDate = date.Format("2006-01-02")
	}
	row.TimeRaw = hhmm

	row.CardID = normalize.ExtractCardID(row.URL)
	return row
}

func (e *Extractor) resolveURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return e.base.ResolveReference(ref).String()
}

func derefPrice(value *float64, currency *string) (*float64, string) {
	var cur string
	if currency != nil {
		cur = *currency
	}
	return value, cur
}
