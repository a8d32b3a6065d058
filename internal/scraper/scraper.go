// Package scraper drives the target site through Playwright. It implements
// the search/extract collaborator pair consumed by the workflow engine:
// Search resolves a term to a product page URL or a definitive not-found,
// Extract turns a product page into a structured record. Every failure that
// is not ErrNotFound is transient from the engine's point of view.
package scraper

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/rbarros/parts-scraper/internal/browser"
	"github.com/rbarros/parts-scraper/internal/parser"
)

var (
	// ErrNotFound is the definitive negative: the site rendered a result
	// page with no product for the term. Never retried.
	ErrNotFound = errors.New("no product found for term")

	// ErrSearchBoxNotFound means the home page rendered without a usable
	// search input, treated as a transient page-shape failure.
	ErrSearchBoxNotFound = errors.New("search box not found on page")
)

// Selector fallback chains for driving the search flow.
var (
	searchBoxSelectors = []string{
		"#search-input",
		"input[type='search']",
		"#search",
		".search-input",
		"input[name='q']",
		"input[placeholder*='search']",
		"input[placeholder*='Search']",
	}
	searchButtonSelectors = []string{
		"button[type='submit']",
		".search-btn",
		".search-button",
		"input[type='submit']",
	}
	resultLinkSelectors = []string{
		".product-item a[href*='/product/']",
		".search-result-item a[href*='/product/']",
		"[data-testid='product-card'] a",
		".product-card a",
		"a[href*='/product/']",
		"a[href*='/item/']",
		"a[href*='/p/']",
	}
)

// SiteScraper is the Playwright-backed implementation of the search and
// extract contracts.
type SiteScraper struct {
	browser *browser.Browser
	parser  *parser.ProductParser
	baseURL string
	homeURL string
	logger  *slog.Logger
}

func New(b *browser.Browser, p *parser.ProductParser, baseURL, homeURL string, logger *slog.Logger) *SiteScraper {
	return &SiteScraper{
		browser: b,
		parser:  p,
		baseURL: baseURL,
		homeURL: homeURL,
		logger:  logger.With("component", "site_scraper"),
	}
}

// resolveURL makes result hrefs absolute against the site base.
func (s *SiteScraper) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
