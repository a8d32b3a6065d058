package models

import (
	"time"
)

// ScraperVersion is stamped into every artifact's metadata.
const ScraperVersion = "2.0.0"

// Product is the structured record extracted for one found term. It is
// created once per successful extraction and never mutated after being
// handed to a result writer.
type Product struct {
	SourceTerm     string            `json:"source_term"`
	URL            string            `json:"url"`
	Name           string            `json:"name"`
	Price          string            `json:"price"`
	SKU            string            `json:"sku"`
	Images         []string          `json:"images"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
	Availability   string            `json:"availability"`
	Category       string            `json:"category"`
	ScrapedAt      time.Time         `json:"scraped_at"`
	ScraperVersion string            `json:"scraper_version"`
}

// NewProduct returns a product shell for a term with metadata stamped.
func NewProduct(term, url string) *Product {
	return &Product{
		SourceTerm:     term,
		URL:            url,
		Images:         make([]string, 0),
		Specifications: make(map[string]string),
		ScrapedAt:      time.Now(),
		ScraperVersion: ScraperVersion,
	}
}

// HasUsefulData reports whether the extraction yielded at least one field
// worth persisting besides the URL.
func (p *Product) HasUsefulData() bool {
	return p.Name != "" || p.Price != "" || p.SKU != "" || p.Description != ""
}
