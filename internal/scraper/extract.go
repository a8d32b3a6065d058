package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rbarros/parts-scraper/internal/models"
)

// Extract navigates to a product page and parses the structured record.
// Parse failures are transient: the page may simply not have finished
// rendering its dynamic sections.
func (s *SiteScraper) Extract(ctx context.Context, productURL, term string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto(productURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("open product page: %w", err)
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		s.logger.Debug("network did not settle, parsing anyway", "url", productURL)
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}

	parsed, err := s.parser.ParseProductPage(html)
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}

	product := models.NewProduct(term, productURL)
	product.Name = parsed.Name
	product.Price = parsed.Price
	product.SKU = parsed.SKU
	product.Images = parsed.Images
	product.Description = parsed.Description
	product.Specifications = parsed.Specifications
	product.Availability = parsed.Availability
	product.Category = parsed.Category
	product.ScrapedAt = time.Now()

	s.logger.Debug("product extracted",
		"term", term,
		"name", product.Name,
		"sku", product.SKU,
		"images", len(product.Images),
	)

	return product, nil
}
