package scraper

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/rbarros/parts-scraper/internal/identity"
)

// Search looks a term up through the site's search box and returns the URL
// of the first matching product page. A rendered result page with no product
// link is ErrNotFound; everything else (timeouts, navigation failures,
// missing search box) is transient.
func (s *SiteScraper) Search(ctx context.Context, term string, id identity.Identity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if err := page.SetExtraHTTPHeaders(id.Headers); err != nil {
		return "", fmt.Errorf("apply identity headers: %w", err)
	}

	if _, err := page.Goto(s.homeURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", fmt.Errorf("open home page: %w", err)
	}

	box, err := s.findSearchBox(page)
	if err != nil {
		return "", err
	}

	if err := box.Fill(term); err != nil {
		return "", fmt.Errorf("fill search box: %w", err)
	}

	if err := s.submitSearch(page, box); err != nil {
		return "", err
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return "", fmt.Errorf("wait for results: %w", err)
	}

	href, err := s.firstProductLink(page)
	if err != nil {
		return "", err
	}
	if href == "" {
		s.logger.Debug("result page rendered without product links", "term", term)
		return "", ErrNotFound
	}

	productURL := s.resolveURL(href)
	s.logger.Debug("product link found", "term", term, "url", productURL)
	return productURL, nil
}

func (s *SiteScraper) findSearchBox(page playwright.Page) (playwright.Locator, error) {
	for _, sel := range searchBoxSelectors {
		box := page.Locator(sel).First()

		count, err := box.Count()
		if err != nil || count == 0 {
			continue
		}

		visible, err := box.IsVisible()
		if err != nil || !visible {
			continue
		}

		return box, nil
	}
	return nil, ErrSearchBoxNotFound
}

// submitSearch tries Enter first, then falls back to the submit button.
func (s *SiteScraper) submitSearch(page playwright.Page, box playwright.Locator) error {
	if err := box.Press("Enter"); err == nil {
		return nil
	}

	for _, sel := range searchButtonSelectors {
		button := page.Locator(sel).First()

		count, err := button.Count()
		if err != nil || count == 0 {
			continue
		}

		if err := button.Click(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not submit search")
}

func (s *SiteScraper) firstProductLink(page playwright.Page) (string, error) {
	for _, sel := range resultLinkSelectors {
		link := page.Locator(sel).First()

		count, err := link.Count()
		if err != nil || count == 0 {
			continue
		}

		href, err := link.GetAttribute("href")
		if err != nil {
			continue
		}
		if href != "" {
			return href, nil
		}
	}
	return "", nil
}
