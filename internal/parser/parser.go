package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rbarros/parts-scraper/internal/models"
)

// ErrNoProductData means the page was reached but none of the expected
// fields could be located, usually a transient render issue or a redesign.
var ErrNoProductData = errors.New("no product data found on page")

// Selector fallback chains. The site markup is not stable, so each field
// tries a list of selectors in order and takes the first non-empty hit.
var (
	nameSelectors = []string{
		"h1", ".product-title", ".product-name", ".product-heading",
	}
	priceSelectors = []string{
		".price", ".product-price", "[data-testid='price']", ".cost", ".amount",
	}
	skuSelectors = []string{
		".sku", ".product-code", "[data-testid='sku']", ".part-number", ".item-number",
	}
	imageSelectors = []string{
		".product-image img", ".gallery img", ".product-photo img", "img[src*='product']",
	}
	descriptionSelectors = []string{
		".description", ".product-description", ".product-details", ".product-info",
	}
	specSelectors = []string{
		".specifications", ".specs", ".product-specs", ".tech-specs",
	}
	availabilitySelectors = []string{
		".availability", ".stock", ".in-stock", ".stock-status",
	}
	categorySelectors = []string{
		".breadcrumb", ".category", ".product-category", ".nav-path",
	}
)

// ProductParser extracts the structured product fields from a product page.
type ProductParser struct{}

func NewProductParser() *ProductParser {
	return &ProductParser{}
}

// ParseProductPage fills a product record from raw HTML. The source term,
// URL and metadata are stamped by the caller.
func (p *ProductParser) ParseProductPage(html string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	product := &models.Product{
		Images:         make([]string, 0),
		Specifications: make(map[string]string),
	}

	product.Name = firstText(doc, nameSelectors)
	product.Price = firstText(doc, priceSelectors)
	product.SKU = firstText(doc, skuSelectors)
	product.Description = firstText(doc, descriptionSelectors)
	product.Availability = firstText(doc, availabilitySelectors)
	product.Category = parseCategory(doc)
	product.Images = parseImages(doc)
	product.Specifications = parseSpecifications(doc)

	if !product.HasUsefulData() {
		return nil, ErrNoProductData
	}

	return product, nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return collapseWhitespace(text)
		}
	}
	return ""
}

func parseImages(doc *goquery.Document) []string {
	images := make([]string, 0)
	seen := make(map[string]bool)

	for _, sel := range imageSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok {
				return
			}
			src = strings.TrimSpace(src)
			if src == "" || seen[src] {
				return
			}
			seen[src] = true
			images = append(images, src)
		})
		if len(images) > 0 {
			break
		}
	}

	return images
}

// parseSpecifications reads key/value pairs from the spec section, trying
// table rows first and definition lists second.
func parseSpecifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	for _, sel := range specSelectors {
		section := doc.Find(sel).First()
		if section.Length() == 0 {
			continue
		}

		section.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("th, td")
			if cells.Length() < 2 {
				return
			}
			key := collapseWhitespace(strings.TrimSpace(cells.Eq(0).Text()))
			value := collapseWhitespace(strings.TrimSpace(cells.Eq(1).Text()))
			if key != "" && value != "" {
				specs[key] = value
			}
		})

		if len(specs) == 0 {
			section.Find("dt").Each(func(i int, dt *goquery.Selection) {
				key := collapseWhitespace(strings.TrimSpace(dt.Text()))
				value := collapseWhitespace(strings.TrimSpace(dt.NextFiltered("dd").Text()))
				if key != "" && value != "" {
					specs[key] = value
				}
			})
		}

		if len(specs) > 0 {
			break
		}
	}

	return specs
}

// parseCategory flattens the breadcrumb into "a > b > c"; falls back to the
// plain text of the category node when there are no links.
func parseCategory(doc *goquery.Document) string {
	for _, sel := range categorySelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		var parts []string
		node.Find("a, li, span").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			text := collapseWhitespace(strings.TrimSpace(s.Text()))
			if text != "" && text != ">" && text != "/" {
				parts = append(parts, text)
			}
		})

		if len(parts) > 0 {
			return strings.Join(parts, " > ")
		}
		if text := collapseWhitespace(strings.TrimSpace(node.Text())); text != "" {
			return text
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
