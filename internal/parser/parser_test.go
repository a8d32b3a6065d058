package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `
<html>
<body>
  <nav class="breadcrumb">
    <a href="/">Home</a>
    <a href="/filters">Filters</a>
    <a href="/filters/oil">Oil Filters</a>
  </nav>
  <h1>  Premium   Oil Filter </h1>
  <span class="product-price">R$ 49,90</span>
  <div class="part-number">PU-1001</div>
  <div class="product-image">
    <img src="https://cdn.example.com/p/pu-1001-front.jpg">
    <img src="https://cdn.example.com/p/pu-1001-side.jpg">
    <img src="https://cdn.example.com/p/pu-1001-front.jpg">
  </div>
  <div class="product-description">High flow filter for twin engines.</div>
  <table class="specifications">
    <tr><th>Thread</th><td>3/4-16</td></tr>
    <tr><th>Height</th><td>9 cm</td></tr>
    <tr><td>only-one-cell</td></tr>
  </table>
  <span class="stock-status">In stock</span>
</body>
</html>`

func TestParseProductPage(t *testing.T) {
	p := NewProductParser()

	product, err := p.ParseProductPage(productPage)
	require.NoError(t, err)

	assert.Equal(t, "Premium Oil Filter", product.Name)
	assert.Equal(t, "R$ 49,90", product.Price)
	assert.Equal(t, "PU-1001", product.SKU)
	assert.Equal(t, "High flow filter for twin engines.", product.Description)
	assert.Equal(t, "In stock", product.Availability)
	assert.Equal(t, "Home > Filters > Oil Filters", product.Category)

	// Image order preserved, duplicates dropped.
	assert.Equal(t, []string{
		"https://cdn.example.com/p/pu-1001-front.jpg",
		"https://cdn.example.com/p/pu-1001-side.jpg",
	}, product.Images)

	assert.Equal(t, map[string]string{
		"Thread": "3/4-16",
		"Height": "9 cm",
	}, product.Specifications)
}

func TestParseProductPageSelectorFallbacks(t *testing.T) {
	html := `
	<html><body>
	  <div class="product-title">Brake Pad Set</div>
	  <div class="cost">$12.00</div>
	  <div class="product-specs">
	    <dl><dt>Material</dt><dd>Ceramic</dd></dl>
	  </div>
	</body></html>`

	p := NewProductParser()
	product, err := p.ParseProductPage(html)
	require.NoError(t, err)

	assert.Equal(t, "Brake Pad Set", product.Name)
	assert.Equal(t, "$12.00", product.Price)
	assert.Equal(t, map[string]string{"Material": "Ceramic"}, product.Specifications)
}

func TestParseProductPageEmpty(t *testing.T) {
	p := NewProductParser()

	_, err := p.ParseProductPage(`<html><body><div class="unrelated">x</div></body></html>`)
	assert.ErrorIs(t, err, ErrNoProductData)
}
