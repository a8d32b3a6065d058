package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rbarros/parts-scraper/internal/models"
)

const productsSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id              UUID PRIMARY KEY,
		source_term     TEXT NOT NULL,
		url             TEXT NOT NULL UNIQUE,
		name            TEXT,
		price           TEXT,
		sku             TEXT,
		images          JSONB,
		description     TEXT,
		specifications  JSONB,
		availability    TEXT,
		category        TEXT,
		scraper_version TEXT,
		scraped_at      TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// ProductSink stores extracted products, one row per product URL. Re-scraping
// the same URL updates the row in place.
type ProductSink struct {
	db     *DB
	logger *slog.Logger
}

func NewProductSink(db *DB, logger *slog.Logger) *ProductSink {
	return &ProductSink{
		db:     db,
		logger: logger.With("component", "product_sink"),
	}
}

// EnsureSchema creates the products table when it does not exist yet.
func (s *ProductSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, productsSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// Save upserts the product and returns the row ID.
func (s *ProductSink) Save(ctx context.Context, p *models.Product) (string, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return "", fmt.Errorf("failed to marshal images: %w", err)
	}
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return "", fmt.Errorf("failed to marshal specifications: %w", err)
	}

	query := `
		INSERT INTO products (
			id, source_term, url, name, price, sku, images, description,
			specifications, availability, category, scraper_version, scraped_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (url) DO UPDATE SET
			source_term = EXCLUDED.source_term,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			sku = EXCLUDED.sku,
			images = EXCLUDED.images,
			description = EXCLUDED.description,
			specifications = EXCLUDED.specifications,
			availability = EXCLUDED.availability,
			category = EXCLUDED.category,
			scraper_version = EXCLUDED.scraper_version,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id`

	var id uuid.UUID
	err = s.db.QueryRow(ctx, query,
		uuid.New(), p.SourceTerm, p.URL, p.Name, p.Price, p.SKU, images,
		p.Description, specs, p.Availability, p.Category, p.ScraperVersion,
		p.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert product: %w", err)
	}

	s.logger.Debug("product stored", "id", id, "term", p.SourceTerm, "url", p.URL)
	return id.String(), nil
}
