// Package events publishes product discoveries to a Redis stream so
// downstream consumers (enrichment, indexing) can react without polling the
// output directory.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rbarros/parts-scraper/internal/models"
	"github.com/redis/go-redis/v9"
)

const EventTypeProductFound = "PRODUCT_FOUND"

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// ProductFoundEvent is the stream payload for one extracted product.
type ProductFoundEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	SourceTerm string    `json:"source_term"`
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	Price      string    `json:"price"`
	Artifact   string    `json:"artifact"`
}

// Publisher writes product-found events to a single Redis stream.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// PublishProductFound appends one PRODUCT_FOUND entry to the stream. The
// artifact is the identifier returned by the result writer, so consumers can
// fetch the full record.
func (p *Publisher) PublishProductFound(ctx context.Context, product *models.Product, artifact string) error {
	event := ProductFoundEvent{
		EventID:    uuid.New().String(),
		EventType:  EventTypeProductFound,
		Timestamp:  time.Now().UTC(),
		SourceTerm: product.SourceTerm,
		URL:        product.URL,
		Name:       product.Name,
		SKU:        product.SKU,
		Price:      product.Price,
		Artifact:   artifact,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"event_type": event.EventType,
			"event_id":   event.EventID,
			"term":       event.SourceTerm,
		},
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("event published",
		"stream", p.stream,
		"entry_id", id,
		"term", event.SourceTerm)
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
