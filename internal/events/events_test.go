package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rbarros/parts-scraper/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeRedis) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, args)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func (f *fakeRedis) Close() error { return nil }

func TestPublishProductFound(t *testing.T) {
	client := &fakeRedis{}
	pub := NewPublisher(client, "stream:products_found", slog.New(slog.NewTextHandler(io.Discard, nil)))

	product := models.NewProduct("vela ngk", "https://site/product/123")
	product.Name = "Vela NGK CR9E"
	product.SKU = "CR9E"
	product.Price = "R$ 35,90"

	err := pub.PublishProductFound(context.Background(), product, "saida/CR9E.json")
	require.NoError(t, err)
	require.Len(t, client.added, 1)

	args := client.added[0]
	assert.Equal(t, "stream:products_found", args.Stream)

	values := args.Values.(map[string]interface{})
	assert.Equal(t, EventTypeProductFound, values["event_type"])
	assert.Equal(t, "vela ngk", values["term"])

	var event ProductFoundEvent
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &event))
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "Vela NGK CR9E", event.Name)
	assert.Equal(t, "saida/CR9E.json", event.Artifact)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublishProductFoundRedisError(t *testing.T) {
	client := &fakeRedis{err: errors.New("connection refused")}
	pub := NewPublisher(client, "stream:products_found", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := pub.PublishProductFound(context.Background(), models.NewProduct("t", "u"), "a")
	assert.Error(t, err)
}
