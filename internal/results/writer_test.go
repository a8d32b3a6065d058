package results

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbarros/parts-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleProduct(term string) *models.Product {
	p := models.NewProduct(term, "https://example.com/product/"+term)
	p.Name = "Oil Filter"
	p.Price = "R$ 49,90"
	p.SKU = term
	return p
}

func TestSaveWritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	w, err := NewJSONWriter(dir, testLogger())
	require.NoError(t, err)

	path, err := w.Save(context.Background(), sampleProduct("PU-1001"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "PU-1001.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc artifact
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "PU-1001", doc.Metadata.SourceTerm)
	assert.Equal(t, models.ScraperVersion, doc.Metadata.ScraperVersion)
	assert.False(t, doc.Metadata.Timestamp.IsZero())
	require.NotNil(t, doc.Product)
	assert.Equal(t, "Oil Filter", doc.Product.Name)
}

func TestSaveDisambiguatesCollisions(t *testing.T) {
	dir := t.TempDir()
	w, err := NewJSONWriter(dir, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := w.Save(ctx, sampleProduct("PU-1001"))
	require.NoError(t, err)
	second, err := w.Save(ctx, sampleProduct("PU-1001"))
	require.NoError(t, err)
	third, err := w.Save(ctx, sampleProduct("PU-1001"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "PU-1001.json"), first)
	assert.Equal(t, filepath.Join(dir, "PU-1001_1.json"), second)
	assert.Equal(t, filepath.Join(dir, "PU-1001_2.json"), third)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "PU-1001", "PU-1001"},
		{"invalid chars stripped", `pu/10\01:x?`, "pu1001x"},
		{"whitespace collapsed", "  oil   filter kit ", "oil_filter_kit"},
		{"empty falls back", "///", "produto_sem_codigo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestSanitizeNameCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefghij"
	}
	assert.Len(t, SanitizeName(long), 100)
}

func TestSaveFailsWhenDirectoryRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewJSONWriter(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = w.Save(context.Background(), sampleProduct("PU-1001"))
	assert.Error(t, err)
}

type stubWriter struct {
	id  string
	err error
	n   int
}

func (s *stubWriter) Save(ctx context.Context, p *models.Product) (string, error) {
	s.n++
	return s.id, s.err
}

func TestMultiWriterFansOut(t *testing.T) {
	a := &stubWriter{id: "a"}
	b := &stubWriter{id: "b"}
	mw := NewMultiWriter(a, b)

	id, err := mw.Save(context.Background(), sampleProduct("PU-1001"))
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestMultiWriterStopsOnFirstError(t *testing.T) {
	boom := errors.New("disk full")
	a := &stubWriter{id: "a", err: boom}
	b := &stubWriter{id: "b"}
	mw := NewMultiWriter(a, b)

	_, err := mw.Save(context.Background(), sampleProduct("PU-1001"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, b.n)
}
