package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rbarros/parts-scraper/internal/models"
)

// Writer persists one product record and returns an artifact identifier.
type Writer interface {
	Save(ctx context.Context, p *models.Product) (string, error)
}

const maxNameLen = 100

var invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
var whitespace = regexp.MustCompile(`\s+`)

// artifact is the on-disk envelope: run metadata plus the product record.
type artifact struct {
	Metadata metadata        `json:"metadata"`
	Product  *models.Product `json:"product"`
}

type metadata struct {
	Timestamp      time.Time `json:"timestamp"`
	ScraperVersion string    `json:"scraper_version"`
	SourceTerm     string    `json:"source_term"`
}

// JSONWriter writes one JSON document per found product, named
// deterministically from the source term with a numeric suffix on collision.
type JSONWriter struct {
	dir    string
	logger *slog.Logger
}

func NewJSONWriter(dir string, logger *slog.Logger) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &JSONWriter{
		dir:    dir,
		logger: logger.With("component", "result_writer"),
	}, nil
}

// Save serializes the product to <term>.json under the output directory.
// The write goes through a temp file and rename so readers never see a
// half-written artifact.
func (w *JSONWriter) Save(ctx context.Context, p *models.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := artifact{
		Metadata: metadata{
			Timestamp:      time.Now(),
			ScraperVersion: p.ScraperVersion,
			SourceTerm:     p.SourceTerm,
		},
		Product: p,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal product: %w", err)
	}

	path := w.uniquePath(SanitizeName(p.SourceTerm))

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize artifact: %w", err)
	}

	w.logger.Info("product saved", "term", p.SourceTerm, "path", path)
	return path, nil
}

func (w *JSONWriter) uniquePath(name string) string {
	path := filepath.Join(w.dir, name+".json")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(w.dir, fmt.Sprintf("%s_%d.json", name, n))
	}
}

// SanitizeName turns a search term into a safe file name: invalid characters
// stripped, whitespace collapsed to underscores, length capped.
func SanitizeName(term string) string {
	name := invalidNameChars.ReplaceAllString(term, "")
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if name == "" {
		name = "produto_sem_codigo"
	}
	return name
}

// MultiWriter fans a product out to several sinks and returns the first
// sink's artifact identifier. Any sink failure fails the save, which makes
// the whole write retryable by the engine.
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) Save(ctx context.Context, p *models.Product) (string, error) {
	var first string
	for i, w := range m.writers {
		id, err := w.Save(ctx, p)
		if err != nil {
			return "", fmt.Errorf("sink %d: %w", i, err)
		}
		if first == "" {
			first = id
		}
	}
	return first, nil
}
