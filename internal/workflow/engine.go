// Package workflow contains the search-and-extract engine: an explicit
// per-term state machine with retry, pacing, identity rotation and
// incremental checkpointing. The engine owns every status transition;
// collaborators are injected through the interfaces below and treated as
// black boxes with a three-way outcome contract (found, not found,
// transient failure).
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbarros/parts-scraper/internal/identity"
	"github.com/rbarros/parts-scraper/internal/models"
	"github.com/rbarros/parts-scraper/internal/scraper"
)

// Store is the durable record of per-term outcomes.
type Store interface {
	Load() ([]models.TermRecord, error)
	SetStatus(row int, status models.Status)
	Checkpoint() error
}

// SearchClient resolves a term to a product page URL. scraper.ErrNotFound
// is the definitive negative; any other error is transient.
type SearchClient interface {
	Search(ctx context.Context, term string, id identity.Identity) (string, error)
}

// Extractor turns a product page into a structured record.
type Extractor interface {
	Extract(ctx context.Context, productURL, term string) (*models.Product, error)
}

// ResultWriter persists one product and returns an artifact identifier.
type ResultWriter interface {
	Save(ctx context.Context, p *models.Product) (string, error)
}

// Pacer spaces requests out and supplies the retry backoff curve.
type Pacer interface {
	Wait(ctx context.Context) error
	Backoff(attempt int) time.Duration
}

// IdentitySource supplies a browser identity per attempt.
type IdentitySource interface {
	Next() identity.Identity
}

// EventPublisher is an optional side channel notified on every found
// product. Publish failures are logged, never propagated.
type EventPublisher interface {
	PublishProductFound(ctx context.Context, p *models.Product, artifact string) error
}

// Options tunes the retry policy.
type Options struct {
	// MaxRetries bounds search/extraction attempts per term.
	MaxRetries int
	// WriteRetryBudget bounds retries caused by artifact write failures.
	// Zero means write failures consume the MaxRetries budget.
	WriteRetryBudget int
}

// Deps are the engine's collaborators. Publisher may be nil.
type Deps struct {
	Store     Store
	Search    SearchClient
	Extract   Extractor
	Writer    ResultWriter
	Pacer     Pacer
	Identity  IdentitySource
	Publisher EventPublisher
	Logger    *slog.Logger
}

type Engine struct {
	store     Store
	search    SearchClient
	extract   Extractor
	writer    ResultWriter
	pacer     Pacer
	identity  IdentitySource
	publisher EventPublisher
	logger    *slog.Logger

	maxRetries  int
	writeBudget int
}

func NewEngine(opts Options, deps Deps) (*Engine, error) {
	if deps.Store == nil || deps.Search == nil || deps.Extract == nil ||
		deps.Writer == nil || deps.Pacer == nil || deps.Identity == nil {
		return nil, fmt.Errorf("missing engine dependency")
	}
	if opts.MaxRetries < 1 {
		return nil, fmt.Errorf("max retries must be at least 1")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Engine{
		store:       deps.Store,
		search:      deps.Search,
		extract:     deps.Extract,
		writer:      deps.Writer,
		pacer:       deps.Pacer,
		identity:    deps.Identity,
		publisher:   deps.Publisher,
		logger:      deps.Logger.With("component", "workflow"),
		maxRetries:  opts.MaxRetries,
		writeBudget: opts.WriteRetryBudget,
	}, nil
}

// Run processes every non-terminal term in input order and returns the run
// statistics derived from the final record set. Per-term failures never
// abort the run; only a checkpoint that cannot be persisted does, because
// resumability cannot be guaranteed past that point. External cancellation
// is honored between terms: remaining rows stay pending for the next run.
func (e *Engine) Run(ctx context.Context) (models.RunStats, error) {
	records, err := e.store.Load()
	if err != nil {
		return models.RunStats{}, fmt.Errorf("load progress: %w", err)
	}

	start := time.Now()
	pending := 0
	for _, rec := range records {
		if !rec.Status.Terminal() {
			pending++
		}
	}
	e.logger.Info("run starting", "terms", len(records), "pending", pending)

	for i := range records {
		rec := &records[i]
		if rec.Status.Terminal() {
			continue
		}
		if ctx.Err() != nil {
			e.logger.Info("run cancelled, remaining terms stay pending")
			break
		}

		status, err := e.processTerm(ctx, rec)
		if err != nil {
			// Interrupted mid-wait. The term made no terminal transition,
			// so there is nothing new to persist.
			e.logger.Info("run interrupted", "term", rec.Term, "row", rec.Row)
			break
		}

		rec.Status = status
		e.store.SetStatus(rec.Row, status)

		if err := e.store.Checkpoint(); err != nil {
			// One last flush attempt before giving up on the run.
			if retryErr := e.store.Checkpoint(); retryErr != nil {
				e.logger.Error("checkpoint failed, aborting run", "error", retryErr)
				return models.ComputeStats(records), fmt.Errorf("persist checkpoint: %w", retryErr)
			}
		}
	}

	stats := models.ComputeStats(records)
	e.logger.Info("run finished",
		"total", stats.Total,
		"processed", stats.Processed,
		"found", stats.Found,
		"not_found", stats.NotFound,
		"errors", stats.Errors,
		"pending", stats.Pending,
		"success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate),
		"duration", time.Since(start).Round(time.Second),
	)

	return stats, nil
}

// processTerm drives one term to a terminal status. The returned error is
// non-nil only when the run was cancelled before the term could finish; the
// term then stays pending.
func (e *Engine) processTerm(ctx context.Context, rec *models.TermRecord) (models.Status, error) {
	writeFailures := 0

	for {
		if err := e.pacer.Wait(ctx); err != nil {
			return models.StatusPending, err
		}

		rec.Attempts++
		id := e.identity.Next()

		productURL, err := e.search.Search(ctx, rec.Term, id)
		switch {
		case errors.Is(err, scraper.ErrNotFound):
			// Definitive negative, never retried.
			e.logAttempt(rec, "not_found", nil)
			return models.StatusNotFound, nil

		case err != nil:
			e.logAttempt(rec, "search_failed", err)
			if rec.Attempts >= e.maxRetries {
				return models.StatusError, nil
			}

		default:
			product, extractErr := e.extract.Extract(ctx, productURL, rec.Term)
			if extractErr != nil {
				e.logAttempt(rec, "extract_failed", extractErr)
				if rec.Attempts >= e.maxRetries {
					return models.StatusError, nil
				}
				break
			}

			artifact, writeErr := e.writer.Save(ctx, product)
			if writeErr != nil {
				writeFailures++
				e.logAttempt(rec, "write_failed", writeErr)
				if e.writeBudgetExhausted(rec.Attempts, writeFailures) {
					return models.StatusError, nil
				}
				break
			}

			e.notifyFound(ctx, product, artifact)
			e.logAttempt(rec, "ok", nil)
			return models.StatusOK, nil
		}

		if err := sleepCtx(ctx, e.pacer.Backoff(rec.Attempts)); err != nil {
			return models.StatusPending, err
		}
	}
}

// writeBudgetExhausted applies the configured write-failure policy: an
// independent budget when set, otherwise the shared attempt budget.
func (e *Engine) writeBudgetExhausted(attempts, writeFailures int) bool {
	if e.writeBudget > 0 {
		return writeFailures >= e.writeBudget
	}
	return attempts >= e.maxRetries
}

func (e *Engine) notifyFound(ctx context.Context, product *models.Product, artifact string) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishProductFound(ctx, product, artifact); err != nil {
		e.logger.Warn("event publish failed",
			"term", product.SourceTerm,
			"error", err,
		)
	}
}

func (e *Engine) logAttempt(rec *models.TermRecord, outcome string, err error) {
	attrs := []any{
		"term", rec.Term,
		"row", rec.Row,
		"attempt", rec.Attempts,
		"outcome", outcome,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
		e.logger.Warn("term attempt", attrs...)
		return
	}
	e.logger.Info("term attempt", attrs...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
