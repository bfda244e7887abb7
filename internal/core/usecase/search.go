package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"querygate/internal/core/domain"
	"querygate/internal/core/ports"
	"querygate/internal/core/querybuilder"
)

// SearchObserver receives execution metrics for completed searches.
type SearchObserver interface {
	ObserveSearch(endpoint string, hits int, took time.Duration)
}

// SearchUseCase drives the full pipeline for the search endpoints: body
// assembly via the configured builders, execution against Elasticsearch and
// optional audit logging.
type SearchUseCase struct {
	search   *querybuilder.Builder
	document *querybuilder.Builder
	executor ports.SearchExecutor
	queryLog ports.QueryLog
	observer SearchObserver
	index    string
}

// NewSearchUseCase wires the two builders to the execution collaborator.
// queryLog and observer may be nil when auditing or metrics are disabled.
func NewSearchUseCase(
	search *querybuilder.Builder,
	document *querybuilder.Builder,
	executor ports.SearchExecutor,
	queryLog ports.QueryLog,
	observer SearchObserver,
	index string,
) *SearchUseCase {
	return &SearchUseCase{
		search:   search,
		document: document,
		executor: executor,
		queryLog: queryLog,
		observer: observer,
		index:    index,
	}
}

func (u *SearchUseCase) Search(ctx context.Context, req querybuilder.Request) (*domain.SearchResult, error) {
	body, err := u.search.BuildBody(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := u.executor.Search(ctx, u.index, body)
	if err != nil {
		return nil, err
	}
	u.record(ctx, "search", body, res.Total, time.Since(start))
	return res, nil
}

// BuildBody assembles the search body without executing it, for the debug
// endpoint.
func (u *SearchUseCase) BuildBody(ctx context.Context, req querybuilder.Request) (map[string]any, error) {
	return u.search.BuildBody(ctx, req)
}

// GetDocument runs the single-document builder and returns the hit only when
// the search matched exactly one document.
func (u *SearchUseCase) GetDocument(ctx context.Context, req querybuilder.Request) (json.RawMessage, error) {
	body, err := u.document.BuildBody(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := u.executor.Search(ctx, u.index, body)
	if err != nil {
		return nil, err
	}
	u.record(ctx, "document", body, res.Total, time.Since(start))
	if res.Total != 1 || len(res.Hits) != 1 {
		return nil, domain.WrapError(domain.ErrNotFound, "get document",
			fmt.Errorf("expected exactly one hit, got %d", res.Total))
	}
	return res.Hits[0], nil
}

func (u *SearchUseCase) record(ctx context.Context, endpoint string, body map[string]any, hits int, took time.Duration) {
	if u.observer != nil {
		u.observer.ObserveSearch(endpoint, hits, took)
	}
	if u.queryLog == nil {
		return
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		slog.Warn("query_log_marshal_failed", "endpoint", endpoint, "error", err)
		return
	}
	rec := domain.SearchRecord{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		Index:      u.index,
		Body:       encoded,
		Hits:       hits,
		DurationMS: float64(took.Microseconds()) / 1000.0,
		CreatedAt:  time.Now().UTC(),
	}
	if err := u.queryLog.Record(ctx, rec); err != nil {
		slog.Warn("query_log_record_failed", "endpoint", endpoint, "error", err)
	}
}
