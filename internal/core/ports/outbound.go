package ports

import (
	"context"

	"querygate/internal/core/domain"
)

// SearchExecutor runs one assembled search body against an index. The body
// is opaque to the caller; results are passed through untouched except for
// the hit count used by single-document lookup.
type SearchExecutor interface {
	Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResult, error)
}

// QueryLog records executed searches for later inspection.
type QueryLog interface {
	Record(ctx context.Context, rec domain.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error)
}
