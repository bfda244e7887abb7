package ports

import (
	"context"
	"encoding/json"

	"querygate/internal/core/domain"
	"querygate/internal/core/querybuilder"
)

// SearchQueryService is the inbound contract for composed search endpoints.
type SearchQueryService interface {
	Search(ctx context.Context, req querybuilder.Request) (*domain.SearchResult, error)
	BuildBody(ctx context.Context, req querybuilder.Request) (map[string]any, error)
	GetDocument(ctx context.Context, req querybuilder.Request) (json.RawMessage, error)
}
