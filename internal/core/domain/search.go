package domain

import (
	"encoding/json"
	"time"
)

// SearchResult is the raw outcome of one Elasticsearch search. The engine
// never interprets Raw beyond passing it through; Total and Hits exist for
// the single-document lookup path.
type SearchResult struct {
	Raw        json.RawMessage
	TookMillis int
	Total      int
	Hits       []json.RawMessage
}

// SearchRecord is one entry of the query audit log.
type SearchRecord struct {
	ID         string          `json:"id"`
	Endpoint   string          `json:"endpoint"`
	Index      string          `json:"index"`
	Body       json.RawMessage `json:"body"`
	Hits       int             `json:"hits"`
	DurationMS float64         `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}
