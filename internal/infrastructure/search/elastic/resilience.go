package elastic

import (
	"context"
	"errors"
	"net"
	"net/http"

	"querygate/internal/core/domain"
	"querygate/internal/infrastructure/resilience"
)

// ResilientClient guards the hot search path with retries and a circuit
// breaker. Startup-time operations (readiness, index bootstrap) go through
// the bare client.
type ResilientClient struct {
	client *Client
	guard  *resilience.Guard
}

func NewResilient(client *Client, guard *resilience.Guard) *ResilientClient {
	return &ResilientClient{client: client, guard: guard}
}

func (rc *ResilientClient) Search(ctx context.Context, index string, body map[string]any) (*domain.SearchResult, error) {
	var res *domain.SearchResult
	err := rc.guard.Do(ctx, "search", func(ctx context.Context) error {
		var searchErr error
		res, searchErr = rc.client.Search(ctx, index, body)
		return searchErr
	})
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return nil, domain.WrapError(domain.ErrTemporary, "elasticsearch search", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return nil, domain.WrapError(domain.ErrTemporary, "elasticsearch search", err)
		}
		return nil, err
	}
	return res, nil
}

// ClassifyError drives retry and breaker accounting for search calls.
// Cancellation is never retried and never counted; 429 and 5xx responses
// plus transport failures are both.
func ClassifyError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{}
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500 {
			return resilience.Outcome{Retry: true, CountFailure: true}
		}
		return resilience.Outcome{}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Outcome{Retry: true, CountFailure: true}
	}
	return resilience.Outcome{CountFailure: true}
}
