package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchParsesResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"took": 7,
			"hits": {
				"total": {"value": 2},
				"hits": [{"_id": "a"}, {"_id": "b"}]
			}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.Search(context.Background(), "sample-data", map[string]any{"size": 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotPath != "/sample-data/_search" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["size"] != float64(10) {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if res.TookMillis != 7 || res.Total != 2 || len(res.Hits) != 2 {
		t.Fatalf("unexpected result: took=%d total=%d hits=%d", res.TookMillis, res.Total, len(res.Hits))
	}
	if len(res.Raw) == 0 {
		t.Fatalf("raw response must be kept")
	}
}

func TestSearchNonOKReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"cluster_block_exception"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Search(context.Background(), "sample-data", map[string]any{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status code %d", statusErr.StatusCode)
	}
	if statusErr.Body == "" {
		t.Fatalf("expected response body in error")
	}
}

func TestWaitReadyRetriesUntilHealthy(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := New(srv.URL).WaitReady(context.Background(), time.Millisecond, 10)
	if err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected three attempts, got %d", attempts)
	}
}

func TestWaitReadyGivesUpAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New(srv.URL).WaitReady(context.Background(), time.Millisecond, 2)
	if err == nil {
		t.Fatalf("expected readiness failure")
	}
}

func TestWaitReadyHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(srv.URL).WaitReady(ctx, time.Minute, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/present" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ok, err := c.IndexExists(context.Background(), "present")
	if err != nil || !ok {
		t.Fatalf("expected present index, got ok=%v err=%v", ok, err)
	}
	ok, err = c.IndexExists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected missing index, got ok=%v err=%v", ok, err)
	}
}

func TestIndexDocumentReturnsGeneratedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sample-data/_doc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("routing"); got != "1" {
			t.Errorf("expected routing=1, got %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"generated-1"}`))
	}))
	defer srv.Close()

	id, err := New(srv.URL).IndexDocument(context.Background(), "sample-data", "1", map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if id != "generated-1" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestClassifyError(t *testing.T) {
	retryable := ClassifyError(&StatusError{StatusCode: http.StatusTooManyRequests})
	if !retryable.Retry || !retryable.CountFailure {
		t.Fatalf("429 must retry and count, got %+v", retryable)
	}
	server := ClassifyError(&StatusError{StatusCode: http.StatusBadGateway})
	if !server.Retry || !server.CountFailure {
		t.Fatalf("5xx must retry and count, got %+v", server)
	}
	client := ClassifyError(&StatusError{StatusCode: http.StatusBadRequest})
	if client.Retry || client.CountFailure {
		t.Fatalf("4xx must neither retry nor count, got %+v", client)
	}
	cancelled := ClassifyError(context.Canceled)
	if cancelled.Retry || cancelled.CountFailure {
		t.Fatalf("cancellation must neither retry nor count, got %+v", cancelled)
	}
	other := ClassifyError(errors.New("decode search response"))
	if other.Retry || !other.CountFailure {
		t.Fatalf("unknown errors count without retry, got %+v", other)
	}
}
