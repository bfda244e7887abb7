// Package httpadapter exposes the composed search endpoints over HTTP.
package httpadapter

import (
	"encoding/json"
	"net/http"

	"querygate/internal/core/ports"
	"querygate/internal/core/querybuilder"
	"querygate/internal/observability/metrics"
)

type Options struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	svc      ports.SearchQueryService
	queryLog ports.QueryLog
	metrics  *metrics.Metrics
	opts     Options

	openapiJSON []byte
}

// NewRouter wires the search service and its diagnostics surface. queryLog
// may be nil when the audit log is disabled; searchSchema and docSchema feed
// the generated OpenAPI document.
func NewRouter(
	svc ports.SearchQueryService,
	queryLog ports.QueryLog,
	m *metrics.Metrics,
	searchSchema, docSchema *querybuilder.Schema,
	opts Options,
) (*Router, error) {
	doc, err := buildOpenAPIDoc(searchSchema, docSchema)
	if err != nil {
		return nil, err
	}
	return &Router{
		svc:         svc,
		queryLog:    queryLog,
		metrics:     m,
		opts:        opts,
		openapiJSON: doc,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /search", rt.search)
	mux.HandleFunc("GET /search/debug", rt.searchDebug)
	mux.HandleFunc("GET /search/log", rt.searchLog)
	mux.HandleFunc("GET /documents/{doc_id}", rt.getDocument)
	mux.HandleFunc("GET /openapi.json", rt.openapi)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.opts.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, backpressureWait)
	}
	if rt.opts.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = metricsMiddleware(handler, rt.metrics)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// search executes the composed query and passes the raw Elasticsearch
// response through untouched.
func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	res, err := rt.svc.Search(r.Context(), querybuilder.FromHTTP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, res.Raw)
}

// searchDebug returns the assembled body without executing it.
func (rt *Router) searchDebug(w http.ResponseWriter, r *http.Request) {
	body, err := rt.svc.BuildBody(r.Context(), querybuilder.FromHTTP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (rt *Router) searchLog(w http.ResponseWriter, r *http.Request) {
	if rt.queryLog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "query log is not enabled"})
		return
	}
	records, err := rt.queryLog.Recent(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	hit, err := rt.svc.GetDocument(r.Context(), querybuilder.FromHTTP(r, "doc_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, hit)
}

func (rt *Router) openapi(w http.ResponseWriter, _ *http.Request) {
	writeRawJSON(w, http.StatusOK, rt.openapiJSON)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
