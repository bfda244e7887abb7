package httpadapter

import (
	"errors"
	"net/http"

	"querygate/internal/core/domain"
	"querygate/internal/core/querybuilder"
)

func writeError(w http.ResponseWriter, err error) {
	var reqErr *querybuilder.RequestError
	if errors.As(err, &reqErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "invalid request parameters",
			"problems": reqErr.Problems,
		})
		return
	}
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
