package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps server-side failure details out of responses.
func errorMessage(status int, fallback string) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request: uploaded file is empty or malformed"
	case http.StatusNotFound:
		return "document not found"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fallback
	}
}
