package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

// ClassifyTransportError decides retry and breaker accounting for outbound HTTP-style calls.
func ClassifyTransportError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{}
	}
	if IsCircuitOpen(err) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var coder domain.StatusCoder
	if errors.As(err, &coder) {
		retryable := IsRetryableStatus(coder.HTTPStatusCode())
		return ErrorClassification{Retryable: retryable, RecordFailure: retryable}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return ErrorClassification{Retryable: false, RecordFailure: true}
}

// MarkTemporary wraps err with domain.ErrTemporary when the upstream answered with a
// retryable status or the breaker rejected the call. Network failures stay unwrapped.
func MarkTemporary(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	var coder domain.StatusCoder
	if errors.As(err, &coder) && IsRetryableStatus(coder.HTTPStatusCode()) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func IsRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
