package usecase

import (
	"context"
	"net"
	"os"
	"reflect"
	"strings"

	"github.com/kirillkom/document-hub/internal/core/domain"
)

// Markers checked verbatim on transient and HTTP errors.
var rateLimitMarkers = []string{"429", "RESOURCE_EXHAUSTED", "Resource exhausted"}

// Markers checked case-insensitively on every level of the cause chain.
var foldedRateLimitMarkers = []string{"429", "resource_exhausted", "resource exhausted"}

// maxCauseNodes bounds the cause walk for chains built from value errors.
const maxCauseNodes = 64

// ClassifyError maps an upstream failure onto the fixed error taxonomy.
// An error that already carries a ClassifiedError is returned unchanged.
func ClassifyError(err error) *domain.ClassifiedError {
	if err == nil {
		return nil
	}

	chain := causeChain(err)
	for _, node := range chain {
		if classified, ok := node.(*domain.ClassifiedError); ok && classified != nil {
			return classified
		}
	}

	message := err.Error()

	if anyNode(chain, isTransient) {
		if containsAny(message, rateLimitMarkers) {
			return domain.NewClassifiedError(domain.KindRateLimitExceeded, message, err)
		}
		return domain.NewClassifiedError(domain.KindAPIError, message, err)
	}

	if code, ok := httpStatusCode(chain); ok {
		if code == 429 || containsAny(message, rateLimitMarkers) {
			return domain.NewClassifiedError(domain.KindRateLimitExceeded, message, err)
		}
		return domain.NewClassifiedError(domain.KindAPIError, message, err)
	}

	if anyNode(chain, isNetworkOrTimeout) {
		return domain.NewClassifiedError(domain.KindTimeout, message, err)
	}

	for _, node := range chain {
		if containsAny(strings.ToLower(node.Error()), foldedRateLimitMarkers) {
			return domain.NewClassifiedError(domain.KindRateLimitExceeded, message, err)
		}
	}
	return domain.NewClassifiedError(domain.KindUnknown, message, err)
}

// causeChain flattens err and everything it wraps, depth first.
// Already visited nodes are skipped, so cyclic chains terminate.
func causeChain(err error) []error {
	var out []error
	stack := []error{err}
	for len(stack) > 0 && len(out) < maxCauseNodes {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || visited(out, node) {
			continue
		}
		out = append(out, node)

		switch x := node.(type) {
		case interface{ Unwrap() error }:
			if next := x.Unwrap(); next != nil {
				stack = append(stack, next)
			}
		case interface{ Unwrap() []error }:
			causes := x.Unwrap()
			for i := len(causes) - 1; i >= 0; i-- {
				if causes[i] != nil {
					stack = append(stack, causes[i])
				}
			}
		}
	}
	return out
}

func visited(seen []error, node error) bool {
	nodeType := reflect.TypeOf(node)
	if nodeType.Kind() != reflect.Pointer {
		return false
	}
	for _, prev := range seen {
		if reflect.TypeOf(prev) == nodeType && prev == node {
			return true
		}
	}
	return false
}

func anyNode(chain []error, match func(error) bool) bool {
	for _, node := range chain {
		if match(node) {
			return true
		}
	}
	return false
}

func isTransient(err error) bool {
	if err == domain.ErrTemporary {
		return true
	}
	if matcher, ok := err.(interface{ Is(error) bool }); ok {
		return matcher.Is(domain.ErrTemporary)
	}
	return false
}

func httpStatusCode(chain []error) (int, bool) {
	for _, node := range chain {
		if coder, ok := node.(domain.StatusCoder); ok {
			return coder.HTTPStatusCode(), true
		}
	}
	return 0, false
}

func isNetworkOrTimeout(err error) bool {
	if err == context.DeadlineExceeded || err == os.ErrDeadlineExceeded {
		return true
	}
	_, ok := err.(net.Error)
	return ok
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
