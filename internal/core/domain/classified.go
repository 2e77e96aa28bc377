package domain

type ErrorKind string

const (
	KindRateLimitExceeded ErrorKind = "rate_limit_exceeded"
	KindNoDocumentsFound  ErrorKind = "no_documents_found"
	KindAPIError          ErrorKind = "api_error"
	KindTimeout           ErrorKind = "timeout"
	KindUnknown           ErrorKind = "unknown"
)

var userMessages = map[ErrorKind]string{
	KindRateLimitExceeded: "The AI service is handling too many requests. Please wait a moment and try again.",
	KindNoDocumentsFound:  "No related documents could be searched.",
	KindAPIError:          "An error occurred while communicating with the AI service.",
	KindTimeout:           "The request timed out. Please try again.",
	KindUnknown:           "An unexpected error occurred.",
}

// UserMessage returns the fixed user-facing text for the kind.
func (k ErrorKind) UserMessage() string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}

// ClassifiedError is an upstream failure mapped onto the fixed taxonomy.
// Technical is diagnostic text and must not be shown to users.
type ClassifiedError struct {
	Kind      ErrorKind
	Technical string
	Cause     error
}

func NewClassifiedError(kind ErrorKind, technical string, cause error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Technical: technical, Cause: cause}
}

func (e *ClassifiedError) Error() string {
	if e.Technical == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Technical
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

func (e *ClassifiedError) UserMessage() string {
	return e.Kind.UserMessage()
}
