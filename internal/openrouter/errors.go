package openrouter

import "fmt"

// ErrorKind classifies API failures so callers can decide on user messaging
// and retry policy. The client itself never retries.
type ErrorKind string

const (
	KindAuth                ErrorKind = "auth"
	KindInsufficientCredits ErrorKind = "insufficient_credits"
	KindModeration          ErrorKind = "moderation"
	KindTimeout             ErrorKind = "timeout"
	KindRateLimit           ErrorKind = "rate_limit"
	KindProvider            ErrorKind = "provider"
	KindServiceUnavailable  ErrorKind = "service_unavailable"
	KindInvalidRequest      ErrorKind = "invalid_request"
	KindNetwork             ErrorKind = "network"
	KindSchemaValidation    ErrorKind = "schema_validation"
	KindUnknown             ErrorKind = "unknown"
)

// APIError carries the structured metadata of an upstream failure: status
// code, retry-after for rate limits, flagged input for moderation blocks and
// the raw content for schema validation failures.
type APIError struct {
	Kind         ErrorKind
	StatusCode   int
	Message      string
	RetryAfter   string   // 429 only, empty when the header was absent
	FlaggedInput string   // 403 only
	Reasons      []string // 403 only
	RawContent   string   // schema validation only: the unparsable content
	cause        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("openrouter: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("openrouter: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// kindForStatus maps an HTTP status to the error taxonomy.
func kindForStatus(status int) ErrorKind {
	switch status {
	case 401:
		return KindAuth
	case 402:
		return KindInsufficientCredits
	case 403:
		return KindModeration
	case 408:
		return KindTimeout
	case 429:
		return KindRateLimit
	case 502:
		return KindProvider
	case 503:
		return KindServiceUnavailable
	default:
		if status >= 400 && status < 500 {
			return KindInvalidRequest
		}
		return KindUnknown
	}
}
