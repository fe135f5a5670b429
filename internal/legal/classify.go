package legal

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/dispatch"
)

// ErrorType values reported in technicalDetails.errorType
const (
	ErrorTypeTimeout  = "TIMEOUT"
	ErrorTypeQuota    = "QUOTA_EXCEEDED"
	ErrorTypeNetwork  = "NETWORK_ERROR"
	ErrorTypeCanceled = "CANCELED"
	ErrorTypeUnknown  = "UNKNOWN"
)

// User-facing failure messages
const (
	MsgUnavailable = "AI analysis service temporarily unavailable. Please try again."
	MsgTimeout     = "Request timeout - our AI is experiencing high load. Please try with a shorter query or try again in a few minutes."
	MsgQuota       = "API usage limits reached. Please try again in a few minutes or contact support."
	MsgOverloaded  = "All AI services are temporarily overloaded. Please try again in 2-3 minutes."
	MsgCanceled    = "The request was cancelled before the analysis finished."
)

// Validation messages for /api/analyze
var (
	ErrQueryRequired = errors.New("Legal query is required")
	ErrQueryTooLong  = errors.New("Query too long. Please limit to 2000 characters for optimal performance.")
)

// Failure is the caller-facing translation of a dispatch error
type Failure struct {
	UserMessage string
	ErrorType   string
}

// ValidateQuery checks that query is present and at most max characters
func ValidateQuery(query string, max int) error {
	if strings.TrimSpace(query) == "" {
		return ErrQueryRequired
	}
	if utf8.RuneCountInString(query) > max {
		return ErrQueryTooLong
	}
	return nil
}

// Classify maps a failed dispatch to a user message and an error type.
// Exhausted dispatches are judged by the kind of their last attempt error.
func Classify(err error) Failure {
	if err == nil {
		return Failure{UserMessage: MsgUnavailable, ErrorType: ErrorTypeUnknown}
	}

	if errors.Is(err, dispatch.ErrCanceled) || errors.Is(err, context.Canceled) {
		return Failure{UserMessage: MsgCanceled, ErrorType: ErrorTypeCanceled}
	}

	var exhausted *dispatch.ExhaustedError
	if !errors.As(err, &exhausted) {
		return Failure{UserMessage: MsgUnavailable, ErrorType: errorType(err.Error())}
	}

	switch exhausted.LastKind() {
	case dispatch.KindTimeout:
		return Failure{UserMessage: MsgTimeout, ErrorType: ErrorTypeTimeout}
	case dispatch.KindRateLimited:
		return Failure{UserMessage: MsgQuota, ErrorType: ErrorTypeQuota}
	case dispatch.KindNetwork:
		return Failure{UserMessage: MsgOverloaded, ErrorType: ErrorTypeNetwork}
	}

	msg := exhausted.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "timeout"):
		return Failure{UserMessage: MsgTimeout, ErrorType: ErrorTypeTimeout}
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return Failure{UserMessage: MsgQuota, ErrorType: ErrorTypeQuota}
	}
	return Failure{UserMessage: MsgOverloaded, ErrorType: errorType(msg)}
}

func errorType(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "timeout"):
		return ErrorTypeTimeout
	case strings.Contains(lower, "quota"):
		return ErrorTypeQuota
	case strings.Contains(lower, "network"):
		return ErrorTypeNetwork
	}
	return ErrorTypeUnknown
}
