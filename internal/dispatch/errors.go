package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrEmptyPrompt is returned before any attempt when the prompt is blank
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrCanceled wraps the caller's context error when a dispatch is abandoned
	ErrCanceled = errors.New("dispatch canceled")
	// ErrNoCredentials is returned by New when every configured key is empty
	ErrNoCredentials = errors.New("no API credentials configured")
	// ErrNoModels is returned by New when the model list is empty
	ErrNoModels = errors.New("no models configured")
)

// ErrorKind classifies a failed attempt
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindNetwork         ErrorKind = "network"
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnavailable     ErrorKind = "unavailable"
	KindUpstream        ErrorKind = "upstream"
	KindEmptyResponse   ErrorKind = "empty_response"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindRequest         ErrorKind = "request"
	KindCanceled        ErrorKind = "canceled"
)

// AttemptError describes why one outbound call did not produce a usable answer
type AttemptError struct {
	Model      string
	Credential string
	Kind       ErrorKind
	StatusCode int
	Message    string
	Retryable  bool
	Cause      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Model, e.Credential, e.Message)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}

// CredentialSummary is the per-credential part of an ExhaustedError
type CredentialSummary struct {
	Name         string `json:"name"`
	UsageCount   int64  `json:"usageCount"`
	SuccessCount int64  `json:"successCount"`
	ErrorCount   int64  `json:"errorCount"`
}

// ExhaustedError is the terminal failure of a dispatch that tried every pair
type ExhaustedError struct {
	Attempts    int
	Credentials []CredentialSummary
	LastErr     *AttemptError
	Trace       []Attempt
}

func (e *ExhaustedError) Error() string {
	stats := make([]string, len(e.Credentials))
	for i, c := range e.Credentials {
		stats[i] = fmt.Sprintf("%s: %d/%d success rate", c.Name, c.SuccessCount, c.UsageCount)
	}
	last := "Unknown error"
	if e.LastErr != nil {
		last = e.LastErr.Error()
	}
	return fmt.Sprintf("All AI models and keys failed after %d attempts. Key stats: %s. Last error: %s",
		e.Attempts, strings.Join(stats, ", "), last)
}

func (e *ExhaustedError) Unwrap() error {
	if e.LastErr == nil {
		return nil
	}
	return e.LastErr
}

// LastKind returns the kind of the last observed attempt error
func (e *ExhaustedError) LastKind() ErrorKind {
	if e.LastErr == nil {
		return ""
	}
	return e.LastErr.Kind
}

// classifyTransportError maps a failed Do (or body read) to an attempt error.
// parent is the dispatch context; its cancellation wins over the per-model deadline.
func classifyTransportError(parent context.Context, err error, timeout string) *AttemptError {
	if parent.Err() != nil {
		return &AttemptError{Kind: KindCanceled, Message: parent.Err().Error(), Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AttemptError{Kind: KindTimeout, Message: "Request timeout after " + timeout, Retryable: true, Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &AttemptError{Kind: KindTimeout, Message: "Request timeout after " + timeout, Retryable: true, Cause: err}
	}
	return &AttemptError{Kind: KindNetwork, Message: "Network error: " + transportMessage(err), Retryable: true, Cause: err}
}

// transportMessage drops the request URL (and with it the ?key= query)
// from errors returned by http.Client.Do.
func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}

// classifyStatus maps a non-2xx response to an attempt error
func classifyStatus(status int, message string) *AttemptError {
	e := &AttemptError{StatusCode: status, Message: message, Kind: KindUpstream}
	switch status {
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.Retryable = true
	case http.StatusServiceUnavailable:
		e.Kind = KindUnavailable
		e.Retryable = true
	}
	return e
}
