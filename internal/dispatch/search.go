package dispatch

import (
	"time"
)

type searchState int

const (
	stateSearching searchState = iota
	stateSucceeded
	stateExhausted
	stateCanceled
)

func (s searchState) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	case stateCanceled:
		return "canceled"
	}
	return "unknown"
}

// Attempt records one outbound call of a dispatch
type Attempt struct {
	Model      string        `json:"model"`
	Credential string        `json:"credential"`
	Retry      int           `json:"retry"`
	Duration   time.Duration `json:"duration"`
	Kind       ErrorKind     `json:"kind,omitempty"`
	StatusCode int           `json:"statusCode,omitempty"`
	Err        string        `json:"error,omitempty"`
}

// Succeeded reports whether the attempt produced the returned answer
func (a Attempt) Succeeded() bool {
	return a.Kind == ""
}

// search holds the progress of a single Dispatch call
type search struct {
	state   searchState
	started time.Time
	trace   []Attempt
	lastErr *AttemptError
}

func (s *search) record(a Attempt, err *AttemptError) {
	s.trace = append(s.trace, a)
	if err != nil {
		s.lastErr = err
	}
}

func (s *search) attempts() int {
	return len(s.trace)
}

func (s *search) transition(to searchState) {
	if s.state != stateSearching {
		return
	}
	s.state = to
}
