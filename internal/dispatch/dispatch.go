package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"

	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/internal/gemini"
	"github.com/Bhanuteja12-coder/Vidhi-Saarathi-AI/pkg/logger"
)

const (
	DefaultMaxRetries    = 2
	DefaultBaseDelay     = 2 * time.Second
	DefaultMinTextLength = 50
	DefaultQuotaTimeout  = 10 * time.Second
)

// Model is one generateContent endpoint in the fallback chain
type Model struct {
	Name        string
	URL         string
	Priority    int
	Timeout     time.Duration
	Description string
}

// ModelInfo is the read-only view of a Model
type ModelInfo struct {
	Name        string
	Priority    int
	Timeout     time.Duration
	Description string
}

// TimeoutSeconds returns the per-request timeout in seconds
func (m ModelInfo) TimeoutSeconds() float64 {
	return m.Timeout.Seconds()
}

// Result is a successful dispatch
type Result struct {
	Text       string
	Model      string
	Credential string
	// TotalAttempts counts every call made by this dispatch, the winner included
	TotalAttempts int
	// RetryCount is the retry number of the winning call
	RetryCount  int
	RequestTime time.Duration
	Elapsed     time.Duration
	Timestamp   time.Time
	Attempts    []Attempt
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithClient sets the HTTP client used for every outbound call
func WithClient(client gemini.HTTPClient) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithRequestBuilder replaces the default Gemini request builder
func WithRequestBuilder(b gemini.RequestBuilder) Option {
	return func(d *Dispatcher) {
		d.builder = b
	}
}

// WithMaxRetries sets how many times one model/credential pair is retried
func WithMaxRetries(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.maxRetries = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; later delays double
func WithBaseDelay(delay time.Duration) Option {
	return func(d *Dispatcher) {
		if delay > 0 {
			d.baseDelay = delay
		}
	}
}

// WithMinTextLength sets the length a generated text must exceed to count as an answer
func WithMinTextLength(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.minTextLength = n
		}
	}
}

// WithTimer supplies the timer used for backoff waits
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(d *Dispatcher) {
		d.newTimer = newTimer
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithQuotaURL sets the list-models URL probed by CheckQuota
func WithQuotaURL(url string) Option {
	return func(d *Dispatcher) {
		if url != "" {
			d.quotaURL = url
		}
	}
}

// WithQuotaTimeout bounds each CheckQuota probe
func WithQuotaTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.quotaTimeout = timeout
		}
	}
}

// Dispatcher walks models × credentials × retries until one call yields text.
// Model and credential slices are read-only after New; only the counters
// inside each credential change.
type Dispatcher struct {
	models []Model
	creds  []*credential

	client        gemini.HTTPClient
	builder       gemini.RequestBuilder
	maxRetries    int
	baseDelay     time.Duration
	minTextLength int
	newTimer      func() backoff.Timer
	now           func() time.Time
	quotaURL      string
	quotaTimeout  time.Duration
}

// New builds a Dispatcher. Keys with an empty value are dropped; models and
// keys are ordered by ascending priority, keeping configuration order on ties.
func New(models []Model, keys []Key, opts ...Option) (*Dispatcher, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	for i, m := range models {
		if m.Name == "" || m.URL == "" {
			return nil, fmt.Errorf("model #%d: name and url are required", i+1)
		}
		if m.Timeout <= 0 {
			return nil, fmt.Errorf("model %s: timeout must be positive", m.Name)
		}
	}

	active := lo.Filter(keys, func(k Key, _ int) bool {
		return strings.TrimSpace(k.Value) != ""
	})
	if len(active) == 0 {
		return nil, ErrNoCredentials
	}

	sortedModels := append([]Model(nil), models...)
	sort.SliceStable(sortedModels, func(i, j int) bool {
		return sortedModels[i].Priority < sortedModels[j].Priority
	})
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	d := &Dispatcher{
		models: sortedModels,
		creds: lo.Map(active, func(k Key, _ int) *credential {
			return &credential{key: strings.TrimSpace(k.Value), name: k.Name, priority: k.Priority}
		}),
		client:        http.DefaultClient,
		builder:       gemini.NewRequestBuilder(),
		maxRetries:    DefaultMaxRetries,
		baseDelay:     DefaultBaseDelay,
		minTextLength: DefaultMinTextLength,
		now:           time.Now,
		quotaURL:      gemini.BaseURL,
		quotaTimeout:  DefaultQuotaTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch sends prompt through the fallback chain and returns the first
// answer longer than the minimum text length. If every pair fails it returns
// an *ExhaustedError; if ctx ends first the error wraps ErrCanceled and ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	s := &search{started: d.now()}
	logger.Infof("starting AI dispatch with %d models and %d keys, prompt length %d",
		len(d.models), len(d.creds), utf8.RuneCountInString(prompt))

	for _, m := range d.models {
		logger.Debug("trying %s (priority %d), timeout %s", m.Name, m.Priority, m.Timeout)
		for _, c := range d.creds {
			if err := ctx.Err(); err != nil {
				return nil, d.cancel(s, err)
			}
			if res := d.tryPair(ctx, s, m, c, prompt); res != nil {
				s.transition(stateSucceeded)
				logger.Infof("dispatch %s: %s with %s after %d attempts in %s",
					s.state, res.Model, res.Credential, res.TotalAttempts, res.Elapsed)
				return res, nil
			}
		}
		if ctx.Err() == nil {
			logger.Warnf("all %d keys exhausted for %s, trying next model", len(d.creds), m.Name)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, d.cancel(s, err)
	}

	s.transition(stateExhausted)
	exhausted := &ExhaustedError{
		Attempts:    s.attempts(),
		Credentials: d.summary(),
		LastErr:     s.lastErr,
		Trace:       s.trace,
	}
	logger.Errorf("dispatch %s: %v", s.state, exhausted)
	return nil, exhausted
}

// tryPair runs up to maxRetries+1 attempts against one model/credential pair
func (d *Dispatcher) tryPair(ctx context.Context, s *search, m Model, c *credential, prompt string) *Result {
	var result *Result
	retry := 0

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		r := retry
		retry++

		text, att, aerr := d.attempt(ctx, m, c, prompt, r)
		s.record(att, aerr)
		if aerr == nil {
			now := d.now()
			result = &Result{
				Text:          text,
				Model:         m.Name,
				Credential:    c.name,
				TotalAttempts: s.attempts(),
				RetryCount:    r,
				RequestTime:   att.Duration,
				Elapsed:       now.Sub(s.started),
				Timestamp:     now,
				Attempts:      s.trace,
			}
			return nil
		}
		if !aerr.Retryable {
			return backoff.Permanent(aerr)
		}
		return aerr
	}

	notify := func(err error, next time.Duration) {
		logger.Infof("%v, retrying in %s", err, next)
	}

	b := backoff.WithMaxRetries(backoff.WithContext(d.newBackOff(), ctx), uint64(d.maxRetries))
	var timer backoff.Timer
	if d.newTimer != nil {
		timer = d.newTimer()
	}
	_ = backoff.RetryNotifyWithTimer(op, b, notify, timer)
	return result
}

// newBackOff yields baseDelay, 2*baseDelay, 4*baseDelay, ... without jitter
func (d *Dispatcher) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (d *Dispatcher) attempt(ctx context.Context, m Model, c *credential, prompt string, retry int) (string, Attempt, *AttemptError) {
	start := d.now()
	c.begin(start)
	logger.Debug("using %s with %s, retry %d/%d", c.name, m.Name, retry, d.maxRetries)

	text, aerr := d.call(ctx, m, c, prompt)
	att := Attempt{
		Model:      m.Name,
		Credential: c.name,
		Retry:      retry,
		Duration:   d.now().Sub(start),
	}
	if aerr != nil {
		aerr.Model = m.Name
		aerr.Credential = c.name
		c.fail()
		att.Kind = aerr.Kind
		att.StatusCode = aerr.StatusCode
		att.Err = aerr.Message
		logger.Warnf("%s with %s failed: %s", m.Name, c.name, aerr.Message)
		return "", att, aerr
	}

	c.succeed(d.now())
	return text, att, nil
}

// call performs one generateContent request bounded by the model timeout
func (d *Dispatcher) call(ctx context.Context, m Model, c *credential, prompt string) (string, *AttemptError) {
	actx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	timeout := fmt.Sprintf("%g seconds", m.Timeout.Seconds())

	req, err := d.builder.BuildGenerate(actx, m.URL, c.key, prompt)
	if err != nil {
		return "", &AttemptError{Kind: KindRequest, Message: err.Error(), Cause: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err, timeout)
	}

	body, err := gemini.ReadBody(resp)
	if err != nil {
		return "", classifyTransportError(ctx, err, timeout)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(resp.StatusCode, gemini.ErrorMessage(resp.StatusCode, body))
	}

	text, err := gemini.ExtractText(body)
	if err != nil && !errors.Is(err, gemini.ErrNoCandidate) {
		return "", &AttemptError{
			Kind:       KindInvalidResponse,
			StatusCode: resp.StatusCode,
			Message:    "Invalid response from AI model: " + err.Error(),
			Cause:      err,
		}
	}
	if utf8.RuneCountInString(text) <= d.minTextLength {
		return "", &AttemptError{
			Kind:       KindEmptyResponse,
			StatusCode: resp.StatusCode,
			Message:    "Empty or invalid response from AI model",
		}
	}
	return text, nil
}

func (d *Dispatcher) cancel(s *search, err error) error {
	s.transition(stateCanceled)
	logger.Warnf("dispatch %s after %d attempts: %v", s.state, s.attempts(), err)
	return fmt.Errorf("%w after %d attempts: %w", ErrCanceled, s.attempts(), err)
}

// Models returns the configured models in dispatch order
func (d *Dispatcher) Models() []ModelInfo {
	return lo.Map(d.models, func(m Model, _ int) ModelInfo {
		return ModelInfo{Name: m.Name, Priority: m.Priority, Timeout: m.Timeout, Description: m.Description}
	})
}

// Credentials returns a snapshot of every active credential's counters
func (d *Dispatcher) Credentials() []CredentialStats {
	return lo.Map(d.creds, func(c *credential, _ int) CredentialStats {
		return c.stats()
	})
}

func (d *Dispatcher) summary() []CredentialSummary {
	return lo.Map(d.Credentials(), func(s CredentialStats, _ int) CredentialSummary {
		return CredentialSummary{
			Name:         s.Name,
			UsageCount:   s.UsageCount,
			SuccessCount: s.SuccessCount,
			ErrorCount:   s.ErrorCount,
		}
	})
}
