package dispatch

import (
	"fmt"
	"sync"
	"time"
)

// Key is a configured API credential
type Key struct {
	Name     string
	Value    string
	Priority int
}

// CredentialStats is a point-in-time copy of one credential's counters
type CredentialStats struct {
	Name         string
	Priority     int
	UsageCount   int64
	SuccessCount int64
	ErrorCount   int64
	LastUsed     time.Time
	LastSuccess  time.Time
}

// SuccessRate is SuccessCount/UsageCount as a percentage, 0 when unused
func (s CredentialStats) SuccessRate() float64 {
	if s.UsageCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.UsageCount) * 100
}

// FormatSuccessRate renders SuccessRate as "93.3%" ("0%" when unused)
func (s CredentialStats) FormatSuccessRate() string {
	return FormatRate(s.SuccessCount, s.UsageCount)
}

// FormatRate renders part/total as a one-decimal percentage
func FormatRate(part, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// credential owns the mutable counters of one key.
// usage is always incremented before the attempt resolves, so
// success+errors never exceeds usage.
type credential struct {
	key      string
	name     string
	priority int

	mu          sync.Mutex
	usage       int64
	success     int64
	errors      int64
	lastUsed    time.Time
	lastSuccess time.Time
}

func (c *credential) begin(now time.Time) {
	c.mu.Lock()
	c.usage++
	c.lastUsed = now
	c.mu.Unlock()
}

func (c *credential) succeed(now time.Time) {
	c.mu.Lock()
	c.success++
	c.lastSuccess = now
	c.mu.Unlock()
}

func (c *credential) fail() {
	c.mu.Lock()
	c.errors++
	c.mu.Unlock()
}

func (c *credential) stats() CredentialStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CredentialStats{
		Name:         c.name,
		Priority:     c.priority,
		UsageCount:   c.usage,
		SuccessCount: c.success,
		ErrorCount:   c.errors,
		LastUsed:     c.lastUsed,
		LastSuccess:  c.lastSuccess,
	}
}
