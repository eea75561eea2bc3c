package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-subject rate limiting for backing-store
// operations, so a large page submission cannot starve other subjects.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(opsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(opsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the subject's rate limit admits one operation
func (l *Limiter) Wait(ctx context.Context, subject string) error {
	return l.getLimiter(subject).Wait(ctx)
}

// Allow checks if an operation is admitted without waiting
func (l *Limiter) Allow(subject string) bool {
	return l.getLimiter(subject).Allow()
}

// getLimiter returns the rate limiter for a subject
func (l *Limiter) getLimiter(subject string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[subject]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[subject]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[subject] = limiter

	return limiter
}

// SetSubjectRate sets a custom rate limit for a specific subject
func (l *Limiter) SetSubjectRate(subject string, opsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[subject] = rate.NewLimiter(rate.Limit(opsPerSecond), burst)
}
