// Package middleware guards the tool dispatcher against bursts of inbound
// calls.
package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/metrics"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
)

const (
	ScopeGlobal = "global"
	ScopeTool   = "tool"
)

// RateLimiter applies a global token bucket and one bucket per tool. A
// limiter whose rate is zero lets everything through.
type RateLimiter struct {
	config   config.RateLimitConfig
	globalRL *rate.Limiter
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	logger   observability.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter. metrics may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, logger observability.Logger, m *metrics.Metrics) *RateLimiter {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	rl := &RateLimiter{
		config:   cfg,
		limiters: make(map[string]*rate.Limiter),
		logger:   logger.WithPrefix("rate-limit"),
		metrics:  m,
		now:      time.Now,
	}
	if cfg.GlobalRPS > 0 {
		rl.globalRL = newLimiter(cfg.GlobalRPS, cfg.GlobalBurst)
	}
	return rl
}

// Enabled reports whether any limit is configured
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && (rl.config.GlobalRPS > 0 || rl.config.ToolRPS > 0)
}

// Allow takes a token for one call of toolName. When a bucket is empty it
// returns a rate-limit error whose ResetAt says when a token is next free.
// A nil RateLimiter allows everything.
func (rl *RateLimiter) Allow(toolName string) error {
	if !rl.Enabled() {
		return nil
	}
	now := rl.now()

	if rl.globalRL != nil {
		if err := rl.take(rl.globalRL, now, ScopeGlobal, toolName); err != nil {
			return err
		}
	}

	if rl.config.ToolRPS > 0 && toolName != "" {
		if err := rl.take(rl.toolLimiter(toolName), now, ScopeTool, toolName); err != nil {
			return err
		}
	}
	return nil
}

func (rl *RateLimiter) take(lim *rate.Limiter, now time.Time, scope, toolName string) error {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return rl.reject(now, time.Second, scope, toolName)
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return rl.reject(now, delay, scope, toolName)
	}
	return nil
}

func (rl *RateLimiter) reject(now time.Time, wait time.Duration, scope, toolName string) error {
	if rl.metrics != nil {
		rl.metrics.RecordRateLimitHit(scope)
	}
	rl.logger.Warn("Rate limit exceeded", map[string]interface{}{
		"scope":       scope,
		"tool":        toolName,
		"retry_after": wait.String(),
	})

	resetAt := now.Add(wait)
	return &apierrors.Error{
		Kind:    apierrors.KindRateLimit,
		Message: fmt.Sprintf("%s rate limit exceeded for tool %s, retry after %s", scope, toolName, wait.Round(time.Millisecond)),
		ResetAt: &resetAt,
	}
}

func (rl *RateLimiter) toolLimiter(toolName string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[toolName]
	if !ok {
		lim = newLimiter(rl.config.ToolRPS, rl.config.ToolBurst)
		rl.limiters[toolName] = lim
	}
	return lim
}

// newLimiter falls back to a burst of one second's worth of tokens
func newLimiter(rps float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
