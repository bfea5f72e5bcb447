package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developer-mesh/gitee-mcp/internal/apierrors"
	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/metrics"
)

func newTestLimiter(cfg config.RateLimitConfig) (*RateLimiter, *metrics.Metrics, *time.Time) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rl := NewRateLimiter(cfg, nil, m)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, m, &now
}

func TestRateLimiter_DisabledByDefault(t *testing.T) {
	rl, _, _ := newTestLimiter(config.RateLimitConfig{})
	assert.False(t, rl.Enabled())
	for i := 0; i < 1000; i++ {
		require.NoError(t, rl.Allow("create_issue"))
	}

	var nilLimiter *RateLimiter
	assert.NoError(t, nilLimiter.Allow("create_issue"))
}

func TestRateLimiter_GlobalLimit(t *testing.T) {
	rl, m, now := newTestLimiter(config.RateLimitConfig{GlobalRPS: 1, GlobalBurst: 2})

	require.NoError(t, rl.Allow("a"))
	require.NoError(t, rl.Allow("b"))

	err := rl.Allow("c")
	require.Error(t, err)

	apiErr, ok := apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindRateLimit, apiErr.Kind)
	require.NotNil(t, apiErr.ResetAt)
	assert.Equal(t, now.Add(time.Second), *apiErr.ResetAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues(ScopeGlobal)))

	// a rejected call does not consume a token
	*now = now.Add(time.Second)
	assert.NoError(t, rl.Allow("c"))
}

func TestRateLimiter_PerToolLimit(t *testing.T) {
	rl, m, _ := newTestLimiter(config.RateLimitConfig{ToolRPS: 1, ToolBurst: 1})

	require.NoError(t, rl.Allow("get_issue"))
	require.NoError(t, rl.Allow("list_issues"))

	err := rl.Allow("get_issue")
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindRateLimit))
	assert.Contains(t, err.Error(), "get_issue")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues(ScopeTool)))
}

func TestNewLimiter_DefaultBurst(t *testing.T) {
	assert.Equal(t, 1, newLimiter(0.5, 0).Burst())
	assert.Equal(t, 5, newLimiter(4.2, 0).Burst())
	assert.Equal(t, 3, newLimiter(10, 3).Burst())
}
