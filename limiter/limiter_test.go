package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestPer(t *testing.T) {
	assert.Equal(t, rate.Limit(2), Per(2, time.Second))
	assert.Equal(t, rate.Limit(0.5), Per(1, 2*time.Second))
}

func TestMulti(t *testing.T) {
	fast := rate.NewLimiter(rate.Limit(10), 1)
	slow := rate.NewLimiter(rate.Limit(1), 1)

	m := Multi(fast, slow)
	assert.Equal(t, rate.Limit(1), m.Limit())
	require.NoError(t, m.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, m.Wait(ctx))
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfgs  []Config
		limit rate.Limit
		isNil bool
	}{
		{name: "empty", isNil: true},
		{name: "invalid", cfgs: []Config{{EventCount: 0, EventDur: 1}}, isNil: true},
		{name: "one", cfgs: []Config{{EventCount: 1, EventDur: 2, Bucket: 1}}, limit: 0.5},
		{name: "most restrictive", cfgs: []Config{
			{EventCount: 20, EventDur: 60, Bucket: 20},
			{EventCount: 1, EventDur: 1, Bucket: 1},
		}, limit: rate.Limit(1) / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := FromConfig(tt.cfgs...)
			if tt.isNil {
				assert.Nil(t, l)
				return
			}
			require.NotNil(t, l)
			assert.InDelta(t, float64(tt.limit), float64(l.Limit()), 1e-9)
		})
	}
}
