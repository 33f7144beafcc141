package backoff

import (
	"testing"
	"time"

	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func testBackoffConfig() config.BackoffConfig {
	return config.BackoffConfig{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	}
}

func TestExponential_ZeroRetriesReturnsBaseDelay(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(testBackoffConfig())

	assert.Equal(t, 100*time.Millisecond, strategy.Backoff(0))
}

func TestExponential_GrowsWithRetries(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(testBackoffConfig())

	assert.Equal(t, 200*time.Millisecond, strategy.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, strategy.Backoff(2))
	assert.Equal(t, 800*time.Millisecond, strategy.Backoff(3))
}

func TestExponential_CapsAtMaxDelay(t *testing.T) {
	t.Parallel()

	strategy := NewExponentialStrategy(testBackoffConfig())

	assert.Equal(t, 5*time.Second, strategy.Backoff(50))
}

func TestExponential_JitterStaysWithinBounds(t *testing.T) {
	t.Parallel()

	cfg := testBackoffConfig()
	cfg.Jitter = 0.2
	strategy := NewExponentialStrategy(cfg)

	for i := 0; i < 100; i++ {
		d := strategy.Backoff(2)
		assert.GreaterOrEqual(t, d, 320*time.Millisecond)
		assert.LessOrEqual(t, d, 480*time.Millisecond)
	}
}
