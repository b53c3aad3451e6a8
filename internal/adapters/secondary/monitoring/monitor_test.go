package monitoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// recordingPublisher keeps every forwarded event
type recordingPublisher struct {
	mu     sync.Mutex
	events []entities.GenerationEvent
}

func (p *recordingPublisher) Publish(event entities.GenerationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newTestMonitor(next *recordingPublisher) (*GenerationMonitor, *time.Time) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var m *GenerationMonitor
	if next != nil {
		m = NewGenerationMonitor(next)
	} else {
		m = NewGenerationMonitor(nil)
	}
	m.now = func() time.Time { return now }
	m.metrics.StartTime = now
	return m, &now
}

func TestGenerationMonitor_Publish(t *testing.T) {
	t.Run("counts a successful generation and forwards events", func(t *testing.T) {
		next := &recordingPublisher{}
		monitor, now := newTestMonitor(next)

		monitor.Publish(entities.NewGenerationEvent(entities.EventGenerationStarted, "a", nil))
		assert.Equal(t, int64(1), monitor.GetMetrics().InFlight)

		*now = now.Add(4 * time.Second)
		monitor.Publish(entities.NewGenerationEvent(entities.EventOutlineReady, "a", map[string]interface{}{"slides": 3}))
		monitor.Publish(entities.NewGenerationEvent(entities.EventDeckReady, "a", map[string]interface{}{"slides": 3, "degraded": 1}))

		metrics := monitor.GetMetrics()
		assert.Equal(t, int64(1), metrics.Started)
		assert.Equal(t, int64(1), metrics.Succeeded)
		assert.Equal(t, int64(0), metrics.Failed)
		assert.Equal(t, int64(0), metrics.InFlight)
		assert.Equal(t, int64(3), metrics.SlidesCreated)
		assert.Equal(t, int64(1), metrics.DegradedSlides)
		assert.Equal(t, 4*time.Second, metrics.AverageDuration)

		assert.Len(t, next.events, 3)
	})

	t.Run("failure clears in-flight", func(t *testing.T) {
		monitor, _ := newTestMonitor(nil)

		monitor.Publish(entities.NewGenerationEvent(entities.EventGenerationStarted, "b", nil))
		monitor.Publish(entities.NewGenerationEvent(entities.EventGenerationFailed, "b", map[string]interface{}{"error": "boom"}))

		metrics := monitor.GetMetrics()
		assert.Equal(t, int64(1), metrics.Failed)
		assert.Equal(t, int64(0), metrics.InFlight)
		assert.Zero(t, metrics.AverageDuration)
	})

	t.Run("moving average", func(t *testing.T) {
		monitor, now := newTestMonitor(nil)

		for i, d := range []time.Duration{10 * time.Second, 20 * time.Second} {
			id := string(rune('a' + i))
			monitor.Publish(entities.NewGenerationEvent(entities.EventGenerationStarted, id, nil))
			*now = now.Add(d)
			monitor.Publish(entities.NewGenerationEvent(entities.EventDeckReady, id, nil))
		}

		assert.Equal(t, 11*time.Second, monitor.GetMetrics().AverageDuration)
	})
}

func TestGenerationMonitor_HealthStatus(t *testing.T) {
	monitor, now := newTestMonitor(nil)
	monitor.updateMemory()
	*now = now.Add(90 * time.Second)

	status := monitor.HealthStatus()

	assert.Equal(t, true, status["healthy"])
	assert.Equal(t, "1m30s", status["uptime"])
	generations, ok := status["generations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(0), generations["started"])
}

func TestGenerationMonitor_StartStop(t *testing.T) {
	monitor := NewGenerationMonitor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.Start(ctx)
	assert.True(t, monitor.running)
	assert.Positive(t, monitor.GetMetrics().GoroutineCount)

	ticker := monitor.ticker
	monitor.Start(ctx)
	assert.Same(t, ticker, monitor.ticker, "second start is a no-op")

	monitor.Stop()
	assert.False(t, monitor.running)

	assert.NotPanics(t, monitor.Stop)
}

func TestIntData(t *testing.T) {
	assert.Equal(t, int64(2), intData(map[string]interface{}{"n": 2}, "n"))
	assert.Equal(t, int64(3), intData(map[string]interface{}{"n": float64(3)}, "n"))
	assert.Equal(t, int64(4), intData(map[string]interface{}{"n": int64(4)}, "n"))
	assert.Equal(t, int64(0), intData(map[string]interface{}{"n": "5"}, "n"))
	assert.Equal(t, int64(0), intData(nil, "n"))
}

func TestSafeUint64ToInt64(t *testing.T) {
	assert.Equal(t, int64(42), safeUint64ToInt64(42))
	assert.Equal(t, int64(9223372036854775807), safeUint64ToInt64(^uint64(0)))
}
