package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// Metrics is a snapshot of generation activity and process health
type Metrics struct {
	StartTime     time.Time
	LastEventTime time.Time

	// Memory metrics, refreshed by the collection loop
	MemoryUsage    int64
	HeapSize       int64
	GoroutineCount int
	GCCount        uint32

	// Generation counters
	Started        int64
	Succeeded      int64
	Failed         int64
	InFlight       int64
	SlidesCreated  int64
	DegradedSlides int64

	// AverageDuration is an exponential moving average of successful
	// generations, from generation_started to deck_ready
	AverageDuration time.Duration
}

// GenerationMonitor records generation events and forwards them to the next
// publisher
type GenerationMonitor struct {
	next     ports.EventPublisher
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	metrics  Metrics
	inFlight map[string]time.Time

	runMu   sync.Mutex
	ticker  *time.Ticker
	stopCh  chan struct{}
	running bool
}

// NewGenerationMonitor creates a monitor. next may be nil.
func NewGenerationMonitor(next ports.EventPublisher) *GenerationMonitor {
	now := time.Now
	return &GenerationMonitor{
		next:     next,
		interval: 30 * time.Second,
		now:      now,
		metrics:  Metrics{StartTime: now()},
		inFlight: make(map[string]time.Time),
	}
}

// Start begins periodic memory collection
func (m *GenerationMonitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.running {
		return
	}

	m.running = true
	m.ticker = time.NewTicker(m.interval)
	m.stopCh = make(chan struct{})
	m.updateMemory()

	go m.collect(ctx, m.ticker, m.stopCh)
}

// Stop stops the collection loop
func (m *GenerationMonitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	m.ticker.Stop()
	close(m.stopCh)
}

func (m *GenerationMonitor) collect(ctx context.Context, ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			m.updateMemory()
		}
	}
}

func (m *GenerationMonitor) updateMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.MemoryUsage = safeUint64ToInt64(memStats.Alloc)
	m.metrics.HeapSize = safeUint64ToInt64(memStats.HeapAlloc)
	m.metrics.GoroutineCount = runtime.NumGoroutine()
	m.metrics.GCCount = memStats.NumGC
}

// Publish records the event, then forwards it
func (m *GenerationMonitor) Publish(event entities.GenerationEvent) {
	m.record(event)
	if m.next != nil {
		m.next.Publish(event)
	}
}

func (m *GenerationMonitor) record(event entities.GenerationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.metrics.LastEventTime = now

	switch event.Type {
	case entities.EventGenerationStarted:
		m.metrics.Started++
		m.inFlight[event.ID] = now

	case entities.EventDeckReady:
		m.metrics.Succeeded++
		m.metrics.SlidesCreated += intData(event.Data, "slides")
		m.metrics.DegradedSlides += intData(event.Data, "degraded")
		if started, ok := m.inFlight[event.ID]; ok {
			m.observeDuration(now.Sub(started))
			delete(m.inFlight, event.ID)
		}

	case entities.EventGenerationFailed:
		m.metrics.Failed++
		delete(m.inFlight, event.ID)
	}

	m.metrics.InFlight = int64(len(m.inFlight))
}

// observeDuration folds d into the moving average
func (m *GenerationMonitor) observeDuration(d time.Duration) {
	if m.metrics.AverageDuration == 0 {
		m.metrics.AverageDuration = d
		return
	}
	alpha := 0.1
	m.metrics.AverageDuration = time.Duration(
		float64(m.metrics.AverageDuration)*(1-alpha) + float64(d)*alpha,
	)
}

// GetMetrics returns a copy of the current metrics
func (m *GenerationMonitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// GetUptime returns time since the monitor was created
func (m *GenerationMonitor) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(m.metrics.StartTime)
}

// IsHealthy performs a basic health check
func (m *GenerationMonitor) IsHealthy() bool {
	metrics := m.GetMetrics()

	maxMemory := int64(500 * 1024 * 1024)
	maxGoroutines := 1000

	return metrics.MemoryUsage < maxMemory &&
		metrics.GoroutineCount < maxGoroutines
}

// HealthStatus returns the details reported by the health endpoint
func (m *GenerationMonitor) HealthStatus() map[string]interface{} {
	metrics := m.GetMetrics()

	return map[string]interface{}{
		"healthy":    m.IsHealthy(),
		"uptime":     m.GetUptime().Round(time.Second).String(),
		"memory_mb":  metrics.MemoryUsage / (1024 * 1024),
		"goroutines": metrics.GoroutineCount,
		"generations": map[string]interface{}{
			"started":         metrics.Started,
			"succeeded":       metrics.Succeeded,
			"failed":          metrics.Failed,
			"in_flight":       metrics.InFlight,
			"slides_created":  metrics.SlidesCreated,
			"degraded_slides": metrics.DegradedSlides,
			"avg_duration_ms": metrics.AverageDuration.Milliseconds(),
		},
	}
}

// intData reads a count from event data. Values are ints when published
// in-process and float64 after a JSON round trip.
func intData(data map[string]interface{}, key string) int64 {
	switch v := data[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

// Ensure GenerationMonitor implements ports.EventPublisher
var _ ports.EventPublisher = (*GenerationMonitor)(nil)
