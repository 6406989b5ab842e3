// Package resource samples system memory pressure so the coordinator can
// throttle dispatch of new per-video tasks without a hardcoded worker cap,
// grounded on the teacher pack's own gopsutil usage
// (SentryShot-sentryshot/pkg/system).
package resource

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/fdenis75/hypermovie/internal/logging"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

// Watermarks gate dispatch: above critical, new tasks pause; below high,
// dispatch resumes. Values are percent-used (0-100).
type Watermarks struct {
	High     float64
	Critical float64
}

// DefaultWatermarks pauses near exhaustion and resumes with headroom to
// spare, leaving room for ffmpeg's own allocations outside the Go heap.
func DefaultWatermarks() Watermarks {
	return Watermarks{High: 75, Critical: 90}
}

type ramFunc func() (*mem.VirtualMemoryStat, error)

// Monitor periodically samples system RAM usage and exposes a ShouldPause
// gate the coordinator checks before dispatching each new per-video task.
type Monitor struct {
	ram        ramFunc
	watermarks Watermarks
	interval   time.Duration

	mu       sync.RWMutex
	usedPct  float64
	paused   bool
	sampled  bool
	onSample func(usedPct float64, paused bool)
}

// NewMonitor builds a Monitor with the given watermarks and sampling
// interval. A zero interval defaults to 2 seconds.
func NewMonitor(watermarks Watermarks, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{
		ram:        mem.VirtualMemory,
		watermarks: watermarks,
		interval:   interval,
	}
}

// OnSample registers a callback invoked after every sample, useful for
// surfacing current pressure in a progress listener.
func (m *Monitor) OnSample(fn func(usedPct float64, paused bool)) {
	m.mu.Lock()
	m.onSample = fn
	m.mu.Unlock()
}

// Run samples memory usage on m.interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.sample()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	stat, err := m.ram()
	if err != nil {
		logging.Debug("resource: memory sample failed: %v", err)
		return
	}

	m.mu.Lock()
	m.usedPct = stat.UsedPercent
	m.sampled = true
	switch {
	case m.usedPct >= m.watermarks.Critical:
		m.paused = true
	case m.usedPct < m.watermarks.High:
		m.paused = false
	}
	paused := m.paused
	cb := m.onSample
	m.mu.Unlock()

	metrics.ResourceMemoryUsageRatio.Set(stat.UsedPercent / 100)
	if paused {
		metrics.ResourcePaused.Set(1)
	} else {
		metrics.ResourcePaused.Set(0)
	}

	if cb != nil {
		cb(stat.UsedPercent, paused)
	}
}

// ShouldPause reports whether the coordinator should hold off dispatching
// new per-video tasks. Before the first sample completes it always reports
// false so startup is never blocked on a slow gopsutil call.
func (m *Monitor) ShouldPause() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sampled && m.paused
}

// UsedPercent returns the last sampled system memory usage percentage, or
// 0 before the first sample.
func (m *Monitor) UsedPercent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedPct
}
