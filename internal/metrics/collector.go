package metrics

import (
	"runtime"
	"runtime/debug"
	"time"

	"github.com/fdenis75/hypermovie/internal/logging"
)

// Stats holds the catalog-wide counts a Collector samples on each tick.
type Stats struct {
	TotalVideos  int
	TotalFolders int
}

// StatsProvider is implemented by the catalog adapter so the collector can
// sample aggregate counts without depending on a concrete storage engine.
type StatsProvider interface {
	GetStats() Stats
}

// Collector periodically samples catalog and Go runtime statistics into the
// package's Prometheus gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	lastGCCount   uint32
	lastGCPauseNs uint64
}

// NewCollector creates a metrics collector that samples provider every interval.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the collection loop in a background goroutine.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop terminates the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.collectRuntimeMetrics()

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()
	CatalogVideosTotal.Set(float64(stats.TotalVideos))
	CatalogFoldersTotal.Set(float64(stats.TotalFolders))

	logging.Debug("catalog stats collected: videos=%d folders=%d", stats.TotalVideos, stats.TotalFolders)
}

func (c *Collector) collectRuntimeMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	GoMemAllocBytes.Set(float64(memStats.Alloc))
	GoMemSysBytes.Set(float64(memStats.Sys))

	if memStats.NumGC > c.lastGCCount {
		GoGCRuns.Add(float64(memStats.NumGC - c.lastGCCount))
		c.lastGCCount = memStats.NumGC
	}

	if memStats.PauseTotalNs > c.lastGCPauseNs {
		GoGCPauseTotalSeconds.Add(float64(memStats.PauseTotalNs-c.lastGCPauseNs) / 1e9)
		c.lastGCPauseNs = memStats.PauseTotalNs
	}
	GoGCCPUFraction.Set(memStats.GCCPUFraction)

	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < 1<<62 {
		GoMemLimit.Set(float64(limit))
	}
}
