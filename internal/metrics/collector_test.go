package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	return m.stats
}

func TestNewCollector(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{TotalVideos: 20, TotalFolders: 5}}

	collector := NewCollector(provider, 5*time.Second)

	if collector == nil {
		t.Fatal("NewCollector returned nil")
	}
	if collector.statsProvider != provider {
		t.Error("statsProvider not set correctly")
	}
	if collector.interval != 5*time.Second {
		t.Errorf("interval = %v, want %v", collector.interval, 5*time.Second)
	}
}

func TestCollector_CollectUpdatesCatalogGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{TotalVideos: 42, TotalFolders: 7}}
	collector := NewCollector(provider, time.Hour)

	collector.collect()

	if got := testutil.ToFloat64(CatalogVideosTotal); got != 42 {
		t.Errorf("CatalogVideosTotal = %v, want 42", got)
	}
	if got := testutil.ToFloat64(CatalogFoldersTotal); got != 7 {
		t.Errorf("CatalogFoldersTotal = %v, want 7", got)
	}
}

func TestCollector_CollectWithNilProviderDoesNotPanic(t *testing.T) {
	collector := NewCollector(nil, time.Hour)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect() panicked with nil provider: %v", r)
		}
	}()

	collector.collect()
}

func TestCollector_CollectRuntimeMetrics(t *testing.T) {
	collector := NewCollector(nil, time.Hour)

	collector.collectRuntimeMetrics()

	if testutil.ToFloat64(GoMemAllocBytes) <= 0 {
		t.Error("GoMemAllocBytes should be positive after sampling a live process")
	}
	if testutil.ToFloat64(GoMemSysBytes) <= 0 {
		t.Error("GoMemSysBytes should be positive after sampling a live process")
	}
}

func TestCollector_StartStop(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{TotalVideos: 1, TotalFolders: 1}}
	collector := NewCollector(provider, 10*time.Millisecond)

	collector.Start()
	time.Sleep(30 * time.Millisecond)
	collector.Stop()

	if got := testutil.ToFloat64(CatalogVideosTotal); got != 1 {
		t.Errorf("CatalogVideosTotal = %v, want 1 after at least one collect tick", got)
	}
}
