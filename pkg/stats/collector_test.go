package stats

import (
	"sync"
	"testing"
)

func TestCollector_TrackOperation(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackOperation(OpRefresh)
	collector.TrackOperation(OpRefresh)
	collector.TrackOperation(OpLookup)

	stats := collector.GetStats()

	if stats["refresh_ops"].(uint64) != 2 {
		t.Errorf("Expected 2 refresh operations, got %v", stats["refresh_ops"])
	}
	if stats["lookup_ops"].(uint64) != 1 {
		t.Errorf("Expected 1 lookup operation, got %v", stats["lookup_ops"])
	}
	if _, exists := stats["last_refresh_time"]; !exists {
		t.Errorf("Expected last_refresh_time to exist in stats")
	}
}

func TestCollector_TrackOperationWithLatency(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackOperationWithLatency(OpFlatten, 200)
	collector.TrackOperationWithLatency(OpFlatten, 100)
	collector.TrackOperationWithLatency(OpFlatten, 300)

	stats := collector.GetStats()

	latencyStats, ok := stats["flatten_latency"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected flatten_latency to be a map, got %T", stats["flatten_latency"])
	}
	if count := latencyStats["count"].(uint64); count != 3 {
		t.Errorf("Expected 3 latency records, got %v", count)
	}
	if avg := latencyStats["avg_ns"].(uint64); avg != 200 {
		t.Errorf("Expected average latency 200ns, got %v", avg)
	}
	if min := latencyStats["min_ns"].(uint64); min != 100 {
		t.Errorf("Expected min latency 100ns, got %v", min)
	}
	if max := latencyStats["max_ns"].(uint64); max != 300 {
		t.Errorf("Expected max latency 300ns, got %v", max)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	collector := NewAtomicCollector()
	const numGoroutines = 10
	const opsPerGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				collector.TrackOperationWithLatency(OpLookup, uint64(j+1))
				collector.TrackError("out_of_range")
			}
		}()
	}
	wg.Wait()

	stats := collector.GetStats()
	if got := stats["lookup_ops"].(uint64); got != numGoroutines*opsPerGoroutine {
		t.Errorf("Expected %d lookups, got %d", numGoroutines*opsPerGoroutine, got)
	}
	errs := stats["errors"].(map[string]uint64)
	if errs["out_of_range"] != numGoroutines*opsPerGoroutine {
		t.Errorf("Expected %d errors, got %d", numGoroutines*opsPerGoroutine, errs["out_of_range"])
	}
}

func TestCollector_GetStatsFiltered(t *testing.T) {
	collector := NewAtomicCollector()
	collector.TrackOperation(OpLoad)
	collector.TrackOperation(OpLookup)
	collector.TrackOperation(OpRefresh)

	filtered := collector.GetStatsFiltered("lo")
	if _, ok := filtered["load_ops"]; !ok {
		t.Errorf("Expected load_ops in filtered stats")
	}
	if _, ok := filtered["lookup_ops"]; !ok {
		t.Errorf("Expected lookup_ops in filtered stats")
	}
	if _, ok := filtered["refresh_ops"]; ok {
		t.Errorf("Did not expect refresh_ops in filtered stats")
	}
}

func TestCollector_DataShape(t *testing.T) {
	collector := NewAtomicCollector()

	collector.TrackBytesRead(100)
	collector.TrackBytesRead(50)
	collector.TrackRecords(7)
	collector.TrackSnapshot(3, 7, 14)

	stats := collector.GetStats()
	expect := map[string]uint64{
		"bytes_read":       150,
		"records":          7,
		"snapshot_groups":  3,
		"snapshot_values":  7,
		"snapshot_entries": 14,
	}
	for key, want := range expect {
		if got := stats[key].(uint64); got != want {
			t.Errorf("Expected %s=%d, got %d", key, want, got)
		}
	}
}

func TestNopCollector(t *testing.T) {
	collector := NewNop()
	collector.TrackOperation(OpBind)
	if len(collector.GetStats()) != 0 {
		t.Errorf("Expected no stats from the nop collector")
	}
}
