package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsRecordRun(t *testing.T) {
	m := NewMetrics()

	m.RecordRun("echo", 0, 10*time.Millisecond)
	m.RecordRun("echo", 0, 30*time.Millisecond)
	m.RecordRun("false", 1, 20*time.Millisecond)

	snap := m.Snapshot()
	if snap.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", snap.TotalRuns)
	}
	if snap.Successful != 2 || snap.Failed != 1 {
		t.Errorf("Successful/Failed = %d/%d, want 2/1", snap.Successful, snap.Failed)
	}
	if snap.MinDuration != 10*time.Millisecond {
		t.Errorf("MinDuration = %v, want 10ms", snap.MinDuration)
	}
	if snap.MaxDuration != 30*time.Millisecond {
		t.Errorf("MaxDuration = %v, want 30ms", snap.MaxDuration)
	}
	if snap.TotalDuration != 60*time.Millisecond {
		t.Errorf("TotalDuration = %v, want 60ms", snap.TotalDuration)
	}
}

func TestMetricsPerProgramStats(t *testing.T) {
	m := NewMetrics()

	m.RecordRun("deploy.sh", 0, 10*time.Millisecond)
	m.RecordRun("deploy.sh", 2, 30*time.Millisecond)

	stats, ok := m.Program("deploy.sh")
	if !ok {
		t.Fatal("Program returned no stats")
	}
	if stats.TotalRuns != 2 || stats.Successful != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastExitCode != 2 {
		t.Errorf("LastExitCode = %d, want 2", stats.LastExitCode)
	}
	if stats.AvgDuration != (20 * time.Millisecond).Nanoseconds() {
		t.Errorf("AvgDuration = %d, want 20ms in nanoseconds", stats.AvgDuration)
	}
	if stats.LastRunAt.IsZero() {
		t.Error("LastRunAt not set")
	}

	if _, ok := m.Program("never-ran"); ok {
		t.Error("Program reported stats for an unknown program")
	}
}

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("echo", 0, time.Millisecond)

	snap := m.Snapshot()
	snap.Programs["echo"] = ProgramStats{Program: "echo", TotalRuns: 99}

	fresh, _ := m.Program("echo")
	if fresh.TotalRuns != 1 {
		t.Error("mutating a snapshot leaked into the collector")
	}
}

func TestMetricsEmptySnapshot(t *testing.T) {
	snap := NewMetrics().Snapshot()
	if snap.TotalRuns != 0 || snap.MinDuration != 0 || snap.MaxDuration != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestMetricsConcurrentRecording(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(code int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordRun("worker", code%2, time.Millisecond)
			}
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.TotalRuns != 1000 {
		t.Errorf("TotalRuns = %d, want 1000", snap.TotalRuns)
	}
	if snap.Successful != 500 || snap.Failed != 500 {
		t.Errorf("Successful/Failed = %d/%d, want 500/500", snap.Successful, snap.Failed)
	}
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()

	ctx, end := tel.StartSpan(context.Background(), "test")
	if ctx == nil {
		t.Fatal("StartSpan returned a nil context")
	}
	end()

	// Must not panic without a configured provider.
	tel.RecordDuration("d", 1.5, map[string]string{"k": "v"})
	tel.RecordCounter("c", nil)
}

func TestNewTelemetryWithMetricsDisabled(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	cfg.EnableTracing = false
	cfg.EnableMetrics = false

	tel, err := NewTelemetry(cfg)
	if err != nil {
		t.Fatalf("NewTelemetry failed: %v", err)
	}

	ctx, end := tel.StartSpan(context.Background(), "test")
	if ctx == nil {
		t.Fatal("StartSpan returned a nil context")
	}
	end()
	tel.RecordDuration("procrun_run_duration_seconds", 0.1, nil)
	tel.RecordCounter("procrun_runs_total", nil)
}
