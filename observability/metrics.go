package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects in-process execution statistics. All methods are safe
// for concurrent use.
type Metrics struct {
	programStats  map[string]*ProgramStats
	totalRuns     int64
	successful    int64
	failed        int64
	totalDuration int64
	minDuration   int64
	maxDuration   int64
	mu            sync.RWMutex
}

// ProgramStats contains per-program statistics, keyed by argv[0].
type ProgramStats struct {
	LastRunAt     time.Time
	Program       string
	LastExitCode  int
	TotalRuns     int64
	Successful    int64
	Failed        int64
	TotalDuration int64
	AvgDuration   int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		programStats: make(map[string]*ProgramStats),
		minDuration:  -1,
	}
}

// RecordRun records one completed execution.
func (m *Metrics) RecordRun(program string, exitCode int, duration time.Duration) {
	atomic.AddInt64(&m.totalRuns, 1)
	if exitCode == 0 {
		atomic.AddInt64(&m.successful, 1)
	} else {
		atomic.AddInt64(&m.failed, 1)
	}

	d := duration.Nanoseconds()
	atomic.AddInt64(&m.totalDuration, d)

	for {
		old := atomic.LoadInt64(&m.minDuration)
		if old >= 0 && d >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.minDuration, old, d) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&m.maxDuration)
		if d <= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.maxDuration, old, d) {
			break
		}
	}

	m.updateProgramStats(program, exitCode, d)
}

func (m *Metrics) updateProgramStats(program string, exitCode int, d int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.programStats[program]
	if !ok {
		stats = &ProgramStats{Program: program}
		m.programStats[program] = stats
	}

	stats.TotalRuns++
	if exitCode == 0 {
		stats.Successful++
	} else {
		stats.Failed++
	}
	stats.TotalDuration += d
	stats.AvgDuration = stats.TotalDuration / stats.TotalRuns
	stats.LastRunAt = time.Now()
	stats.LastExitCode = exitCode
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	Programs      map[string]ProgramStats
	TotalRuns     int64
	Successful    int64
	Failed        int64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		TotalRuns:     atomic.LoadInt64(&m.totalRuns),
		Successful:    atomic.LoadInt64(&m.successful),
		Failed:        atomic.LoadInt64(&m.failed),
		TotalDuration: time.Duration(atomic.LoadInt64(&m.totalDuration)),
		MaxDuration:   time.Duration(atomic.LoadInt64(&m.maxDuration)),
		Programs:      make(map[string]ProgramStats),
	}

	if min := atomic.LoadInt64(&m.minDuration); min >= 0 {
		snap.MinDuration = time.Duration(min)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.programStats {
		snap.Programs[k] = *v
	}
	return snap
}

// ProgramStats returns the stats for one program, or false when the
// program has never run.
func (m *Metrics) Program(program string) (ProgramStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.programStats[program]
	if !ok {
		return ProgramStats{}, false
	}
	return *stats, true
}
