package textbook

import (
	"sort"
	"sync"
	"time"
)

// ParseStats tracks module parse latencies within a rolling window so
// the stats endpoint can report how the extractor is behaving on the
// current corpus.
type ParseStats struct {
	mu       sync.Mutex
	maxAge   time.Duration
	samples  []parseSample
	parses   int64
	failures int64
}

type parseSample struct {
	at         time.Time
	durationMs int64
}

// LatencySnapshot is a point-in-time aggregate of recent parse latencies.
type LatencySnapshot struct {
	Count    int     `json:"count"`
	Parses   int64   `json:"parses_total"`
	Failures int64   `json:"failures_total"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

func NewParseStats(maxAge time.Duration) *ParseStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ParseStats{maxAge: maxAge}
}

// RecordParse logs one successful parse duration.
func (s *ParseStats) RecordParse(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.samples = append(s.samples, parseSample{at: now, durationMs: ms})
	s.parses++
}

// RecordFailure logs one failed parse.
func (s *ParseStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

// Snapshot aggregates the samples still inside the window.
func (s *ParseStats) Snapshot() LatencySnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	snap := LatencySnapshot{
		Count:    len(s.samples),
		Parses:   s.parses,
		Failures: s.failures,
	}
	if len(s.samples) == 0 {
		return snap
	}

	durations := make([]int64, len(s.samples))
	var sum int64
	for i, smp := range s.samples {
		durations[i] = smp.durationMs
		sum += smp.durationMs
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	snap.MinMs = durations[0]
	snap.MaxMs = durations[len(durations)-1]
	snap.AvgMs = float64(sum) / float64(len(durations))
	snap.P50Ms = percentile(durations, 0.50)
	snap.P95Ms = percentile(durations, 0.95)
	return snap
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := s.samples[:0]
	for _, smp := range s.samples {
		if smp.at.After(cutoff) {
			keep = append(keep, smp)
		}
	}
	s.samples = keep
}

// percentile interpolates linearly between the two nearest sorted samples.
func percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}
