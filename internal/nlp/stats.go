package nlp

import (
	"sort"
	"sync"
	"time"
)

// call is one completed parse request.
type call struct {
	at      time.Time
	latency time.Duration
	trees   int
}

// StatsSnapshot aggregates recent parse-service traffic: how many calls
// were made, how much tree output came back, and latency percentiles.
// Failures are a running total, not windowed.
type StatsSnapshot struct {
	Count        int     `json:"count"`
	Failures     uint64  `json:"failures"`
	Trees        int     `json:"trees"`
	TreesPerCall float64 `json:"trees_per_call"`
	MinMs        int64   `json:"min_ms"`
	MaxMs        int64   `json:"max_ms"`
	AvgMs        float64 `json:"avg_ms"`
	P50Ms        float64 `json:"p50_ms"`
	P95Ms        float64 `json:"p95_ms"`
	P99Ms        float64 `json:"p99_ms"`
}

// ParseStats tracks parse-service calls within a rolling window.
type ParseStats struct {
	mu       sync.Mutex
	calls    []call
	failures uint64
	maxAge   time.Duration
}

func NewParseStats(maxAge time.Duration) *ParseStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ParseStats{
		calls:  make([]call, 0, 256),
		maxAge: maxAge,
	}
}

// Record adds one successful call with its latency and the number of
// trees the service returned.
func (s *ParseStats) Record(latency time.Duration, trees int) {
	if latency < 0 {
		latency = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	s.calls = append(s.calls, call{at: now, latency: latency, trees: trees})
}

// RecordFailure tallies a failed call. Failures carry no latency sample;
// a timed-out request would otherwise drag the percentiles toward the
// client timeout.
func (s *ParseStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

func (s *ParseStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	snap := StatsSnapshot{Failures: s.failures}
	if len(s.calls) == 0 {
		return snap
	}

	latencies := make([]time.Duration, len(s.calls))
	var sum time.Duration
	for i, c := range s.calls {
		latencies[i] = c.latency
		sum += c.latency
		snap.Trees += c.trees
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	snap.Count = len(latencies)
	snap.TreesPerCall = float64(snap.Trees) / float64(snap.Count)
	snap.MinMs = latencies[0].Milliseconds()
	snap.MaxMs = latencies[len(latencies)-1].Milliseconds()
	snap.AvgMs = float64(sum.Milliseconds()) / float64(snap.Count)
	snap.P50Ms = float64(nearestRank(latencies, 50).Milliseconds())
	snap.P95Ms = float64(nearestRank(latencies, 95).Milliseconds())
	snap.P99Ms = float64(nearestRank(latencies, 99).Milliseconds())
	return snap
}

func (s *ParseStats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	kept := s.calls[:0]
	for _, c := range s.calls {
		if !c.at.Before(cutoff) {
			kept = append(kept, c)
		}
	}
	s.calls = kept
}

// nearestRank picks the pct-th percentile from sorted latencies.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	i := pct * len(sorted) / 100
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}
