// Package stats tracks how the facade serves operations: which path
// answered, how often the remote failed and how long calls took.
package stats

import (
	"runtime"
	"sync"
	"time"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
)

// Collector collects and tracks dispatch statistics. Safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	startTime      time.Time
	remoteRequests int64
	localRequests  int64
	localFailures  int64
	shortCircuits  int64
	totalDuration  int64 // nanoseconds
	remoteFailures map[apperrors.Kind]int64
	operations     map[operation.Kind]*OperationStats

	daily *DailyStats
	now   func() time.Time
}

// OperationStats counts results per operation kind.
type OperationStats struct {
	Remote int64 `json:"remote"`
	Local  int64 `json:"local"`
}

// DailyStats tracks the path split for a single day.
type DailyStats struct {
	Date     string  `json:"date"`
	Remote   int64   `json:"remote"`
	Local    int64   `json:"local"`
	Requests int64   `json:"requests"`
	LocalPct float64 `json:"local_rate"`
}

// Stats is a point-in-time copy of the collector.
type Stats struct {
	Uptime     string  `json:"uptime"`
	Goroutines int     `json:"goroutines"`
	HeapMB     float64 `json:"heap_alloc_mb"`

	RemoteRequests int64            `json:"remote_requests"`
	LocalRequests  int64            `json:"local_requests"`
	LocalFailures  int64            `json:"local_failures"`
	ShortCircuits  int64            `json:"short_circuits"`
	RemoteFailures map[string]int64 `json:"remote_failures"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	LocalRate      float64          `json:"local_rate"`

	Operations map[string]OperationStats `json:"operations"`
	Today      DailyStats                `json:"today"`

	// Filled by the facade when a journal is configured.
	JournalEntries int `json:"journal_entries"`
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	c := &Collector{
		startTime:      time.Now(),
		remoteFailures: make(map[apperrors.Kind]int64),
		operations:     make(map[operation.Kind]*OperationStats),
		now:            time.Now,
	}
	c.daily = &DailyStats{Date: c.today()}
	return c
}

// RecordSuccess records a result produced by path.
func (c *Collector) RecordSuccess(op operation.Kind, path operation.Path, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDay()
	opStats := c.operations[op]
	if opStats == nil {
		opStats = &OperationStats{}
		c.operations[op] = opStats
	}

	if path == operation.PathRemote {
		c.remoteRequests++
		c.daily.Remote++
		opStats.Remote++
	} else {
		c.localRequests++
		c.daily.Local++
		opStats.Local++
	}
	c.daily.Requests++
	c.totalDuration += latency.Nanoseconds()
}

// RecordRemoteFailure records a remote failure that led to a fallback.
func (c *Collector) RecordRemoteFailure(_ operation.Kind, kind apperrors.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remoteFailures[kind]++
}

// RecordLocalFailure records a terminal local failure.
func (c *Collector) RecordLocalFailure(operation.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localFailures++
}

// RecordShortCircuit records a call that skipped the remote executor.
func (c *Collector) RecordShortCircuit(operation.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shortCircuits++
}

// Collect returns current statistics.
func (c *Collector) Collect() *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDay()
	total := c.remoteRequests + c.localRequests
	avgLatency := float64(0)
	if total > 0 {
		avgLatency = float64(c.totalDuration) / float64(total) / 1e6 // nanos to millis
	}

	failures := make(map[string]int64, len(c.remoteFailures))
	for k, v := range c.remoteFailures {
		failures[k.String()] = v
	}
	ops := make(map[string]OperationStats, len(c.operations))
	for k, v := range c.operations {
		ops[string(k)] = *v
	}
	today := *c.daily
	today.LocalPct = rate(today.Local, today.Requests)

	return &Stats{
		Uptime:         time.Since(c.startTime).Round(time.Second).String(),
		Goroutines:     runtime.NumGoroutine(),
		HeapMB:         bytesToMB(int64(m.HeapAlloc)),
		RemoteRequests: c.remoteRequests,
		LocalRequests:  c.localRequests,
		LocalFailures:  c.localFailures,
		ShortCircuits:  c.shortCircuits,
		RemoteFailures: failures,
		AvgLatencyMs:   avgLatency,
		LocalRate:      rate(c.localRequests, total),
		Operations:     ops,
		Today:          today,
	}
}

// rollDay starts a fresh daily bucket after midnight. Caller holds mu.
func (c *Collector) rollDay() {
	if d := c.today(); d != c.daily.Date {
		c.daily = &DailyStats{Date: d}
	}
}

func (c *Collector) today() string {
	return c.now().Format("2006-01-02")
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// bytesToMB converts bytes to megabytes.
func bytesToMB(b int64) float64 {
	return float64(b) / 1024 / 1024
}
