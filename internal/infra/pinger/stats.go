package pinger

import (
	"sync"
	"time"
)

// Statistics is a point-in-time copy of a pinger's results.
type Statistics struct {
	IsReady             bool          `json:"isReady"`
	IsHealthy           bool          `json:"isHealthy"`
	LastRun             time.Time     `json:"lastRun"`
	LastLatency         time.Duration `json:"lastLatency"`
	LastError           string        `json:"lastError,omitempty"`
	LastErrorAt         time.Time     `json:"lastErrorAt"`
	SuccessCount        uint64        `json:"successCount"`
	ErrorCount          uint64        `json:"errorCount"`
	ConsecutiveFailures uint64        `json:"consecutiveFailures"`
}

// stats accumulates results of one pinger. Latency distribution lives in the
// ping_duration_seconds histogram.
type stats struct {
	mu                  sync.RWMutex
	lastRun             time.Time
	lastLatency         time.Duration
	lastErr             error
	lastErrAt           time.Time
	successCount        uint64
	errorCount          uint64
	consecutiveFailures uint64
}

func (s *stats) record(now time.Time, latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRun = now
	s.lastLatency = latency

	if err != nil {
		s.lastErr = err
		s.lastErrAt = now
		s.errorCount++
		s.consecutiveFailures++

		return
	}

	s.lastErr = nil
	s.successCount++
	s.consecutiveFailures = 0
}

func (s *stats) snapshot(info *pingerInfo) *Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Statistics{
		// A pinger that is not critical never blocks readiness or health.
		IsReady:             !info.readyCritical || s.lastErr == nil,
		IsHealthy:           !info.healthCritical || s.lastErr == nil,
		LastRun:             s.lastRun,
		LastLatency:         s.lastLatency,
		LastErrorAt:         s.lastErrAt,
		SuccessCount:        s.successCount,
		ErrorCount:          s.errorCount,
		ConsecutiveFailures: s.consecutiveFailures,
	}

	if s.lastErr != nil {
		out.LastError = s.lastErr.Error()
	}

	return out
}
