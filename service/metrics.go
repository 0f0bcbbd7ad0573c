package service

import (
	"sync"
	"time"
)

// MetricsCollector tracks ballot and settlement activity
type MetricsCollector struct {
	mu        sync.RWMutex
	startTime time.Time

	ballotCount     int
	firstBallotTime time.Time
	lastBallotTime  time.Time

	settlementsStarted   int
	settlementsSucceeded int
	settlementsFailed    int
	settlementTotalTime  time.Duration
	lastSettlementTime   time.Time
	lastSettlementError  string
}

// OperationMetrics contains timing information for an operation
type OperationMetrics struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Count          int       `json:"count"`
	ProcessingTime int64     `json:"processing_time_ms,omitempty"`
}

// SettlementMetrics contains the outcome counters of settlements
type SettlementMetrics struct {
	OperationMetrics
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// MetricsResponse provides the metrics for all operations
type MetricsResponse struct {
	UptimeSeconds int64             `json:"uptime_seconds"`
	Ballots       OperationMetrics  `json:"ballots"`
	Settlements   SettlementMetrics `json:"settlements"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startTime: time.Now()}
}

// RecordBallot counts one accepted ballot
func (mc *MetricsCollector) RecordBallot() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	if mc.ballotCount == 0 {
		mc.firstBallotTime = now
	}
	mc.ballotCount++
	mc.lastBallotTime = now
}

// RecordSettlementStart marks the start of a settlement
func (mc *MetricsCollector) RecordSettlementStart() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.settlementsStarted++
}

// RecordSettlementEnd marks the end of a settlement and its outcome
func (mc *MetricsCollector) RecordSettlementEnd(duration time.Duration, err error) {
	var failure string
	if err != nil {
		failure = PublicMessage(err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.lastSettlementTime = time.Now()
	mc.settlementTotalTime += duration
	if err != nil {
		mc.settlementsFailed++
		mc.lastSettlementError = failure
		return
	}
	mc.settlementsSucceeded++
}

// GetMetrics returns current metrics for all operations
func (mc *MetricsCollector) GetMetrics() MetricsResponse {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return MetricsResponse{
		UptimeSeconds: int64(time.Since(mc.startTime).Seconds()),
		Ballots: OperationMetrics{
			StartTime: mc.firstBallotTime,
			EndTime:   mc.lastBallotTime,
			Count:     mc.ballotCount,
		},
		Settlements: SettlementMetrics{
			OperationMetrics: OperationMetrics{
				StartTime:      mc.startTime,
				EndTime:        mc.lastSettlementTime,
				Count:          mc.settlementsStarted,
				ProcessingTime: mc.settlementTotalTime.Milliseconds(),
			},
			Succeeded: mc.settlementsSucceeded,
			Failed:    mc.settlementsFailed,
			LastError: mc.lastSettlementError,
		},
	}
}
