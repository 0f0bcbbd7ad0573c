package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"voting-settlement/blockchain"
	"voting-settlement/config"
	"voting-settlement/service"
)

func TestMetricsCollector(t *testing.T) {
	mc := service.NewMetricsCollector()

	mc.RecordBallot()
	mc.RecordBallot()

	mc.RecordSettlementStart()
	mc.RecordSettlementEnd(20*time.Millisecond, nil)
	mc.RecordSettlementStart()
	mc.RecordSettlementEnd(30*time.Millisecond, fmt.Errorf("dial http://secret-node: %w", blockchain.ErrRPCUnavailable))

	m := mc.GetMetrics()
	assert.Equal(t, 2, m.Ballots.Count)
	assert.False(t, m.Ballots.StartTime.IsZero())
	assert.Equal(t, 2, m.Settlements.Count)
	assert.Equal(t, 1, m.Settlements.Succeeded)
	assert.Equal(t, 1, m.Settlements.Failed)
	assert.Equal(t, int64(50), m.Settlements.ProcessingTime)
	assert.Equal(t, "rpc endpoint unavailable", m.Settlements.LastError)
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing key", &config.ConfigError{Field: "PK", Err: config.ErrMissing}, "configuration error: PK: missing value"},
		{"opaque config", &config.ConfigError{Field: "environment", Err: errors.New("bad value \"abc\"")}, "configuration error: environment: invalid value"},
		{"overflow", service.ErrTallyOverflow, "tally sum overflows int64"},
		{"timeout", blockchain.ErrSettlementTimeout, "transaction not included before timeout"},
		{"unavailable", fmt.Errorf("wrap: %w", blockchain.ErrRPCUnavailable), "rpc endpoint unavailable"},
		{"submission", &blockchain.SubmissionError{Reason: "nonce conflict", Err: errors.New("nonce too low at http://node")}, "submission failed: nonce conflict"},
		{"other", errors.New("boom"), "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.PublicMessage(tt.err))
		})
	}
}
