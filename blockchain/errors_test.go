package blockchain

import (
	"context"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.NoError(t, classify(nil, "noop"))

	err := classify(context.DeadlineExceeded, "finishProposal")
	require.ErrorIs(t, err, ErrSettlementTimeout)

	err = classify(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, "finishProposal")
	require.ErrorIs(t, err, ErrRPCUnavailable)

	err = classify(rpc.HTTPError{StatusCode: 503, Status: "503 Service Unavailable"}, "finishProposal")
	require.ErrorIs(t, err, ErrRPCUnavailable)

	err = classify(fmt.Errorf("post: %w", syscall.ECONNREFUSED), "finishProposal")
	require.ErrorIs(t, err, ErrRPCUnavailable)

	err = classify(fmt.Errorf("read response: %w", io.ErrUnexpectedEOF), "finishProposal")
	require.ErrorIs(t, err, ErrRPCUnavailable)

	err = classify(fmt.Errorf("post: %w", io.EOF), "finishProposal")
	require.ErrorIs(t, err, ErrRPCUnavailable)

	err = classify(errors.New("failed to estimate gas needed: execution reverted: Not creator"), "finishProposal")
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "execution reverted: Not creator", subErr.Reason)
	require.NotErrorIs(t, err, ErrRPCUnavailable)
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"execution reverted: Already finished":                     "execution reverted: Already finished",
		"execution reverted: custom 0xdeadbeef":                    "execution reverted",
		"nonce too low: address 0xf39F..., tx: 3 state: 5":         "nonce conflict",
		"replacement transaction underpriced":                      "nonce conflict",
		"insufficient funds for gas * price + value: address 0xf3": "insufficient funds",
		"intrinsic gas too low":                                    "insufficient gas",
		"something odd happened":                                   "rejected by node",
	}
	for in, want := range tests {
		require.Equal(t, want, redact(in), in)
	}
}

func TestSubmissionErrorMessage(t *testing.T) {
	err := &SubmissionError{Reason: "nonce conflict"}
	require.Equal(t, "submission failed: nonce conflict", err.Error())
}

func TestClassifyEOFInNodeMessage(t *testing.T) {
	err := classify(errors.New("execution reverted: geofence check failed"), "finishProposal")

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "execution reverted", subErr.Reason)
	require.NotErrorIs(t, err, ErrRPCUnavailable)
}
