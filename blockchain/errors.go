package blockchain

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

var (
	ErrRPCUnavailable    = errors.New("rpc endpoint unavailable")
	ErrSettlementTimeout = errors.New("transaction not included before timeout")
)

// SubmissionError is returned when the node refuses a transaction or the
// transaction is mined with a failed status. Reason is safe to show callers.
type SubmissionError struct {
	Reason string
	TxHash common.Hash
	Err    error
}

func (e *SubmissionError) Error() string {
	if e.TxHash != (common.Hash{}) {
		return fmt.Sprintf("submission failed: %s (tx %s)", e.Reason, e.TxHash.Hex())
	}
	return fmt.Sprintf("submission failed: %s", e.Reason)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Revert strings of the PrivateVoting contract. They are public and can be
// passed to callers verbatim.
var contractReasons = []string{
	"Proposal not found",
	"Not creator",
	"Already finished",
	"Invalid voter",
	"Already voted",
	"Voting ended",
	"Invalid creator",
	"Proposal exists",
}

// classify maps an error from the rpc layer onto ErrSettlementTimeout,
// ErrRPCUnavailable or a *SubmissionError.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(ErrSettlementTimeout, action)
	case unavailable(err):
		return errors.Wrapf(ErrRPCUnavailable, "%s: %v", action, err)
	}

	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return err
	}
	return &SubmissionError{Reason: redact(err.Error()), Err: errors.Wrap(err, action)}
}

func unavailable(err error) bool {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

// redact reduces a node error message to a stable, key and address free reason.
func redact(msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "execution reverted") || strings.Contains(lower, "revert"):
		for _, reason := range contractReasons {
			if strings.Contains(msg, reason) {
				return "execution reverted: " + reason
			}
		}
		return "execution reverted"
	case strings.Contains(lower, "nonce"),
		strings.Contains(lower, "replacement transaction underpriced"),
		strings.Contains(lower, "already known"):
		return "nonce conflict"
	case strings.Contains(lower, "insufficient funds"):
		return "insufficient funds"
	case strings.Contains(lower, "gas"):
		return "insufficient gas"
	default:
		return "rejected by node"
	}
}
