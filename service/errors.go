package service

import (
	"github.com/pkg/errors"

	"voting-settlement/blockchain"
	"voting-settlement/config"
)

// PublicMessage renders err for API callers and metrics. It never includes
// RPC URLs, key material or raw node messages.
func PublicMessage(err error) string {
	var cfgErr *config.ConfigError
	var subErr *blockchain.SubmissionError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		reason := "invalid value"
		if errors.Is(cfgErr.Err, config.ErrMissing) || errors.Is(cfgErr.Err, config.ErrMalformed) {
			reason = cfgErr.Err.Error()
		}
		return "configuration error: " + cfgErr.Field + ": " + reason
	case errors.Is(err, ErrTallyOverflow):
		return ErrTallyOverflow.Error()
	case errors.Is(err, blockchain.ErrSettlementTimeout):
		return blockchain.ErrSettlementTimeout.Error()
	case errors.Is(err, blockchain.ErrRPCUnavailable):
		return blockchain.ErrRPCUnavailable.Error()
	case errors.As(err, &subErr):
		return "submission failed: " + subErr.Reason
	default:
		return "internal error"
	}
}
