package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"voting-settlement/blockchain"
	"voting-settlement/config"
	"voting-settlement/logger"
	"voting-settlement/service"
)

// ParseError is returned when a path parameter is not a valid integer.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Param, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// statusFor maps an error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var parseErr *ParseError
	var cfgErr *config.ConfigError
	var subErr *blockchain.SubmissionError

	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrTallyOverflow):
		return http.StatusInternalServerError
	case errors.Is(err, blockchain.ErrSettlementTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, blockchain.ErrRPCUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	msg := service.PublicMessage(err)
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		msg = parseErr.Error()
	}

	log := logger.FromContext(r.Context())
	if status < http.StatusInternalServerError {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	} else {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}

	http.Error(w, msg, status)
}
