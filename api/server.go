package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"voting-settlement/logger"
	"voting-settlement/models"
	"voting-settlement/service"
	"voting-settlement/storage"
)

const headerRequestID = "X-Request-Id"

// Settler settles a proposal with the current tally.
type Settler interface {
	Submit(ctx context.Context, proposalID uint64) (*models.Settlement, error)
}

type Server struct {
	log        zerolog.Logger
	tally      *service.Tally
	settlement Settler
	receipts   storage.ReceiptStore
	metrics    *service.MetricsCollector
}

func NewServer(log zerolog.Logger, tally *service.Tally, settlement Settler, receipts storage.ReceiptStore, metrics *service.MetricsCollector) *Server {
	return &Server{
		log:        log,
		tally:      tally,
		settlement: settlement,
		receipts:   receipts,
		metrics:    metrics,
	}
}

// Handler returns the routes of the service wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /vote/{v}", s.handleVote)
	mux.HandleFunc("POST /submit_votes/{proposal_id}", s.handleSubmitVotes)

	// Status
	mux.HandleFunc("GET /tally", s.handleGetTally)
	mux.HandleFunc("GET /settlements", s.handleGetSettlements)
	mux.HandleFunc("GET /settlements/{proposal_id}", s.handleGetProposalSettlements)
	mux.HandleFunc("GET /metrics", s.handleGetMetrics)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withRequestLog(mux)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("v")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, r, &ParseError{Param: "v", Value: raw, Err: err})
		return
	}

	s.tally.Append(v)
	s.metrics.RecordBallot()

	logger.FromContext(r.Context()).Debug().Int64("vote", v).Msg("vote counted")

	writeText(w, http.StatusOK, "Vote successfully counted")
}

func (s *Server) handleSubmitVotes(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeError(w, r, &ParseError{Param: "proposal_id", Value: raw, Err: err})
		return
	}

	settlement, err := s.settlement.Submit(r.Context(), proposalID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, settlement.TxHash)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	sum, count, err := s.tally.Snapshot()

	status := models.TallyStatus{Count: count}
	if err != nil {
		status.Overflow = true
	} else {
		status.Sum = &sum
	}

	writeJSON(w, r, status)
}

func (s *Server) handleGetSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.receipts.List()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, r, settlements)
}

func (s *Server) handleGetProposalSettlements(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeError(w, r, &ParseError{Param: "proposal_id", Value: raw, Err: err})
		return
	}

	settlements, err := s.receipts.ForProposal(proposalID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(settlements) == 0 {
		http.Error(w, "No settlements for proposal", http.StatusNotFound)
		return
	}

	writeJSON(w, r, settlements)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.metrics.GetMetrics())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// statusRecorder keeps the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logger.ContextWithRequestID(r.Context(), s.log, r.Header.Get(headerRequestID))
		w.Header().Set(headerRequestID, logger.RequestID(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.FromContext(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
