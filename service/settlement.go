package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opencensus.io/trace"

	"voting-settlement/blockchain"
	"voting-settlement/config"
	"voting-settlement/encryption"
	"voting-settlement/logger"
	"voting-settlement/models"
	"voting-settlement/storage"
)

// Finisher submits finishProposal for a single signer.
type Finisher interface {
	FinishProposal(ctx context.Context, id uint64, result int64) (*types.Receipt, error)
	Address() common.Address
	Close()
}

// Dialer builds a Finisher from freshly loaded chain credentials.
type Dialer func(ctx context.Context, cfg *config.Chain) (Finisher, error)

// CredentialsLoader reads the chain credentials, normally from the environment.
type CredentialsLoader func() (*config.Chain, error)

// DialChain is the Dialer backed by a JSON-RPC client.
func DialChain(ctx context.Context, cfg *config.Chain) (Finisher, error) {
	client, err := blockchain.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SettlementService snapshots the tally and settles it on-chain.
type SettlementService struct {
	tally       *Tally
	store       storage.ReceiptStore
	metrics     *MetricsCollector
	credentials CredentialsLoader
	dial        Dialer
	timeout     time.Duration
}

func NewSettlementService(tally *Tally, store storage.ReceiptStore, metrics *MetricsCollector, credentials CredentialsLoader, dial Dialer, timeout time.Duration) *SettlementService {
	if credentials == nil {
		credentials = config.LoadChain
	}
	if dial == nil {
		dial = DialChain
	}
	if timeout <= 0 {
		timeout = config.DefaultSettlementTimeout
	}

	return &SettlementService{
		tally:       tally,
		store:       store,
		metrics:     metrics,
		credentials: credentials,
		dial:        dial,
		timeout:     timeout,
	}
}

// Submit settles proposalID with the current tally sum and waits until the
// transaction is included in a block.
//
// The chain call is detached from ctx cancellation: a caller that goes away
// does not stop a transaction that may already be broadcast. Only the
// settlement timeout bounds it.
func (s *SettlementService) Submit(ctx context.Context, proposalID uint64) (settlement *models.Settlement, err error) {
	ctx, span := trace.StartSpan(ctx, "service.Settlement.Submit")
	defer span.End()

	log := logger.FromContext(ctx).With().Uint64("proposal_id", proposalID).Logger()

	s.metrics.RecordSettlementStart()
	start := time.Now()
	defer func() {
		s.metrics.RecordSettlementEnd(time.Since(start), err)
	}()

	cfg, err := s.credentials()
	if err != nil {
		log.Error().Err(err).Msg("chain credentials unavailable")
		return nil, err
	}

	sum, count, err := s.tally.Snapshot()
	if err != nil {
		log.Error().Err(err).Int("ballots", count).Msg("cannot settle tally")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	client, err := s.dial(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to chain")
		return nil, s.timeoutOr(ctx, err)
	}
	defer client.Close()

	log = log.With().
		Str("signer", client.Address().Hex()).
		Str("key_fingerprint", encryption.Fingerprint(cfg.PrivateKey)).
		Logger()

	s.warnIfSettled(proposalID, &log)

	log.Info().Int64("sum", sum).Int("ballots", count).Msg("settling proposal")

	receipt, err := client.FinishProposal(ctx, proposalID, sum)
	if err != nil {
		log.Error().Err(err).Int64("sum", sum).Msg("settlement failed")
		return nil, s.timeoutOr(ctx, err)
	}

	settlement = &models.Settlement{
		ID:          uuid.NewString(),
		ProposalID:  proposalID,
		Result:      sum,
		BallotCount: count,
		TxHash:      receipt.TxHash.Hex(),
		Signer:      client.Address().Hex(),
		SettledAt:   time.Now().UTC(),
	}
	if receipt.BlockNumber != nil {
		settlement.BlockNumber = receipt.BlockNumber.Uint64()
	}

	if err := s.store.Put(settlement); err != nil {
		// receipt log is best effort once the transaction is mined
		log.Error().Err(err).Str("tx_hash", settlement.TxHash).Msg("failed to record settlement")
	}

	log.Info().
		Str("tx_hash", settlement.TxHash).
		Uint64("block", settlement.BlockNumber).
		Int64("sum", sum).
		Msg("proposal settled")

	return settlement, nil
}

// timeoutOr reports ErrSettlementTimeout when the settlement deadline has
// passed, whatever error the chain layer surfaced for it.
func (s *SettlementService) timeoutOr(ctx context.Context, err error) error {
	if errors.Is(err, blockchain.ErrSettlementTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(blockchain.ErrSettlementTimeout, err.Error())
	}
	return err
}

// warnIfSettled logs when the receipt log already holds a settlement for
// the proposal. The call is still made and the contract decides.
func (s *SettlementService) warnIfSettled(proposalID uint64, log *zerolog.Logger) {
	previous, err := s.store.ForProposal(proposalID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read settlement receipts")
		return
	}
	if len(previous) > 0 {
		last := previous[len(previous)-1]
		log.Warn().
			Str("previous_tx_hash", last.TxHash).
			Time("previous_settled_at", last.SettledAt).
			Msg("proposal already settled by this service")
	}
}
