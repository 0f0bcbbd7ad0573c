package blockchain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opencensus.io/trace"

	"voting-settlement/config"
	"voting-settlement/encryption"
	"voting-settlement/logger"
	"voting-settlement/models"
)

// Client signs and sends PrivateVoting transactions from a single account
// and waits for them to be mined.
type Client struct {
	eth      *ethclient.Client
	contract *PrivateVoting
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	gasLimit uint64
}

// Dial validates cfg, connects to its RPC endpoint and binds the contract.
// The chain ID is asked from the node unless cfg pins it.
func Dial(ctx context.Context, cfg *config.Chain) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := cfg.Signer()
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		if unavailable(err) {
			return nil, errors.Wrapf(ErrRPCUnavailable, "dial: %v", err)
		}
		return nil, &config.ConfigError{Field: "RPC_URL", Err: config.ErrMalformed}
	}

	chainID := new(big.Int).SetUint64(cfg.ChainID)
	if cfg.ChainID == 0 {
		chainID, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, classify(err, "query chain id")
		}
	}

	contract, err := NewPrivateVoting(cfg.Contract(), eth)
	if err != nil {
		eth.Close()
		return nil, err
	}

	return &Client{
		eth:      eth,
		contract: contract,
		key:      key,
		from:     encryption.Address(key),
		chainID:  chainID,
		gasLimit: cfg.GasLimit,
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Address is the signing account.
func (c *Client) Address() common.Address {
	return c.from
}

// Contract exposes the binding for read-side queries.
func (c *Client) Contract() *PrivateVoting {
	return c.contract
}

// CallOpts returns call options for read-side queries made on behalf of the signer.
func (c *Client) CallOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.from}
}

func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "build transactor")
	}
	opts.Context = ctx
	opts.GasLimit = c.gasLimit
	return opts, nil
}

// transact signs and broadcasts the transaction built by send, then waits
// for its first inclusion. Cancelling ctx stops the wait, not the
// transaction.
func (c *Client) transact(ctx context.Context, action string, send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Receipt, error) {
	log := logger.FromContext(ctx).With().
		Str("action", action).
		Str("signer", c.from.Hex()).
		Logger()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := send(opts)
	if err != nil {
		log.Error().Err(err).Msg("transaction rejected")
		return nil, classify(err, action)
	}

	log.Info().
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("nonce", tx.Nonce()).
		Msg("transaction broadcast, waiting for inclusion")

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		log.Error().Err(err).Str("tx_hash", tx.Hash().Hex()).Msg("waiting for inclusion failed")
		return nil, classify(err, action)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Error().
			Str("tx_hash", tx.Hash().Hex()).
			Uint64("block", receipt.BlockNumber.Uint64()).
			Msg("transaction reverted")
		return nil, &SubmissionError{Reason: "execution reverted", TxHash: tx.Hash()}
	}

	log.Info().
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("transaction included")

	return receipt, nil
}

// FinishProposal settles proposal id with result and returns the receipt of
// the including block.
func (c *Client) FinishProposal(ctx context.Context, id uint64, result int64) (*types.Receipt, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Client.FinishProposal")
	defer span.End()

	return c.transact(ctx, "finishProposal", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.FinishProposal(opts, id, result)
	})
}

// CreateProposal registers proposal with the signer as creator.
func (c *Client) CreateProposal(ctx context.Context, proposal models.Proposal) (*types.Receipt, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Client.CreateProposal")
	defer span.End()

	proposal.Creator = c.from
	return c.transact(ctx, "createProposal", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.CreateProposal(opts, proposal)
	})
}

// CastVote records a vote from the signer on proposalID.
func (c *Client) CastVote(ctx context.Context, proposalID, voterNonce, timestamp uint64, vote bool) (*types.Receipt, error) {
	ctx, span := trace.StartSpan(ctx, "blockchain.Client.CastVote")
	defer span.End()

	return c.transact(ctx, "vote", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.contract.Vote(opts, c.from, timestamp, proposalID, voterNonce, vote)
	})
}

// DecodeEvents decodes ProposalCreated and VoteCast logs emitted by contract.
// Logs from other contracts or with unknown signatures are skipped.
func DecodeEvents(contract *PrivateVoting, receipt *types.Receipt, log zerolog.Logger) (created []*ProposalCreated, cast []*VoteCast) {
	createdID := contract.abi.Events["ProposalCreated"].ID
	castID := contract.abi.Events["VoteCast"].ID

	for _, l := range receipt.Logs {
		if l == nil || l.Address != contract.address || len(l.Topics) == 0 {
			continue
		}
		switch l.Topics[0] {
		case createdID:
			ev, err := contract.ParseProposalCreated(*l)
			if err != nil {
				log.Warn().Err(err).Msg("skipping malformed ProposalCreated log")
				continue
			}
			created = append(created, ev)
		case castID:
			ev, err := contract.ParseVoteCast(*l)
			if err != nil {
				log.Warn().Err(err).Msg("skipping malformed VoteCast log")
				continue
			}
			cast = append(cast, ev)
		}
	}
	return created, cast
}
