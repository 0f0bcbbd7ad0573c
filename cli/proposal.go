package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"voting-settlement/blockchain"
	"voting-settlement/config"
	"voting-settlement/logger"
	"voting-settlement/models"
)

var (
	description  string
	votingSystem uint64
	startDate    uint64
	endDate      uint64
	voterNonce   uint64
	voteYes      bool
	voterAddress string
	callTimeout  time.Duration
)

func init() {
	proposalCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", config.DefaultSettlementTimeout, "how long to wait for the node")

	proposalCreateCmd.Flags().StringVar(&description, "description", "", "proposal description")
	proposalCreateCmd.Flags().Uint64Var(&votingSystem, "voting-system", 0, "voting system identifier")
	proposalCreateCmd.Flags().Uint64Var(&startDate, "start", 0, "voting start as unix seconds (default now)")
	proposalCreateCmd.Flags().Uint64Var(&endDate, "end", 0, "voting end as unix seconds (default start + 1 day)")

	proposalVotedCmd.Flags().StringVar(&voterAddress, "voter", "", "voter address (default the signer)")
	proposalVotedCmd.Flags().Uint64Var(&voterNonce, "voter-nonce", 0, "voter nonce")

	proposalCastCmd.Flags().Uint64Var(&voterNonce, "voter-nonce", 0, "voter nonce")
	proposalCastCmd.Flags().BoolVar(&voteYes, "yes", false, "vote in favour")

	proposalCmd.AddCommand(
		proposalCreateCmd,
		proposalFinishCmd,
		proposalShowCmd,
		proposalListCmd,
		proposalIndexCmd,
		proposalVotesCmd,
		proposalVotedCmd,
		proposalCastCmd,
	)
}

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Operate on PrivateVoting proposals with the PK, RPC_URL and CONTRACT_ADDRESS credentials",
}

var proposalCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a proposal owned by the signer",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		id, err := parseUint("id", args[0])
		if err != nil {
			return err
		}

		start := startDate
		if start == 0 {
			start = uint64(time.Now().Unix())
		}
		end := endDate
		if end == 0 {
			end = start + uint64((24 * time.Hour).Seconds())
		}

		receipt, err := client.CreateProposal(ctx, models.Proposal{
			ID:           id,
			Description:  description,
			VotingSystem: votingSystem,
			StartDate:    start,
			EndDate:      end,
		})
		if err != nil {
			return err
		}
		return printReceipt(client, receipt, log)
	}),
}

var proposalFinishCmd = &cobra.Command{
	Use:   "finish <id> <result>",
	Short: "Finish a proposal with an explicit result",
	Args:  cobra.ExactArgs(2),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		id, err := parseUint("id", args[0])
		if err != nil {
			return err
		}
		result, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid result %q", args[1])
		}

		receipt, err := client.FinishProposal(ctx, id, result)
		if err != nil {
			return err
		}
		return printReceipt(client, receipt, log)
	}),
}

var proposalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		id, err := parseUint("id", args[0])
		if err != nil {
			return err
		}

		proposal, err := client.Contract().GetProposal(client.CallOpts(ctx), id)
		if err != nil {
			return err
		}
		return printJSON(proposal)
	}),
}

var proposalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all proposals",
	Args:  cobra.NoArgs,
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		opts := client.CallOpts(ctx)

		count, err := client.Contract().ProposalCount(opts)
		if err != nil {
			return err
		}
		proposals, err := client.Contract().GetProposals(opts)
		if err != nil {
			return err
		}

		log.Debug().Uint64("count", count).Msg("proposals listed")
		return printJSON(struct {
			Count     uint64            `json:"count"`
			Proposals []models.Proposal `json:"proposals"`
		}{count, proposals})
	}),
}

var proposalIndexCmd = &cobra.Command{
	Use:   "index [vote_index]",
	Short: "Walk the public proposalIds array, or read one stored vote of every proposal",
	Args:  cobra.MaximumNArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		opts := client.CallOpts(ctx)
		contract := client.Contract()

		count, err := contract.ProposalCount(opts)
		if err != nil {
			return err
		}

		type entry struct {
			Proposal models.Proposal    `json:"proposal"`
			Vote     *models.VoteRecord `json:"vote,omitempty"`
		}
		entries := make([]entry, 0, count)

		for i := uint64(0); i < count; i++ {
			id, err := contract.ProposalIDAt(opts, new(big.Int).SetUint64(i))
			if err != nil {
				return err
			}
			proposal, err := contract.ProposalAt(opts, id)
			if err != nil {
				return err
			}

			e := entry{Proposal: proposal}
			if len(args) == 1 {
				index, err := parseUint("vote_index", args[0])
				if err != nil {
					return err
				}
				vote, err := contract.ProposalVoteAt(opts, id, new(big.Int).SetUint64(index))
				if err != nil {
					log.Debug().Err(err).Uint64("proposal_id", id).Msg("no vote at index")
				} else {
					e.Vote = &vote
				}
			}
			entries = append(entries, e)
		}

		return printJSON(entries)
	}),
}

var proposalVotesCmd = &cobra.Command{
	Use:   "votes <proposal_nonce>",
	Short: "List the votes cast on a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		nonce, err := parseUint("proposal_nonce", args[0])
		if err != nil {
			return err
		}

		votes, err := client.Contract().GetProposalVotes(client.CallOpts(ctx), nonce)
		if err != nil {
			return err
		}
		return printJSON(votes)
	}),
}

var proposalVotedCmd = &cobra.Command{
	Use:   "voted <proposal_nonce>",
	Short: "Check whether a voter has voted on a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		nonce, err := parseUint("proposal_nonce", args[0])
		if err != nil {
			return err
		}

		voter := client.Address()
		if voterAddress != "" {
			if !common.IsHexAddress(voterAddress) {
				return fmt.Errorf("invalid voter address %q", voterAddress)
			}
			voter = common.HexToAddress(voterAddress)
		}

		opts := client.CallOpts(ctx)
		hasVoted, err := client.Contract().HasVoted(opts, nonce, voter, voterNonce)
		if err != nil {
			return err
		}
		accountVoted, err := client.Contract().AccountVoted(opts, voterNonce, voter, nonce)
		if err != nil {
			return err
		}

		return printJSON(struct {
			Voter        common.Address `json:"voter"`
			HasVoted     bool           `json:"has_voted"`
			AccountVoted bool           `json:"account_voted"`
		}{voter, hasVoted, accountVoted})
	}),
}

var proposalCastCmd = &cobra.Command{
	Use:   "cast <proposal_nonce>",
	Short: "Cast the signer's vote on a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error {
		nonce, err := parseUint("proposal_nonce", args[0])
		if err != nil {
			return err
		}

		receipt, err := client.CastVote(ctx, nonce, voterNonce, uint64(time.Now().Unix()), voteYes)
		if err != nil {
			return err
		}
		return printReceipt(client, receipt, log)
	}),
}

type clientFunc func(ctx context.Context, client *blockchain.Client, log zerolog.Logger, args []string) error

// withClient loads the chain credentials and dials the node before running fn.
func withClient(fn clientFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		srv, err := config.LoadServer(v, configFile)
		if err != nil {
			return err
		}
		log, err := logger.New(os.Stderr, srv.LogLevel, "console")
		if err != nil {
			return err
		}

		chain, err := config.LoadChain()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
		defer cancel()
		ctx = logger.ContextWithRequestID(ctx, log, "")

		client, err := blockchain.Dial(ctx, chain)
		if err != nil {
			return err
		}
		defer client.Close()

		return fn(ctx, client, log, args)
	}
}

func printReceipt(client *blockchain.Client, receipt *types.Receipt, log zerolog.Logger) error {
	created, cast := blockchain.DecodeEvents(client.Contract(), receipt, log)

	return printJSON(struct {
		TxHash    string                        `json:"tx_hash"`
		Block     uint64                        `json:"block"`
		GasUsed   uint64                        `json:"gas_used"`
		Created   []*blockchain.ProposalCreated `json:"proposals_created,omitempty"`
		VotesCast []*blockchain.VoteCast        `json:"votes_cast,omitempty"`
	}{
		TxHash:    receipt.TxHash.Hex(),
		Block:     receipt.BlockNumber.Uint64(),
		GasUsed:   receipt.GasUsed,
		Created:   created,
		VotesCast: cast,
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseUint(name, raw string) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
