package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"voting-settlement/models"
)

// PrivateVotingABI is the interface of the deployed PrivateVoting contract.
// finishProposal takes an int64 result even though the stored field is uint64.
const PrivateVotingABI = `[
{"type":"event","anonymous":false,"name":"ProposalCreated","inputs":[
 {"name":"id","type":"uint64","indexed":true},
 {"name":"creator","type":"address","indexed":true}]},
{"type":"event","anonymous":false,"name":"VoteCast","inputs":[
 {"name":"voter","type":"address","indexed":true},
 {"name":"proposal_nonce","type":"uint64","indexed":true},
 {"name":"vote","type":"bool","indexed":false}]},
{"type":"function","name":"accountVoted","stateMutability":"view","inputs":[
 {"name":"id","type":"uint64"},
 {"name":"voter","type":"address"},
 {"name":"proposal_nonce","type":"uint64"}],
 "outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"createProposal","stateMutability":"nonpayable","inputs":[
 {"name":"id","type":"uint64"},
 {"name":"creator","type":"address"},
 {"name":"description","type":"string"},
 {"name":"voting_system","type":"uint64"},
 {"name":"start_date","type":"uint64"},
 {"name":"end_date","type":"uint64"},
 {"name":"finished","type":"bool"},
 {"name":"result","type":"uint64"}],
 "outputs":[]},
{"type":"function","name":"finishProposal","stateMutability":"nonpayable","inputs":[
 {"name":"id","type":"uint64"},
 {"name":"result","type":"int64"}],
 "outputs":[]},
{"type":"function","name":"getProposal","stateMutability":"view","inputs":[
 {"name":"id","type":"uint64"}],
 "outputs":[{"name":"","type":"tuple","internalType":"struct PrivateVoting.Proposal","components":[
  {"name":"id","type":"uint64"},
  {"name":"creator","type":"address"},
  {"name":"description","type":"string"},
  {"name":"voting_system","type":"uint64"},
  {"name":"start_date","type":"uint64"},
  {"name":"end_date","type":"uint64"},
  {"name":"finished","type":"bool"},
  {"name":"result","type":"uint64"}]}]},
{"type":"function","name":"getProposalVotes","stateMutability":"view","inputs":[
 {"name":"proposal_nonce","type":"uint64"}],
 "outputs":[{"name":"","type":"tuple[]","internalType":"struct PrivateVoting.Vote[]","components":[
  {"name":"voter","type":"address"},
  {"name":"timestamp","type":"uint64"},
  {"name":"proposal_nonce","type":"uint64"},
  {"name":"voter_nonce","type":"uint64"},
  {"name":"vote","type":"bool"}]}]},
{"type":"function","name":"getProposals","stateMutability":"view","inputs":[],
 "outputs":[{"name":"","type":"tuple[]","internalType":"struct PrivateVoting.Proposal[]","components":[
  {"name":"id","type":"uint64"},
  {"name":"creator","type":"address"},
  {"name":"description","type":"string"},
  {"name":"voting_system","type":"uint64"},
  {"name":"start_date","type":"uint64"},
  {"name":"end_date","type":"uint64"},
  {"name":"finished","type":"bool"},
  {"name":"result","type":"uint64"}]}]},
{"type":"function","name":"hasVoted","stateMutability":"view","inputs":[
 {"name":"","type":"uint64"},
 {"name":"","type":"address"},
 {"name":"","type":"uint64"}],
 "outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"proposalCount","stateMutability":"view","inputs":[],
 "outputs":[{"name":"","type":"uint64"}]},
{"type":"function","name":"proposalIds","stateMutability":"view","inputs":[
 {"name":"","type":"uint256"}],
 "outputs":[{"name":"","type":"uint64"}]},
{"type":"function","name":"proposalVotes","stateMutability":"view","inputs":[
 {"name":"","type":"uint64"},
 {"name":"","type":"uint256"}],
 "outputs":[
  {"name":"voter","type":"address"},
  {"name":"timestamp","type":"uint64"},
  {"name":"proposal_nonce","type":"uint64"},
  {"name":"voter_nonce","type":"uint64"},
  {"name":"vote","type":"bool"}]},
{"type":"function","name":"proposals","stateMutability":"view","inputs":[
 {"name":"","type":"uint64"}],
 "outputs":[
  {"name":"id","type":"uint64"},
  {"name":"creator","type":"address"},
  {"name":"description","type":"string"},
  {"name":"voting_system","type":"uint64"},
  {"name":"start_date","type":"uint64"},
  {"name":"end_date","type":"uint64"},
  {"name":"finished","type":"bool"},
  {"name":"result","type":"uint64"}]},
{"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[
 {"name":"voter","type":"address"},
 {"name":"timestamp","type":"uint64"},
 {"name":"proposal_nonce","type":"uint64"},
 {"name":"voter_nonce","type":"uint64"},
 {"name":"_vote","type":"bool"}],
 "outputs":[{"name":"","type":"bool"}]}
]`

// ProposalCreated is emitted by createProposal.
// Field names follow the ABI argument names so the topics decode into them.
type ProposalCreated struct {
	Id      uint64
	Creator common.Address
	Raw     types.Log
}

// VoteCast is emitted by vote.
type VoteCast struct {
	Voter         common.Address
	ProposalNonce uint64
	Vote          bool
	Raw           types.Log
}

// PrivateVoting is a typed binding to a deployed PrivateVoting contract.
type PrivateVoting struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// ParsePrivateVotingABI parses PrivateVotingABI.
func ParsePrivateVotingABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(PrivateVotingABI))
}

// NewPrivateVoting binds the contract at address through backend.
func NewPrivateVoting(address common.Address, backend bind.ContractBackend) (*PrivateVoting, error) {
	parsed, err := ParsePrivateVotingABI()
	if err != nil {
		return nil, errors.Wrap(err, "parse PrivateVoting abi")
	}

	return &PrivateVoting{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (p *PrivateVoting) Address() common.Address {
	return p.address
}

// CreateProposal registers a new proposal. The creator must be the sender.
func (p *PrivateVoting) CreateProposal(opts *bind.TransactOpts, proposal models.Proposal) (*types.Transaction, error) {
	return p.contract.Transact(opts, "createProposal",
		proposal.ID,
		proposal.Creator,
		proposal.Description,
		proposal.VotingSystem,
		proposal.StartDate,
		proposal.EndDate,
		proposal.Finished,
		proposal.Result,
	)
}

// Vote records a plaintext vote from the sender.
func (p *PrivateVoting) Vote(opts *bind.TransactOpts, voter common.Address, timestamp, proposalNonce, voterNonce uint64, vote bool) (*types.Transaction, error) {
	return p.contract.Transact(opts, "vote", voter, timestamp, proposalNonce, voterNonce, vote)
}

// FinishProposal closes proposal id with result. Only its creator may call it, once.
func (p *PrivateVoting) FinishProposal(opts *bind.TransactOpts, id uint64, result int64) (*types.Transaction, error) {
	return p.contract.Transact(opts, "finishProposal", id, result)
}

func (p *PrivateVoting) GetProposal(opts *bind.CallOpts, id uint64) (models.Proposal, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getProposal", id); err != nil {
		return models.Proposal{}, err
	}
	return *abi.ConvertType(out[0], new(models.Proposal)).(*models.Proposal), nil
}

func (p *PrivateVoting) GetProposals(opts *bind.CallOpts) ([]models.Proposal, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getProposals"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]models.Proposal)).(*[]models.Proposal), nil
}

func (p *PrivateVoting) GetProposalVotes(opts *bind.CallOpts, proposalNonce uint64) ([]models.VoteRecord, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getProposalVotes", proposalNonce); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]models.VoteRecord)).(*[]models.VoteRecord), nil
}

// AccountVoted reports whether voter used voter nonce id on proposalNonce.
func (p *PrivateVoting) AccountVoted(opts *bind.CallOpts, id uint64, voter common.Address, proposalNonce uint64) (bool, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "accountVoted", id, voter, proposalNonce); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (p *PrivateVoting) HasVoted(opts *bind.CallOpts, proposalNonce uint64, voter common.Address, voterNonce uint64) (bool, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "hasVoted", proposalNonce, voter, voterNonce); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (p *PrivateVoting) ProposalCount(opts *bind.CallOpts) (uint64, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "proposalCount"); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint64)).(*uint64), nil
}

// ProposalAt reads the public proposals mapping entry for id.
func (p *PrivateVoting) ProposalAt(opts *bind.CallOpts, id uint64) (models.Proposal, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "proposals", id); err != nil {
		return models.Proposal{}, err
	}

	return models.Proposal{
		ID:           *abi.ConvertType(out[0], new(uint64)).(*uint64),
		Creator:      *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Description:  *abi.ConvertType(out[2], new(string)).(*string),
		VotingSystem: *abi.ConvertType(out[3], new(uint64)).(*uint64),
		StartDate:    *abi.ConvertType(out[4], new(uint64)).(*uint64),
		EndDate:      *abi.ConvertType(out[5], new(uint64)).(*uint64),
		Finished:     *abi.ConvertType(out[6], new(bool)).(*bool),
		Result:       *abi.ConvertType(out[7], new(uint64)).(*uint64),
	}, nil
}

// ProposalIDAt reads the index-th entry of the public proposalIds array.
func (p *PrivateVoting) ProposalIDAt(opts *bind.CallOpts, index *big.Int) (uint64, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "proposalIds", index); err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint64)).(*uint64), nil
}

// ProposalVoteAt reads the index-th vote recorded for proposalNonce.
func (p *PrivateVoting) ProposalVoteAt(opts *bind.CallOpts, proposalNonce uint64, index *big.Int) (models.VoteRecord, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "proposalVotes", proposalNonce, index); err != nil {
		return models.VoteRecord{}, err
	}

	return models.VoteRecord{
		Voter:         *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Timestamp:     *abi.ConvertType(out[1], new(uint64)).(*uint64),
		ProposalNonce: *abi.ConvertType(out[2], new(uint64)).(*uint64),
		VoterNonce:    *abi.ConvertType(out[3], new(uint64)).(*uint64),
		Vote:          *abi.ConvertType(out[4], new(bool)).(*bool),
	}, nil
}

func (p *PrivateVoting) ParseProposalCreated(log types.Log) (*ProposalCreated, error) {
	event := new(ProposalCreated)
	if err := p.contract.UnpackLog(event, "ProposalCreated", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

func (p *PrivateVoting) ParseVoteCast(log types.Log) (*VoteCast, error) {
	event := new(VoteCast)
	if err := p.contract.UnpackLog(event, "VoteCast", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
