package models

import "github.com/ethereum/go-ethereum/common"

// Proposal mirrors the PrivateVoting.Proposal struct stored on-chain.
// Field order matches the ABI tuple and must not change.
type Proposal struct {
	ID           uint64         `json:"id"`
	Creator      common.Address `json:"creator"`
	Description  string         `json:"description"`
	VotingSystem uint64         `json:"voting_system"`
	StartDate    uint64         `json:"start_date"`
	EndDate      uint64         `json:"end_date"`
	Finished     bool           `json:"finished"`
	Result       uint64         `json:"result"`
}

// VoteRecord mirrors the PrivateVoting.Vote struct stored on-chain.
type VoteRecord struct {
	Voter         common.Address `json:"voter"`
	Timestamp     uint64         `json:"timestamp"`
	ProposalNonce uint64         `json:"proposal_nonce"`
	VoterNonce    uint64         `json:"voter_nonce"`
	Vote          bool           `json:"vote"`
}
