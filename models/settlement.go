package models

import "time"

// Settlement is the receipt kept for every finishProposal call that made it into a block.
type Settlement struct {
	ID          string    `json:"id"`
	ProposalID  uint64    `json:"proposal_id"`
	Result      int64     `json:"result"`
	BallotCount int       `json:"ballot_count"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	Signer      string    `json:"signer"`
	SettledAt   time.Time `json:"settled_at"`
}

// TallyStatus is the public view of the in-memory tally.
type TallyStatus struct {
	Count    int    `json:"count"`
	Sum      *int64 `json:"sum,omitempty"`
	Overflow bool   `json:"overflow,omitempty"`
}
