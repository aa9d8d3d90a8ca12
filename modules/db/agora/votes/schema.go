package votes

import "time"

// VoteRecord is one member's standing stake behind one proposal. Conviction is
// only valid as of LastConvictionUpdate; readers wanting a live value must run
// the decay forward themselves. Withdrawn records stay in the ledger with
// Active false and a frozen conviction.
type VoteRecord struct {
	Id                   string     `json:"id" bson:"id"`
	MemberId             string     `json:"member_id" bson:"member_id"`
	ProposalId           string     `json:"proposal_id" bson:"proposal_id"`
	Weight               float64    `json:"weight" bson:"weight"`
	Conviction           float64    `json:"conviction" bson:"conviction"`
	StakedAt             time.Time  `json:"staked_at" bson:"staked_at"`
	LastConvictionUpdate time.Time  `json:"last_conviction_update" bson:"last_conviction_update"`
	Active               bool       `json:"active" bson:"active"`
	WithdrawnAt          *time.Time `json:"withdrawn_at,omitempty" bson:"withdrawn_at,omitempty"`
}
