package activity

import "time"

const (
	TypeVoteCast         = "vote_cast"
	TypeVoteWithdrawn    = "vote_withdrawn"
	TypeProposalApproved = "proposal_approved"
)

type Event struct {
	Type       string                 `json:"type" bson:"type"`
	ProposalId string                 `json:"proposal_id" bson:"proposal_id"`
	MemberId   string                 `json:"member_id" bson:"member_id"`
	Summary    string                 `json:"summary" bson:"summary"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Ts         time.Time              `json:"ts" bson:"ts"`
}
