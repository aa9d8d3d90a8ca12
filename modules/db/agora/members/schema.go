package members

import "time"

// Member is the registry's view of a marketplace participant. The voting
// engine reads WeightScore and writes it only through RecordProposalPassed.
type Member struct {
	Id              string    `json:"id" bson:"id"`
	Username        string    `json:"username" bson:"username"`
	WeightScore     int64     `json:"weight_score" bson:"weight_score"`
	ProposalsPassed int64     `json:"proposals_passed" bson:"proposals_passed"`
	JoinedAt        time.Time `json:"joined_at" bson:"joined_at"`
}
