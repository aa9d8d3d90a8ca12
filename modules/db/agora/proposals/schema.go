package proposals

import "time"

type Status string

const (
	StatusDraft      Status = "draft"
	StatusDiscussion Status = "discussion"
	StatusVoting     Status = "voting"
	StatusApproved   Status = "approved"
	StatusBuilding   Status = "building"
	StatusShipped    Status = "shipped"
	StatusAbandoned  Status = "abandoned"
)

// Proposal moves draft -> discussion -> voting externally; voting -> approved
// is driven only by the threshold evaluator. ConvictionScore is written by the
// sweep while the proposal is in voting and frozen once it leaves.
type Proposal struct {
	Id              string     `json:"id" bson:"id"`
	AuthorId        string     `json:"author_id" bson:"author_id"`
	Title           string     `json:"title" bson:"title"`
	Summary         string     `json:"summary" bson:"summary"`
	Status          Status     `json:"status" bson:"status"`
	ConvictionScore float64    `json:"conviction_score" bson:"conviction_score"`
	VoterCount      int64      `json:"voter_count" bson:"voter_count"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	VotingStartedAt *time.Time `json:"voting_started_at,omitempty" bson:"voting_started_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
}
