package proposals

import (
	"context"
	"time"

	a "agora-node/modules/aggregate"

	"github.com/moznion/go-optional"
)

type Proposals interface {
	a.Plugin
	CreateProposal(ctx context.Context, proposal Proposal) error
	GetProposal(ctx context.Context, id string) (optional.Option[Proposal], error)
	ListByStatus(ctx context.Context, status Status) ([]Proposal, error)
	// OpenVoting is the externally driven discussion -> voting transition.
	// Returns false when the proposal wasn't in discussion.
	OpenVoting(ctx context.Context, id string, now time.Time) (bool, error)
	// SetConvictionScore writes the sweep aggregate. The write carries a
	// status filter so proposals that left voting between sweeps are skipped.
	SetConvictionScore(ctx context.Context, id string, score float64) (bool, error)
	// Approve flips voting -> approved and stamps approvedAt. Returns false
	// when someone else already moved the proposal out of voting.
	Approve(ctx context.Context, id string, now time.Time) (bool, error)
	// IncVoterCount adjusts the voter tally; decrements never go below zero.
	IncVoterCount(ctx context.Context, id string, delta int64) error
}
