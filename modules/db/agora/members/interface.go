package members

import (
	"context"

	a "agora-node/modules/aggregate"

	"github.com/moznion/go-optional"
)

type Members interface {
	a.Plugin
	UpsertMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id string) (optional.Option[Member], error)
	// ListMembers returns every registered member; the threshold evaluator
	// sums their weight scores on each run.
	ListMembers(ctx context.Context) ([]Member, error)
	// RecordProposalPassed grants the author's approval bonus and bumps their
	// passed-proposal counter in a single atomic update. The stored weight
	// score never exceeds maxScore.
	RecordProposalPassed(ctx context.Context, id string, bonus int64, maxScore int64) error
}
