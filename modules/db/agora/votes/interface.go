package votes

import (
	"context"
	"errors"
	"time"

	a "agora-node/modules/aggregate"

	"github.com/moznion/go-optional"
)

// ErrDuplicateActiveVote is returned by Insert when an active record already
// exists for the same (member, proposal) pair.
var ErrDuplicateActiveVote = errors.New("active vote already exists for member and proposal")

type Votes interface {
	a.Plugin
	Insert(ctx context.Context, record VoteRecord) error
	FindActive(ctx context.Context, memberId string, proposalId string) (optional.Option[VoteRecord], error)
	FindById(ctx context.Context, id string) (optional.Option[VoteRecord], error)
	// ListActive drains every active record in one cursor pass; the sweep
	// treats the result as its consistent as-of-tick-start snapshot.
	ListActive(ctx context.Context) ([]VoteRecord, error)
	// UpdateConviction advances (conviction, lastConvictionUpdate) as one
	// unit. The prevUpdate filter makes it a compare-and-set: false means
	// someone else touched the record first.
	UpdateConviction(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error)
	// Deactivate freezes the record with its final conviction. Same
	// compare-and-set contract as UpdateConviction: false means the record
	// changed (or went inactive) since it was read.
	Deactivate(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error)
}
