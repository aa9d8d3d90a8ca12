package activity

import (
	"context"

	a "agora-node/modules/aggregate"
)

// Activity is the feed sink. Inserts are best effort from the engine's point
// of view: callers log failures and move on, they never roll back vote state.
type Activity interface {
	a.Plugin
	Insert(ctx context.Context, event Event) error
	Latest(ctx context.Context, limit int64) ([]Event, error)
}
