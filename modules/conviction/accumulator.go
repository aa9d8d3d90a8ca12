package conviction

import (
	"math"

	"agora-node/modules/common/params"
)

// Per-hour decay factor. Conviction left alone halves every HALF_LIFE_HOURS.
var decayRate = math.Pow(0.5, 1.0/params.HALF_LIFE_HOURS)

// Accumulate advances a vote's conviction by elapsedHours of real time:
// the standing conviction decays exponentially and the vote's fixed weight is
// reinforced once for the interval. Under sustained support the value settles
// toward weight / (1 - decayRate).
//
// A non-positive elapsed interval is a no-op, which makes repeated
// applications with the same "now" idempotent and absorbs clock skew.
func Accumulate(conviction float64, weight float64, elapsedHours float64) float64 {
	if elapsedHours <= 0 {
		return conviction
	}
	return conviction*math.Pow(decayRate, elapsedHours) + weight
}

// StakeWeight converts a member's weight score into voting weight: the score
// scaled down by the weight divisor, floored at 1.0 so every member can vote.
// The result is snapshotted onto the record at cast time and never re-read.
func StakeWeight(weightScore int64) float64 {
	weight := float64(weightScore) / params.WEIGHT_DIVISOR
	if weight < 1.0 {
		return 1.0
	}
	return weight
}

// MaxConviction is the asymptote a vote's conviction approaches while its
// support is held. Useful for UI progress display and sanity checks.
func MaxConviction(weight float64) float64 {
	return weight / (1 - decayRate)
}
