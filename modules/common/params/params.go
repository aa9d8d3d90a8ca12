package params

// Conviction halves every 72 hours once support is withdrawn. Under sustained
// support a vote's conviction settles toward weight / (1 - decayRate).
const HALF_LIFE_HOURS = 72.0

// A proposal passes once its aggregate conviction reaches 10% of the summed
// weight score of every registered member.
const PASSING_FRACTION = 0.10

// Stake weight is the member's weight score divided by this, floored at 1.0.
const WEIGHT_DIVISOR = 100.0

// Weight score bounds. Scores are clamped to MAX_WEIGHT_SCORE on every grant.
const MAX_WEIGHT_SCORE = int64(1000)

// Reputation granted to a proposal's author when it is approved.
const APPROVAL_REPUTATION_BONUS = int64(25)

// Reference sweep cadence. Overridable through EngineConfig.
const DEFAULT_SWEEP_INTERVAL = "@every 15m"
