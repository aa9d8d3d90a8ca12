package conviction_test

import (
	"testing"

	"agora-node/modules/conviction"

	"github.com/stretchr/testify/assert"
)

func TestHalfLifeDecay(t *testing.T) {
	// One half-life: 10 decays to 5, plus one reinforcement of 5.
	got := conviction.Accumulate(10, 5, 72)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func TestZeroElapsedIsIdempotent(t *testing.T) {
	first := conviction.Accumulate(10, 5, 36)
	second := conviction.Accumulate(first, 5, 0)
	assert.Equal(t, first, second)
}

func TestNegativeElapsedIsNoOp(t *testing.T) {
	// Clock skew guard: never shrink or grow conviction on a rewound clock.
	assert.Equal(t, 42.0, conviction.Accumulate(42, 5, -3))
}

func TestStakeWeight(t *testing.T) {
	assert.Equal(t, 5.0, conviction.StakeWeight(500))
	assert.Equal(t, 3.0, conviction.StakeWeight(300))
	// Floor: every member gets at least weight 1.
	assert.Equal(t, 1.0, conviction.StakeWeight(40))
	assert.Equal(t, 1.0, conviction.StakeWeight(0))
}

func TestConvictionApproachesAsymptote(t *testing.T) {
	weight := 5.0
	limit := conviction.MaxConviction(weight)

	value := weight
	for i := 0; i < 10_000; i++ {
		value = conviction.Accumulate(value, weight, 1)
		assert.Less(t, value, limit)
	}
	// After ~10k hours of sustained support the value is essentially settled.
	assert.InDelta(t, limit, value, limit*1e-6)
}
