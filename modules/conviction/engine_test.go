package conviction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"agora-node/lib/logger"
	"agora-node/lib/test_utils"
	"agora-node/modules/conviction"
	"agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineFixture(memberSeed []members.Member, proposalSeed []proposals.Proposal) (*conviction.Engine, *fixture) {
	f := &fixture{
		clock:     newFakeClock(),
		members:   test_utils.NewMockMembersDb(memberSeed...),
		proposals: test_utils.NewMockProposalsDb(proposalSeed...),
		votes:     test_utils.NewMockVotesDb(),
		activity:  test_utils.NewMockActivityDb(),
		metrics:   metrics.New(),
	}
	engine := conviction.New(
		logger.NilLogger{},
		conviction.NewEngineConfig(),
		f.members,
		f.proposals,
		f.votes,
		f.activity,
		f.metrics,
	)
	engine.SetClock(f.clock.Now)
	f.controller = engine.Controller()
	return engine, f
}

func TestTickSweepsAndPromotes(t *testing.T) {
	// One voter holding 10.0 of weight against a total weight of 1000: the
	// bar is 100. Every 15-minute tick reinforces the stake, so standing
	// support accumulates past the bar after a few hours of sweeps.
	f0 := []members.Member{member("whale", 1000)}
	p0 := []proposals.Proposal{votingProposal("p1", "whale")}
	engine, f := newEngineFixture(f0, p0)
	ctx := context.Background()

	_, err := engine.Controller().Cast(ctx, "whale", "p1")
	require.NoError(t, err)

	// Two ticks in: conviction is moving but nowhere near the bar.
	for i := 0; i < 2; i++ {
		f.clock.Advance(15 * time.Minute)
		engine.Tick(ctx)
	}
	proposalOpt, _ := f.proposals.GetProposal(ctx, "p1")
	proposal, _ := proposalOpt.Take()
	assert.Equal(t, proposals.StatusVoting, proposal.Status)
	assert.Greater(t, proposal.ConvictionScore, 10.0)
	assert.Less(t, proposal.ConvictionScore, 100.0)

	// Keep holding: the accumulated conviction crosses 100 within ~3 hours.
	for i := 0; i < 20; i++ {
		f.clock.Advance(15 * time.Minute)
		engine.Tick(ctx)
	}
	proposalOpt, _ = f.proposals.GetProposal(ctx, "p1")
	proposal, _ = proposalOpt.Take()
	assert.Equal(t, proposals.StatusApproved, proposal.Status)
}

func TestTickSkipsWhenPreviousStillRunning(t *testing.T) {
	engine, f := newEngineFixture(nil, nil)
	ctx := context.Background()

	f.votes.BlockList = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.Tick(ctx)
	}()

	// Give the first tick time to park inside the ledger snapshot.
	time.Sleep(50 * time.Millisecond)

	// Second tick must bail out instead of queueing.
	engine.Tick(ctx)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SweepsSkipped))

	close(f.votes.BlockList)
	wg.Wait()
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SweepsRun))
}
