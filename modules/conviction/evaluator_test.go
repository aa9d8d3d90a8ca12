package conviction_test

import (
	"context"
	"testing"

	"agora-node/modules/db/agora/activity"
	"agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdPromotion(t *testing.T) {
	// totalWeight = 800 so the bar sits at 80.
	passing := votingProposal("p1", "alice")
	passing.ConvictionScore = 81
	stalled := votingProposal("p2", "carol")
	stalled.ConvictionScore = 50

	f := newFixture(
		[]members.Member{member("alice", 500), member("carol", 300)},
		[]proposals.Proposal{passing, stalled},
	)
	ctx := context.Background()

	threshold, err := f.evaluator.Threshold(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, threshold, 1e-9)

	require.NoError(t, f.evaluator.Evaluate(ctx))

	promotedOpt, _ := f.proposals.GetProposal(ctx, "p1")
	promoted, _ := promotedOpt.Take()
	assert.Equal(t, proposals.StatusApproved, promoted.Status)
	require.NotNil(t, promoted.ApprovedAt)
	assert.Equal(t, f.clock.Now(), *promoted.ApprovedAt)

	untouchedOpt, _ := f.proposals.GetProposal(ctx, "p2")
	untouched, _ := untouchedOpt.Take()
	assert.Equal(t, proposals.StatusVoting, untouched.Status)
	assert.Equal(t, 50.0, untouched.ConvictionScore)

	// Author reward: +25 weight, passed-proposal counter bumped.
	authorOpt, _ := f.members.GetMember(ctx, "alice")
	author, _ := authorOpt.Take()
	assert.Equal(t, int64(525), author.WeightScore)
	assert.Equal(t, int64(1), author.ProposalsPassed)

	events := f.activity.ByType(activity.TypeProposalApproved)
	require.Len(t, events, 1)
	assert.Equal(t, 81.0, events[0].Metadata["conviction"])
	assert.Equal(t, 80.0, events[0].Metadata["threshold"])
}

func TestThresholdComputedOncePerPass(t *testing.T) {
	// Both sit just above the initial bar of 80. Promoting the first grants
	// its author +25 weight; if the bar were recomputed per proposal the
	// second would fail at 82.5. One bar per pass means both pass.
	first := votingProposal("p1", "alice")
	first.ConvictionScore = 81
	second := votingProposal("p2", "carol")
	second.ConvictionScore = 81

	f := newFixture(
		[]members.Member{member("alice", 500), member("carol", 300)},
		[]proposals.Proposal{first, second},
	)
	ctx := context.Background()

	require.NoError(t, f.evaluator.Evaluate(ctx))

	for _, id := range []string{"p1", "p2"} {
		proposalOpt, _ := f.proposals.GetProposal(ctx, id)
		proposal, _ := proposalOpt.Take()
		assert.Equal(t, proposals.StatusApproved, proposal.Status, id)
	}
}

func TestReputationBonusClamps(t *testing.T) {
	passing := votingProposal("p1", "alice")
	passing.ConvictionScore = 1000

	f := newFixture(
		[]members.Member{member("alice", 990)},
		[]proposals.Proposal{passing},
	)
	ctx := context.Background()

	require.NoError(t, f.evaluator.Evaluate(ctx))

	authorOpt, _ := f.members.GetMember(ctx, "alice")
	author, _ := authorOpt.Take()
	assert.Equal(t, int64(1000), author.WeightScore)
}

func TestZeroTotalWeightPassesTrivially(t *testing.T) {
	// Accepted bootstrap policy: an empty-trust system has a zero bar.
	idle := votingProposal("p1", "alice")

	f := newFixture(nil, []proposals.Proposal{idle})
	ctx := context.Background()

	require.NoError(t, f.evaluator.Evaluate(ctx))

	proposalOpt, _ := f.proposals.GetProposal(ctx, "p1")
	proposal, _ := proposalOpt.Take()
	assert.Equal(t, proposals.StatusApproved, proposal.Status)
}
