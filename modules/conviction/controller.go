package conviction

import (
	"context"
	"fmt"
	"time"

	"agora-node/lib/logger"
	"agora-node/modules/db/agora/activity"
	membersDb "agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/db/agora/votes"
	"agora-node/modules/metrics"

	"github.com/google/uuid"
)

// withdrawRetries bounds the compare-and-set loop when a withdraw races the
// sweep on the same record.
const withdrawRetries = 3

// Controller handles cast/withdraw requests. Both paths do lazy decay
// catch-up through Accumulate so a record's conviction is correct without
// waiting for the next sweep.
type Controller struct {
	log       logger.Logger
	members   membersDb.Members
	proposals proposals.Proposals
	votes     votes.Votes
	activity  activity.Activity
	metrics   *metrics.Metrics

	// Clock is swappable so tests can drive time by hand.
	Clock func() time.Time
}

func NewController(
	log logger.Logger,
	members membersDb.Members,
	proposalsDb proposals.Proposals,
	votesDb votes.Votes,
	activityDb activity.Activity,
	m *metrics.Metrics,
) *Controller {
	return &Controller{
		log:       log,
		members:   members,
		proposals: proposalsDb,
		votes:     votesDb,
		activity:  activityDb,
		metrics:   m,
		Clock:     time.Now,
	}
}

// Cast stakes a member's support behind a voting proposal and returns the new
// record's id. The member's weight score is snapshotted into the record's
// weight; later reputation changes don't move standing votes.
func (c *Controller) Cast(ctx context.Context, memberId string, proposalId string) (string, error) {
	proposalOpt, err := c.proposals.GetProposal(ctx, proposalId)
	if err != nil {
		return "", err
	}
	proposal, err := proposalOpt.Take()
	if err != nil {
		return "", ErrProposalNotFound
	}
	if proposal.Status != proposals.StatusVoting {
		return "", ErrProposalNotVoting
	}

	memberOpt, err := c.members.GetMember(ctx, memberId)
	if err != nil {
		return "", err
	}
	member, err := memberOpt.Take()
	if err != nil {
		return "", ErrMemberNotFound
	}

	now := c.Clock()
	weight := StakeWeight(member.WeightScore)
	record := votes.VoteRecord{
		Id:                   uuid.NewString(),
		MemberId:             memberId,
		ProposalId:           proposalId,
		Weight:               weight,
		Conviction:           weight,
		StakedAt:             now,
		LastConvictionUpdate: now,
		Active:               true,
	}

	// The ledger's partial unique index is the at-most-one-active-vote
	// invariant; a losing concurrent cast surfaces here.
	err = c.votes.Insert(ctx, record)
	if err == votes.ErrDuplicateActiveVote {
		return "", ErrAlreadyVoted
	}
	if err != nil {
		return "", err
	}

	if err := c.proposals.IncVoterCount(ctx, proposalId, 1); err != nil {
		c.log.Error("failed to bump voter count", proposalId, err)
	}
	c.metrics.VotesCast.Inc()

	c.emit(ctx, activity.Event{
		Type:       activity.TypeVoteCast,
		ProposalId: proposalId,
		MemberId:   memberId,
		Summary:    fmt.Sprintf("%s staked %.2f behind proposal %s", member.Username, weight, proposal.Title),
		Metadata: map[string]interface{}{
			"weight": weight,
		},
		Ts: now,
	})

	return record.Id, nil
}

// Withdraw removes a member's support. The record's conviction is brought
// current as of the withdrawal instant and then frozen; the record stays in
// the ledger as history and stops contributing to the proposal's aggregate.
func (c *Controller) Withdraw(ctx context.Context, memberId string, proposalId string) error {
	for attempt := 0; attempt < withdrawRetries; attempt++ {
		recordOpt, err := c.votes.FindActive(ctx, memberId, proposalId)
		if err != nil {
			return err
		}
		record, err := recordOpt.Take()
		if err != nil {
			return ErrNoActiveVote
		}

		now := c.Clock()
		elapsed := now.Sub(record.LastConvictionUpdate).Hours()
		final := Accumulate(record.Conviction, record.Weight, elapsed)

		ok, err := c.votes.Deactivate(ctx, record.Id, record.LastConvictionUpdate, final, now)
		if err != nil {
			return err
		}
		if !ok {
			// Raced the sweep (or another withdraw); re-read and retry.
			continue
		}

		if err := c.proposals.IncVoterCount(ctx, proposalId, -1); err != nil {
			c.log.Error("failed to drop voter count", proposalId, err)
		}
		c.metrics.VotesWithdrawn.Inc()

		c.emit(ctx, activity.Event{
			Type:       activity.TypeVoteWithdrawn,
			ProposalId: proposalId,
			MemberId:   memberId,
			Summary:    fmt.Sprintf("support withdrawn from proposal %s", proposalId),
			Metadata: map[string]interface{}{
				"final_conviction": final,
			},
			Ts: now,
		})
		return nil
	}
	return fmt.Errorf("withdraw kept losing the record race for member %s on proposal %s", memberId, proposalId)
}

// emit is fire and forget: the feed is a side effect sink and must never roll
// back a voting state change.
func (c *Controller) emit(ctx context.Context, event activity.Event) {
	if err := c.activity.Insert(ctx, event); err != nil {
		c.metrics.ActivityDropped.Inc()
		c.log.Error("failed to insert activity event", event.Type, err)
	}
}
