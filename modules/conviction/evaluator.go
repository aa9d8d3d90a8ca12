package conviction

import (
	"context"
	"fmt"
	"time"

	"agora-node/lib/logger"
	"agora-node/lib/utils"
	"agora-node/modules/common/params"
	"agora-node/modules/db/agora/activity"
	membersDb "agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/metrics"
)

// Evaluator compares every voting proposal's aggregate conviction against the
// passing bar and promotes the ones that cross it.
type Evaluator struct {
	log       logger.Logger
	members   membersDb.Members
	proposals proposals.Proposals
	activity  activity.Activity
	metrics   *metrics.Metrics

	Clock func() time.Time
}

func NewEvaluator(
	log logger.Logger,
	members membersDb.Members,
	proposalsDb proposals.Proposals,
	activityDb activity.Activity,
	m *metrics.Metrics,
) *Evaluator {
	return &Evaluator{
		log:       log,
		members:   members,
		proposals: proposalsDb,
		activity:  activityDb,
		metrics:   m,
		Clock:     time.Now,
	}
}

// Threshold is the passing bar for the current member set: a fixed fraction
// of the summed weight score of every member. Computed once per run so every
// proposal in the same pass is judged against the same bar.
func (e *Evaluator) Threshold(ctx context.Context) (float64, error) {
	members, err := e.members.ListMembers(ctx)
	if err != nil {
		return 0, err
	}
	totalWeight := utils.SumBy(members, func(m membersDb.Member) float64 {
		return float64(m.WeightScore)
	})
	return totalWeight * params.PASSING_FRACTION, nil
}

// Evaluate runs one promotion pass. Per-proposal failures are logged and
// skipped; promoting one proposal never changes the bar for the others.
func (e *Evaluator) Evaluate(ctx context.Context) error {
	threshold, err := e.Threshold(ctx)
	if err != nil {
		return err
	}
	if threshold == 0 {
		// Accepted bootstrap behavior: with zero total weight every voting
		// proposal passes trivially. Flagged for product sign-off, not
		// special-cased here.
		e.log.Debug("total member weight is zero, passing bar is zero")
	}

	voting, err := e.proposals.ListByStatus(ctx, proposals.StatusVoting)
	if err != nil {
		return err
	}

	now := e.Clock()
	for _, proposal := range voting {
		if proposal.ConvictionScore < threshold {
			continue
		}
		if err := e.promote(ctx, proposal, threshold, now); err != nil {
			e.metrics.SweepItemErrors.Inc()
			e.log.Error("failed to promote proposal", proposal.Id, err)
		}
	}

	e.metrics.EvaluatorRuns.Inc()
	return nil
}

func (e *Evaluator) promote(ctx context.Context, proposal proposals.Proposal, threshold float64, now time.Time) error {
	ok, err := e.proposals.Approve(ctx, proposal.Id, now)
	if err != nil {
		return err
	}
	if !ok {
		// Already moved out of voting since the listing; nothing to do.
		return nil
	}

	err = e.members.RecordProposalPassed(ctx, proposal.AuthorId, params.APPROVAL_REPUTATION_BONUS, params.MAX_WEIGHT_SCORE)
	if err != nil {
		e.log.Error("failed to grant author reputation", proposal.AuthorId, err)
	}
	e.metrics.ProposalsPassed.Inc()

	event := activity.Event{
		Type:       activity.TypeProposalApproved,
		ProposalId: proposal.Id,
		MemberId:   proposal.AuthorId,
		Summary:    fmt.Sprintf("proposal %s reached the conviction threshold", proposal.Title),
		Metadata: map[string]interface{}{
			"conviction": proposal.ConvictionScore,
			"threshold":  threshold,
		},
		Ts: now,
	}
	if err := e.activity.Insert(ctx, event); err != nil {
		e.metrics.ActivityDropped.Inc()
		e.log.Error("failed to insert approval activity event", proposal.Id, err)
	}
	return nil
}
