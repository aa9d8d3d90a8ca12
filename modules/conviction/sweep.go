package conviction

import (
	"context"
	"time"

	"agora-node/lib/logger"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/db/agora/votes"
	"agora-node/modules/metrics"
)

// Sweeper is the periodic decay pass: it advances every active vote record to
// "now" and re-sums each voting proposal's aggregate conviction.
type Sweeper struct {
	log       logger.Logger
	proposals proposals.Proposals
	votes     votes.Votes
	metrics   *metrics.Metrics

	Clock func() time.Time
}

func NewSweeper(
	log logger.Logger,
	proposalsDb proposals.Proposals,
	votesDb votes.Votes,
	m *metrics.Metrics,
) *Sweeper {
	return &Sweeper{
		log:       log,
		proposals: proposalsDb,
		votes:     votesDb,
		metrics:   m,
		Clock:     time.Now,
	}
}

// RunSweep processes one tick. Per-record and per-proposal failures are
// logged and skipped so one bad row never blocks global decay; the whole pass
// only errors when the ledger snapshot itself can't be read, in which case the
// next scheduled tick retries.
func (s *Sweeper) RunSweep(ctx context.Context) error {
	now := s.Clock()

	// One cursor drain at tick start is the consistent snapshot the
	// aggregation works from. Casts and withdraws landing after this point
	// are picked up next tick.
	records, err := s.votes.ListActive(ctx)
	if err != nil {
		return err
	}

	totals := make(map[string]float64)
	for _, record := range records {
		conviction, ok := s.advance(ctx, record, now)
		if !ok {
			continue
		}
		totals[record.ProposalId] += conviction
	}

	for proposalId, total := range totals {
		matched, err := s.proposals.SetConvictionScore(ctx, proposalId, total)
		if err != nil {
			s.metrics.SweepItemErrors.Inc()
			s.log.Error("failed to write proposal aggregate", proposalId, err)
			continue
		}
		if !matched {
			// Proposal left voting between sweeps; stale records may still
			// reference it but its score is frozen now.
			s.log.Debug("skipping aggregate for non-voting proposal", proposalId)
		}
	}

	s.metrics.SweepsRun.Inc()
	return nil
}

// advance moves one record's (conviction, lastConvictionUpdate) pair to now as
// a single compare-and-set and reports the value that should count toward the
// proposal's sum.
func (s *Sweeper) advance(ctx context.Context, record votes.VoteRecord, now time.Time) (float64, bool) {
	elapsed := now.Sub(record.LastConvictionUpdate).Hours()
	next := Accumulate(record.Conviction, record.Weight, elapsed)

	ok, err := s.votes.UpdateConviction(ctx, record.Id, record.LastConvictionUpdate, next, now)
	if err != nil {
		s.metrics.SweepItemErrors.Inc()
		s.log.Error("failed to advance vote record", record.Id, err)
		return 0, false
	}
	if ok {
		s.metrics.RecordsDecayed.Inc()
		return next, true
	}

	// A cast or withdraw touched the record mid-sweep. Re-read once: if it's
	// still active its fresher conviction counts, otherwise it settles next
	// tick (last-writer-wins on the aggregate is acceptable, conviction is a
	// continuously settling quantity).
	liveOpt, err := s.votes.FindById(ctx, record.Id)
	if err != nil {
		s.metrics.SweepItemErrors.Inc()
		s.log.Error("failed to re-read contested vote record", record.Id, err)
		return 0, false
	}
	live, err := liveOpt.Take()
	if err != nil || !live.Active {
		return 0, false
	}
	return live.Conviction, true
}
