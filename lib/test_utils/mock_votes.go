package test_utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agora-node/modules/db/agora/votes"

	"github.com/moznion/go-optional"
)

// MockVotesDb is an in-memory vote ledger enforcing the same invariants as
// the mongo implementation: one active record per (member, proposal) and
// compare-and-set updates on (conviction, lastConvictionUpdate).
type MockVotesDb struct {
	NoopPlugin

	mu   sync.Mutex
	byId map[string]votes.VoteRecord

	// FailIds makes UpdateConviction error for specific records, simulating
	// transient row-level datastore failures during a sweep.
	FailIds map[string]bool

	// BlockList, when non-nil, makes ListActive wait until the channel is
	// closed. Lets tests hold a sweep mid-flight.
	BlockList chan struct{}
}

var _ votes.Votes = &MockVotesDb{}

func NewMockVotesDb() *MockVotesDb {
	return &MockVotesDb{
		byId:    make(map[string]votes.VoteRecord),
		FailIds: make(map[string]bool),
	}
}

func (m *MockVotesDb) Insert(ctx context.Context, record votes.VoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byId {
		if existing.Active && existing.MemberId == record.MemberId && existing.ProposalId == record.ProposalId {
			return votes.ErrDuplicateActiveVote
		}
	}
	m.byId[record.Id] = record
	return nil
}

func (m *MockVotesDb) FindActive(ctx context.Context, memberId string, proposalId string) (optional.Option[votes.VoteRecord], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.byId {
		if record.Active && record.MemberId == memberId && record.ProposalId == proposalId {
			return optional.Some(record), nil
		}
	}
	return optional.None[votes.VoteRecord](), nil
}

func (m *MockVotesDb) FindById(ctx context.Context, id string) (optional.Option[votes.VoteRecord], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, found := m.byId[id]
	if !found {
		return optional.None[votes.VoteRecord](), nil
	}
	return optional.Some(record), nil
}

func (m *MockVotesDb) ListActive(ctx context.Context) ([]votes.VoteRecord, error) {
	if m.BlockList != nil {
		<-m.BlockList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]votes.VoteRecord, 0)
	for _, record := range m.byId {
		if record.Active {
			result = append(result, record)
		}
	}
	return result, nil
}

// ListAll returns everything in the ledger, withdrawn history included.
// Assertion helper, not part of the Votes interface.
func (m *MockVotesDb) ListAll() ([]votes.VoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]votes.VoteRecord, 0, len(m.byId))
	for _, record := range m.byId {
		result = append(result, record)
	}
	return result, nil
}

func (m *MockVotesDb) UpdateConviction(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIds[id] {
		return false, fmt.Errorf("mock row failure for %s", id)
	}
	record, found := m.byId[id]
	if !found || !record.Active || !record.LastConvictionUpdate.Equal(prevUpdate) {
		return false, nil
	}
	record.Conviction = conviction
	record.LastConvictionUpdate = now
	m.byId[id] = record
	return true, nil
}

func (m *MockVotesDb) Deactivate(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, found := m.byId[id]
	if !found || !record.Active || !record.LastConvictionUpdate.Equal(prevUpdate) {
		return false, nil
	}
	record.Active = false
	record.Conviction = conviction
	record.LastConvictionUpdate = now
	record.WithdrawnAt = &now
	m.byId[id] = record
	return true, nil
}
