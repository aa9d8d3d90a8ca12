package test_utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agora-node/modules/db/agora/proposals"

	"github.com/moznion/go-optional"
)

// MockProposalsDb is an in-memory proposal store with the same conditional
// write semantics as the mongo implementation.
type MockProposalsDb struct {
	NoopPlugin

	mu   sync.Mutex
	byId map[string]proposals.Proposal
}

var _ proposals.Proposals = &MockProposalsDb{}

func NewMockProposalsDb(seed ...proposals.Proposal) *MockProposalsDb {
	m := &MockProposalsDb{byId: make(map[string]proposals.Proposal)}
	for _, proposal := range seed {
		m.byId[proposal.Id] = proposal
	}
	return m
}

func (m *MockProposalsDb) CreateProposal(ctx context.Context, proposal proposals.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byId[proposal.Id]; exists {
		return fmt.Errorf("proposal %s already exists", proposal.Id)
	}
	m.byId[proposal.Id] = proposal
	return nil
}

func (m *MockProposalsDb) GetProposal(ctx context.Context, id string) (optional.Option[proposals.Proposal], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found {
		return optional.None[proposals.Proposal](), nil
	}
	return optional.Some(proposal), nil
}

func (m *MockProposalsDb) ListByStatus(ctx context.Context, status proposals.Status) ([]proposals.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]proposals.Proposal, 0)
	for _, proposal := range m.byId {
		if proposal.Status == status {
			result = append(result, proposal)
		}
	}
	return result, nil
}

func (m *MockProposalsDb) OpenVoting(ctx context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found || proposal.Status != proposals.StatusDiscussion {
		return false, nil
	}
	proposal.Status = proposals.StatusVoting
	proposal.VotingStartedAt = &now
	m.byId[id] = proposal
	return true, nil
}

func (m *MockProposalsDb) SetConvictionScore(ctx context.Context, id string, score float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found || proposal.Status != proposals.StatusVoting {
		return false, nil
	}
	proposal.ConvictionScore = score
	m.byId[id] = proposal
	return true, nil
}

func (m *MockProposalsDb) Approve(ctx context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found || proposal.Status != proposals.StatusVoting {
		return false, nil
	}
	proposal.Status = proposals.StatusApproved
	proposal.ApprovedAt = &now
	m.byId[id] = proposal
	return true, nil
}

// SetStatus stands in for the externally driven lifecycle transitions the
// engine doesn't own (draft -> discussion, approved -> building, ...).
func (m *MockProposalsDb) SetStatus(id string, status proposals.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found {
		return
	}
	proposal.Status = status
	m.byId[id] = proposal
}

func (m *MockProposalsDb) IncVoterCount(ctx context.Context, id string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, found := m.byId[id]
	if !found {
		return fmt.Errorf("proposal %s not found", id)
	}
	if delta < 0 && proposal.VoterCount < -delta {
		return nil
	}
	proposal.VoterCount += delta
	m.byId[id] = proposal
	return nil
}
