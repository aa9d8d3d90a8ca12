package test_utils

import (
	"context"
	"fmt"
	"sync"

	"agora-node/modules/db/agora/members"

	"github.com/moznion/go-optional"
)

// MockMembersDb is an in-memory member registry.
type MockMembersDb struct {
	NoopPlugin

	mu      sync.Mutex
	byId    map[string]members.Member
	FailAll bool
}

var _ members.Members = &MockMembersDb{}

func NewMockMembersDb(seed ...members.Member) *MockMembersDb {
	m := &MockMembersDb{byId: make(map[string]members.Member)}
	for _, member := range seed {
		m.byId[member.Id] = member
	}
	return m
}

func (m *MockMembersDb) UpsertMember(ctx context.Context, member members.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return fmt.Errorf("mock members failure")
	}
	m.byId[member.Id] = member
	return nil
}

func (m *MockMembersDb) GetMember(ctx context.Context, id string) (optional.Option[members.Member], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return optional.None[members.Member](), fmt.Errorf("mock members failure")
	}
	member, found := m.byId[id]
	if !found {
		return optional.None[members.Member](), nil
	}
	return optional.Some(member), nil
}

func (m *MockMembersDb) ListMembers(ctx context.Context) ([]members.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, fmt.Errorf("mock members failure")
	}
	result := make([]members.Member, 0, len(m.byId))
	for _, member := range m.byId {
		result = append(result, member)
	}
	return result, nil
}

func (m *MockMembersDb) RecordProposalPassed(ctx context.Context, id string, bonus int64, maxScore int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, found := m.byId[id]
	if !found {
		return fmt.Errorf("member %s not found", id)
	}
	member.WeightScore += bonus
	if member.WeightScore > maxScore {
		member.WeightScore = maxScore
	}
	member.ProposalsPassed += 1
	m.byId[id] = member
	return nil
}
