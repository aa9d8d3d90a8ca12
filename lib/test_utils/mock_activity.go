package test_utils

import (
	"context"
	"fmt"
	"sync"

	"agora-node/modules/db/agora/activity"
)

// MockActivityDb records emitted events for assertions.
type MockActivityDb struct {
	NoopPlugin

	mu      sync.Mutex
	Events  []activity.Event
	FailAll bool
}

var _ activity.Activity = &MockActivityDb{}

func NewMockActivityDb() *MockActivityDb {
	return &MockActivityDb{}
}

func (m *MockActivityDb) Insert(ctx context.Context, event activity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return fmt.Errorf("mock activity failure")
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockActivityDb) Latest(ctx context.Context, limit int64) ([]activity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > int64(len(m.Events)) {
		limit = int64(len(m.Events))
	}
	result := make([]activity.Event, 0, limit)
	for i := len(m.Events) - 1; i >= 0 && int64(len(result)) < limit; i-- {
		result = append(result, m.Events[i])
	}
	return result, nil
}

// ByType filters recorded events.
func (m *MockActivityDb) ByType(eventType string) []activity.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]activity.Event, 0)
	for _, event := range m.Events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
