package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/skillgate/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records events.
type MockPublisher struct {
	mu     sync.Mutex
	Err    error
	events []*eventstream.SkillRegisteredEvent
	closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishSkillRegistered(_ context.Context, event *eventstream.SkillRegisteredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Events returns the published events, in order.
func (m *MockPublisher) Events() []*eventstream.SkillRegisteredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.SkillRegisteredEvent(nil), m.events...)
}
