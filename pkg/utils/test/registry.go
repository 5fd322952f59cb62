package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/registry/inmemory"
)

// MockRegistry is a test registry that records registrations.
type MockRegistry struct {
	mu    sync.Mutex
	inner *inmemory.Registry

	// Err, when set, is returned by every Register call.
	Err error

	registrations []registry.Registration
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{inner: inmemory.NewRegistry()}
}

func (m *MockRegistry) Register(ctx context.Context, reg registry.Registration) (*registry.Skill, error) {
	m.mu.Lock()
	m.registrations = append(m.registrations, reg)
	err := m.Err
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.inner.Register(ctx, reg)
}

func (m *MockRegistry) Get(ctx context.Context, p principal.Principal, name string) (*registry.Skill, error) {
	return m.inner.Get(ctx, p, name)
}

func (m *MockRegistry) List(ctx context.Context, p principal.Principal) ([]*registry.Skill, error) {
	return m.inner.List(ctx, p)
}

func (m *MockRegistry) Close() error {
	return nil
}

// Calls returns the number of Register calls.
func (m *MockRegistry) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

// Registrations returns every registration received, in call order.
func (m *MockRegistry) Registrations() []registry.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]registry.Registration(nil), m.registrations...)
}
