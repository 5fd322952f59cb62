package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/skillgate/pkg/vault"
	"github.com/papercomputeco/skillgate/pkg/vault/inmemory"
)

// MockVault is a test vault that records calls and can fail on chosen paths.
type MockVault struct {
	mu    sync.Mutex
	store *inmemory.Store

	// FailCreate and FailUpdate map a ref path to the error returned for it.
	FailCreate map[string]error
	FailUpdate map[string]error

	creates []string
	updates []string
	gets    int
}

func NewMockVault() *MockVault {
	return &MockVault{
		store:      inmemory.NewStore(),
		FailCreate: make(map[string]error),
		FailUpdate: make(map[string]error),
	}
}

func (m *MockVault) Create(ctx context.Context, ref vault.Ref, content []byte, mimeType string) (string, error) {
	m.mu.Lock()
	m.creates = append(m.creates, ref.Path)
	err := m.FailCreate[ref.Path]
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	return m.store.Create(ctx, ref, content, mimeType)
}

func (m *MockVault) Update(ctx context.Context, ref vault.Ref, content []byte) (string, error) {
	m.mu.Lock()
	m.updates = append(m.updates, ref.Path)
	err := m.FailUpdate[ref.Path]
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	return m.store.Update(ctx, ref, content)
}

func (m *MockVault) Get(ctx context.Context, ref vault.Ref) ([]byte, error) {
	m.mu.Lock()
	m.gets++
	m.mu.Unlock()
	return m.store.Get(ctx, ref)
}

func (m *MockVault) Close() error {
	return nil
}

// Calls returns the total number of Create, Update and Get calls.
func (m *MockVault) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creates) + len(m.updates) + m.gets
}

// Creates returns the paths passed to Create, in call order.
func (m *MockVault) Creates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.creates...)
}

// Updates returns the paths passed to Update, in call order.
func (m *MockVault) Updates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.updates...)
}

// Object returns the stored object at ref.
func (m *MockVault) Object(ref vault.Ref) (inmemory.Object, bool) {
	return m.store.Object(ref)
}

// Len returns the number of stored objects.
func (m *MockVault) Len() int {
	return m.store.Len()
}
