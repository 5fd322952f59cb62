// Package inmemory provides an in-memory skill registry for tests and
// development.
package inmemory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

// Registry implements registry.Registry and registry.Reader using an
// in-memory map keyed by principal and skill name.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]*registry.Skill
	now    func() time.Time
}

// NewRegistry creates a new in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]*registry.Skill),
		now:    time.Now,
	}
}

func key(p principal.Principal, name string) string {
	return p.String() + ":" + name
}

func (r *Registry) Register(_ context.Context, reg registry.Registration) (*registry.Skill, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	k := key(reg.Principal, reg.Name)
	skill, ok := r.skills[k]
	if !ok {
		skill = &registry.Skill{
			ID:        uuid.NewString(),
			UserID:    reg.Principal.UserID,
			TenantID:  reg.Principal.TenantID,
			Name:      reg.Name,
			CreatedAt: now,
		}
		r.skills[k] = skill
	}
	skill.DisplayName = reg.DisplayName
	skill.Description = reg.Description
	skill.StoragePath = reg.StoragePath
	skill.UpdatedAt = now

	out := *skill
	return &out, nil
}

func (r *Registry) Get(_ context.Context, p principal.Principal, name string) (*registry.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skill, ok := r.skills[key(p, name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, registry.ErrNotFound)
	}
	out := *skill
	return &out, nil
}

func (r *Registry) List(_ context.Context, p principal.Principal) ([]*registry.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := p.String() + ":"
	skills := make([]*registry.Skill, 0)
	for k, skill := range r.skills {
		if strings.HasPrefix(k, prefix) {
			out := *skill
			skills = append(skills, &out)
		}
	}
	slices.SortFunc(skills, func(a, b *registry.Skill) int {
		return strings.Compare(a.Name, b.Name)
	})
	return skills, nil
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}

func (r *Registry) Close() error {
	return nil
}
