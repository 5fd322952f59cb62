package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSkillRegistered is emitted after a skill is registered.
	EventTypeSkillRegistered = "skill.registered"
)

// SkillRegisteredEvent is a transport-neutral event payload for a
// registered skill.
type SkillRegisteredEvent struct {
	SchemaVersion int                 `json:"schema_version"`
	EventType     string              `json:"event_type"`
	EventID       string              `json:"event_id"`
	EmittedAt     time.Time           `json:"emitted_at"`
	Principal     principal.Principal `json:"principal"`
	Skill         registry.Skill      `json:"skill"`
	Artifacts     []string            `json:"artifacts"`
}

// NewSkillRegisteredEvent builds an event for skill with a fresh ID.
// Artifacts are the vault paths uploaded for the skill.
func NewSkillRegisteredEvent(p principal.Principal, skill registry.Skill, artifacts []string) *SkillRegisteredEvent {
	return &SkillRegisteredEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSkillRegistered,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Principal:     p,
		Skill:         skill,
		Artifacts:     artifacts,
	}
}

// Key partitions events so that updates to one skill stay ordered.
func (e *SkillRegisteredEvent) Key() string {
	return e.Principal.String() + "/" + e.Skill.Name
}
