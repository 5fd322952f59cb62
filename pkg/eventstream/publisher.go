package eventstream

import "context"

// Publisher publishes skill events to an event stream backend.
type Publisher interface {
	PublishSkillRegistered(ctx context.Context, event *SkillRegisteredEvent) error
	Close() error
}
