// Package worker provides an asynchronous worker pool that publishes skill
// events through a wrapped eventstream.Publisher.
//
// The pool decouples event delivery from the provisioning path so a slow or
// unavailable broker never delays a create_skill response.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/skillgate/pkg/eventstream"
	"github.com/papercomputeco/skillgate/pkg/logger"
)

var (
	defaultNumWorkers     uint = 2
	defaultJobQueueSize   uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher delivers the queued events.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each delivery (defaults to 10s).
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Pool is an eventstream.Publisher that queues events for background
// delivery.
type Pool struct {
	config *Config
	queue  chan *eventstream.SkillRegisteredEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ eventstream.Publisher = (*Pool)(nil)

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.SkillRegisteredEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// PublishSkillRegistered queues event for delivery. It returns an error
// only when the event cannot be queued: the pool is closed or the queue is
// full, in which case the event is dropped. Reporting the drop is left to
// the caller.
func (p *Pool) PublishSkillRegistered(_ context.Context, event *eventstream.SkillRegisteredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("event pool closed, dropped %s", event.EventID)
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_id", event.EventID,
			"skill", event.Skill.Name,
		)
		return nil
	default:
		return fmt.Errorf("event queue full, dropped %s", event.EventID)
	}
}

// Close stops accepting events, waits for queued events to drain and then
// closes the wrapped publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", "worker_id", id)

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("event worker stopped", "worker_id", id)
}

func (p *Pool) publish(event *eventstream.SkillRegisteredEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.PublishSkillRegistered(ctx, event); err != nil {
		p.logger.Warn("async event publish failed",
			"event_id", event.EventID,
			"skill", event.Skill.Name,
			"error", err,
		)
		return
	}

	p.logger.Debug("event published",
		"event_id", event.EventID,
		"skill", event.Skill.Name,
	)
}
