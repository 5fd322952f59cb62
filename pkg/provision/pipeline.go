// Package provision validates, stores and registers user skills.
//
// CreateSkill runs every step in order and stops at the first failure:
//
//  1. each .py script is checked by the validation gate;
//  2. the manifest is upserted to skills/<name>/MANIFEST;
//  3. each script is upserted to skills/<name>/scripts/<path>;
//  4. the skill is registered with storage path skills/<name>.
//
// Nothing external is called before every script has passed, and nothing
// is registered unless every upload succeeded. Artifacts stored before a
// failure are left in place; the next submission overwrites them.
package provision

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/papercomputeco/skillgate/pkg/eventstream"
	"github.com/papercomputeco/skillgate/pkg/eventstream/nop"
	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/validation"
	"github.com/papercomputeco/skillgate/pkg/vault"
)

// DefaultCallTimeout bounds each vault and registry call.
const DefaultCallTimeout = 30 * time.Second

// ManifestMimeType is the content type of stored manifests.
const ManifestMimeType = "text/markdown"

// Config is the pipeline configuration.
type Config struct {
	// CallTimeout bounds every external call. Zero selects DefaultCallTimeout.
	CallTimeout time.Duration

	// Publisher receives a skill.registered event after each registration.
	// Nil disables events.
	Publisher eventstream.Publisher
}

// Pipeline provisions skills. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	gate      *validation.Gate
	vault     vault.Store
	registry  registry.Registry
	publisher eventstream.Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(cfg Config, gate *validation.Gate, store vault.Store, reg registry.Registry, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = nop.NewPublisher()
	}

	return &Pipeline{
		gate:      gate,
		vault:     store,
		registry:  reg,
		publisher: pub,
		timeout:   timeout,
		logger:    log,
	}
}

// Gate returns the validation gate used by the pipeline.
func (p *Pipeline) Gate() *validation.Gate {
	return p.gate
}

// CreateSkill provisions the skill described by req. The returned error is
// non-nil only for malformed requests (ErrInvalidRequest) and internal
// faults; every provisioning failure is reported as an Outcome.
func (p *Pipeline) CreateSkill(ctx context.Context, req SkillRequest) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := p.logger.With("user", req.Principal.String(), "skill", req.Name)
	m := newMachine(1 + len(req.Scripts))

	if rejected := p.validate(ctx, req); rejected != nil {
		if err := m.transition(StateFailed); err != nil {
			return nil, err
		}
		log.Debug("skill rejected",
			"file", rejected.Filename,
			"diagnostics", len(rejected.Diagnostics),
		)
		return rejected, nil
	}
	if err := m.transition(StateValidated); err != nil {
		return nil, err
	}
	if err := m.transition(StateUploading); err != nil {
		return nil, err
	}

	artifacts := make([]string, 0, m.total)

	manifestPath := ManifestPath(req.Name)
	if err := p.upsert(ctx, req, manifestPath, []byte(req.Manifest), ManifestMimeType); err != nil {
		return p.uploadFailed(log, m, &UploadFailed{
			Stage:    StageManifest,
			Filename: path.Base(manifestPath),
			Path:     manifestPath,
			Cause:    err,
		})
	}
	artifacts = append(artifacts, manifestPath)
	if err := m.transition(StateUploading); err != nil {
		return nil, err
	}

	for _, s := range req.Scripts {
		scriptPath := ScriptPath(req.Name, s.Path)
		if err := p.upsert(ctx, req, scriptPath, []byte(s.Source), vault.MimeType(s.Path)); err != nil {
			return p.uploadFailed(log, m, &UploadFailed{
				Stage:    StageScript,
				Filename: s.Path,
				Path:     scriptPath,
				Cause:    err,
			})
		}
		artifacts = append(artifacts, scriptPath)
		if err := m.transition(StateUploading); err != nil {
			return nil, err
		}
	}

	skill, err := p.register(ctx, req)
	if err != nil {
		if terr := m.transition(StateFailed); terr != nil {
			return nil, terr
		}
		log.Error("skill registration failed",
			"status", registry.StatusOf(err),
			"error", err,
		)
		return &RegistrationFailed{Cause: err}, nil
	}
	if err := m.transition(StateRegistered); err != nil {
		return nil, err
	}

	log.Info("skill registered",
		"id", skill.ID,
		"artifacts", len(artifacts),
	)
	p.publish(ctx, log, req, skill, artifacts)

	return &Registered{Skill: skill}, nil
}

// validate runs the gate over every .py script in order and returns the
// first rejection.
func (p *Pipeline) validate(ctx context.Context, req SkillRequest) *Rejected {
	for _, s := range req.Scripts {
		if !strings.HasSuffix(s.Path, ".py") {
			continue
		}
		result := p.gate.Validate(ctx, policy.SourceUnit{Filename: s.Path, Text: s.Source})
		if !result.Valid {
			return &Rejected{Filename: s.Path, Diagnostics: result.Diagnostics}
		}
	}
	return nil
}

func (p *Pipeline) upsert(ctx context.Context, req SkillRequest, artifactPath string, content []byte, mimeType string) error {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ref := vault.Ref{Principal: req.Principal, Path: artifactPath}
	id, err := vault.Upsert(callCtx, p.vault, ref, content, mimeType)
	if err != nil {
		return err
	}

	p.logger.Debug("artifact stored", "path", artifactPath, "id", id, "bytes", len(content))
	return nil
}

func (p *Pipeline) register(ctx context.Context, req SkillRequest) (*registry.Skill, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	skill, err := p.registry.Register(callCtx, registry.Registration{
		Principal:   req.Principal,
		Name:        req.Name,
		DisplayName: req.displayName(),
		Description: req.Description,
		StoragePath: StoragePath(req.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", req.Name, err)
	}
	return skill, nil
}

func (p *Pipeline) uploadFailed(log *slog.Logger, m *machine, failed *UploadFailed) (Outcome, error) {
	if err := m.transition(StateFailed); err != nil {
		return nil, err
	}
	log.Error("skill upload failed",
		"stage", failed.Stage,
		"path", failed.Path,
		"uploaded", m.done,
		"error", failed.Cause,
	)
	return failed, nil
}

// publish announces the registration. Failures are logged and do not change
// the outcome.
func (p *Pipeline) publish(ctx context.Context, log *slog.Logger, req SkillRequest, skill *registry.Skill, artifacts []string) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	event := eventstream.NewSkillRegisteredEvent(req.Principal, *skill, artifacts)
	if err := p.publisher.PublishSkillRegistered(callCtx, event); err != nil {
		log.Warn("failed to publish skill event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}
