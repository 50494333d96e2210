package skills

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Constructor builds a skill instance. A returned error excludes the skill
// from discovery without affecting the others.
type Constructor func() (Skill, error)

type registration struct {
	id   string
	ctor Constructor
}

var (
	registryMu    sync.Mutex
	registrations []registration
)

// Register adds a skill constructor to the process-wide registration list.
// It is meant to be called from init functions. Identifiers are not required
// to be unique.
func Register(id string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registrations = append(registrations, registration{id: id, ctor: ctor})
}

// Registered returns the registered identifiers in registration order.
func Registered() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	ids := make([]string, 0, len(registrations))
	for _, r := range registrations {
		ids = append(ids, r.id)
	}
	return ids
}

func snapshot() []registration {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]registration(nil), registrations...)
}

// Options controls discovery.
type Options struct {
	// Paths are directories (or single files) holding declarative YAML skills.
	Paths []string
	// Disabled lists skill names to leave out.
	Disabled []string
	// Extra skills are appended after the discovered ones.
	Extra []Skill
}

// Registry is the immutable result of one discovery pass.
type Registry struct {
	skills []Skill
}

// Discover instantiates every registered skill, loads declarative skills from
// opts.Paths and drops the disabled ones. A skill that fails to build or load
// is logged and skipped.
func Discover(opts Options, logger hclog.Logger) *Registry {
	return discover(snapshot(), opts, logger)
}

// NewRegistry wraps an explicit list of skills.
func NewRegistry(skills ...Skill) *Registry {
	return &Registry{skills: append([]Skill(nil), skills...)}
}

func discover(regs []registration, opts Options, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var found []Skill
	for _, r := range regs {
		s, err := instantiate(r)
		if err != nil {
			logger.Warn("skipping skill", "id", r.id, "error", err)
			continue
		}
		found = append(found, s)
	}

	for _, path := range opts.Paths {
		loaded, err := LoadDir(path, logger)
		if err != nil {
			logger.Warn("skipping skills path", "path", path, "error", err)
			continue
		}
		found = append(found, loaded...)
	}

	found = append(found, opts.Extra...)

	disabled := make(map[string]struct{}, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = struct{}{}
	}

	var enabled []Skill
	for _, s := range found {
		if _, off := disabled[s.Name()]; off {
			logger.Debug("skill disabled", "name", s.Name())
			continue
		}
		enabled = append(enabled, s)
	}
	logger.Debug("skills discovered", "count", len(enabled))
	return NewRegistry(enabled...)
}

func instantiate(r registration) (s Skill, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("constructor panicked: %v", rec)
		}
	}()
	if r.ctor == nil {
		return nil, fmt.Errorf("no constructor")
	}
	s, err = r.ctor()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("constructor returned no skill")
	}
	return s, nil
}

// Skills returns the discovered skills in discovery order.
func (r *Registry) Skills() []Skill {
	return append([]Skill(nil), r.skills...)
}

// Len returns the number of skills.
func (r *Registry) Len() int {
	return len(r.skills)
}

// scopeSkill contributes scope policy only.
type scopeSkill struct {
	Base
	scope Scope
}

// NewScopeSkill returns a rule-less skill whose scope is exactly scope.
func NewScopeSkill(name string, scope Scope) Skill {
	return scopeSkill{
		Base: Base{
			SkillName:        name,
			SkillProvider:    "local",
			SkillVersion:     "0.0.0",
			SkillDescription: "Scope policy from configuration",
		},
		scope: scope,
	}
}

func (scopeSkill) Rules() []Rule { return nil }
func (s scopeSkill) Extensions() []string { return clone(s.scope.Extensions) }
func (s scopeSkill) SpecialFiles() []string { return clone(s.scope.SpecialFiles) }
func (s scopeSkill) SkipDirs() []string { return clone(s.scope.SkipDirs) }
