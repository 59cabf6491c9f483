package binding

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Resolver finds artifacts by naming convention across its sources and
// memoizes the outcome per qualified name.
type Resolver struct {
	namespace    string
	sources      []Source
	cacheEnabled bool
	logger       *slog.Logger
	diagnostics  DiagnosticHandler
	metrics      *metrics

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	artifact Artifact
	err      error
}

// Option customizes Resolver construction.
type Option func(*Resolver)

// WithNamespace overrides the conventional namespace prefix.
func WithNamespace(namespace string) Option {
	return func(r *Resolver) {
		r.namespace = namespace
	}
}

// WithSources sets the sources consulted, in order. Without this option the
// resolver only consults DefaultRegistry.
func WithSources(sources ...Source) Option {
	return func(r *Resolver) {
		for _, src := range sources {
			if src != nil {
				r.sources = append(r.sources, src)
			}
		}
	}
}

// WithCache toggles memoization of resolution results.
func WithCache(enabled bool) Option {
	return func(r *Resolver) {
		r.cacheEnabled = enabled
	}
}

// WithLogger sets the logger used by the default diagnostic handler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDiagnostics replaces the default diagnostic handler.
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Resolver) {
		r.diagnostics = handler
	}
}

// WithMetrics registers resolution counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Resolver) {
		if reg == nil {
			return
		}
		m, err := newMetrics(reg)
		if err != nil {
			r.logger.Warn("Resolver metrics disabled", "error", err)
			return
		}
		r.metrics = m
	}
}

// NewResolver builds a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		namespace:    DefaultNamespace,
		cacheEnabled: true,
		logger:       slog.Default(),
		cache:        make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if len(r.sources) == 0 {
		r.sources = []Source{DefaultRegistry}
	}
	if r.diagnostics == nil {
		r.diagnostics = LogDiagnostics(r.logger)
	}
	return r
}

// Namespace returns the prefix artifacts are looked up under.
func (r *Resolver) Namespace() string {
	return r.namespace
}

// Resolve returns the artifact of the given kind for validatorID. Any failure
// to find, construct or type-check the artifact is reported as absence.
func (r *Resolver) Resolve(validatorID string, kind Kind) (Artifact, bool) {
	if !kind.Valid() {
		r.report(Diagnostic{Stage: StageResolve, ValidatorID: validatorID, Kind: kind, Err: fmt.Errorf("%w: %d", ErrWrongKind, int(kind))})
		return nil, false
	}
	return r.resolve(validatorID, ClassName(validatorID, kind), kind)
}

// ResolveClass resolves an artifact by class name, taking the kind from the
// name's suffix.
func (r *Resolver) ResolveClass(className string) (Artifact, bool) {
	kind, ok := KindFromClassName(className)
	if !ok {
		r.report(Diagnostic{Stage: StageResolve, Name: className, Err: fmt.Errorf("%w: unknown suffix on %s", ErrArtifactNotFound, className)})
		return nil, false
	}
	return r.resolve("", className, kind)
}

func (r *Resolver) resolve(validatorID, className string, kind Kind) (Artifact, bool) {
	qualified := QualifiedName(r.namespace, className)
	entry, fresh := r.lookupEntry(qualified, kind)
	switch {
	case !fresh:
		r.metrics.resolved(kind, outcomeCached)
	case entry.err != nil:
		r.metrics.resolved(kind, outcomeAbsent)
		r.report(Diagnostic{Stage: StageResolve, ValidatorID: validatorID, Kind: kind, Name: qualified, Err: entry.err})
	default:
		r.metrics.resolved(kind, outcomeFound)
	}
	if entry.err != nil {
		return nil, false
	}
	return entry.artifact, true
}

// lookupEntry returns the cached entry or loads it. fresh is true when this
// call performed the load.
func (r *Resolver) lookupEntry(qualified string, kind Kind) (cacheEntry, bool) {
	if !r.cacheEnabled {
		a, err := r.load(qualified, kind)
		return cacheEntry{artifact: a, err: err}, true
	}
	if entry, ok := r.cached(qualified); ok {
		return entry, false
	}
	loaded := false
	v, _, _ := r.group.Do(qualified, func() (any, error) {
		if entry, ok := r.cached(qualified); ok {
			return entry, nil
		}
		a, err := r.load(qualified, kind)
		entry := cacheEntry{artifact: a, err: err}
		r.mu.Lock()
		if existing, ok := r.cache[qualified]; ok && existing.err == nil {
			entry = existing
		} else {
			r.cache[qualified] = entry
		}
		r.mu.Unlock()
		loaded = true
		return entry, nil
	})
	return v.(cacheEntry), loaded
}

func (r *Resolver) cached(qualified string) (cacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[qualified]
	return entry, ok
}

func (r *Resolver) load(qualified string, kind Kind) (a Artifact, err error) {
	var factory Factory
	for _, src := range r.sources {
		if f, ok := src.Lookup(qualified); ok && f != nil {
			factory = f
			break
		}
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, qualified)
	}
	defer func() {
		if rec := recover(); rec != nil {
			a = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrConstruct, qualified, rec)
		}
	}()
	a, err = factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstruct, qualified, err)
	}
	if isNilArtifact(a) {
		return nil, fmt.Errorf("%w: %s produced no artifact", ErrConstruct, qualified)
	}
	if a.Kind() != kind {
		return nil, fmt.Errorf("%w: %s is %s, want %s", ErrWrongKind, qualified, a.Kind(), kind)
	}
	return a, nil
}

// ForgetAbsent drops cached absences so the next lookup consults the sources
// again. Resolved artifacts stay cached for the life of the resolver.
func (r *Resolver) ForgetAbsent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for name, entry := range r.cache {
		if entry.err != nil {
			delete(r.cache, name)
			dropped++
		}
	}
	return dropped
}

// CompiledMember resolves the CompiledLogic artifact for validatorID and finds
// the member for ruleID with exactly the given parameter types.
func (r *Resolver) CompiledMember(validatorID, ruleID string, params []reflect.Type) (Member, bool) {
	r.checkPortable(validatorID, ruleID, CompiledLogic)
	a, ok := r.Resolve(validatorID, CompiledLogic)
	if !ok {
		return Member{}, false
	}
	member, err := findCompiledMember(a, ruleID, params)
	if err != nil {
		r.report(Diagnostic{Stage: stageOf(err), ValidatorID: validatorID, RuleID: ruleID, Kind: CompiledLogic, Name: a.Name(), Err: err})
		return Member{}, false
	}
	return member, true
}

// Dependencies resolves the metadata artifact of the given kind and returns
// the dependency set declared for ruleID.
func (r *Resolver) Dependencies(validatorID, ruleID string, kind Kind) (DependencySet, bool) {
	if !kind.IsMetadata() {
		r.report(Diagnostic{Stage: StageLookup, ValidatorID: validatorID, RuleID: ruleID, Kind: kind, Err: fmt.Errorf("%w: %s carries no dependencies", ErrWrongKind, kind)})
		return nil, false
	}
	r.checkPortable(validatorID, ruleID, kind)
	a, ok := r.Resolve(validatorID, kind)
	if !ok {
		r.metrics.looked(kind, outcomeAbsent)
		return nil, false
	}
	set, err := getDependencies(a, ruleID)
	if err != nil {
		r.metrics.looked(kind, outcomeAbsent)
		r.report(Diagnostic{Stage: stageOf(err), ValidatorID: validatorID, RuleID: ruleID, Kind: kind, Name: a.Name(), Err: err})
		return nil, false
	}
	r.metrics.looked(kind, outcomeFound)
	return set, true
}

// RuleDependencies collects the property, context and lookup sets of a rule.
func (r *Resolver) RuleDependencies(validatorID, ruleID string) RuleDependencies {
	deps := RuleDependencies{ValidatorID: validatorID, RuleID: ruleID}
	for _, kind := range MetadataKinds {
		if set, ok := r.Dependencies(validatorID, ruleID, kind); ok {
			deps.set(kind, set)
		}
	}
	return deps
}

// Available lists the qualified names advertised by sources that implement
// Lister.
func (r *Resolver) Available() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, src := range r.sources {
		lister, ok := src.(Lister)
		if !ok {
			continue
		}
		for _, name := range lister.Names() {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Resolver) checkPortable(validatorID, ruleID string, kind Kind) {
	if IsPortableRuleID(ruleID) {
		return
	}
	r.report(Diagnostic{
		Stage:       StageCompat,
		ValidatorID: validatorID,
		RuleID:      ruleID,
		Kind:        kind,
		Name:        MemberName(ruleID),
		Err:         fmt.Errorf("rule id %q has characters outside [A-Za-z0-9_-]", ruleID),
	})
}

func (r *Resolver) report(d Diagnostic) {
	if r.diagnostics != nil {
		r.diagnostics(d)
	}
}
