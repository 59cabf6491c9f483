package binding

import (
	"fmt"
	"reflect"
	"sort"
)

// Artifact is the runtime object for one (validator, kind) pair: a named,
// immutable bundle of rule members keyed by member name.
type Artifact interface {
	Kind() Kind
	Name() string
	Member(name string) (reflect.Value, bool)
	MemberNames() []string
}

// Members maps member names to function values as emitted by the code
// generator.
type Members map[string]any

// Factory is the no-argument construction path for an artifact.
type Factory func() (Artifact, error)

// Bundle is the standard Artifact implementation.
type Bundle struct {
	kind    Kind
	name    string
	members map[string]reflect.Value
}

var _ Artifact = (*Bundle)(nil)

// NewBundle validates members and freezes them into a bundle. Every member
// must be a non-nil function.
func NewBundle(kind Kind, className string, members Members) (*Bundle, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("binding: unknown artifact kind %d", int(kind))
	}
	frozen := make(map[string]reflect.Value, len(members))
	for name, member := range members {
		value := reflect.ValueOf(member)
		if !value.IsValid() || value.Kind() != reflect.Func || value.IsNil() {
			return nil, fmt.Errorf("binding: %s member %s is not a function", className, name)
		}
		frozen[name] = value
	}
	return &Bundle{kind: kind, name: className, members: frozen}, nil
}

// BundleFactory returns a factory that builds a bundle on each call.
func BundleFactory(kind Kind, className string, members Members) Factory {
	return func() (Artifact, error) {
		return NewBundle(kind, className, members)
	}
}

func (b *Bundle) Kind() Kind   { return b.kind }
func (b *Bundle) Name() string { return b.name }

func (b *Bundle) Member(name string) (reflect.Value, bool) {
	value, ok := b.members[name]
	return value, ok
}

// MemberNames returns the sorted member names.
func (b *Bundle) MemberNames() []string {
	names := make([]string, 0, len(b.members))
	for name := range b.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompiledLogicProvider exposes the executable members of a CompiledLogic
// artifact.
type CompiledLogicProvider interface {
	Artifact
	FindMember(ruleID string, params []reflect.Type) (Member, bool)
}

// PropertyProvider exposes the property dependencies of each rule.
type PropertyProvider interface {
	Artifact
	Properties(ruleID string) (DependencySet, bool)
}

// ContextProvider exposes the context dependencies of each rule.
type ContextProvider interface {
	Artifact
	Contexts(ruleID string) (DependencySet, bool)
}

// LookupProvider exposes the lookup-table dependencies of each rule.
type LookupProvider interface {
	Artifact
	Lookups(ruleID string) (DependencySet, bool)
}

type compiledView struct{ Artifact }

func (v compiledView) FindMember(ruleID string, params []reflect.Type) (Member, bool) {
	return FindCompiledMember(v.Artifact, ruleID, params)
}

type propertyView struct{ Artifact }

func (v propertyView) Properties(ruleID string) (DependencySet, bool) {
	return GetDependencies(v.Artifact, ruleID)
}

type contextView struct{ Artifact }

func (v contextView) Contexts(ruleID string) (DependencySet, bool) {
	return GetDependencies(v.Artifact, ruleID)
}

type lookupView struct{ Artifact }

func (v lookupView) Lookups(ruleID string) (DependencySet, bool) {
	return GetDependencies(v.Artifact, ruleID)
}

// AsCompiledLogic views a as a CompiledLogicProvider when its kind matches.
func AsCompiledLogic(a Artifact) (CompiledLogicProvider, bool) {
	if !hasKind(a, CompiledLogic) {
		return nil, false
	}
	return compiledView{a}, true
}

// AsProperties views a as a PropertyProvider when its kind matches.
func AsProperties(a Artifact) (PropertyProvider, bool) {
	if !hasKind(a, PropertyDependencies) {
		return nil, false
	}
	return propertyView{a}, true
}

// AsContexts views a as a ContextProvider when its kind matches.
func AsContexts(a Artifact) (ContextProvider, bool) {
	if !hasKind(a, ContextDependencies) {
		return nil, false
	}
	return contextView{a}, true
}

// AsLookups views a as a LookupProvider when its kind matches.
func AsLookups(a Artifact) (LookupProvider, bool) {
	if !hasKind(a, LookupDependencies) {
		return nil, false
	}
	return lookupView{a}, true
}

func hasKind(a Artifact, kind Kind) bool {
	return !isNilArtifact(a) && a.Kind() == kind
}

func isNilArtifact(a Artifact) bool {
	if a == nil {
		return true
	}
	value := reflect.ValueOf(a)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return value.IsNil()
	}
	return false
}
