package binding

import (
	"fmt"
	"reflect"
	"sort"
)

// DependencySet holds the property, context or lookup names a rule reads.
type DependencySet map[string]struct{}

// NewDependencySet builds a set from names; duplicates collapse.
func NewDependencySet(names ...string) DependencySet {
	set := make(DependencySet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set.
func (s DependencySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s DependencySet) Len() int { return len(s) }

// Sorted returns the names in lexical order.
func (s DependencySet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both sets hold the same names.
func (s DependencySet) Equal(other DependencySet) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// GetDependencies invokes the metadata member for ruleID and returns its
// dependency set. A nil artifact short-circuits to absence. Missing members,
// failed invocations and unusable results are all reported as absence.
func GetDependencies(a Artifact, ruleID string) (DependencySet, bool) {
	set, err := getDependencies(a, ruleID)
	return set, err == nil
}

func getDependencies(a Artifact, ruleID string) (DependencySet, error) {
	if isNilArtifact(a) {
		return nil, ErrArtifactNotFound
	}
	member, err := findMetadataMember(a, ruleID)
	if err != nil {
		return nil, err
	}
	results, err := member.Call()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s.%s returned nothing", ErrResultShape, a.Name(), member.Name)
	}
	set, ok := toDependencySet(results[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s returned %T", ErrResultShape, a.Name(), member.Name, results[0])
	}
	return set, nil
}

// toDependencySet accepts string slices and string-keyed maps. Maps with bool
// values contribute only their true keys. Typed nil slices and maps are empty
// sets; an untyped nil is not a set.
func toDependencySet(value any) (DependencySet, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case DependencySet:
		set := make(DependencySet, len(v))
		for name := range v {
			set[name] = struct{}{}
		}
		return set, true
	case []string:
		return NewDependencySet(v...), true
	case map[string]bool:
		set := make(DependencySet, len(v))
		for name, present := range v {
			if present {
				set[name] = struct{}{}
			}
		}
		return set, true
	case []any:
		set := make(DependencySet, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, false
			}
			set[name] = struct{}{}
		}
		return set, true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.String {
			return nil, false
		}
		set := make(DependencySet, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			set[rv.Index(i).String()] = struct{}{}
		}
		return set, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		onlyTrue := rv.Type().Elem().Kind() == reflect.Bool
		set := make(DependencySet, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if onlyTrue && !iter.Value().Bool() {
				continue
			}
			set[iter.Key().String()] = struct{}{}
		}
		return set, true
	}
	return nil, false
}

// RuleDependencies gathers the three dependency sets of one rule. A nil set
// means the corresponding artifact or member was absent, which is different
// from an empty set.
type RuleDependencies struct {
	ValidatorID string
	RuleID      string
	Properties  DependencySet
	Contexts    DependencySet
	Lookups     DependencySet
}

// Set returns the dependency set for a metadata kind.
func (d RuleDependencies) Set(kind Kind) (DependencySet, bool) {
	var set DependencySet
	switch kind {
	case PropertyDependencies:
		set = d.Properties
	case ContextDependencies:
		set = d.Contexts
	case LookupDependencies:
		set = d.Lookups
	}
	return set, set != nil
}

func (d *RuleDependencies) set(kind Kind, set DependencySet) {
	switch kind {
	case PropertyDependencies:
		d.Properties = set
	case ContextDependencies:
		d.Contexts = set
	case LookupDependencies:
		d.Lookups = set
	}
}
