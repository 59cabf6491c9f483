package binding

import "strings"

// Kind enumerates the four artifact universes produced per validator.
type Kind int

const (
	CompiledLogic Kind = iota
	PropertyDependencies
	ContextDependencies
	LookupDependencies
)

// Kinds lists every artifact kind in declaration order.
var Kinds = []Kind{CompiledLogic, PropertyDependencies, ContextDependencies, LookupDependencies}

// MetadataKinds lists the kinds whose members return dependency sets.
var MetadataKinds = []Kind{PropertyDependencies, ContextDependencies, LookupDependencies}

var kindSuffixes = map[Kind]string{
	CompiledLogic:        "CompiledRules",
	PropertyDependencies: "ParsedProperties",
	ContextDependencies:  "ParsedContexts",
	LookupDependencies:   "ParsedLookups",
}

var kindLabels = map[Kind]string{
	CompiledLogic:        "compiled-logic",
	PropertyDependencies: "properties",
	ContextDependencies:  "contexts",
	LookupDependencies:   "lookups",
}

// Suffix returns the conventional class-name suffix for the kind.
func (k Kind) Suffix() string {
	return kindSuffixes[k]
}

// String returns a short label suitable for logs and metric labels.
func (k Kind) String() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return "unknown"
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	_, ok := kindSuffixes[k]
	return ok
}

// IsMetadata reports whether members of this kind return dependency sets.
func (k Kind) IsMetadata() bool {
	return k == PropertyDependencies || k == ContextDependencies || k == LookupDependencies
}

// KindFromClassName recovers the kind from a class name's suffix. The
// validator part of the name is not recoverable.
func KindFromClassName(className string) (Kind, bool) {
	for _, kind := range Kinds {
		suffix := kind.Suffix()
		if strings.HasSuffix(className, suffix) {
			return kind, true
		}
	}
	return 0, false
}
