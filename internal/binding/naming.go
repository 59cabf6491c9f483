package binding

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Separator splits validator ids into segments and marks the characters
	// rewritten in member names.
	Separator = "-"

	// DefaultNamespace is the conventional prefix generated artifacts live under.
	DefaultNamespace = "validation/runtime"
)

// ClassName derives the conventional artifact name for a validator and kind.
// Empty segments contribute nothing, so "" yields the bare suffix and
// "-a--b-" yields the same name as "a-b".
func ClassName(validatorID string, kind Kind) string {
	var b strings.Builder
	for _, segment := range strings.Split(validatorID, Separator) {
		if segment == "" {
			continue
		}
		b.WriteString(capitalize(segment))
	}
	b.WriteString(kind.Suffix())
	return b.String()
}

// MemberName derives the member name for a rule id by replacing every
// separator with an underscore.
//
// This is not enough for ids that start with a digit or carry dots, spaces or
// other non-identifier characters; such ids produce names the code generator
// cannot emit. See IsPortableRuleID.
func MemberName(ruleID string) string {
	return strings.ReplaceAll(ruleID, Separator, "_")
}

// IsPortableRuleID reports whether ruleID only uses [A-Za-z0-9_-], the
// characters MemberName is known to handle.
func IsPortableRuleID(ruleID string) bool {
	for i := 0; i < len(ruleID); i++ {
		c := ruleID[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// QualifiedName joins a namespace and a class name.
func QualifiedName(namespace, className string) string {
	namespace = strings.TrimSuffix(strings.TrimSpace(namespace), ".")
	if namespace == "" {
		return className
	}
	return namespace + "." + className
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	upper := unicode.ToTitle(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}
