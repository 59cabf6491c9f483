package binding

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Member is a resolved rule member.
type Member struct {
	Name string
	Kind Kind
	fn   reflect.Value
}

// Type returns the member's function type.
func (m Member) Type() reflect.Type {
	if !m.fn.IsValid() {
		return nil
	}
	return m.fn.Type()
}

// Call invokes the member. Arguments must be assignable to the declared
// parameters; nil stands for the parameter's zero value. A trailing error
// result is returned as the error and dropped from the values. Panics are
// recovered and reported as ErrInvocation.
func (m Member) Call(args ...any) (results []any, err error) {
	if !m.fn.IsValid() {
		return nil, fmt.Errorf("%w: %s is unbound", ErrMemberNotFound, m.Name)
	}
	fnType := m.fn.Type()
	if fnType.IsVariadic() || fnType.NumIn() != len(args) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSignatureMismatch, m.Name, fnType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := fnType.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		value := reflect.ValueOf(arg)
		if !value.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%w: %s argument %d is %s, want %s", ErrSignatureMismatch, m.Name, i, value.Type(), want)
		}
		in[i] = value
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrInvocation, m.Name, r)
		}
	}()
	out := m.fn.Call(in)

	if n := len(out); n > 0 && fnType.Out(n-1) == errorType {
		last := out[n-1]
		out = out[:n-1]
		if !last.IsNil() {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvocation, m.Name, last.Interface().(error))
		}
	}
	results = make([]any, len(out))
	for i, value := range out {
		results[i] = value.Interface()
	}
	return results, nil
}

// ParamTypes returns the dynamic types of the samples, in order. A nil
// pointer of the wanted type works as a sample.
func ParamTypes(samples ...any) []reflect.Type {
	types := make([]reflect.Type, len(samples))
	for i, sample := range samples {
		types[i] = reflect.TypeOf(sample)
	}
	return types
}

// FindCompiledMember locates the executable member for ruleID in a
// CompiledLogic artifact. The member's parameter list must equal params
// exactly; there is no overload resolution or partial matching.
func FindCompiledMember(a Artifact, ruleID string, params []reflect.Type) (Member, bool) {
	member, err := findCompiledMember(a, ruleID, params)
	return member, err == nil
}

// FindMetadataMember locates the zero-argument dependency member for ruleID in
// a properties, contexts or lookups artifact.
func FindMetadataMember(a Artifact, ruleID string) (Member, bool) {
	member, err := findMetadataMember(a, ruleID)
	return member, err == nil
}

func findCompiledMember(a Artifact, ruleID string, params []reflect.Type) (Member, error) {
	if isNilArtifact(a) {
		return Member{}, ErrArtifactNotFound
	}
	if a.Kind() != CompiledLogic {
		return Member{}, fmt.Errorf("%w: %s is %s", ErrWrongKind, a.Name(), a.Kind())
	}
	name := MemberName(ruleID)
	fn, ok := a.Member(name)
	if !ok {
		return Member{}, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, a.Name(), name)
	}
	if !signatureMatches(fn.Type(), params) {
		return Member{}, fmt.Errorf("%w: %s.%s is %s", ErrSignatureMismatch, a.Name(), name, fn.Type())
	}
	return Member{Name: name, Kind: CompiledLogic, fn: fn}, nil
}

func findMetadataMember(a Artifact, ruleID string) (Member, error) {
	if isNilArtifact(a) {
		return Member{}, ErrArtifactNotFound
	}
	if !a.Kind().IsMetadata() {
		return Member{}, fmt.Errorf("%w: %s is %s", ErrWrongKind, a.Name(), a.Kind())
	}
	name := MemberName(ruleID)
	fn, ok := a.Member(name)
	if !ok {
		return Member{}, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, a.Name(), name)
	}
	fnType := fn.Type()
	if fnType.NumIn() != 0 || fnType.IsVariadic() || fnType.NumOut() == 0 {
		return Member{}, fmt.Errorf("%w: %s.%s is %s", ErrSignatureMismatch, a.Name(), name, fnType)
	}
	return Member{Name: name, Kind: a.Kind(), fn: fn}, nil
}

func signatureMatches(fnType reflect.Type, params []reflect.Type) bool {
	if fnType.IsVariadic() || fnType.NumIn() != len(params) {
		return false
	}
	for i, want := range params {
		if want == nil || fnType.In(i) != want {
			return false
		}
	}
	return true
}
