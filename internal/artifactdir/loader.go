package artifactdir

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/rulebind/internal/binding"
)

// LoadFile interprets the artifact file at path and bundles the members its
// class function lists.
func LoadFile(path, className string, kind binding.Kind) (*binding.Bundle, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifactdir: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("artifactdir: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("artifactdir: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("artifactdir: interpret %s: %w", path, err)
	}
	classFn, err := i.Eval(className)
	if err != nil {
		return nil, fmt.Errorf("artifactdir: %s must define %s() []string: %w", path, className, err)
	}
	memberNames, err := invokeClassFunc(classFn, className)
	if err != nil {
		return nil, fmt.Errorf("artifactdir: %s: %w", path, err)
	}
	members := make(binding.Members, len(memberNames))
	for _, name := range memberNames {
		if _, dup := members[name]; dup {
			return nil, fmt.Errorf("artifactdir: %s lists member %s twice", path, name)
		}
		value, err := i.Eval(name)
		if err != nil {
			return nil, fmt.Errorf("artifactdir: %s member %s: %w", path, name, err)
		}
		if !value.IsValid() || value.Kind() != reflect.Func {
			return nil, fmt.Errorf("artifactdir: %s member %s is not a function", path, name)
		}
		members[name] = value.Interface()
	}
	return binding.NewBundle(kind, className, members)
}

func invokeClassFunc(value reflect.Value, className string) ([]string, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", className)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", className)
	}
	if value.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", className)
	}
	results := value.Call(nil)
	if len(results) != 1 {
		return nil, fmt.Errorf("%s must return []string", className)
	}
	names, ok := results[0].Interface().([]string)
	if ok {
		return names, nil
	}
	out := results[0]
	if out.Kind() == reflect.Slice && out.Type().Elem().Kind() == reflect.String {
		names = make([]string, out.Len())
		for idx := 0; idx < out.Len(); idx++ {
			names[idx] = out.Index(idx).String()
		}
		return names, nil
	}
	return nil, fmt.Errorf("%s must return []string", className)
}
