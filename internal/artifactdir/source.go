// Package artifactdir serves generated artifacts straight from Go source.
//
// A directory holds one file per artifact, named <ClassName>.go and written in
// package main. The file declares a function named after the class that
// returns the artifact's member names, plus one top-level function per
// member:
//
//	package main
//
//	func DemoSetParsedProperties() []string { return []string{"r_1"} }
//
//	func r_1() []string { return []string{"ageAtDiagnosis", "sex"} }
//
// Files are interpreted with yaegi on first resolution.
package artifactdir

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/kingrea/rulebind/internal/binding"
)

const fileExt = ".go"

// Source resolves qualified artifact names to files under a directory.
type Source struct {
	dir       string
	namespace string
	logger    *slog.Logger
}

var (
	_ binding.Source = (*Source)(nil)
	_ binding.Lister = (*Source)(nil)
)

// Option customizes a Source.
type Option func(*Source)

// WithLogger sets the logger used for load and watch events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a source for dir serving names under namespace.
func New(dir, namespace string, opts ...Option) *Source {
	s := &Source{
		dir:       filepath.Clean(strings.TrimSpace(dir)),
		namespace: namespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dir returns the directory the source reads from.
func (s *Source) Dir() string {
	return s.dir
}

// Lookup returns a factory when a file for qualifiedName exists. The file is
// only read when the factory runs.
func (s *Source) Lookup(qualifiedName string) (binding.Factory, bool) {
	className, ok := s.className(qualifiedName)
	if !ok {
		return nil, false
	}
	kind, ok := binding.KindFromClassName(className)
	if !ok {
		return nil, false
	}
	path := s.pathFor(className)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return func() (binding.Artifact, error) {
		bundle, err := LoadFile(path, className, kind)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Loaded generated artifact", "path", path, "members", len(bundle.MemberNames()))
		return bundle, nil
	}, true
}

// Names lists the qualified names of every artifact file in the directory.
// A missing directory holds no artifacts.
func (s *Source) Names() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to list artifact directory", "dir", s.dir, "error", err)
		}
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		className, ok := classNameFromFile(entry.Name())
		if !ok {
			continue
		}
		names = append(names, binding.QualifiedName(s.namespace, className))
	}
	sort.Strings(names)
	return names
}

func (s *Source) className(qualifiedName string) (string, bool) {
	prefix := binding.QualifiedName(s.namespace, "")
	if !strings.HasPrefix(qualifiedName, prefix) {
		return "", false
	}
	className := strings.TrimPrefix(qualifiedName, prefix)
	if !isIdentifier(className) {
		return "", false
	}
	return className, true
}

func (s *Source) pathFor(className string) string {
	return ArtifactPath(s.dir, className)
}

// classNameFromFile accepts <ClassName>.go files whose name carries a known
// kind suffix; test files and other sources are skipped.
func classNameFromFile(name string) (string, bool) {
	if filepath.Ext(name) != fileExt || strings.HasSuffix(name, "_test.go") {
		return "", false
	}
	className := strings.TrimSuffix(name, fileExt)
	if !isIdentifier(className) {
		return "", false
	}
	if _, ok := binding.KindFromClassName(className); !ok {
		return "", false
	}
	return className, true
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// ArtifactPath returns where the file for className lives inside dir.
func ArtifactPath(dir, className string) string {
	return filepath.Join(dir, className+fileExt)
}
