package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/rulebind/internal/binding"
	"github.com/kingrea/rulebind/internal/config"
)

const lookupsSource = `package main

func DemoSetParsedLookups() []string { return []string{"r_1"} }

func r_1() []string { return []string{"site-histology"} }
`

func newProject(t *testing.T, configYAML string) *config.Config {
	t.Helper()
	projectDir := t.TempDir()
	require.NoError(t, config.InitDir(projectDir))
	if configYAML != "" {
		path := filepath.Join(projectDir, config.ProjectDirName, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "generated"), 0755))
	cfg, err := config.NewConfig(projectDir)
	require.NoError(t, err)
	return cfg
}

func TestOpenCombinesRegistryAndDirectories(t *testing.T) {
	cfg := newProject(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ProjectDir, "generated", "DemoSetParsedLookups.go"), []byte(lookupsSource), 0644))

	reg := binding.NewRegistry()
	require.NoError(t, reg.RegisterBundle(cfg.Namespace(), "demo-set", binding.PropertyDependencies, binding.Members{
		"r_1": func() []string { return []string{"sex"} },
	}))

	ws, err := Open(cfg, Options{Registry: reg})
	require.NoError(t, err)
	defer ws.Close()
	require.Len(t, ws.Dirs, 1)

	deps := ws.Resolver.RuleDependencies("demo-set", "r-1")
	assert.Equal(t, []string{"sex"}, deps.Properties.Sorted())
	assert.Equal(t, []string{"site-histology"}, deps.Lookups.Sorted())
	assert.Nil(t, deps.Contexts)

	assert.Equal(t, []string{
		"validation/runtime.DemoSetParsedLookups",
		"validation/runtime.DemoSetParsedProperties",
	}, ws.Resolver.Available())
}

func TestOpenRegistersMetricsWhenEnabled(t *testing.T) {
	cfg := newProject(t, "version: 1\nmetrics:\n  enabled: true\n")
	promReg := prometheus.NewRegistry()

	ws, err := Open(cfg, Options{Registry: binding.NewRegistry(), Metrics: promReg})
	require.NoError(t, err)
	defer ws.Close()

	ws.Resolver.Resolve("demo-set", binding.CompiledLogic)
	count, err := testutil.GatherAndCount(promReg, "rulebind_artifact_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenWatchRetriesArtifactsWrittenAfterCreate(t *testing.T) {
	cfg := newProject(t, "version: 1\nartifacts:\n  watch: true\n")
	ws, err := Open(cfg, Options{Registry: binding.NewRegistry()})
	require.NoError(t, err)
	defer ws.Close()

	path := filepath.Join(cfg.ProjectDir, "generated", "DemoSetParsedLookups.go")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, ok := ws.Resolver.Resolve("demo-set", binding.LookupDependencies)
	require.False(t, ok, "empty file must not resolve")

	_, err = f.WriteString(lookupsSource)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		_, ok := ws.Resolver.Resolve("demo-set", binding.LookupDependencies)
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	set, ok := ws.Resolver.Dependencies("demo-set", "r-1", binding.LookupDependencies)
	require.True(t, ok)
	assert.Equal(t, []string{"site-histology"}, set.Sorted())
}

func TestOpenWatchFailsOnMissingDirectory(t *testing.T) {
	cfg := newProject(t, "version: 1\nartifacts:\n  dirs: [missing]\n  watch: true\n")
	_, err := Open(cfg, Options{Registry: binding.NewRegistry()})
	assert.Error(t, err)
}

func TestOpenRequiresConfig(t *testing.T) {
	_, err := Open(nil, Options{})
	assert.Error(t, err)
}
