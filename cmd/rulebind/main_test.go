package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoProperties = `package main

func DemoSetParsedProperties() []string {
	return []string{"r_1"}
}

func r_1() []string {
	return []string{"sex", "ageAtDiagnosis"}
}
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestNamesPrintsDerivedNames(t *testing.T) {
	out := run(t, "names", "naaccr-translated", "r-1", "r.2")

	assert.Contains(t, out, "validation/runtime.NaaccrTranslatedCompiledRules")
	assert.Contains(t, out, "validation/runtime.NaaccrTranslatedParsedLookups")
	assert.Contains(t, out, "r-1 -> r_1")
	assert.Contains(t, out, "r.2 -> r.2")
	assert.Equal(t, 1, strings.Count(out, "non-portable rule id"))
}

func TestInitCreatesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "--project", dir, "init")

	assert.Contains(t, out, "Initialized")
	_, err := os.Stat(filepath.Join(dir, ".rulebind", "config.yaml"))
	require.NoError(t, err)

	logData, err := os.ReadFile(filepath.Join(dir, ".rulebind", "logs", "rulebind.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Initialized")
	assert.Contains(t, string(logData), "namespace validation/runtime")
}

func TestDepsResolvesFromArtifactDir(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "generated")
	require.NoError(t, os.MkdirAll(generated, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(generated, "DemoSetParsedProperties.go"), []byte(demoProperties), 0644))

	out := run(t, "--project", dir, "deps", "demo-set", "r-1", "r-2", "--metrics")

	assert.Contains(t, out, "demo-set / r-1")
	assert.Contains(t, out, "ageAtDiagnosis, sex")
	assert.Contains(t, out, "demo-set / r-2")
	assert.GreaterOrEqual(t, strings.Count(out, "absent"), 5)
	assert.Contains(t, out, `rulebind_dependency_lookups_total{kind="properties",outcome="found"} 1`)
	assert.Contains(t, out, `rulebind_artifact_resolutions_total{kind="contexts",outcome="absent"} 1`)

	_, err := os.Stat(filepath.Join(dir, ".rulebind", "logs", "rulebind.log"))
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	assert.Equal(t, "rulebind version "+Version+"\n", out)
}
