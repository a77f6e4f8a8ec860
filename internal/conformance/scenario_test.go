package conformance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: seq_basic
description: "Ordered calls match a seq pattern"
trace: ["1", "2"]
pattern:
  seq: ["1", "2"]
expect:
  ok: true
`)

	scenario, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "seq_basic", scenario.Name)
	assert.Equal(t, []string{"1", "2"}, scenario.Trace)
	assert.True(t, scenario.Expect.OK)
	require.NotNil(t, scenario.Pattern)
}

func TestLoad_NestedPattern(t *testing.T) {
	path := writeScenario(t, `
name: nested
description: "Composite pattern forms decode recursively"
trace: ["1", "a", "b", "2"]
pattern:
  par:
    - seq: ["1", "2"]
    - any:
        - "a"
        - seq: ["a", "b"]
expect:
  ok: true
`)

	scenario, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, scenario.Pattern.Build())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoad_MissingName(t *testing.T) {
	path := writeScenario(t, `
description: "No name"
trace: []
pattern:
  seq: []
expect:
  ok: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoad_MissingPattern(t *testing.T) {
	path := writeScenario(t, `
name: no_pattern
description: "Pattern absent"
trace: []
expect:
  ok: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern is required")
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Typoed key must be rejected"
trace: []
patern:
  seq: []
expect:
  ok: true
`)

	_, err := Load(path)
	require.Error(t, err, "unknown fields must fail strict decoding")
}

func TestLoad_UnknownPatternKind(t *testing.T) {
	path := writeScenario(t, `
name: bad_kind
description: "Unknown composite kind"
trace: []
pattern:
  all: ["1"]
expect:
  ok: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pattern kind")
}

func TestLoad_MismatchFieldsRequireFailure(t *testing.T) {
	path := writeScenario(t, `
name: contradictory
description: "ok: true with mismatch fields is contradictory"
trace: []
pattern:
  seq: []
expect:
  ok: true
  mismatch_index: 2
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only valid with ok: false")
}

func TestLoadDir_SortedByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml"} {
		content := `
name: ` + name + `
description: "Order probe"
trace: []
pattern:
  seq: []
expect:
  ok: true
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a.yaml", scenarios[0].Name)
	assert.Equal(t, "b.yaml", scenarios[1].Name)
}

func TestRun_ReportsDivergence(t *testing.T) {
	path := writeScenario(t, `
name: wrong_index
description: "A deliberately wrong expectation must be reported"
trace: ["1", "2"]
pattern:
  seq: ["1", "3"]
expect:
  ok: false
  mismatch_index: 0
`)

	scenario, err := Load(path)
	require.NoError(t, err)

	problems := Run(scenario)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "mismatch index: got 1, want 0")
}

func TestRun_PassingScenario(t *testing.T) {
	path := writeScenario(t, `
name: passing
description: "A correct scenario produces no problems"
trace: ["1", "2"]
pattern:
  seq: ["1", "2"]
expect:
  ok: true
`)

	scenario, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, Run(scenario))
}
