package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/ts-introspect/config"
	"github.com/hannajonsd/ts-introspect/fingerprint"
)

// execute runs the CLI with flag variables reset to their defaults
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootFlag, configFlag, formatFlag = ".", "", "human"
	verbosity, quietFlag, strictFlag = 0, true, false
	lintLegacy, hashWrite, initForce = false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--quiet"))
	err := rootCmd.Execute()
	return out.String(), err
}

const utilCode = "export const u = 1;\n"

const utilSource = utilCode + `
export const __metadata = {
  module: 'src/util',
  _meta: { contentHash: 'ffffffffffffffff' },
};
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/index.ts": "import { a } from './a';\n",
		"src/a.ts":     "import { b } from './b';\nexport const a = 1;\n",
		"src/b.ts":     "import { a } from './a';\nexport const b = 2;\n",
		"src/util.ts":  utilSource,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestLintCommandFails(t *testing.T) {
	root := writeProject(t)

	out, err := execute(t, "lint", "--root", root, "--format", "json")
	var exit *exitError
	require.ErrorAs(t, err, &exit)

	var sum struct {
		TotalErrors  int  `json:"totalErrors"`
		FilesChecked int  `json:"filesChecked"`
		Passed       bool `json:"passed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 4, sum.FilesChecked)
	assert.False(t, sum.Passed)
	assert.GreaterOrEqual(t, sum.TotalErrors, 4)
}

func TestLintCommandPassesWithRulesOff(t *testing.T) {
	root := writeProject(t)
	cfg := config.Default()
	cfg.Rules = map[string]string{"metadata-present": "off", "stale-hash": "off", "required-fields": "off"}
	require.NoError(t, cfg.Save(filepath.Join(root, ".introspect.toml")))

	out, err := execute(t, "lint", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Result: passed")
}

func TestGraphCommands(t *testing.T) {
	root := writeProject(t)

	out, err := execute(t, "cycles", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 circular dependencies")

	out, err = execute(t, "unused", "--root", root, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["src/util"]`, out)

	out, err = execute(t, "used-by", "src/a", "--root", root, "--format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "- src/b\n- src/index\n", out)
}

func TestHashCommandWrites(t *testing.T) {
	root := writeProject(t)
	path := filepath.Join(root, "src", "util.ts")

	out, err := execute(t, "hash", path, "--root", root, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "(updated)")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), fingerprint.Compute([]byte(utilCode))))

	st, err := fingerprint.Check(content)
	require.NoError(t, err)
	assert.False(t, st.Stale)
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()

	_, err := execute(t, "init", "--root", root)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, ".introspect.toml"))
	require.NoError(t, err)

	_, err = execute(t, "init", "--root", root)
	assert.Error(t, err)

	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.StaleDays)
}
