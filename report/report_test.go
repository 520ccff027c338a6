package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/fingerprint"
	"github.com/hannajonsd/ts-introspect/graph"
	"github.com/hannajonsd/ts-introspect/manifest"
	"github.com/hannajonsd/ts-introspect/rules"
)

func sampleSummary() rules.Summary {
	return rules.Summarize([]rules.LintResult{
		{
			File:     "src/a.ts",
			Errors:   []rules.Finding{{Rule: "metadata-present", Severity: rules.SeverityError, Message: "missing __metadata declaration", Fixable: true}},
			Warnings: []rules.Finding{},
		},
		{File: "src/b.ts", Errors: []rules.Finding{}, Warnings: []rules.Finding{}},
	}, false)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatHuman, "JSON": FormatJSON, "yml": FormatYAML, "human": FormatHuman} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestLintHuman(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out, FormatHuman).Lint(sampleSummary()))

	text := out.String()
	assert.Contains(t, text, "Found issues in 1 files")
	assert.Contains(t, text, " src/a.ts\n")
	assert.Contains(t, text, "metadata-present: missing __metadata declaration [fixable]")
	assert.NotContains(t, text, "src/b.ts")
	assert.Contains(t, text, "Errors: 1\n")
	assert.Contains(t, text, "Result: failed\n")
}

func TestLintHumanClean(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out, FormatHuman).Lint(rules.Summarize([]rules.LintResult{{File: "a.ts"}}, true)))
	assert.Contains(t, out.String(), "All 1 files satisfy")
	assert.Contains(t, out.String(), "Result: passed")
}

func TestLintJSON(t *testing.T) {
	var out bytes.Buffer
	sum := sampleSummary()
	require.NoError(t, New(&out, FormatJSON).Lint(sum))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, sum.RunID, decoded["runId"])
	assert.Equal(t, float64(1), decoded["totalErrors"])
	assert.Equal(t, float64(2), decoded["filesChecked"])
	assert.Equal(t, false, decoded["passed"])
}

func TestGraphYAML(t *testing.T) {
	g := graph.New()
	g.AddNode("a")
	g.AddNode("b")
	g.SetUses("a", []string{"b", "missing"})

	var out bytes.Buffer
	require.NoError(t, New(&out, FormatYAML).Graph(g))

	var decoded struct {
		Stats   graph.Stats                `yaml:"stats"`
		Modules map[string]graph.UsageInfo `yaml:"modules"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, graph.Stats{Modules: 2, Edges: 2, Dangling: 1}, decoded.Stats)
	assert.Equal(t, []string{"a"}, decoded.Modules["b"].UsedBy)
}

func TestGraphHuman(t *testing.T) {
	g := graph.New()
	g.AddNode("a")
	g.SetUses("a", []string{"gone"})

	var out bytes.Buffer
	require.NoError(t, New(&out, FormatHuman).Graph(g))
	assert.Contains(t, out.String(), "  -> gone (not found)\n")
	assert.Contains(t, out.String(), "1 modules, 1 edges, 1 dangling")
}

func TestCyclesAndModules(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, FormatHuman)
	require.NoError(t, p.Cycles([][]string{{"a", "b"}}))
	require.NoError(t, p.Modules("Unused modules", nil))
	require.NoError(t, p.Modules("Used by", []string{"x"}))

	assert.Contains(t, out.String(), "1. a -> b -> a")
	assert.Contains(t, out.String(), "Unused modules: none")
	assert.Contains(t, out.String(), "Used by (1):\n  - x\n")

	out.Reset()
	require.NoError(t, New(&out, FormatJSON).Cycles(nil))
	assert.JSONEq(t, "[]", out.String())
}

func TestDependencies(t *testing.T) {
	m := &manifest.Manifest{
		Dependencies:    map[string]string{"zod": "^3.0.0"},
		DevDependencies: map[string]string{"vitest": "1.0.0"},
	}
	deps := extractor.DependencyInfo{
		Internal: []string{"db/client"},
		External: []string{"lodash", "node:fs", "vitest", "zod"},
		Types:    []string{},
	}

	var out bytes.Buffer
	require.NoError(t, New(&out, FormatHuman).Dependencies("src/a.ts", deps, m))
	text := out.String()
	assert.Contains(t, text, "  - db/client\n")
	assert.Contains(t, text, "  - lodash@unknown (not in manifest)\n")
	assert.Contains(t, text, "  - node:fs [builtin]\n")
	assert.Contains(t, text, "  - vitest@1.0.0\n")
	assert.Contains(t, text, "  - zod@^3.0.0 (semver range)\n")

	out.Reset()
	require.NoError(t, New(&out, FormatJSON).Dependencies("src/a.ts", deps, nil))
	assert.Contains(t, out.String(), `"inManifest": false`)
}

func TestHashAndExports(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, FormatHuman)
	require.NoError(t, p.Hash("a.ts", fingerprint.Status{Current: "1111", Stored: "2222", HasStored: true, Stale: true}, false))
	require.NoError(t, p.Exports("a.ts", []extractor.ExportInfo{{Name: "run", Kind: "function"}}))

	assert.Contains(t, out.String(), "stored:  2222 (stale)")
	assert.Contains(t, out.String(), "a.ts (1 exports)")
	assert.Contains(t, out.String(), "run")
}

func TestRules(t *testing.T) {
	var out bytes.Buffer
	defs := rules.Builtins()
	off := func(d rules.Definition) rules.Severity { return rules.SeverityOff }

	require.NoError(t, New(&out, FormatJSON).Rules(defs[:1], off))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "metadata-present", decoded[0]["name"])
	assert.Equal(t, "off", decoded[0]["severity"])
	assert.Equal(t, "error", decoded[0]["defaultSeverity"])
}
