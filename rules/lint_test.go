package rules

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/ts-introspect/logging"
)

func writeSources(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		paths = append(paths, path)
	}
	return paths
}

func TestLintPathsSummary(t *testing.T) {
	cfg := testConfig(t)
	var logs bytes.Buffer
	lint, err := NewLinter(NewDefaultRegistry(), cfg, logging.New(&logs, slog.LevelDebug, "json"))
	require.NoError(t, err)
	lint.Now = func() time.Time { return now }

	clean := writeSources(t, cfg.Root, map[string]string{
		"services/user.ts": documented(serviceCode, "'db/client', 'utils/log'"),
	})
	warned := writeSources(t, cfg.Root, map[string]string{
		"services/admin.ts": documented("// TODO: audit\n"+serviceCode, "'db/client', 'utils/log'"),
	})
	broken := writeSources(t, cfg.Root, map[string]string{
		"foo.ts": "const foo = 1;",
	})
	missing := filepath.Join(cfg.Root, "gone.ts")

	paths := append(append(append(clean, warned...), broken...), missing)
	sum, err := lint.LintPaths(context.Background(), paths)
	require.NoError(t, err)

	_, err = uuid.Parse(sum.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 4, sum.FilesChecked)
	assert.Equal(t, 3, sum.FilesWithIssues)
	assert.Equal(t, 2, sum.TotalErrors)
	assert.Equal(t, 1, sum.TotalWarnings)
	assert.False(t, sum.Passed)

	require.Len(t, sum.Results, 4)
	assert.False(t, sum.Results[0].HasIssues())
	assert.Equal(t, RuleUntrackedMarkers, sum.Results[1].Warnings[0].Rule)
	assert.Equal(t, RuleMetadataPresent, sum.Results[2].Errors[0].Rule)
	assert.Equal(t, RuleReadError, sum.Results[3].Errors[0].Rule)

	assert.Contains(t, logs.String(), sum.RunID)
	assert.Contains(t, logs.String(), "cannot read file")
}

func TestLintPathsStrictMode(t *testing.T) {
	cfg := testConfig(t)
	paths := writeSources(t, cfg.Root, map[string]string{
		"services/admin.ts": documented("// HACK\n"+serviceCode, "'db/client', 'utils/log'"),
	})

	lint, err := NewLinter(NewDefaultRegistry(), cfg, nil)
	require.NoError(t, err)
	lint.Now = func() time.Time { return now }

	sum, err := lint.LintPaths(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalErrors)
	assert.Equal(t, 1, sum.TotalWarnings)
	assert.True(t, sum.Passed)

	cfg.Strict = true
	sum, err = lint.LintPaths(context.Background(), paths)
	require.NoError(t, err)
	assert.False(t, sum.Passed)
}

func TestLintPathsCancelled(t *testing.T) {
	cfg := testConfig(t)
	lint, err := NewLinter(NewDefaultRegistry(), cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lint.LintPaths(ctx, []string{filepath.Join(cfg.Root, "a.ts")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinterLegacyMode(t *testing.T) {
	cfg := testConfig(t)
	lint := &Linter{Config: cfg, Legacy: true, Now: func() time.Time { return now }}

	res := lint.LintFile(filepath.Join(cfg.Root, "foo.ts"), []byte("const foo = 1;"))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, RuleMetadataPresent, res.Errors[0].Rule)
}

func TestSummarize(t *testing.T) {
	results := []LintResult{
		{File: "a.ts", Errors: []Finding{}, Warnings: []Finding{{Rule: "w", Severity: SeverityWarn}}},
		{File: "b.ts", Errors: []Finding{}, Warnings: []Finding{}},
	}
	sum := Summarize(results, false)
	assert.True(t, sum.Passed)
	assert.Equal(t, 1, sum.FilesWithIssues)

	assert.False(t, Summarize(results, true).Passed)
}
