package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hannajonsd/ts-introspect/rules"
)

var lintLegacy bool

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check module metadata against the rule set",
	Long: `Run every enabled rule over the given files or directories, or over the whole
project when no path is given. Exits with status 1 when errors are found, or
when warnings are found in strict mode.

Examples:
  introspect lint
  introspect lint src/services
  introspect lint --strict --format json`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintLegacy, "legacy", false, "Use the fixed rule table and ignore plugins")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	files, err := a.lintTargets(cmd.Context(), args)
	if err != nil {
		return err
	}

	linter, err := a.linter()
	if err != nil {
		return err
	}
	linter.Legacy = lintLegacy

	sum, err := linter.LintPaths(cmd.Context(), files)
	if err != nil {
		return err
	}
	if err := a.printer.Lint(sum); err != nil {
		return err
	}
	if !sum.Passed {
		return &exitError{}
	}
	return nil
}

func (a *app) linter() (*rules.Linter, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	return rules.NewLinter(reg, a.cfg, a.logger)
}

// lintTargets expands args to files. Directories are filtered through the
// project's include, exclude and ignore rules; files named explicitly are
// always checked.
func (a *app) lintTargets(ctx context.Context, args []string) ([]string, error) {
	b, err := a.builder()
	if err != nil {
		return nil, err
	}
	project, err := b.FindSourceFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return project, nil
	}

	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, arg := range args {
		path, err := absPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			add(path)
			continue
		}
		prefix := path + string(filepath.Separator)
		for _, f := range project {
			if path == a.cfg.Root || strings.HasPrefix(f, prefix) {
				add(f)
			}
		}
	}
	return files, nil
}
