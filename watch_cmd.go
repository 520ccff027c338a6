package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hannajonsd/ts-introspect/analyzer"
	"github.com/hannajonsd/ts-introspect/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-lint files as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		linter, err := a.linter()
		if err != nil {
			return err
		}

		matcher := analyzer.NewMatcher(a.cfg.Root, a.cfg.Include, a.cfg.Exclude)
		w, err := watch.New(a.cfg.Root, matcher, watch.WithDebounce(watchDebounce), watch.WithLogger(a.logger))
		if err != nil {
			return err
		}

		a.logger.Info("watching for changes", "root", a.cfg.Root)
		return w.Run(cmd.Context(), func(ctx context.Context, files []string) error {
			sum, err := linter.LintPaths(ctx, files)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			return a.printer.Lint(sum)
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-linting")
	rootCmd.AddCommand(watchCmd)
}
