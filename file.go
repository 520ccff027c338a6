package main

import (
	"os"

	"github.com/spf13/cobra"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
	"github.com/hannajonsd/ts-introspect/fingerprint"
	"github.com/hannajonsd/ts-introspect/manifest"
)

var hashWrite bool

var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "Show the dependencies a file imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		path, err := absPath(args[0])
		if err != nil {
			return err
		}
		ext, err := a.extractor()
		if err != nil {
			return err
		}
		deps, err := ext.ExtractDependencies(path, nil)
		if err != nil {
			return err
		}
		m, err := manifest.Find(a.cfg.Root, path)
		if err != nil {
			a.logger.Warn("cannot read package.json", "error", err)
			m = nil
		}
		return a.printer.Dependencies(args[0], deps, m)
	},
}

var exportsCmd = &cobra.Command{
	Use:   "exports <file>",
	Short: "Show the exported declarations of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		path, err := absPath(args[0])
		if err != nil {
			return err
		}
		ext, err := a.extractor()
		if err != nil {
			return err
		}
		exports, err := ext.ExtractExports(path, nil)
		if err != nil {
			return err
		}
		return a.printer.Exports(args[0], exports)
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Show or rewrite the content hash of a file",
	Long: `Compute the content hash of a file, excluding its __metadata block, and compare
it with the stored one. With --write the stored hash is replaced in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().BoolVar(&hashWrite, "write", false, "Rewrite the stored hash when it is stale")
	rootCmd.AddCommand(depsCmd, exportsCmd, hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return ierrors.Wrap(ierrors.FileNotFound, "cannot read file", err).WithPath(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ierrors.Wrap(ierrors.FileNotFound, "cannot read file", err).WithPath(path)
	}

	st, err := fingerprint.Check(content)
	if err != nil {
		return err
	}

	written := false
	if hashWrite && st.Stale {
		updated, err := fingerprint.Update(content)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
			return err
		}
		written = true
		a.logger.Info("content hash updated", "file", path, "hash", st.Current)
	}
	return a.printer.Hash(path, st, written)
}
