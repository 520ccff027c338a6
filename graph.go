package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hannajonsd/ts-introspect/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the module dependency graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, g, err := buildGraph(cmd)
		if err != nil {
			return err
		}
		return a.printer.Graph(g)
	},
}

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List modules no other module imports",
	Long: `List modules with no internal consumers. Modules named index and modules
matching the entryPoints patterns of the configuration are never listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, g, err := buildGraph(cmd)
		if err != nil {
			return err
		}
		return a.printer.Modules("Unused modules", g.UnusedModules())
	},
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List circular dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, g, err := buildGraph(cmd)
		if err != nil {
			return err
		}
		return a.printer.Cycles(g.FindCircularDependencies())
	},
}

var usesCmd = &cobra.Command{
	Use:   "uses <module|file>",
	Short: "List the modules a module imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, g, err := buildGraph(cmd)
		if err != nil {
			return err
		}
		module, err := a.modulePath(args[0])
		if err != nil {
			return err
		}
		return a.printer.Modules(module+" uses", g.Uses(module))
	},
}

var usedByCmd = &cobra.Command{
	Use:   "used-by <module|file>",
	Short: "List the modules importing a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, g, err := buildGraph(cmd)
		if err != nil {
			return err
		}
		module, err := a.modulePath(args[0])
		if err != nil {
			return err
		}
		return a.printer.Modules(module+" is used by", g.UsedBy(module))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd, unusedCmd, cyclesCmd, usesCmd, usedByCmd)
}

func buildGraph(cmd *cobra.Command) (*app, *graph.Graph, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	b, err := a.builder()
	if err != nil {
		return nil, nil, err
	}
	g, err := b.Build(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	for _, s := range b.Skipped() {
		a.logger.Debug("skipped file", "file", s.Path, "reason", s.Reason)
	}
	return a, g, nil
}

// modulePath accepts either a module path or a path to an existing file
func (a *app) modulePath(arg string) (string, error) {
	if _, err := os.Stat(arg); err != nil {
		return arg, nil
	}
	path, err := absPath(arg)
	if err != nil {
		return "", err
	}
	ext, err := a.extractor()
	if err != nil {
		return "", err
	}
	return ext.ModulePath(path), nil
}
