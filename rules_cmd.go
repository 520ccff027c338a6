package main

import (
	"github.com/spf13/cobra"

	"github.com/hannajonsd/ts-introspect/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available rules and their effective severity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		reg, err := a.registry()
		if err != nil {
			return err
		}
		return a.printer.Rules(reg.List(), func(def rules.Definition) rules.Severity {
			return rules.EffectiveSeverity(a.cfg, def)
		})
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
