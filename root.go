package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hannajonsd/ts-introspect/analyzer"
	"github.com/hannajonsd/ts-introspect/config"
	"github.com/hannajonsd/ts-introspect/extractor"
	"github.com/hannajonsd/ts-introspect/logging"
	"github.com/hannajonsd/ts-introspect/report"
	"github.com/hannajonsd/ts-introspect/rules"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	rootFlag   string
	configFlag string
	formatFlag string
	verbosity  int
	quietFlag  bool
	strictFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Enforce module metadata contracts in TypeScript and JavaScript projects",
	Long: `introspect checks that every module carries an up-to-date __metadata block
and analyzes the dependency graph the modules form.

Configuration is read from .introspect.{toml,yaml,yml,json} in the project root
and INTROSPECT_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("introspect version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file (default: .introspect.* in root)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "human", "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress all logs")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "Treat warnings as failures")
}

// exitError ends the process with status 1 without printing a message
type exitError struct{}

func (*exitError) Error() string { return "exit status 1" }

// app is the state shared by every command of one invocation
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *report.Printer
}

func newApp(cmd *cobra.Command) (*app, error) {
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(rootFlag, configFlag)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = strictFlag
	}

	level := logging.LevelFromString(cfg.Logging.Level)
	if verbosity > 0 || quietFlag {
		level = logging.LevelFromVerbosity(verbosity, quietFlag)
	}
	logger := logging.New(os.Stderr, level, cfg.Logging.Format)
	logger.Debug("configuration loaded", "root", cfg.Root, "strict", cfg.Strict)

	return &app{
		cfg:     cfg,
		logger:  logger,
		printer: report.New(cmd.OutOrStdout(), format),
	}, nil
}

func (a *app) extractor() (*extractor.Extractor, error) {
	opts := []extractor.Option{extractor.WithLogger(a.logger)}
	if a.cfg.CacheSize > 0 {
		opts = append(opts, extractor.WithCache(a.cfg.CacheSize))
	}
	return extractor.New(a.cfg.Root, opts...)
}

func (a *app) builder() (*analyzer.Builder, error) {
	ext, err := a.extractor()
	if err != nil {
		return nil, err
	}
	return analyzer.NewBuilder(a.cfg, ext, a.logger)
}

// registry returns the built-in rules plus configured plugins, frozen
func (a *app) registry() (*rules.Registry, error) {
	reg := rules.NewDefaultRegistry()
	for _, path := range a.cfg.Plugins {
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.Root, path)
		}
		names, err := rules.LoadPlugin(reg, path)
		if err != nil {
			return nil, err
		}
		a.logger.Info("plugin loaded", "path", path, "rules", names)
	}
	reg.Freeze()
	return reg, nil
}

// absPath resolves a command-line path against the working directory
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	return abs, nil
}
