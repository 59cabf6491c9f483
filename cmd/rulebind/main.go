// Package main provides the rulebind binary: inspection tooling for the
// artifacts generated from rule definitions.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/rulebind/internal/config"
	"github.com/kingrea/rulebind/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "rulebind"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	projectDir string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Resolve generated rule artifacts by naming convention",
		Long: `rulebind locates the artifacts generated for a validator (compiled rule
logic plus parsed property, context and lookup dependencies) using the
same naming convention the evaluation engine relies on.

Missing artifacts or members are reported as absent, never as errors.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.projectDir, "project", ".", "Project directory holding .rulebind/config.yaml")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		initCmd(flags),
		namesCmd(),
		depsCmd(flags),
		browseCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .rulebind/ with a default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(flags.projectDir)
			if err != nil {
				return fmt.Errorf("resolve project dir: %w", err)
			}
			if err := config.InitDir(dir); err != nil {
				return fmt.Errorf("init %s: %w", config.ProjectDirName, err)
			}
			cfg, err := config.NewConfig(dir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.LogsDir(), cfg.LogLevel())
			if err != nil {
				return err
			}
			defer logger.Close()
			logger.Printf("Initialized %s (namespace %s, artifact dirs %v)", cfg.StateDir, cfg.Namespace(), cfg.ArtifactDirs())
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", filepath.Join(dir, config.ProjectDirName))
			return nil
		},
	}
}
