// Package cli implements the metasnap command-line interface: extract runs
// against a live connection, replay runs against recorded fixtures, and
// validate checks canonical documents. All commands share the same config
// file, output formatter and exit-code taxonomy.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	format     string
	verbose    bool

	cfg       *Config
	formatter *OutputFormatter
	log       *slog.Logger
}

// NewRootCommand builds the metasnap command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "metasnap",
		Short: "Deterministic database metadata extraction",
		Long: `metasnap reads a fixed 22-result-set metadata contract from a live
database or a recorded fixture and renders it as a canonical JSON document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&a.format, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newExtractCommand(a))
	root.AddCommand(newReplayCommand(a))
	root.AddCommand(newValidateCommand(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.formatter = &OutputFormatter{
		Format:    a.format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   a.verbose,
	}
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
