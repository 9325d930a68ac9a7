// Package commands implements the forge command line
package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-sub000/internal/cli/config"
	"github.com/dosanma1/forge-sub000/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	noColor    bool
}

// loadConfig prints a configuration error block to errOut on failure
func (g *globalOptions) loadConfig(errOut io.Writer) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(config.Options{File: g.configFile})
	if err != nil {
		return nil, report(errOut, ui.ConfigError(err.Error(), color.NoColor), err)
	}
	return cfg, nil
}

// reportedError has already been printed in its ui form
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// report prints msg to w and marks err as already shown
func report(w io.Writer, msg string, err error) error {
	fmt.Fprint(w, msg)
	return &reportedError{err: err}
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Map Go models to JSON:API documents",
		Long: color.CyanString(`forge - JSON:API resource mapping

forge turns registered Go models into JSON:API documents.
Each encoding mode decides whether ids and timestamps are sent
and whether related resources are side-loaded into "included".`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Config file (default: ./forge.yaml)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newEncodeCommand(g))
	rootCmd.AddCommand(newServeCommand(g))
	rootCmd.AddCommand(newPresetsCommand())
	rootCmd.AddCommand(newTypesCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			kv.AddRow("forge version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
