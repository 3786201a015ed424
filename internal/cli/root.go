// Package cli implements the gotempo command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gotempo/internal/app"
	"github.com/tejashwikalptaru/gotempo/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// NewRootCommand creates the root command for the gotempo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gotempo",
		Short: "gotempo - MIDI transport and playback scheduler",
		Long: `Play Standard MIDI Files to a MIDI output with a live transport:
play, pause, seek and tempo control from the terminal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel != "" {
				if _, ok := logger.ParseLevel(opts.LogLevel); !ok {
					return fmt.Errorf("invalid log level %q", opts.LogLevel)
				}
			}
			if opts.LogFormat != "" && opts.LogFormat != "text" && opts.LogFormat != "json" {
				return fmt.Errorf("invalid log format %q: must be text or json", opts.LogFormat)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	// Add subcommands
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewPortsCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// loadConfig reads the config file, if any, and applies the global flags.
func (o *RootOptions) loadConfig(logOutput io.Writer) (app.Config, error) {
	config := app.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := app.LoadConfig(o.ConfigPath)
		if err != nil {
			return config, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		config = loaded
	}

	if o.LogLevel != "" {
		config.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		config.LogFormat = o.LogFormat
	}
	config.LogOutput = logOutput
	return config, nil
}
