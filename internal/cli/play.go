package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gotempo/internal/app"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
	"github.com/tejashwikalptaru/gotempo/internal/service"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Port     string
	Tempo    float64
	Headless bool
	Stats    bool
	NoOutput bool

	// Sink replaces the MIDI output (for testing).
	Sink ports.OutputSink
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return NewPlayCommandWithOptions(&PlayOptions{RootOptions: rootOpts})
}

// NewPlayCommandWithOptions creates the play command around opts.
func NewPlayCommandWithOptions(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file.mid>",
		Short: "Play a Standard MIDI File",
		Long: `Play a Standard MIDI File to a MIDI output port.

Interactive keys: space/p play-pause, left/right step, home/end jump,
+/- tempo, q quit. With --headless the file plays once from start to end.

Example:
  gotempo play song.mid
  gotempo play --port "IAC" --tempo 90 song.mid
  gotempo play --headless --stats song.mid`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "output port name or index (default: first port)")
	cmd.Flags().Float64Var(&opts.Tempo, "tempo", 0, "initial tempo on the dial (default from config)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "play once without the terminal UI")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print scheduler statistics when done")
	cmd.Flags().BoolVar(&opts.NoOutput, "no-output", false, "run without a MIDI output")

	return cmd
}

func runPlay(cmd *cobra.Command, opts *PlayOptions, path string) error {
	config, err := opts.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.Port != "" {
		config.OutputPort = opts.Port
	}
	if opts.Tempo > 0 {
		config.Tempo.Initial = opts.Tempo
	}
	if opts.NoOutput {
		config.NoOutput = true
	}
	config.TestSink = opts.Sink

	application, err := app.NewApplication(config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer func() {
		if shutdownErr := application.Shutdown(); shutdownErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "shutdown: %v\n", shutdownErr)
		}
	}()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := application.OpenFile(ctx, path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open "+path, err)
	}

	if opts.Headless {
		err = application.RunHeadless(ctx, session)
	} else {
		err = application.RunInteractive(ctx, session, filepath.Base(path))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "playback failed", err)
	}

	if opts.Stats {
		printStats(cmd.OutOrStdout(), session.Scheduler().Stats())
	}
	return nil
}

func printStats(w io.Writer, stats service.SchedulerStats) {
	fmt.Fprintf(w, "ticks:          %d\n", stats.Ticks)
	fmt.Fprintf(w, "commands:       %d\n", stats.Commands)
	fmt.Fprintf(w, "events sent:    %d\n", stats.EventsSent)
	fmt.Fprintf(w, "events skipped: %d\n", stats.EventsSkipped)
	fmt.Fprintf(w, "events dropped: %d\n", stats.EventsDropped)
	fmt.Fprintf(w, "reports:        %d\n", stats.Reports)
}
