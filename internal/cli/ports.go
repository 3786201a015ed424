package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/gotempo/internal/adapter/sink/gomidi"
)

// PortsOptions holds flags for the ports command.
type PortsOptions struct {
	*RootOptions

	// List overrides port discovery (for testing).
	List func() []string
}

// NewPortsCommand creates the ports command.
func NewPortsCommand(rootOpts *RootOptions) *cobra.Command {
	return NewPortsCommandWithOptions(&PortsOptions{RootOptions: rootOpts})
}

// NewPortsCommandWithOptions creates the ports command around opts.
func NewPortsCommandWithOptions(opts *PortsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI output ports",
		Long: `List the MIDI output ports the driver can see. The index or any
part of a name can be passed to play --port.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := opts.List
			if list == nil {
				list = gomidi.ListPorts
			}

			names := list()
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "no MIDI output ports")
				return nil
			}
			for i, name := range names {
				fmt.Fprintf(out, "%d: %s\n", i, name)
			}
			return nil
		},
	}
}
