package domain

import "fmt"

// CommandKind tags a transport command.
type CommandKind int

const (
	// CommandSetPlaying starts or resumes playback
	CommandSetPlaying CommandKind = iota

	// CommandSetPausing freezes playback
	CommandSetPausing

	// CommandSetPosition moves the playback position
	CommandSetPosition

	// CommandSetTempo changes the playback rate
	CommandSetTempo
)

// String returns the wire name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandSetPlaying:
		return "SetPlaying"
	case CommandSetPausing:
		return "SetPausing"
	case CommandSetPosition:
		return "SetPosition"
	case CommandSetTempo:
		return "SetTempo"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is the logical wire record exchanged between the control surface
// and the scheduler. Commands are values and are never mutated after enqueue.
//
// The meaning of Value depends on the direction: toward the scheduler a
// SetPosition carries absolute seconds and SetTempo a rate ratio; toward the
// control surface SetPosition carries a normalized position and SetTempo a
// display tempo.
type Command struct {
	Kind  CommandKind
	Value float64
	Int   int

	// Trigger asks the receiver to invoke the user-visible callback instead
	// of syncing its display state silently
	Trigger bool

	// Seq is assigned by the queue on enqueue
	Seq uint64
}

// NewCommand creates a command with the given payload.
func NewCommand(kind CommandKind, value float64, i int, trigger bool) Command {
	return Command{
		Kind:    kind,
		Value:   value,
		Int:     i,
		Trigger: trigger,
	}
}

// String formats the command for logs and traces.
func (c Command) String() string {
	return fmt.Sprintf("#%d %s(%.4g, %d, %t)", c.Seq, c.Kind, c.Value, c.Int, c.Trigger)
}
