package ports

import (
	"time"

	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// TransportListener receives transport callbacks.
//
// A control surface calls its listener on the interactive goroutine only,
// and only when a command asked for the user-visible action.
type TransportListener interface {
	// OnPlay is called when the transport starts playing. position is normalized 0.0 to 1.0.
	OnPlay(position float64)

	// OnPause is called when the transport pauses.
	OnPause()

	// OnPositionChanged is called when the position moves. dir is -1 or 1 for the
	// stepping controls and 0 for absolute moves.
	OnPositionChanged(position float64, isPlaying bool, dir domain.Direction)

	// OnTempoChanged is called when the tempo control moves.
	OnTempoChanged(tempo float64, isPlaying bool)
}

// MessageSender accepts commands from another goroutine without blocking.
type MessageSender interface {
	SendMessage(cmd domain.Command)
}

// Clock supplies wall-clock time to the scheduler.
type Clock interface {
	Now() time.Time
}
