package service

import (
	"github.com/tejashwikalptaru/gotempo/internal/domain"
	"github.com/tejashwikalptaru/gotempo/internal/ports"
)

// BusListener publishes transport callbacks as bus events tagged with a session.
type BusListener struct {
	bus     ports.EventBus
	session domain.SessionID
}

// NewBusListener creates a listener publishing on bus.
func NewBusListener(bus ports.EventBus, session domain.SessionID) *BusListener {
	return &BusListener{bus: bus, session: session}
}

func (l *BusListener) OnPlay(position float64) {
	l.bus.Publish(domain.NewTransportPlayedEvent(l.session, position))
}

func (l *BusListener) OnPause() {
	l.bus.Publish(domain.NewTransportPausedEvent(l.session))
}

func (l *BusListener) OnPositionChanged(position float64, isPlaying bool, dir domain.Direction) {
	l.bus.Publish(domain.NewTransportPositionChangedEvent(l.session, position, isPlaying, dir))
}

func (l *BusListener) OnTempoChanged(tempo float64, isPlaying bool) {
	l.bus.Publish(domain.NewTransportTempoChangedEvent(l.session, tempo, isPlaying))
}

var _ ports.TransportListener = (*BusListener)(nil)
