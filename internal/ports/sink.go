package ports

// OutputSink receives emitted event payloads.
//
// Send is fire-and-forget: delivery failures are handled inside the sink and
// never reported back to the scheduler.
type OutputSink interface {
	Send(payload []byte)
}

// Silencer is implemented by sinks that can release sounding notes, for
// example by sending all-notes-off on every channel.
type Silencer interface {
	Silence()
}
