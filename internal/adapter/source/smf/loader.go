// Package smf builds in-memory event sources from Standard MIDI Files.
package smf

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tejashwikalptaru/gotempo/internal/adapter/source/memory"
	"github.com/tejashwikalptaru/gotempo/internal/domain"
)

// Info describes a loaded file.
type Info struct {
	Path     string
	Tracks   int
	Events   int     // playable events kept in the sequence
	Duration float64 // seconds to the last note on or off
}

// String renders the info line shown next to the transport.
func (i Info) String() string {
	return fmt.Sprintf("%s: tracks=%d, events=%d, dur=%.3fs", i.Path, i.Tracks, i.Events, i.Duration)
}

// LoadFile reads path and merges all tracks into a single time-ordered
// sequence of channel messages. Meta and sysex events are dropped. The
// sequence ends at the last note on or off, which may be earlier than the
// last kept event.
func LoadFile(path string) (*memory.Sequence, Info, error) {
	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, Info{}, domain.NewSourceError("read", path, err)
	}

	seq, info, err := FromSMF(file)
	if err != nil {
		return nil, Info{}, domain.NewSourceError("convert", path, err)
	}
	info.Path = path
	return seq, info, nil
}

// FromSMF converts a decoded file into a sequence.
func FromSMF(file *smf.SMF) (*memory.Sequence, Info, error) {
	seconds, err := tickConverter(file)
	if err != nil {
		return nil, Info{}, err
	}

	type stamped struct {
		abs   int64
		event domain.Event
	}

	var merged []stamped
	for _, track := range file.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			if !isChannelMessage(ev.Message) {
				continue
			}
			payload := make([]byte, len(ev.Message))
			copy(payload, ev.Message)
			merged = append(merged, stamped{
				abs:   abs,
				event: domain.Event{Time: seconds(abs), Payload: payload},
			})
		}
	}

	// Merge by tick so tracks interleave exactly; ties keep track order.
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].abs < merged[j].abs })

	events := make([]domain.Event, len(merged))
	var duration float64
	for i, s := range merged {
		events[i] = s.event
		if isNoteOnOrOff(s.event.Payload) && s.event.Time > duration {
			duration = s.event.Time
		}
	}

	info := Info{
		Tracks:   len(file.Tracks),
		Events:   len(events),
		Duration: duration,
	}
	return memory.NewSequence(events, memory.WithEndTime(duration)), info, nil
}

// tickConverter returns a function mapping absolute ticks to seconds for
// the file's time format.
func tickConverter(file *smf.SMF) (func(int64) float64, error) {
	switch tf := file.TimeFormat.(type) {
	case smf.MetricTicks:
		return func(abs int64) float64 {
			return float64(file.TimeAt(abs)) / 1e6
		}, nil
	case smf.TimeCode:
		perSecond := float64(tf.FramesPerSecond) * float64(tf.SubFrames)
		if perSecond <= 0 {
			return nil, fmt.Errorf("invalid SMPTE time format %v", tf)
		}
		return func(abs int64) float64 {
			return float64(abs) / perSecond
		}, nil
	default:
		return nil, fmt.Errorf("unsupported time format %v", file.TimeFormat)
	}
}

// isChannelMessage reports whether msg carries a channel voice status byte.
func isChannelMessage(msg smf.Message) bool {
	return len(msg) > 0 && msg[0] >= 0x80 && msg[0] < 0xF0
}

func isNoteOnOrOff(payload []byte) bool {
	var ch, key, vel uint8
	msg := midi.Message(payload)
	return msg.GetNoteStart(&ch, &key, &vel) || msg.GetNoteEnd(&ch, &key)
}
