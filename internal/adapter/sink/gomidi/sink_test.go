package gomidi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/tejashwikalptaru/gotempo/internal/logger"
)

type recorder struct {
	msgs []midi.Message
	err  error
}

func (r *recorder) send(msg midi.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func TestSinkSend(t *testing.T) {
	rec := &recorder{}
	s := New(logger.NewTestLogger(), "test", rec.send)

	s.Send(midi.NoteOn(2, 60, 100))

	require.Len(t, rec.msgs, 1)
	var ch, key, vel uint8
	assert.True(t, rec.msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(2), ch)
	assert.EqualValues(t, 1, s.Sent())
	assert.Equal(t, "test", s.Name())
}

func TestSinkSwallowsErrors(t *testing.T) {
	rec := &recorder{err: errors.New("port gone")}
	s := New(logger.NewTestLogger(), "test", rec.send)

	assert.NotPanics(t, func() { s.Send(midi.NoteOn(0, 60, 100)) })
	assert.EqualValues(t, 0, s.Sent())
	assert.EqualValues(t, 1, s.Failed())
}

func TestSinkSilence(t *testing.T) {
	rec := &recorder{}
	s := New(logger.NewTestLogger(), "test", rec.send)

	s.Silence()

	require.Len(t, rec.msgs, 16)
	for i, msg := range rec.msgs {
		var ch, controller, value uint8
		require.True(t, msg.GetControlChange(&ch, &controller, &value))
		assert.Equal(t, uint8(i), ch)
		assert.Equal(t, uint8(allNotesOff), controller)
	}
}

func TestSinkClose(t *testing.T) {
	rec := &recorder{}
	s := New(logger.NewTestLogger(), "test", rec.send)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s.Send(midi.NoteOn(0, 60, 100))
	s.Silence()
	assert.Empty(t, rec.msgs)
}

func TestSinkNilSend(t *testing.T) {
	s := New(nil, "unconnected", nil)
	assert.NotPanics(t, func() { s.Send([]byte{0x90, 60, 100}) })
	assert.EqualValues(t, 0, s.Sent())
}
