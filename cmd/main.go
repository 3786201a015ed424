// Package main is the production entry point for gotempo.
//
// gotempo plays Standard MIDI Files through a real-time transport:
// - A scheduler goroutine emits due events at a scaled tempo
// - A control surface applies play, pause, seek and tempo intents
// - Reports flow back through a coalescing command queue
//
// Build:
//
//	go build -o build/gotempo ./cmd
//
// Run:
//
//	./build/gotempo play song.mid
package main

import (
	"os"

	// Register the RtMidi driver for port discovery and output
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/tejashwikalptaru/gotempo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
