// speaker.go - PC speaker square wave output

/*
speaker.go - PC Speaker

Renders the guest's programmable interval timer channel 2 as a square wave
through OTO. The core drives it over two bus channels: pcspeaker-enable(bool)
gates the output (port 0x61 bits 0-1), pcspeaker-update(freq) reprograms the
tone frequency in Hz.

Read() is OTO's pull path and runs on the audio thread, so the phase state
lives there and the control surface stores into atomics.
*/

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	speakerSampleRate = 48000
	speakerVolume     = 0.25
)

type Speaker struct {
	ctx    *oto.Context
	player *oto.Player

	enabled atomic.Bool
	freq    atomic.Uint64 // math.Float64bits

	phase   float64
	started bool
	mutex   sync.Mutex
}

func NewSpeaker(bus *MessageBus) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   speakerSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("speaker: %w", err)
	}
	<-ready

	sp := &Speaker{ctx: ctx}
	sp.freq.Store(math.Float64bits(440))

	bus.Register("pcspeaker-enable", func(args []any) {
		sp.SetEnabled(argBool(args, 0))
	})
	bus.Register("pcspeaker-update", func(args []any) {
		sp.SetFrequency(float64(argInt(args, 0)))
	})

	sp.player = ctx.NewPlayer(sp)
	return sp, nil
}

func (sp *Speaker) SetEnabled(on bool) {
	sp.enabled.Store(on)
}

// SetFrequency reprograms the tone in Hz. Out-of-range values mute instead
// of aliasing.
func (sp *Speaker) SetFrequency(hz float64) {
	if hz < 20 || hz > speakerSampleRate/2 {
		sp.enabled.Store(false)
		return
	}
	sp.freq.Store(math.Float64bits(hz))
}

// Read generates float32 LE square wave samples. Hot path, lock-free.
func (sp *Speaker) Read(p []byte) (int, error) {
	numSamples := len(p) / 4

	if !sp.enabled.Load() {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	step := math.Float64frombits(sp.freq.Load()) / speakerSampleRate
	for i := 0; i < numSamples; i++ {
		var s float32
		if sp.phase < 0.5 {
			s = speakerVolume
		} else {
			s = -speakerVolume
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
		sp.phase += step
		if sp.phase >= 1 {
			sp.phase -= 1
		}
	}
	return numSamples * 4, nil
}

func (sp *Speaker) Start() {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	if !sp.started && sp.player != nil {
		sp.player.Play()
		sp.started = true
	}
}

func (sp *Speaker) Close() {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	if sp.player != nil {
		sp.player.Close()
		sp.player = nil
	}
	sp.started = false
}

func (sp *Speaker) IsStarted() bool {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()
	return sp.started
}
