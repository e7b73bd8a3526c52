// video_backend_term.go - Terminal video backend

/*
video_backend_term.go - Terminal Backend

Renders text mode straight onto the controlling terminal. The differential
renderer already reduces each repainted row to color-coalesced spans, and
those map one-to-one onto ANSI SGR runs, so the terminal sees exactly one
attribute change per span. Graphics mode has no cell representation and is
reported as unsupported; the adapter keeps blitting into the void and the
machine stays alive, which is the intended availability-over-fidelity
tradeoff.

Refresh pacing comes from a coarse ticker rather than a vsync signal - a
terminal has no display cadence to follow.
*/

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const terminalRefreshRate = 30

type TerminalOutput struct {
	out      *os.File
	fd       int
	oldState *term.State

	mu          sync.Mutex
	config      DisplayConfig
	refreshHook func()
	started     bool
	frameCount  uint64
	done        chan struct{}
	stopOnce    sync.Once
}

func NewTerminalOutput() (VideoOutput, error) {
	return &TerminalOutput{
		out: os.Stdout,
		fd:  int(os.Stdin.Fd()),
	}, nil
}

func (to *TerminalOutput) Start() error {
	to.mu.Lock()
	defer to.mu.Unlock()
	if to.started {
		return nil
	}

	// Raw mode disables line buffering and echo; the emulated machine owns
	// the screen until Stop restores the state.
	oldState, err := term.MakeRaw(to.fd)
	if err != nil {
		return &VideoError{Operation: "terminal setup", Details: "failed to set raw mode", Err: err}
	}
	to.oldState = oldState
	fmt.Fprint(to.out, "\x1b[?25l\x1b[2J") // hide cursor, clear screen

	to.done = make(chan struct{})
	to.started = true

	go func() {
		ticker := time.NewTicker(time.Second / terminalRefreshRate)
		defer ticker.Stop()
		for {
			select {
			case <-to.done:
				return
			case <-ticker.C:
				to.mu.Lock()
				hook := to.refreshHook
				to.frameCount++
				to.mu.Unlock()
				if hook != nil {
					hook()
				}
			}
		}
	}()
	return nil
}

func (to *TerminalOutput) Stop() error {
	to.mu.Lock()
	defer to.mu.Unlock()
	if !to.started {
		return nil
	}
	to.started = false
	to.stopOnce.Do(func() { close(to.done) })
	fmt.Fprint(to.out, "\x1b[0m\x1b[?25h\x1b[2J\x1b[H") // reset, show cursor
	if to.oldState != nil {
		_ = term.Restore(to.fd, to.oldState)
		to.oldState = nil
	}
	return nil
}

func (to *TerminalOutput) Close() error {
	return to.Stop()
}

func (to *TerminalOutput) IsStarted() bool {
	to.mu.Lock()
	defer to.mu.Unlock()
	return to.started
}

func (to *TerminalOutput) SetDisplayConfig(config DisplayConfig) error {
	to.mu.Lock()
	to.config = config
	to.mu.Unlock()
	return nil
}

func (to *TerminalOutput) GetDisplayConfig() DisplayConfig {
	to.mu.Lock()
	defer to.mu.Unlock()
	return to.config
}

// UpdateFrame and UpdateRegion carry pixels, which a cell surface cannot
// show. They succeed as no-ops so mode switches stay harmless.
func (to *TerminalOutput) UpdateFrame([]byte) error {
	return nil
}

func (to *TerminalOutput) UpdateRegion(int, int, int, int, []byte) error {
	return nil
}

func (to *TerminalOutput) SetRefreshHook(fn func()) {
	to.mu.Lock()
	to.refreshHook = fn
	to.mu.Unlock()
}

func (to *TerminalOutput) SupportsGraphics() bool {
	return false
}

func (to *TerminalOutput) GetFrameCount() uint64 {
	to.mu.Lock()
	defer to.mu.Unlock()
	return to.frameCount
}

func (to *TerminalOutput) GetRefreshRate() int {
	return terminalRefreshRate
}

func (to *TerminalOutput) GetSnapshot() (FrameSnapshot, error) {
	return FrameSnapshot{}, &VideoError{Operation: "snapshot", Details: "terminal surface has no pixels"}
}

// PresentRow implements CellCapable: one cursor move, then one SGR run per
// span.
func (to *TerminalOutput) PresentRow(row int, spans []TextSpan) error {
	_, err := to.out.WriteString(renderRowANSI(row, spans))
	return err
}

// renderRowANSI builds the escape sequence for one row. Split out pure for
// testing.
func renderRowANSI(row int, spans []TextSpan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\x1b[%d;1H", row+1)
	for _, span := range spans {
		br, bg, bb := colorRGB(span.Bg)
		fr, fg, fb := colorRGB(span.Fg)
		fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm\x1b[38;2;%d;%d;%dm", br, bg, bb, fr, fg, fb)
		if span.Cursor {
			sb.WriteString("\x1b[7m") // reverse video stands in for the cursor block
		}
		sb.WriteString(string(span.Glyphs))
		if span.Cursor {
			sb.WriteString("\x1b[27m")
		}
	}
	sb.WriteString("\x1b[0m")
	return sb.String()
}
