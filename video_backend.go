// video_backend.go - Host display backend interface for Lumen86

/*
video_backend.go - Video Backend Interface

The screen adapter paints into whatever host surface is available through
the VideoOutput interface: an ebiten window on desktop builds, a raw-mode
terminal, or the in-memory headless backend the tests drive.

The contract is deliberately small. The adapter pushes pixels with
UpdateFrame (whole surface, used on mode switches and resizes) and
UpdateRegion (row-range blits from the differential renderers), and the
backend drives the frame pacer by invoking the registered refresh hook once
per host refresh tick. The hook runs on the backend's render callback; when
the host stops requesting frames (hidden window, suspended terminal) no hook
runs and the adapter does no work.
*/

package main

import (
	"fmt"
	"time"
)

// VideoError provides error context for backend operations.
type VideoError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

func (e *VideoError) Unwrap() error {
	return e.Err
}

type PixelFormat int

const (
	PixelFormatRGBA PixelFormat = iota
)

// DisplayConfig contains hardware-independent surface configuration.
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int // Integer scaling factor for output
	RefreshRate int // Target refresh rate in Hz
	PixelFormat PixelFormat
	VSync       bool
	Fullscreen  bool
}

// FrameSnapshot captures one complete presented frame, used by the
// screenshot path.
type FrameSnapshot struct {
	Buffer    []byte
	Width     int
	Height    int
	Format    PixelFormat
	Timestamp time.Time
}

// VideoOutput is the minimal interface display backends implement.
type VideoOutput interface {
	// Lifecycle
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	// Surface configuration and pixel delivery
	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	UpdateFrame(buffer []byte) error                           // whole RGBA surface
	UpdateRegion(x, y, width, height int, pixels []byte) error // row-aligned partial blit

	// SetRefreshHook registers the callback invoked once per host refresh
	// tick. The hook runs on the backend's render thread; at most one hook
	// is active.
	SetRefreshHook(fn func())

	// Capabilities and timing
	SupportsGraphics() bool // false on cell-only surfaces (terminal)
	GetFrameCount() uint64
	GetRefreshRate() int
	GetSnapshot() (FrameSnapshot, error)
}

// Optional capability interface. A backend that can present text rows as
// styled cell runs directly implements CellCapable; the adapter then hands
// it the repainted rows' spans instead of pixel blits.
type CellCapable interface {
	PresentRow(row int, spans []TextSpan) error
}

// InputCapable is implemented by backends that own a host event loop and
// can call back into input polling once per update.
type InputCapable interface {
	SetInputHook(fn func())
	SetCloseHandler(fn func())
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN   = iota // Pure Go ebiten window backend
	VIDEO_BACKEND_TERMINAL        // ANSI cell rendering on a raw-mode tty
	VIDEO_BACKEND_HEADLESS        // In-memory framebuffer, manual ticks
)

// NewVideoOutput creates a video output using the specified backend.
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	case VIDEO_BACKEND_TERMINAL:
		return NewTerminalOutput()
	case VIDEO_BACKEND_HEADLESS:
		return NewHeadlessOutput(), nil
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
