// screen_adapter.go - Screen adapter connecting the emulator core to the host display

/*
screen_adapter.go - Screen Adapter

The screen adapter is the host-facing face of the emulated video controller.
The producer pushes discrete updates over the bus (put-char, cursor moves,
mode and size changes, graphics fill notifications); the adapter folds them
into the text grid or the pixel buffer and reconciles the host surface once
per refresh tick.

Two mutually exclusive rendering modes share the adapter. Text mode renders
the character grid through the differential row renderer; graphics mode
blits the dirty row range of the producer-filled pixel buffer. Switching
mode only toggles which retained surface is presented - neither mode's
buffer is cleared, so toggling back never requires the producer to resend
state.

Frame pacing is the backend's job: the adapter registers onRefreshTick as
the backend's refresh hook and performs no scheduling of its own. When the
host stops delivering ticks (hidden window) the adapter goes idle; dirty
state simply accumulates and coalesces until the next tick.

Bus interface (producer side):

	screen-set-mode               (graphical bool)
	screen-set-size-text          (cols, rows)
	screen-set-size-graphical     (width, height)
	screen-put-char               (row, col, code, bg, fg)
	screen-update-cursor          (row, col)
	screen-update-cursor-scanline (start, end)
	screen-fill-buffer-end        (minOffset, maxOffset)

and outbound:

	screen-request-fill-buffer    once per tick while in graphics mode
	screen-pixel-buffer           ([]byte view, width, height) after a
	                              graphics resize, announcing the shared
	                              buffer the producer writes into
*/

package main

import (
	"image"
	"image/png"
	"os"
	"os/exec"
	"runtime"
)

type ScreenMode int

const (
	ModeText ScreenMode = iota
	ModeGraphics
)

// Cursor blink phase flips every 30 ticks - 500ms at the nominal 60Hz.
const cursorBlinkTicks = 30

type ScreenAdapter struct {
	bus    *MessageBus
	output VideoOutput

	mode   ScreenMode
	grid   *TextGrid
	text   *TextRenderer
	pixels *PixelBuffer

	scale     int
	blinkOn   bool
	tickCount uint64
}

func NewScreenAdapter(bus *MessageBus, output VideoOutput, scale int) *ScreenAdapter {
	if scale < 1 {
		scale = 1
	}
	sa := &ScreenAdapter{
		bus:     bus,
		output:  output,
		mode:    ModeText,
		grid:    NewTextGrid(),
		scale:   scale,
		blinkOn: true,
	}
	sa.text = NewTextRenderer(sa.grid)
	sa.pixels = NewPixelBuffer(320, 200)

	bus.Register("screen-set-mode", func(args []any) {
		sa.SetMode(argBool(args, 0))
	})
	bus.Register("screen-set-size-text", func(args []any) {
		sa.SetSizeText(argInt(args, 0), argInt(args, 1))
	})
	bus.Register("screen-set-size-graphical", func(args []any) {
		sa.SetSizeGraphical(argInt(args, 0), argInt(args, 1))
	})
	bus.Register("screen-put-char", func(args []any) {
		sa.grid.PutChar(argInt(args, 0), argInt(args, 1),
			uint8(argInt(args, 2)), argInt(args, 3), argInt(args, 4))
	})
	bus.Register("screen-update-cursor", func(args []any) {
		sa.grid.UpdateCursor(argInt(args, 0), argInt(args, 1))
	})
	bus.Register("screen-update-cursor-scanline", func(args []any) {
		sa.grid.UpdateCursorScanline(argInt(args, 0), argInt(args, 1))
	})
	bus.Register("screen-fill-buffer-end", func(args []any) {
		sa.pixels.MarkRange(argInt(args, 0), argInt(args, 1))
	})
	bus.Register("screen-make-screenshot", func([]any) {
		sa.Screenshot()
	})

	output.SetRefreshHook(sa.onRefreshTick)
	sa.configureOutput()
	return sa
}

func (sa *ScreenAdapter) Mode() ScreenMode {
	return sa.mode
}

// SetMode toggles which retained surface is visible, resizing the backend
// to the newly active mode's dimensions. Neither mode's buffer is recomputed,
// so toggling back never requires the producer to resend state. Setting the
// current mode again is a no-op.
func (sa *ScreenAdapter) SetMode(graphical bool) {
	mode := ModeText
	if graphical {
		mode = ModeGraphics
	}
	if mode == sa.mode {
		return
	}
	sa.mode = mode
	sa.configureOutput()
}

// SetSizeText resizes the character grid. Identical dimensions are a no-op,
// which is what prevents repaint storms from redundant producer sizing.
func (sa *ScreenAdapter) SetSizeText(cols, rows int) {
	if !sa.grid.Resize(cols, rows) {
		return
	}
	cols, rows = sa.grid.Size()
	sa.text.Resize(cols, rows)
	if sa.mode == ModeText {
		sa.configureOutput()
	}
}

// SetSizeGraphical reallocates the shared pixel buffer, switches the visible
// surface to graphics, and announces the producer's write view on the bus.
func (sa *ScreenAdapter) SetSizeGraphical(width, height int) {
	sa.pixels.Resize(width, height)
	sa.mode = ModeGraphics
	sa.configureOutput()
	w, h := sa.pixels.Size()
	sa.bus.Send("screen-pixel-buffer", sa.pixels.ProducerView(), w, h)
}

// onRefreshTick is the frame pacer: the backend calls it once per host
// refresh. Graphics mode asks the producer to fill the current frame - a
// synchronous request over the bus, so the fill and its dirty-range
// notification complete before the blit - then copies out only the dirty
// rows. Text mode repaints whatever rows are flagged. The backend re-arms
// the hook by construction; there is nothing to schedule here.
func (sa *ScreenAdapter) onRefreshTick() {
	sa.tickCount++
	if sa.tickCount%cursorBlinkTicks == 0 {
		sa.blinkOn = !sa.blinkOn
		if sa.grid.CursorVisible() {
			row, _ := sa.grid.CursorPos()
			sa.grid.markDirty(row)
		}
	}

	switch sa.mode {
	case ModeGraphics:
		sa.bus.Send("screen-request-fill-buffer")
		if rowStart, rowCount, rows, ok := sa.pixels.FlushRows(); ok {
			w, _ := sa.pixels.Size()
			_ = sa.output.UpdateRegion(0, rowStart, w, rowCount, rows)
		}
	case ModeText:
		painted := sa.text.RepaintDirty(sa.drawCursor())
		if cells, ok := sa.output.(CellCapable); ok {
			for _, row := range painted {
				_ = cells.PresentRow(row, sa.text.RowSpans(row))
			}
			return
		}
		for _, row := range painted {
			_ = sa.output.UpdateRegion(0, row*textCellHeight,
				sa.text.rowWidth, textCellHeight, sa.text.RowPixels(row))
		}
	}
}

func (sa *ScreenAdapter) drawCursor() bool {
	return sa.grid.CursorVisible() && sa.blinkOn
}

// configureOutput sizes the backend surface for the active mode and
// presents the retained buffer.
func (sa *ScreenAdapter) configureOutput() {
	w, h := sa.activeSize()
	_ = sa.output.SetDisplayConfig(DisplayConfig{
		Width:       w,
		Height:      h,
		Scale:       sa.scale,
		PixelFormat: PixelFormatRGBA,
		VSync:       true,
	})
	sa.presentActiveSurface()
}

func (sa *ScreenAdapter) activeSize() (w, h int) {
	if sa.mode == ModeGraphics {
		return sa.pixels.Size()
	}
	return sa.text.PixelSize()
}

// presentActiveSurface pushes the active mode's retained buffer wholesale.
// Used on mode switches and resizes; steady-state updates go through the
// differential paths.
func (sa *ScreenAdapter) presentActiveSurface() {
	if sa.mode == ModeGraphics {
		_ = sa.output.UpdateFrame(sa.pixels.ProducerView())
		return
	}
	_ = sa.output.UpdateFrame(sa.text.Surface())
}

// Screenshot serializes the presented surface to a PNG in the temp
// directory and opens it with the platform viewer. Strictly best-effort:
// every failure is swallowed, a screenshot is never worth disturbing the
// machine for.
func (sa *ScreenAdapter) Screenshot() {
	snap, err := sa.output.GetSnapshot()
	if err != nil || snap.Width <= 0 || snap.Height <= 0 {
		return
	}
	img := &image.RGBA{
		Pix:    snap.Buffer,
		Stride: snap.Width * 4,
		Rect:   image.Rect(0, 0, snap.Width, snap.Height),
	}
	f, err := os.CreateTemp("", "lumen86-*.png")
	if err != nil {
		return
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return
	}
	f.Close()
	openWithViewer(f.Name())
}

func openWithViewer(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	_ = cmd.Start()
}
