// screen_adapter_test.go - End-to-end adapter tests on the headless backend

package main

import "testing"

func newTestScreen(t *testing.T) (*MessageBus, *ScreenAdapter, *HeadlessOutput) {
	t.Helper()
	bus := NewMessageBus()
	out := NewHeadlessOutput()
	sa := NewScreenAdapter(bus, out, 1)
	if err := out.Start(); err != nil {
		t.Fatalf("start headless output: %v", err)
	}
	return bus, sa, out
}

func TestAdapterStartsInTextMode(t *testing.T) {
	_, sa, out := newTestScreen(t)

	if sa.Mode() != ModeText {
		t.Fatal("expected text mode at startup")
	}
	cfg := out.GetDisplayConfig()
	if cfg.Width != 80*textCellWidth || cfg.Height != 25*textCellHeight {
		t.Fatalf("expected %dx%d display, got %dx%d",
			80*textCellWidth, 25*textCellHeight, cfg.Width, cfg.Height)
	}
}

func TestPutCharReachesPresentedFrame(t *testing.T) {
	bus, _, out := newTestScreen(t)

	// Move the cursor off row 0 so its marker does not cover the cell.
	bus.Send("screen-update-cursor", 24, 79)
	bus.Send("screen-put-char", 0, 0, int(' '), 0x00AA00, 0xFFFFFF)

	out.Tick()

	r, g, b, a := out.FramePixel(0, 0)
	if r != 0x00 || g != 0xAA || b != 0x00 || a != 0xFF {
		t.Fatalf("expected presented background (00,AA,00,FF), got (%02X,%02X,%02X,%02X)", r, g, b, a)
	}
}

func TestTickWithoutChangesPresentsNothingNew(t *testing.T) {
	bus, _, out := newTestScreen(t)

	bus.Send("screen-update-cursor", 24, 79)
	bus.Send("screen-put-char", 0, 0, int(' '), 0x0000AA, 0xFFFFFF)
	out.Tick()

	// Clear the frame behind the adapter's back; a clean tick must not
	// repaint anything over it.
	for i := range out.frameBuffer {
		out.frameBuffer[i] = 0
	}
	out.Tick()

	if _, _, b, _ := out.FramePixel(0, 0); b != 0 {
		t.Fatal("expected no repaint on a tick with no dirty rows")
	}
}

func TestGraphicsResizeAnnouncesSharedBuffer(t *testing.T) {
	bus, sa, _ := newTestScreen(t)

	var view []byte
	var w, h int
	bus.Register("screen-pixel-buffer", func(args []any) {
		view = argBytes(args, 0)
		w = argInt(args, 1)
		h = argInt(args, 2)
	})

	bus.Send("screen-set-size-graphical", 320, 200)

	if sa.Mode() != ModeGraphics {
		t.Fatal("expected graphical resize to switch to graphics mode")
	}
	if w != 320 || h != 200 {
		t.Fatalf("expected announced size 320x200, got %dx%d", w, h)
	}
	if len(view) != 320*200*4 {
		t.Fatalf("expected shared view of %d bytes, got %d", 320*200*4, len(view))
	}
}

func TestGraphicsFillBlitsDirtyRows(t *testing.T) {
	bus, _, out := newTestScreen(t)

	var view []byte
	bus.Register("screen-pixel-buffer", func(args []any) {
		view = argBytes(args, 0)
	})
	bus.Send("screen-set-size-graphical", 320, 200)

	// The producer answers each frame's fill request by writing pixels
	// and reporting the touched range.
	bus.Register("screen-request-fill-buffer", func([]any) {
		view[5*4] = 0xAA // red channel of pixel 5, row 0
		view[5*4+3] = 0xFF
		bus.Send("screen-fill-buffer-end", 0, 319)
	})

	out.Tick()

	r, _, _, a := out.FramePixel(5, 0)
	if r != 0xAA || a != 0xFF {
		t.Fatalf("expected blitted pixel (AA,..,FF), got (%02X,..,%02X)", r, a)
	}
}

func TestModeToggleRestoresRetainedSurface(t *testing.T) {
	bus, sa, out := newTestScreen(t)

	var view []byte
	bus.Register("screen-pixel-buffer", func(args []any) {
		view = argBytes(args, 0)
	})
	bus.Send("screen-set-size-graphical", 320, 200)
	view[0] = 0xBB
	view[3] = 0xFF
	bus.Send("screen-fill-buffer-end", 0, 0)
	out.Tick()

	// To text and back without the producer resending anything.
	bus.Send("screen-set-mode", false)
	if sa.Mode() != ModeText {
		t.Fatal("expected text mode after toggle")
	}
	bus.Send("screen-set-mode", true)

	r, _, _, _ := out.FramePixel(0, 0)
	if r != 0xBB {
		t.Fatalf("expected retained graphics pixel BB after mode round trip, got %02X", r)
	}
}

func TestModeSwitchReconfiguresDisplay(t *testing.T) {
	bus, _, out := newTestScreen(t)

	bus.Send("screen-set-size-graphical", 320, 200)
	cfg := out.GetDisplayConfig()
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Fatalf("expected 320x200 after graphical resize, got %dx%d", cfg.Width, cfg.Height)
	}

	// Back to text: the backend surface must follow the active mode's
	// dimensions, not stay on the graphics ones.
	bus.Send("screen-set-mode", false)
	cfg = out.GetDisplayConfig()
	if cfg.Width != 80*textCellWidth || cfg.Height != 25*textCellHeight {
		t.Fatalf("expected %dx%d text surface after toggle, got %dx%d",
			80*textCellWidth, 25*textCellHeight, cfg.Width, cfg.Height)
	}

	bus.Send("screen-set-mode", true)
	cfg = out.GetDisplayConfig()
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Fatalf("expected 320x200 restored after toggle back, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestTextRendersAfterGraphicsResize(t *testing.T) {
	bus, _, out := newTestScreen(t)

	bus.Send("screen-set-size-graphical", 320, 200)
	bus.Send("screen-set-mode", false)

	bus.Send("screen-update-cursor", 24, 79)
	bus.Send("screen-put-char", 0, 0, int(' '), 0x00AA00, 0xFFFFFF)
	out.Tick()

	// The row blit must land on a text-sized surface, not be dropped
	// against stale graphics bounds.
	r, g, b, a := out.FramePixel(0, 0)
	if r != 0x00 || g != 0xAA || b != 0x00 || a != 0xFF {
		t.Fatalf("expected text background (00,AA,00,FF) after graphics round trip, got (%02X,%02X,%02X,%02X)", r, g, b, a)
	}
}

func TestTextResizeReconfiguresDisplay(t *testing.T) {
	bus, _, out := newTestScreen(t)

	bus.Send("screen-set-size-text", 132, 43)

	cfg := out.GetDisplayConfig()
	if cfg.Width != 132*textCellWidth || cfg.Height != 43*textCellHeight {
		t.Fatalf("expected %dx%d, got %dx%d",
			132*textCellWidth, 43*textCellHeight, cfg.Width, cfg.Height)
	}
}

func TestCursorBlinkMarksCursorRow(t *testing.T) {
	bus, sa, out := newTestScreen(t)

	bus.Send("screen-update-cursor", 4, 0)
	out.Tick() // initial repaint drains all dirty rows

	// Stop one tick short of the blink boundary.
	for i := 0; i < cursorBlinkTicks-2; i++ {
		out.Tick()
	}
	if sa.grid.RowDirty(4) {
		t.Fatal("expected cursor row clean before the blink boundary")
	}

	blinkBefore := sa.blinkOn
	// The tick that crosses the boundary flips the phase and repaints
	// the cursor row.
	out.Tick()
	if sa.blinkOn == blinkBefore {
		t.Fatal("expected blink phase to flip at the boundary")
	}
	if sa.grid.RowDirty(4) {
		t.Fatal("expected cursor row repainted, not left dirty, after the blink tick")
	}
}

func TestFillRequestOnlySentInGraphicsMode(t *testing.T) {
	bus, _, out := newTestScreen(t)

	requests := 0
	bus.Register("screen-request-fill-buffer", func([]any) { requests++ })

	out.Tick()
	if requests != 0 {
		t.Fatal("expected no fill request in text mode")
	}

	bus.Send("screen-set-size-graphical", 320, 200)
	out.Tick()
	out.Tick()
	if requests != 2 {
		t.Fatalf("expected one fill request per graphics tick, got %d", requests)
	}
}
