// screen_text.go - Text mode cell grid for the screen adapter

/*
screen_text.go - Text Mode Grid Store

Holds the character/attribute grid the producer writes into while the screen
is in text mode, together with the per-row dirty flags that bound repaint
cost. A cell is the triple (character code, background color id, foreground
color id), stored flattened in row-major order with stride 3, so the grid
slice is always exactly rows*cols*3 entries; resizing discards and
reallocates.

The grid also owns the cursor cell state. Moving the cursor marks both the
row it leaves and the row it enters dirty, so the next differential repaint
touches exactly the rows whose pixels change.

Repaints consume the grid through Spans: a dirty row is reduced to maximal
runs of cells sharing one (bg, fg) pair, which is what keeps per-row paint
cost proportional to the number of distinct color runs rather than the
column count. The cursor cell, when drawn, cuts its row's run short and is
emitted as a one-cell marker span.
*/

package main

import "fmt"

const (
	cellStride = 3

	// Bit 5 of the cursor start scanline is the legacy hide flag.
	cursorHideBit = 0x20

	// Legacy hardware clamps cursor shape values to a 16-scanline cell.
	cursorScanMax = 15
)

type TextGrid struct {
	cols, rows int
	cells      []uint32
	dirty      []bool

	cursorRow, cursorCol       int
	cursorVisible              bool
	cursorOffset, cursorHeight int
}

// TextSpan is one run-length unit of a rendered row: consecutive cells
// sharing the same color pair, or a single-cell cursor marker.
type TextSpan struct {
	Col    int
	Glyphs []rune
	Bg, Fg int
	Cursor bool
}

func NewTextGrid() *TextGrid {
	g := &TextGrid{
		cursorVisible: true,
		cursorHeight:  cursorScanMax,
	}
	g.Resize(80, 25)
	return g
}

func (g *TextGrid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Resize discards the grid and dirty state and reallocates for the new
// dimensions, marking every row for an initial full repaint. Resizing to
// the current dimensions is a no-op and reports false.
func (g *TextGrid) Resize(cols, rows int) bool {
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	if cols == g.cols && rows == g.rows {
		return false
	}

	g.cols = cols
	g.rows = rows
	g.cells = make([]uint32, cols*rows*cellStride)
	g.dirty = make([]bool, rows)
	for i := range g.dirty {
		g.dirty[i] = true
	}
	return true
}

// PutChar writes a cell triple and marks its row dirty. Out-of-bounds
// coordinates are dropped: the producer may send stale positions during a
// resize race, and a lost glyph is preferable to halting the display.
func (g *TextGrid) PutChar(row, col int, code uint8, bg, fg int) {
	if row < 0 || col < 0 || row >= g.rows || col >= g.cols {
		return
	}
	i := (row*g.cols + col) * cellStride
	g.cells[i] = uint32(code)
	g.cells[i+1] = uint32(bg)
	g.cells[i+2] = uint32(fg)
	g.dirty[row] = true
}

// Cell returns the triple at (row, col), or zero values out of bounds.
func (g *TextGrid) Cell(row, col int) (code uint8, bg, fg int) {
	if row < 0 || col < 0 || row >= g.rows || col >= g.cols {
		return 0, 0, 0
	}
	i := (row*g.cols + col) * cellStride
	return uint8(g.cells[i]), int(g.cells[i+1]), int(g.cells[i+2])
}

// UpdateCursor moves the cursor cell. When either coordinate changes, both
// the vacated and the entered row are marked dirty so the repaint moves the
// cursor marker; a call with the current position marks nothing.
func (g *TextGrid) UpdateCursor(row, col int) {
	if row == g.cursorRow && col == g.cursorCol {
		return
	}
	g.markDirty(g.cursorRow)
	g.cursorRow = row
	g.cursorCol = col
	g.markDirty(row)
}

// UpdateCursorScanline decodes the legacy cursor shape registers: bit 5 of
// start hides the cursor; otherwise the marker spans scanlines
// [min(15,start), min(15,start)+min(15,end-start)] within the cell.
func (g *TextGrid) UpdateCursorScanline(start, end int) {
	visible := start&cursorHideBit == 0
	offset := min(cursorScanMax, max(0, start))
	height := min(cursorScanMax, max(0, end-start))

	if visible == g.cursorVisible && offset == g.cursorOffset && height == g.cursorHeight {
		return
	}
	g.cursorVisible = visible
	g.cursorOffset = offset
	g.cursorHeight = height
	g.markDirty(g.cursorRow)
}

func (g *TextGrid) CursorPos() (row, col int) {
	return g.cursorRow, g.cursorCol
}

func (g *TextGrid) CursorVisible() bool {
	return g.cursorVisible
}

// CursorShape returns the marker's first scanline and scanline count within
// its 16-scanline cell.
func (g *TextGrid) CursorShape() (offset, height int) {
	return g.cursorOffset, g.cursorHeight
}

func (g *TextGrid) markDirty(row int) {
	if row >= 0 && row < g.rows {
		g.dirty[row] = true
	}
}

// MarkAllDirty forces a full repaint on the next differential pass without
// touching cell contents.
func (g *TextGrid) MarkAllDirty() {
	for i := range g.dirty {
		g.dirty[i] = true
	}
}

func (g *TextGrid) RowDirty(row int) bool {
	return row >= 0 && row < g.rows && g.dirty[row]
}

func (g *TextGrid) clearDirty(row int) {
	if row >= 0 && row < g.rows {
		g.dirty[row] = false
	}
}

// Spans reduces one row to its run-length spans. drawCursor selects whether
// the cursor marker is interleaved (the caller folds in visibility and blink
// phase); when it lands on this row the surrounding run is cut at the cursor
// column and scanning resumes with a fresh run after it.
func (g *TextGrid) Spans(row int, drawCursor bool) []TextSpan {
	if row < 0 || row >= g.rows {
		return nil
	}

	spans := make([]TextSpan, 0, 8)
	cursorCol := -1
	if drawCursor && row == g.cursorRow {
		cursorCol = g.cursorCol
	}

	start := -1
	var runBg, runFg int
	var glyphs []rune

	flush := func() {
		if start >= 0 {
			spans = append(spans, TextSpan{Col: start, Glyphs: glyphs, Bg: runBg, Fg: runFg})
			start = -1
			glyphs = nil
		}
	}

	for col := 0; col < g.cols; col++ {
		code, bg, fg := g.Cell(row, col)
		if col == cursorCol {
			flush()
			spans = append(spans, TextSpan{
				Col:    col,
				Glyphs: []rune{glyphForCode(code)},
				Bg:     bg,
				Fg:     fg,
				Cursor: true,
			})
			continue
		}
		if start >= 0 && bg == runBg && fg == runFg {
			glyphs = append(glyphs, glyphForCode(code))
			continue
		}
		flush()
		start = col
		runBg, runFg = bg, fg
		glyphs = []rune{glyphForCode(code)}
	}
	flush()
	return spans
}

// Color ids are 24-bit RGB values supplied by the producer.

// colorHex renders a color id in the fixed 6-hex-digit form used on the
// diagnostic surfaces. Ids must fit 24 bits; higher bits are masked off.
func colorHex(id int) string {
	return fmt.Sprintf("#%06x", id&0xFFFFFF)
}

// colorRGB splits a color id into its channel bytes.
func colorRGB(id int) (r, g, b uint8) {
	return uint8(id >> 16), uint8(id >> 8), uint8(id)
}
