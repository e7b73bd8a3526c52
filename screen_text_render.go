// screen_text_render.go - Differential text mode renderer

/*
screen_text_render.go - Differential Text Renderer

Reconciles the host-visible text surface with the TextGrid. The surface is
kept as one paintable strip per text row plus a composited full-surface
buffer the backend can present wholesale; a repaint regenerates only the
rows flagged dirty, building each row strip from scratch and swapping it in
whole so a partially painted row is never visible.

A row strip is painted from the grid's run-length spans: each span's cell
run gets a single background fill, then its glyphs. The cursor marker span
additionally gets a foreground block covering the cursor's scanline band.

Cells are 8x16 pixels. Glyphs come from the shared code page table and are
rasterized with the basicfont face; codes outside the face's coverage fall
back to its replacement glyph, which is as far as font fidelity goes here.
*/

package main

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	textCellWidth  = 8
	textCellHeight = 16

	// Face7x13 ascent is 11; one extra pixel centers the glyph box in the
	// 16-pixel cell.
	textBaseline = 12
)

// rowSurface is the paintable surface for one text row. Strips are replaced,
// never edited in place.
type rowSurface struct {
	pixels []byte // cols*textCellWidth x textCellHeight RGBA
	spans  []TextSpan
}

type TextRenderer struct {
	grid *TextGrid
	face font.Face

	cols, rows int
	rowWidth   int // pixels
	rowStrips  []*rowSurface
	surface    []byte // composited cols*8 x rows*16 RGBA
}

func NewTextRenderer(grid *TextGrid) *TextRenderer {
	tr := &TextRenderer{
		grid: grid,
		face: basicfont.Face7x13,
	}
	cols, rows := grid.Size()
	tr.Resize(cols, rows)
	return tr
}

// Resize adjusts the row container to exactly rows strips and reallocates
// the composited surface. Existing strip contents are discarded; the grid's
// full-dirty marking after its own resize triggers the initial repaint.
func (tr *TextRenderer) Resize(cols, rows int) {
	tr.cols = cols
	tr.rows = rows
	tr.rowWidth = cols * textCellWidth
	tr.rowStrips = make([]*rowSurface, rows)
	tr.surface = make([]byte, tr.rowWidth*rows*textCellHeight*4)
}

// PixelSize returns the composited surface dimensions.
func (tr *TextRenderer) PixelSize() (w, h int) {
	return tr.rowWidth, tr.rows * textCellHeight
}

// Surface exposes the composited text surface for presentation.
func (tr *TextRenderer) Surface() []byte {
	return tr.surface
}

// RowPixels returns the painted pixels of one row strip, or nil if the row
// has never been painted.
func (tr *TextRenderer) RowPixels(row int) []byte {
	if row < 0 || row >= len(tr.rowStrips) || tr.rowStrips[row] == nil {
		return nil
	}
	return tr.rowStrips[row].pixels
}

// RowSpans returns the spans last painted for a row, or nil if the row has
// never been painted. Consumed by surface-diffing backends and tests.
func (tr *TextRenderer) RowSpans(row int) []TextSpan {
	if row < 0 || row >= len(tr.rowStrips) || tr.rowStrips[row] == nil {
		return nil
	}
	return tr.rowStrips[row].spans
}

// RepaintDirty regenerates every dirty row and clears its flag, returning
// the repainted row indices. Rows with no pending writes cost nothing.
// drawCursor folds in cursor visibility and blink phase.
func (tr *TextRenderer) RepaintDirty(drawCursor bool) []int {
	var painted []int
	for row := 0; row < tr.rows; row++ {
		if !tr.grid.RowDirty(row) {
			continue
		}
		tr.paintRow(row, drawCursor)
		tr.grid.clearDirty(row)
		painted = append(painted, row)
	}
	return painted
}

// paintRow builds a fresh strip for the row from its spans and swaps it in,
// then folds it into the composited surface.
func (tr *TextRenderer) paintRow(row int, drawCursor bool) {
	spans := tr.grid.Spans(row, drawCursor)
	strip := &rowSurface{
		pixels: make([]byte, tr.rowWidth*textCellHeight*4),
		spans:  spans,
	}

	img := &image.RGBA{
		Pix:    strip.pixels,
		Stride: tr.rowWidth * 4,
		Rect:   image.Rect(0, 0, tr.rowWidth, textCellHeight),
	}
	drawer := font.Drawer{Dst: img, Face: tr.face}

	for _, span := range spans {
		tr.fillCells(strip.pixels, span.Col, len(span.Glyphs), 0, textCellHeight, span.Bg)

		fr, fg, fb := colorRGB(span.Fg)
		drawer.Src = image.NewUniform(color.RGBA{fr, fg, fb, 0xFF})
		for i, glyph := range span.Glyphs {
			// Dot is reset per cell: the face's advance is narrower than
			// the 8-pixel cell and must not drift across a run.
			drawer.Dot = fixed.P((span.Col+i)*textCellWidth, textBaseline)
			drawer.DrawString(string(glyph))
		}

		if span.Cursor {
			offset, height := tr.grid.CursorShape()
			tr.fillCells(strip.pixels, span.Col, 1, offset, height+1, span.Fg)
		}
	}

	tr.rowStrips[row] = strip

	base := row * textCellHeight * tr.rowWidth * 4
	copy(tr.surface[base:base+len(strip.pixels)], strip.pixels)
}

// fillCells fills a horizontal band of a cell run within a row strip with a
// solid color. yTop/yCount select the scanline band inside the 16-pixel cell.
func (tr *TextRenderer) fillCells(strip []byte, col, cells, yTop, yCount, colorID int) {
	r, g, b := colorRGB(colorID)
	x0 := col * textCellWidth * 4
	width := cells * textCellWidth
	yEnd := min(yTop+yCount, textCellHeight)
	for y := yTop; y < yEnd; y++ {
		off := y*tr.rowWidth*4 + x0
		for x := 0; x < width; x++ {
			strip[off] = r
			strip[off+1] = g
			strip[off+2] = b
			strip[off+3] = 0xFF
			off += 4
		}
	}
}
