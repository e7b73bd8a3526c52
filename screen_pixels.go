// screen_pixels.go - Graphics mode frame buffer for the screen adapter

/*
screen_pixels.go - Graphics Frame Buffer and Blitter

Owns the raw RGBA buffer the producer renders graphics frames into, plus the
dirty pixel-range that bounds how much of it the blitter copies out per
frame.

The buffer is a single allocation with two views: the adapter hands the
producer a write-capable byte view once per resize (announced on the bus)
and itself only ever reads. The legacy 32-bit word view over the same memory
is provided as little-endian accessors rather than an aliased slice, the
same pattern the engine uses for register-sized access elsewhere.

The dirty range is a [min,max] pair of linear pixel offsets; max < min is
the empty range and the normal state on frames with no graphics change. The
producer always touches full-row-aligned ranges, which is what makes the
floor division by width in FlushRows yield the correct inclusive row range.
The buffer is never reallocated between a fill and its flush.
*/

package main

import "encoding/binary"

type PixelBuffer struct {
	width, height int
	shared        []byte // width*height*4 RGBA, producer-writable

	// Dirty range in linear pixel offsets. Empty iff dirtyMax < dirtyMin.
	dirtyMin, dirtyMax int
}

func NewPixelBuffer(width, height int) *PixelBuffer {
	pb := &PixelBuffer{}
	pb.Resize(width, height)
	return pb
}

// Resize reallocates the shared buffer. The previous producer view is dead
// after this; the adapter announces the new one. The dirty range resets to
// empty - nothing is visible until the producer's next fill.
func (pb *PixelBuffer) Resize(width, height int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	pb.width = width
	pb.height = height
	pb.shared = make([]byte, width*height*4)
	pb.clearDirty()
}

func (pb *PixelBuffer) Size() (w, h int) {
	return pb.width, pb.height
}

// ProducerView returns the write-capable view over the pixel memory. Handed
// to the producer once per resize; the adapter itself only reads it.
func (pb *PixelBuffer) ProducerView() []byte {
	return pb.shared
}

// Pixel32 reads the 32-bit word for a linear pixel offset.
func (pb *PixelBuffer) Pixel32(offset int) uint32 {
	i := offset * 4
	if i < 0 || i+4 > len(pb.shared) {
		return 0
	}
	return binary.LittleEndian.Uint32(pb.shared[i:])
}

// SetPixel32 writes the 32-bit word for a linear pixel offset. Producer-side
// convenience over its own view.
func (pb *PixelBuffer) SetPixel32(offset int, value uint32) {
	i := offset * 4
	if i < 0 || i+4 > len(pb.shared) {
		return
	}
	binary.LittleEndian.PutUint32(pb.shared[i:], value)
}

// MarkRange widens the dirty range to include [minOff, maxOff] linear pixel
// offsets. An inverted argument range is ignored.
func (pb *PixelBuffer) MarkRange(minOff, maxOff int) {
	if maxOff < minOff {
		return
	}
	minOff = max(minOff, 0)
	maxOff = min(maxOff, pb.width*pb.height-1)
	if maxOff < minOff {
		return
	}
	if pb.dirtyMax < pb.dirtyMin {
		pb.dirtyMin, pb.dirtyMax = minOff, maxOff
		return
	}
	pb.dirtyMin = min(pb.dirtyMin, minOff)
	pb.dirtyMax = max(pb.dirtyMax, maxOff)
}

// FlushRows converts the dirty range to the inclusive row range
// [min/width, max/width], clears it, and returns the rows' pixel data.
// ok is false when the range is empty, the per-frame common case.
func (pb *PixelBuffer) FlushRows() (rowStart, rowCount int, rows []byte, ok bool) {
	if pb.dirtyMax < pb.dirtyMin {
		return 0, 0, nil, false
	}
	rowStart = pb.dirtyMin / pb.width
	rowEnd := pb.dirtyMax / pb.width
	if rowEnd >= pb.height {
		rowEnd = pb.height - 1
	}
	rowCount = rowEnd - rowStart + 1
	rows = pb.shared[rowStart*pb.width*4 : (rowEnd+1)*pb.width*4]
	pb.clearDirty()
	return rowStart, rowCount, rows, true
}

// DirtyRange reports the pending range. Empty ranges report ok false.
func (pb *PixelBuffer) DirtyRange() (minOff, maxOff int, ok bool) {
	if pb.dirtyMax < pb.dirtyMin {
		return 0, 0, false
	}
	return pb.dirtyMin, pb.dirtyMax, true
}

func (pb *PixelBuffer) clearDirty() {
	pb.dirtyMin = pb.width * pb.height
	pb.dirtyMax = -1
}
