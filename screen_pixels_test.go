// screen_pixels_test.go - Graphics buffer dirty range tests

package main

import "testing"

func TestFlushRowsEmptyRangeIsNoOp(t *testing.T) {
	pb := NewPixelBuffer(320, 200)

	if _, _, _, ok := pb.FlushRows(); ok {
		t.Fatal("expected empty dirty range on a fresh buffer")
	}
}

func TestMarkRangeSingleRowFlush(t *testing.T) {
	pb := NewPixelBuffer(320, 200)
	pb.SetPixel32(5, 0xFF0000FF)

	// Offsets 0..319 are exactly row 0.
	pb.MarkRange(0, 319)

	rowStart, rowCount, rows, ok := pb.FlushRows()
	if !ok {
		t.Fatal("expected a pending dirty range")
	}
	if rowStart != 0 || rowCount != 1 {
		t.Fatalf("expected rows [0,1), got start %d count %d", rowStart, rowCount)
	}
	if len(rows) != 320*4 {
		t.Fatalf("expected one row of pixel data (%d bytes), got %d", 320*4, len(rows))
	}
	if rows[5*4] != 0xFF {
		t.Fatalf("expected written pixel byte 0xFF at offset 20, got 0x%02X", rows[5*4])
	}

	// Flushing clears the range.
	if _, _, _, ok := pb.FlushRows(); ok {
		t.Fatal("expected dirty range cleared after flush")
	}
}

func TestMarkRangeMergesAndFloors(t *testing.T) {
	pb := NewPixelBuffer(320, 200)

	pb.MarkRange(320*10+7, 320*10+50) // inside row 10
	pb.MarkRange(320*12, 320*13-1)    // row 12

	rowStart, rowCount, _, ok := pb.FlushRows()
	if !ok {
		t.Fatal("expected a pending dirty range")
	}
	if rowStart != 10 || rowCount != 3 {
		t.Fatalf("expected merged rows [10,13), got start %d count %d", rowStart, rowCount)
	}
}

func TestMarkRangeClampsToBuffer(t *testing.T) {
	pb := NewPixelBuffer(320, 200)

	pb.MarkRange(-50, 320*500)

	minOff, maxOff, ok := pb.DirtyRange()
	if !ok {
		t.Fatal("expected a pending dirty range")
	}
	if minOff != 0 || maxOff != 320*200-1 {
		t.Fatalf("expected clamped range [0,%d], got [%d,%d]", 320*200-1, minOff, maxOff)
	}
}

func TestMarkRangeIgnoresInvertedRange(t *testing.T) {
	pb := NewPixelBuffer(320, 200)

	pb.MarkRange(100, 50)

	if _, _, ok := pb.DirtyRange(); ok {
		t.Fatal("expected inverted range to be ignored")
	}
}

func TestResizeInvalidatesViewAndClearsDirty(t *testing.T) {
	pb := NewPixelBuffer(320, 200)
	pb.MarkRange(0, 100)

	pb.Resize(640, 480)

	w, h := pb.Size()
	if w != 640 || h != 480 {
		t.Fatalf("expected 640x480, got %dx%d", w, h)
	}
	if len(pb.ProducerView()) != 640*480*4 {
		t.Fatalf("expected view of %d bytes, got %d", 640*480*4, len(pb.ProducerView()))
	}
	if _, _, ok := pb.DirtyRange(); ok {
		t.Fatal("expected dirty range cleared by resize")
	}
}

func TestPixel32RoundTripsThroughByteView(t *testing.T) {
	pb := NewPixelBuffer(4, 4)

	pb.SetPixel32(3, 0xAABBCCDD)
	if got := pb.Pixel32(3); got != 0xAABBCCDD {
		t.Fatalf("expected 0xAABBCCDD, got 0x%08X", got)
	}

	// Little-endian byte order over the shared view.
	view := pb.ProducerView()
	if view[3*4] != 0xDD || view[3*4+3] != 0xAA {
		t.Fatalf("expected LE bytes DD..AA, got %02X..%02X", view[3*4], view[3*4+3])
	}

	// Out of range access is harmless.
	if got := pb.Pixel32(100); got != 0 {
		t.Fatalf("expected 0 for out-of-range read, got 0x%08X", got)
	}
	pb.SetPixel32(-1, 1)
}
