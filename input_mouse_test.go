// input_mouse_test.go - Pointer adapter tests

package main

import "testing"

func TestMouseFirstSampleSeedsDeltaOrigin(t *testing.T) {
	bus := NewMessageBus()
	ma := NewMouseAdapter(bus)

	deltas := 0
	bus.Register("mouse-delta", func([]any) { deltas++ })

	ma.HandleState(100, 100, false, false, false, 0)
	if deltas != 0 {
		t.Fatal("expected no delta from the seeding sample")
	}

	ma.HandleState(103, 98, false, false, false, 0)
	if deltas != 1 {
		t.Fatalf("expected one delta after movement, got %d", deltas)
	}
}

func TestMouseDeltaValues(t *testing.T) {
	bus := NewMessageBus()
	ma := NewMouseAdapter(bus)

	var dx, dy int
	bus.Register("mouse-delta", func(args []any) {
		dx = argInt(args, 0)
		dy = argInt(args, 1)
	})

	ma.HandleState(50, 50, false, false, false, 0)
	ma.HandleState(47, 65, false, false, false, 0)

	if dx != -3 || dy != 15 {
		t.Fatalf("expected delta (-3,15), got (%d,%d)", dx, dy)
	}
}

func TestMouseClickOnlyOnTransition(t *testing.T) {
	bus := NewMessageBus()
	ma := NewMouseAdapter(bus)

	clicks := 0
	var left, right bool
	bus.Register("mouse-click", func(args []any) {
		clicks++
		left = argBool(args, 0)
		right = argBool(args, 2)
	})

	ma.HandleState(0, 0, true, false, false, 0)
	ma.HandleState(0, 0, true, false, false, 0) // held, no new event
	ma.HandleState(0, 0, false, false, false, 0)

	if clicks != 2 {
		t.Fatalf("expected press and release events only, got %d", clicks)
	}
	if left || right {
		t.Fatal("expected final state all-released")
	}
}

func TestMouseWheelStepsAreUnit(t *testing.T) {
	bus := NewMessageBus()
	ma := NewMouseAdapter(bus)

	var steps []int
	bus.Register("mouse-wheel", func(args []any) {
		steps = append(steps, argInt(args, 0))
	})

	ma.HandleState(0, 0, false, false, false, 2.5)
	ma.HandleState(0, 0, false, false, false, -0.3)
	ma.HandleState(0, 0, false, false, false, 0)

	if len(steps) != 2 || steps[0] != 1 || steps[1] != -1 {
		t.Fatalf("expected unit steps [1 -1], got %v", steps)
	}
}
