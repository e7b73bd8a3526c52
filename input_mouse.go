// input_mouse.go - Host mouse to guest pointer adapter

/*
input_mouse.go - Mouse Adapter

Publishes pointer movement as per-tick deltas on mouse-delta, button
transitions as the full button triple on mouse-click, and wheel steps on
mouse-wheel. The guest's pointer device integrates deltas itself, so the
adapter never sends absolute coordinates; the first polled position only
seeds the delta origin.
*/

package main

import "github.com/hajimehoshi/ebiten/v2"

type MouseAdapter struct {
	bus *MessageBus

	lastX, lastY int
	haveLast     bool
	buttons      [3]bool // left, middle, right
}

func NewMouseAdapter(bus *MessageBus) *MouseAdapter {
	return &MouseAdapter{bus: bus}
}

// Poll samples the host pointer once per tick. Called from the backend's
// input hook.
func (ma *MouseAdapter) Poll() {
	x, y := ebiten.CursorPosition()
	_, wheelY := ebiten.Wheel()
	ma.HandleState(x, y,
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		wheelY)
}

// HandleState folds one sampled pointer state into bus traffic. Split from
// Poll so tests can drive it with explicit values.
func (ma *MouseAdapter) HandleState(x, y int, left, middle, right bool, wheelY float64) {
	if ma.haveLast {
		dx := x - ma.lastX
		dy := y - ma.lastY
		if dx != 0 || dy != 0 {
			ma.bus.Send("mouse-delta", dx, dy)
		}
	}
	ma.lastX, ma.lastY = x, y
	ma.haveLast = true

	next := [3]bool{left, middle, right}
	if next != ma.buttons {
		ma.buttons = next
		ma.bus.Send("mouse-click", left, middle, right)
	}

	if wheelY != 0 {
		step := 1
		if wheelY < 0 {
			step = -1
		}
		ma.bus.Send("mouse-wheel", step)
	}
}
