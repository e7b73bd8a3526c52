//go:build headless

// video_backend_stub.go - Headless substitutions for windowed backends

package main

// Headless builds route the windowed backend to the in-memory output so the
// rest of the machine wires up unchanged.
func NewEbitenOutput() (VideoOutput, error) {
	return NewHeadlessOutput(), nil
}
