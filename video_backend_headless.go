// video_backend_headless.go - In-memory video backend

// HeadlessOutput keeps the presented surface in memory and leaves refresh
// pacing to the caller: each Tick is one host refresh. It is what the test
// suite drives, and what batch tooling runs the machine under.

package main

import "time"

type HeadlessOutput struct {
	started     bool
	config      DisplayConfig
	frameBuffer []byte
	frameCount  uint64
	refreshRate int
	refreshHook func()
}

func NewHeadlessOutput() *HeadlessOutput {
	return &HeadlessOutput{refreshRate: 60}
}

func (h *HeadlessOutput) Start() error {
	h.started = true
	return nil
}

func (h *HeadlessOutput) Stop() error {
	h.started = false
	return nil
}

func (h *HeadlessOutput) Close() error {
	return h.Stop()
}

func (h *HeadlessOutput) IsStarted() bool {
	return h.started
}

func (h *HeadlessOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	size := config.Width * config.Height * 4
	if len(h.frameBuffer) != size {
		h.frameBuffer = make([]byte, size)
	}
	return nil
}

func (h *HeadlessOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

func (h *HeadlessOutput) UpdateFrame(buffer []byte) error {
	copy(h.frameBuffer, buffer)
	return nil
}

func (h *HeadlessOutput) UpdateRegion(x, y, width, height int, pixels []byte) error {
	if x < 0 || y < 0 || x+width > h.config.Width || y+height > h.config.Height {
		return &VideoError{Operation: "region update", Details: "region coordinates out of bounds"}
	}
	for dy := range height {
		dstOffset := ((y+dy)*h.config.Width + x) * 4
		srcOffset := dy * width * 4
		copy(h.frameBuffer[dstOffset:], pixels[srcOffset:srcOffset+width*4])
	}
	return nil
}

func (h *HeadlessOutput) SetRefreshHook(fn func()) {
	h.refreshHook = fn
}

// Tick simulates one host refresh: it invokes the registered hook, exactly
// as a windowed backend's draw callback would.
func (h *HeadlessOutput) Tick() {
	h.frameCount++
	if h.refreshHook != nil {
		h.refreshHook()
	}
}

func (h *HeadlessOutput) SupportsGraphics() bool {
	return true
}

func (h *HeadlessOutput) GetFrameCount() uint64 {
	return h.frameCount
}

func (h *HeadlessOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}

func (h *HeadlessOutput) GetSnapshot() (FrameSnapshot, error) {
	snapshot := FrameSnapshot{
		Buffer:    make([]byte, len(h.frameBuffer)),
		Width:     h.config.Width,
		Height:    h.config.Height,
		Format:    h.config.PixelFormat,
		Timestamp: time.Now(),
	}
	copy(snapshot.Buffer, h.frameBuffer)
	return snapshot, nil
}

// FramePixel returns the RGBA bytes of one presented pixel, for tests.
func (h *HeadlessOutput) FramePixel(x, y int) (r, g, b, a byte) {
	i := (y*h.config.Width + x) * 4
	if i < 0 || i+4 > len(h.frameBuffer) {
		return 0, 0, 0, 0
	}
	return h.frameBuffer[i], h.frameBuffer[i+1], h.frameBuffer[i+2], h.frameBuffer[i+3]
}
