// input_keyboard.go - Host keyboard to XT scan code adapter

/*
input_keyboard.go - Keyboard Adapter

Translates host key transitions into the XT set-1 make/break codes the
emulated keyboard controller consumes, published one byte at a time on the
keyboard-code channel. Extended keys carry the 0xE0 prefix byte. The adapter
tracks which keys it has made so that focus loss can break every held key -
otherwise the guest is left with a stuck modifier whenever the user alt-tabs
away mid-chord.

Host chords stay host-side: Ctrl+Shift+V pastes the clipboard (published
whole on keyboard-paste for the guest-side typist to replay), F9 requests a
screenshot, F11 belongs to the backend. None of them leak scan codes.
*/

package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

const (
	scanBreakBit       = 0x80
	scanExtendedPrefix = 0xE0

	pasteLimit = 4096
)

// XT set-1 scan codes. Values above 0xFF are 0xE0-prefixed extended codes.
var scanCodes = map[ebiten.Key]uint16{
	ebiten.KeyEscape:         0x01,
	ebiten.KeyDigit1:         0x02,
	ebiten.KeyDigit2:         0x03,
	ebiten.KeyDigit3:         0x04,
	ebiten.KeyDigit4:         0x05,
	ebiten.KeyDigit5:         0x06,
	ebiten.KeyDigit6:         0x07,
	ebiten.KeyDigit7:         0x08,
	ebiten.KeyDigit8:         0x09,
	ebiten.KeyDigit9:         0x0A,
	ebiten.KeyDigit0:         0x0B,
	ebiten.KeyMinus:          0x0C,
	ebiten.KeyEqual:          0x0D,
	ebiten.KeyBackspace:      0x0E,
	ebiten.KeyTab:            0x0F,
	ebiten.KeyQ:              0x10,
	ebiten.KeyW:              0x11,
	ebiten.KeyE:              0x12,
	ebiten.KeyR:              0x13,
	ebiten.KeyT:              0x14,
	ebiten.KeyY:              0x15,
	ebiten.KeyU:              0x16,
	ebiten.KeyI:              0x17,
	ebiten.KeyO:              0x18,
	ebiten.KeyP:              0x19,
	ebiten.KeyBracketLeft:    0x1A,
	ebiten.KeyBracketRight:   0x1B,
	ebiten.KeyEnter:          0x1C,
	ebiten.KeyControlLeft:    0x1D,
	ebiten.KeyA:              0x1E,
	ebiten.KeyS:              0x1F,
	ebiten.KeyD:              0x20,
	ebiten.KeyF:              0x21,
	ebiten.KeyG:              0x22,
	ebiten.KeyH:              0x23,
	ebiten.KeyJ:              0x24,
	ebiten.KeyK:              0x25,
	ebiten.KeyL:              0x26,
	ebiten.KeySemicolon:      0x27,
	ebiten.KeyQuote:          0x28,
	ebiten.KeyBackquote:      0x29,
	ebiten.KeyShiftLeft:      0x2A,
	ebiten.KeyBackslash:      0x2B,
	ebiten.KeyZ:              0x2C,
	ebiten.KeyX:              0x2D,
	ebiten.KeyC:              0x2E,
	ebiten.KeyV:              0x2F,
	ebiten.KeyB:              0x30,
	ebiten.KeyN:              0x31,
	ebiten.KeyM:              0x32,
	ebiten.KeyComma:          0x33,
	ebiten.KeyPeriod:         0x34,
	ebiten.KeySlash:          0x35,
	ebiten.KeyShiftRight:     0x36,
	ebiten.KeyNumpadMultiply: 0x37,
	ebiten.KeyAltLeft:        0x38,
	ebiten.KeySpace:          0x39,
	ebiten.KeyCapsLock:       0x3A,
	ebiten.KeyF1:             0x3B,
	ebiten.KeyF2:             0x3C,
	ebiten.KeyF3:             0x3D,
	ebiten.KeyF4:             0x3E,
	ebiten.KeyF5:             0x3F,
	ebiten.KeyF6:             0x40,
	ebiten.KeyF7:             0x41,
	ebiten.KeyF8:             0x42,
	ebiten.KeyF10:            0x44,
	// F9, F11 and F12 are host chords and never reach the guest.
	ebiten.KeyNumLock:        0x45,
	ebiten.KeyScrollLock:     0x46,
	ebiten.KeyNumpad7:        0x47,
	ebiten.KeyNumpad8:        0x48,
	ebiten.KeyNumpad9:        0x49,
	ebiten.KeyNumpadSubtract: 0x4A,
	ebiten.KeyNumpad4:        0x4B,
	ebiten.KeyNumpad5:        0x4C,
	ebiten.KeyNumpad6:        0x4D,
	ebiten.KeyNumpadAdd:      0x4E,
	ebiten.KeyNumpad1:        0x4F,
	ebiten.KeyNumpad2:        0x50,
	ebiten.KeyNumpad3:        0x51,
	ebiten.KeyNumpad0:        0x52,
	ebiten.KeyNumpadDecimal:  0x53,

	ebiten.KeyNumpadEnter:  0xE01C,
	ebiten.KeyControlRight: 0xE01D,
	ebiten.KeyNumpadDivide: 0xE035,
	ebiten.KeyAltRight:     0xE038,
	ebiten.KeyHome:         0xE047,
	ebiten.KeyArrowUp:      0xE048,
	ebiten.KeyPageUp:       0xE049,
	ebiten.KeyArrowLeft:    0xE04B,
	ebiten.KeyArrowRight:   0xE04D,
	ebiten.KeyEnd:          0xE04F,
	ebiten.KeyArrowDown:    0xE050,
	ebiten.KeyPageDown:     0xE051,
	ebiten.KeyInsert:       0xE052,
	ebiten.KeyDelete:       0xE053,
}

type KeyboardAdapter struct {
	bus     *MessageBus
	pressed map[ebiten.Key]bool

	keyBuf []ebiten.Key // scratch for inpututil appends

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewKeyboardAdapter(bus *MessageBus) *KeyboardAdapter {
	return &KeyboardAdapter{
		bus:     bus,
		pressed: make(map[ebiten.Key]bool),
	}
}

// Poll gathers this tick's host key transitions and forwards them. Called
// from the backend's input hook.
func (ka *KeyboardAdapter) Poll() {
	if !ebiten.IsFocused() {
		ka.ReleaseAll()
		return
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		ka.handleClipboardPaste()
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		ka.bus.Send("screen-make-screenshot")
		return
	}

	ka.keyBuf = inpututil.AppendJustPressedKeys(ka.keyBuf[:0])
	made := append([]ebiten.Key(nil), ka.keyBuf...)
	ka.keyBuf = inpututil.AppendJustReleasedKeys(ka.keyBuf[:0])
	ka.HandleTransitions(made, ka.keyBuf)
}

// HandleTransitions emits make codes for newly pressed keys and break codes
// for released ones, keeping the held-key set current. Split from Poll so
// tests can drive it with explicit key slices.
func (ka *KeyboardAdapter) HandleTransitions(made, broken []ebiten.Key) {
	for _, key := range made {
		code, ok := scanCodes[key]
		if !ok {
			continue
		}
		ka.pressed[key] = true
		ka.sendScan(code, false)
	}
	for _, key := range broken {
		code, ok := scanCodes[key]
		if !ok || !ka.pressed[key] {
			continue
		}
		delete(ka.pressed, key)
		ka.sendScan(code, true)
	}
}

// ReleaseAll breaks every key this adapter has made. Fired on focus loss.
func (ka *KeyboardAdapter) ReleaseAll() {
	for key := range ka.pressed {
		if code, ok := scanCodes[key]; ok {
			ka.sendScan(code, true)
		}
		delete(ka.pressed, key)
	}
}

// PressedCount reports how many keys are currently held, for tests.
func (ka *KeyboardAdapter) PressedCount() int {
	return len(ka.pressed)
}

func (ka *KeyboardAdapter) sendScan(code uint16, release bool) {
	if code > 0xFF {
		ka.bus.Send("keyboard-code", scanExtendedPrefix)
	}
	b := int(code & 0x7F)
	if release {
		b |= scanBreakBit
	}
	ka.bus.Send("keyboard-code", b)
}

func (ka *KeyboardAdapter) handleClipboardPaste() {
	ka.clipboardOnce.Do(func() {
		ka.clipboardOK = clipboard.Init() == nil
	})
	if !ka.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizePasteText(data)
	if len(data) > pasteLimit {
		data = data[:pasteLimit]
	}
	ka.bus.Send("keyboard-paste", data)
}

// normalizePasteText collapses CRLF and lone CR line endings to LF.
func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}
