// screen_charmap.go - Code page 437 character map for the screen adapter

package main

// The producer addresses text cells with raw byte codes from the legacy PC
// code page (437). The table below maps all 256 codes to display runes and
// is built once at process start; it is read-only after that, so it is
// shared by reference with no synchronization.
//
// Code 0 maps to a blank cell rather than the code page's null glyph: the
// producer zero-fills freshly allocated grids and expects them to render
// empty.

var charmap = buildCharmap()

func buildCharmap() [256]rune {
	var m [256]rune

	// 0x00-0x1F: control range graphics.
	low := []rune{
		' ', '☺', '☻', '♥', '♦', '♣', '♠', '•',
		'◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
		'►', '◄', '↕', '‼', '¶', '§', '▬', '↨',
		'↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
	}
	copy(m[:0x20], low)

	// 0x20-0x7E: ASCII. 0x7F is the house glyph.
	for c := 0x20; c <= 0x7E; c++ {
		m[c] = rune(c)
	}
	m[0x7F] = '⌂'

	high := []rune{
		'Ç', 'ü', 'é', 'â', 'ä', 'à', 'å', 'ç',
		'ê', 'ë', 'è', 'ï', 'î', 'ì', 'Ä', 'Å',
		'É', 'æ', 'Æ', 'ô', 'ö', 'ò', 'û', 'ù',
		'ÿ', 'Ö', 'Ü', '¢', '£', '¥', '₧', 'ƒ',
		'á', 'í', 'ó', 'ú', 'ñ', 'Ñ', 'ª', 'º',
		'¿', '⌐', '¬', '½', '¼', '¡', '«', '»',
		'░', '▒', '▓', '│', '┤', '╡', '╢', '╖',
		'╕', '╣', '║', '╗', '╝', '╜', '╛', '┐',
		'└', '┴', '┬', '├', '─', '┼', '╞', '╟',
		'╚', '╔', '╩', '╦', '╠', '═', '╬', '╧',
		'╨', '╤', '╥', '╙', '╘', '╒', '╓', '╫',
		'╪', '┘', '┌', '█', '▄', '▌', '▐', '▀',
		'α', 'ß', 'Γ', 'π', 'Σ', 'σ', 'µ', 'τ',
		'Φ', 'Θ', 'Ω', 'δ', '∞', 'φ', 'ε', '∩',
		'≡', '±', '≥', '≤', '⌠', '⌡', '÷', '≈',
		'°', '∙', '·', '√', 'ⁿ', '²', '■', ' ',
	}
	copy(m[0x80:], high)

	return m
}

// glyphForCode resolves a producer byte code to its display rune.
func glyphForCode(code uint8) rune {
	return charmap[code]
}
