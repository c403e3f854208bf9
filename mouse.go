// mouse.go - PS/2 mouse driver: packet reassembly and lock-free position
// state, per spec.md §4.3.

package main

import "sync/atomic"

const (
	mouseSyncBit     byte = 0x08
	mouseOverflowBit byte = 0xC0 // bits 6,7: X/Y overflow
	mouseLeftBit     byte = 0x01
	mouseRightBit    byte = 0x02
	mouseSignXBit    byte = 0x10
	mouseSignYBit    byte = 0x20
)

// Mouse reassembles 3-byte PS/2 packets and exposes position/button state
// through atomics so the IRQ handler and the main loop never share a lock
// (spec.md §5: "All shared state is lock-free atomics").
type Mouse struct {
	screenW, screenH int

	x, y        atomic.Int32
	left, right atomic.Bool

	buf   [3]byte
	index int
}

func NewMouse(screenW, screenH int) *Mouse {
	return &Mouse{screenW: screenW, screenH: screenH}
}

// HandleByte feeds one byte from the device into packet reassembly.
func (m *Mouse) HandleByte(b byte) {
	if m.index == 0 {
		if b&mouseSyncBit == 0 {
			return // resync: drop until a byte with the sync bit arrives
		}
		m.buf[0] = b
		m.index = 1
		return
	}
	m.buf[m.index] = b
	m.index++
	if m.index < 3 {
		return
	}
	m.index = 0
	m.assemble()
}

func (m *Mouse) assemble() {
	status := m.buf[0]
	if status&mouseOverflowBit != 0 {
		return // drop overflowed packets
	}

	// Button atomics update before position, so a click is observed at
	// the same pixel the delta lands on (spec.md §5 ordering guarantee).
	m.left.Store(status&mouseLeftBit != 0)
	m.right.Store(status&mouseRightBit != 0)

	dx := int32(m.buf[1])
	if status&mouseSignXBit != 0 {
		dx -= 256
	}
	dy := int32(m.buf[2])
	if status&mouseSignYBit != 0 {
		dy -= 256
	}
	dy = -dy // device Y grows downward on the wire; screen Y is inverted

	nx := clampInt32(m.x.Load()+dx, 0, int32(m.screenW)-1)
	ny := clampInt32(m.y.Load()+dy, 0, int32(m.screenH)-1)
	m.x.Store(nx)
	m.y.Store(ny)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Position returns the current clamped cursor position.
func (m *Mouse) Position() (int, int) {
	return int(m.x.Load()), int(m.y.Load())
}

// Buttons returns the current left/right button state.
func (m *Mouse) Buttons() (left, right bool) {
	return m.left.Load(), m.right.Load()
}

// SetPosition forcibly sets the position (used by the host input bridge
// when driven by an absolute pointer such as ebiten's cursor, rather than
// relative PS/2 deltas).
func (m *Mouse) SetPosition(x, y int) {
	m.x.Store(clampInt32(int32(x), 0, int32(m.screenW)-1))
	m.y.Store(clampInt32(int32(y), 0, int32(m.screenH)-1))
}

// Resize updates the clamp bounds when the screen size changes.
func (m *Mouse) Resize(w, h int) {
	m.screenW, m.screenH = w, h
	m.x.Store(clampInt32(m.x.Load(), 0, int32(w)-1))
	m.y.Store(clampInt32(m.y.Load(), 0, int32(h)-1))
}
