// timer.go - PIT channel 0 periodic tick source.

package main

import "sync/atomic"

const (
	pitChannel0 uint16 = 0x40
	pitCommand  uint16 = 0x43
	pitMaxDiv   uint16 = 0 // 0 encodes the maximum 16-bit divisor, 65536
)

// Timer programs channel 0 of the PIT as a rate generator and exposes a
// monotonic, lock-free tick counter that the main loop and IRQ handler
// can both touch safely (spec.md §4.1, §5).
type Timer struct {
	bus   *IOBus
	ticks atomic.Uint64

	div     uint16
	latched byte
	which   int // 0 = low byte next, 1 = high byte next
}

// NewTimer registers the PIT ports on bus.
func NewTimer(bus *IOBus) *Timer {
	t := &Timer{bus: bus}
	bus.MapPorts(pitChannel0, pitChannel0, t.readData, t.writeData)
	bus.MapPorts(pitCommand, pitCommand, nil, t.writeCommand)
	return t
}

func (t *Timer) writeCommand(_ uint16, v byte) {
	t.which = 0
}

func (t *Timer) writeData(_ uint16, v byte) {
	if t.which == 0 {
		t.div = (t.div &^ 0xFF) | uint16(v)
		t.which = 1
		return
	}
	t.div = (t.div &^ 0xFF00) | uint16(v)<<8
	t.which = 0
}

func (t *Timer) readData(uint16) byte {
	return t.latched
}

// Init programs the slowest stable tick: the maximum 16-bit divisor,
// matching spec.md §4.1.
func (t *Timer) Init() {
	t.bus.Out(pitCommand, 0x36) // channel 0, lobyte/hibyte, rate generator
	t.bus.Out(pitChannel0, byte(pitMaxDiv))
	t.bus.Out(pitChannel0, byte(pitMaxDiv>>8))
}

// Tick advances the monotonic counter by one; called from the IRQ0
// handler installed in bringup.go.
func (t *Timer) Tick() {
	t.ticks.Add(1)
}

// Ticks returns the current tick count. Safe to call concurrently with
// Tick from any goroutine.
func (t *Timer) Ticks() uint64 {
	return t.ticks.Load()
}
