// pic.go - legacy dual-8259 interrupt controller: init, remap, mask, EOI.

package main

const (
	picMasterCommand uint16 = 0x20
	picMasterData    uint16 = 0x21
	picSlaveCommand  uint16 = 0xA0
	picSlaveData     uint16 = 0xA1

	picInit       byte = 0x11
	picMode8086   byte = 0x01
	picEOI        byte = 0x20
	masterVecBase byte = 32
	slaveVecBase  byte = 40
	cascadeIRQ    byte = 2 // IRQ2 carries the slave cascade on the master
)

// PIC models the master/slave 8259 cascade: remapped vectors, interrupt
// mask, and end-of-interrupt signalling, per spec.md §4.1.
type PIC struct {
	bus        *IOBus
	masterMask byte
	slaveMask  byte
}

// NewPIC registers the controller's four command/data ports on bus and
// returns it uninitialized (mask = all-disabled) until Init runs.
func NewPIC(bus *IOBus) *PIC {
	p := &PIC{bus: bus, masterMask: 0xFF, slaveMask: 0xFF}
	bus.MapPorts(picMasterCommand, picMasterCommand, nil, func(_ uint16, v byte) { p.handleCommand(true, v) })
	bus.MapPorts(picMasterData, picMasterData, func(uint16) byte { return p.masterMask }, func(_ uint16, v byte) { p.masterMask = v })
	bus.MapPorts(picSlaveCommand, picSlaveCommand, nil, func(_ uint16, v byte) { p.handleCommand(false, v) })
	bus.MapPorts(picSlaveData, picSlaveData, func(uint16) byte { return p.slaveMask }, func(_ uint16, v byte) { p.slaveMask = v })
	return p
}

func (p *PIC) handleCommand(master bool, v byte) {
	if v == picEOI {
		// Plain EOI writes are handled via EOI(), not modeled here.
		return
	}
}

// Init runs the remap sequence: ICW1 to both controllers, ICW2 to remap
// master to 32-39 and slave to 40-47, ICW3 to declare the cascade on
// IRQ2, ICW4 for 8086 mode, then masks everything.
func (p *PIC) Init() {
	p.bus.Out(picMasterCommand, picInit)
	p.bus.Out(picSlaveCommand, picInit)
	p.bus.Out(picMasterData, masterVecBase)
	p.bus.Out(picSlaveData, slaveVecBase)
	p.bus.Out(picMasterData, 1<<cascadeIRQ)
	p.bus.Out(picSlaveData, cascadeIRQ)
	p.bus.Out(picMasterData, picMode8086)
	p.bus.Out(picSlaveData, picMode8086)

	p.masterMask = 0xFF
	p.slaveMask = 0xFF
	p.bus.Out(picMasterData, p.masterMask)
	p.bus.Out(picSlaveData, p.slaveMask)
}

// SetMask enables (clear bit) or disables (set bit) a single IRQ line,
// managing the cascade bit automatically when a slave-side IRQ (>= 8) is
// touched, per spec.md's "cascade bit as required for mouse (IRQ12)".
func (p *PIC) SetMask(irq int, enabled bool) {
	if irq < 8 {
		p.masterMask = setBit(p.masterMask, uint(irq), !enabled)
		p.bus.Out(picMasterData, p.masterMask)
		return
	}
	p.slaveMask = setBit(p.slaveMask, uint(irq-8), !enabled)
	p.bus.Out(picSlaveData, p.slaveMask)
	if enabled {
		p.masterMask = setBit(p.masterMask, uint(cascadeIRQ), false)
		p.bus.Out(picMasterData, p.masterMask)
	}
}

func setBit(v byte, bit uint, set bool) byte {
	if set {
		return v | (1 << bit)
	}
	return v &^ (1 << bit)
}

// IsMasked reports whether an IRQ line is currently masked.
func (p *PIC) IsMasked(irq int) bool {
	if irq < 8 {
		return p.masterMask&(1<<uint(irq)) != 0
	}
	return p.slaveMask&(1<<uint(irq-8)) != 0
}

// EOI signals end-of-interrupt for the given IRQ: both controllers for
// IRQ >= 8, otherwise just the master, per spec.md §4.1.
func (p *PIC) EOI(irq int) {
	if irq >= 8 {
		p.bus.Out(picSlaveCommand, picEOI)
	}
	p.bus.Out(picMasterCommand, picEOI)
}
