// idt.go - interrupt vector table and dispatch.

package main

import "fmt"

const (
	vectorDoubleFault = 8
	vectorTimer       = 32
	vectorKeyboard    = 33
	vectorMouse       = 44
)

// FaultInfo carries the frame a fatal CPU fault handler receives.
type FaultInfo struct {
	Vector    int
	ErrorCode uint64
	RIP       uint64
}

// PanicFunc is invoked by a fatal handler; tests substitute a recorder
// instead of the default, which calls panic.
type PanicFunc func(message string, info FaultInfo)

// IDT registers handlers for exceptions and IRQs and dispatches incoming
// vectors to them. Each IRQ handler is expected to read its device
// register, enqueue work, and signal EOI via the PIC before returning,
// per spec.md §4.1.
type IDT struct {
	gdt      *GDT
	pic      *PIC
	handlers map[int]func()
	onPanic  PanicFunc
}

func defaultPanic(message string, info FaultInfo) {
	panic(fmt.Sprintf("%s (vector=%d err=%#x rip=%#x)", message, info.Vector, info.ErrorCode, info.RIP))
}

// NewIDT creates an interrupt table bound to the given GDT (for the
// double-fault IST stack) and PIC (for EOI bookkeeping done by handlers).
func NewIDT(gdt *GDT, pic *PIC) *IDT {
	idt := &IDT{
		gdt:      gdt,
		pic:      pic,
		handlers: make(map[int]func()),
		onPanic:  defaultPanic,
	}
	idt.Register(vectorDoubleFault, idt.handleDoubleFault)
	return idt
}

// SetPanicFunc overrides the fatal-fault action; used by tests.
func (idt *IDT) SetPanicFunc(fn PanicFunc) {
	if fn == nil {
		fn = defaultPanic
	}
	idt.onPanic = fn
}

// Register installs a handler for a vector, overwriting any prior one.
func (idt *IDT) Register(vector int, handler func()) {
	idt.handlers[vector] = handler
}

// Dispatch invokes the handler registered for vector, if any. Returns
// whether a handler ran.
func (idt *IDT) Dispatch(vector int) bool {
	h, ok := idt.handlers[vector]
	if !ok {
		return false
	}
	h()
	return true
}

// RaiseDoubleFault simulates a double fault arriving with the given frame.
// A real CPU would already have switched to the TSS's IST[0] stack before
// entry; we just confirm that stack exists and hand off to the panic
// function, never returning — spec.md: "control does not return."
func (idt *IDT) RaiseDoubleFault(info FaultInfo) {
	info.Vector = vectorDoubleFault
	idt.handleDoubleFaultWith(info)
}

func (idt *IDT) handleDoubleFault() {
	idt.handleDoubleFaultWith(FaultInfo{Vector: vectorDoubleFault})
}

func (idt *IDT) handleDoubleFaultWith(info FaultInfo) {
	if stack := idt.gdt.ISTStackFor(tssStackIndex); stack == nil {
		idt.onPanic("double fault with no IST stack configured", info)
		return
	}
	idt.onPanic("double fault", info)
}
