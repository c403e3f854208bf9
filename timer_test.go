package main

import "testing"

func TestTimerTickIsMonotonic(t *testing.T) {
	tm := NewTimer(NewIOBus())
	tm.Init()
	if tm.Ticks() != 0 {
		t.Fatalf("Ticks() = %d, want 0 before any tick", tm.Ticks())
	}
	for i := 0; i < 5; i++ {
		tm.Tick()
	}
	if tm.Ticks() != 5 {
		t.Fatalf("Ticks() = %d, want 5", tm.Ticks())
	}
}

func TestTimerProgramsChannel0(t *testing.T) {
	bus := NewIOBus()
	tm := NewTimer(bus)
	tm.Init()
	bus.Out(pitCommand, 0x36)
	// reading back data port after Init should not panic and returns the
	// last latched byte (0 until a command latches a count).
	_ = bus.In(pitChannel0)
}
