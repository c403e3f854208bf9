package main

import "testing"

func TestMouseClampsToScreenBounds(t *testing.T) {
	m := NewMouse(100, 80)
	m.SetPosition(-5, -5)
	x, y := m.Position()
	if x != 0 || y != 0 {
		t.Fatalf("Position() = (%d,%d), want (0,0)", x, y)
	}
	m.SetPosition(500, 500)
	x, y = m.Position()
	if x != 99 || y != 79 {
		t.Fatalf("Position() = (%d,%d), want (99,79)", x, y)
	}
}

func TestMouseButtonAndDeltaOrdering(t *testing.T) {
	m := NewMouse(200, 200)
	m.SetPosition(50, 50)

	// status byte: sync bit set, left button down, no overflow/sign bits.
	m.HandleByte(mouseSyncBit | mouseLeftBit)
	m.HandleByte(5) // dx
	m.HandleByte(3) // dy (inverted on assembly)

	left, right := m.Buttons()
	if !left || right {
		t.Fatalf("Buttons() = (%v,%v), want (true,false)", left, right)
	}
	x, y := m.Position()
	if x != 55 || y != 47 {
		t.Fatalf("Position() = (%d,%d), want (55,47)", x, y)
	}
}

func TestMouseDropsOutOfSyncAndOverflowPackets(t *testing.T) {
	m := NewMouse(200, 200)
	m.SetPosition(50, 50)

	m.HandleByte(0) // no sync bit: resync, dropped
	m.HandleByte(mouseSyncBit | mouseOverflowBit)
	m.HandleByte(10)
	m.HandleByte(10)

	x, y := m.Position()
	if x != 50 || y != 50 {
		t.Fatalf("overflowed packet should be dropped, got (%d,%d)", x, y)
	}
}

func TestMouseResizeReclampsCurrentPosition(t *testing.T) {
	m := NewMouse(200, 200)
	m.SetPosition(150, 150)
	m.Resize(100, 100)
	x, y := m.Position()
	if x != 99 || y != 99 {
		t.Fatalf("Position() after shrink = (%d,%d), want (99,99)", x, y)
	}
}
