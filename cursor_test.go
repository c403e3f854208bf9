package main

import "testing"

func TestCursorDrawThenHideRestoresBackground(t *testing.T) {
	c := newTestCompositor(40, 40)
	c.FillRect(Rect{X: 0, Y: 0, W: 40, H: 40}, 0xFF123456)
	before := make([]byte, len(c.active()))
	copy(before, c.active())

	cur := NewCursor(0xFFFFFFFF)
	cur.DrawAt(c, 5, 5)
	if !cur.Visible() {
		t.Fatal("Visible() should be true right after DrawAt")
	}
	cur.Hide(c)
	if cur.Visible() {
		t.Fatal("Visible() should be false after Hide")
	}

	after := c.active()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("byte %d = %#x after draw+hide, want restored %#x", i, after[i], before[i])
		}
	}
}

func TestCursorMoveToNoOpWhenPositionUnchanged(t *testing.T) {
	c := newTestCompositor(40, 40)
	cur := NewCursor(0xFFFFFFFF)
	cur.DrawAt(c, 10, 10)
	snapshot := make([]byte, len(c.active()))
	copy(snapshot, c.active())

	cur.MoveTo(c, 10, 10) // same position: should be a no-op, not hide+redraw
	after := c.active()
	for i := range snapshot {
		if snapshot[i] != after[i] {
			t.Fatalf("MoveTo to the same position changed pixel %d: %#x vs %#x", i, after[i], snapshot[i])
		}
	}
}

func TestCursorMoveToRepositionsSprite(t *testing.T) {
	c := newTestCompositor(40, 40)
	cur := NewCursor(0xFFFFFFFF)
	cur.DrawAt(c, 5, 5)
	cur.MoveTo(c, 20, 20)
	if cur.x != 20 || cur.y != 20 {
		t.Fatalf("cursor position = (%d,%d), want (20,20)", cur.x, cur.y)
	}
	// the old location should have been restored by the implicit Hide.
	if b := c.ReadPixelBytes(5, 5); b != nil && b[0] == 0xFF {
		t.Fatal("old cursor position still shows sprite color after MoveTo")
	}
}

func TestCursorHideWithoutPriorDrawIsNoOp(t *testing.T) {
	c := newTestCompositor(10, 10)
	cur := NewCursor(0xFFFFFFFF)
	cur.Hide(c) // must not panic when nothing was ever drawn
	if cur.Visible() {
		t.Fatal("a cursor that was never drawn should not report visible")
	}
}
