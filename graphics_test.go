package main

import "testing"

func newTestCompositor(w, h int) *Compositor {
	pixels := make([]byte, w*h*4)
	fb, _ := NewFramebuffer(pixels, w, h, w*4, 4, FormatRGB)
	return NewCompositor(fb, NewBackBuffer(len(pixels)))
}

func TestWritePixelAndReadPixelBytesRoundTrip(t *testing.T) {
	c := newTestCompositor(4, 4)
	c.WritePixel(1, 1, 0xFF102030)
	got := c.ReadPixelBytes(1, 1)
	want := []byte{0x10, 0x20, 0x30, 0xFF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadPixelBytes() = %v, want %v", got, want)
		}
	}
}

func TestWritePixelOutOfBoundsIsNoOp(t *testing.T) {
	c := newTestCompositor(2, 2)
	c.WritePixel(-1, 0, 0xFFFFFFFF)
	c.WritePixel(0, 5, 0xFFFFFFFF)
	if got := c.ReadPixelBytes(-1, 0); got != nil {
		t.Fatal("ReadPixelBytes() out of bounds should return nil")
	}
}

func TestClearOpaqueBlackZeroesBuffer(t *testing.T) {
	c := newTestCompositor(2, 2)
	c.WritePixel(0, 0, 0xFFFFFFFF)
	c.Clear(0xFF000000)
	for i, b := range c.active() {
		if b != 0 {
			t.Fatalf("active()[%d] = %d, want 0 after Clear(black)", i, b)
		}
	}
}

func TestSwapMovesBackBufferIntoFramebuffer(t *testing.T) {
	c := newTestCompositor(2, 2)
	c.WritePixel(0, 0, 0xFF112233)
	c.Swap()
	if c.fb.Pixels[0] != 0x11 {
		t.Fatalf("fb.Pixels[0] = %#x, want 0x11 after Swap", c.fb.Pixels[0])
	}
}

func TestFillRectClippedIntersectsBeforeFilling(t *testing.T) {
	c := newTestCompositor(10, 10)
	c.FillRectClipped(Rect{X: 5, Y: 5, W: 10, H: 10}, Rect{X: 0, Y: 0, W: 8, H: 8}, 0xFFFFFFFF)
	if c.ReadPixelBytes(7, 7)[0] != 0xFF {
		t.Fatal("pixel inside the clipped intersection should be painted")
	}
	if c.ReadPixelBytes(9, 9)[0] != 0 {
		t.Fatal("pixel outside the clip rect should remain untouched")
	}
}

func TestXOROutlineTwiceRestoresOriginalPixels(t *testing.T) {
	c := newTestCompositor(10, 10)
	c.FillRect(Rect{X: 0, Y: 0, W: 10, H: 10}, 0xFF123456)
	before := make([]byte, len(c.active()))
	copy(before, c.active())

	r := Rect{X: 2, Y: 2, W: 5, H: 5}
	c.XOROutline(r)
	c.XOROutline(r)

	after := c.active()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("byte %d = %#x after double XOR, want original %#x", i, after[i], before[i])
		}
	}
}

func TestDrawCharClippedSkipsWhollyOutsideClip(t *testing.T) {
	c := newTestCompositor(20, 20)
	c.DrawCharClipped(15, 15, 'A', 0xFFFFFFFF, Rect{X: 0, Y: 0, W: 5, H: 5})
	for y := 15; y < 20; y++ {
		for x := 15; x < 20; x++ {
			if b := c.ReadPixelBytes(x, y); b != nil && b[0] != 0 {
				t.Fatalf("pixel (%d,%d) painted despite glyph box lying outside clip", x, y)
			}
		}
	}
}

func TestDrawTextDoesNotPanicAcrossMultipleGlyphs(t *testing.T) {
	c := newTestCompositor(40, 10)
	c.DrawText(0, 0, "AB", 0xFFFFFFFF)
}
