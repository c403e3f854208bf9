// graphics.go - pixel write/clear/swap, clipped rect primitives, XOR
// rubber-band outline, and bitmap text, per spec.md §4.6.

package main

// Compositor owns the framebuffer and an optional back buffer and
// implements every drawing primitive in spec.md §4.6 against whichever
// of the two is currently active.
type Compositor struct {
	fb   *Framebuffer
	back *BackBuffer
}

func NewCompositor(fb *Framebuffer, back *BackBuffer) *Compositor {
	return &Compositor{fb: fb, back: back}
}

// active returns the byte span writes should target: the back buffer if
// enabled, else the framebuffer directly.
func (c *Compositor) active() []byte {
	if c.back != nil && c.back.Enabled {
		return c.back.Pixels
	}
	return c.fb.Pixels
}

// WritePixel computes the byte offset, adapts color to the native pixel
// format, and writes it. Out-of-bounds writes and fully-transparent
// colors silently no-op.
func (c *Compositor) WritePixel(x, y int, color uint32) {
	if x < 0 || y < 0 || x >= c.fb.Width || y >= c.fb.Height {
		return
	}
	pat, ok := encodePixel(c.fb.Format, c.fb.BytesPerPixel, color)
	if !ok {
		return
	}
	buf := c.active()
	off := y*c.fb.Stride + x*c.fb.BytesPerPixel
	if off+c.fb.BytesPerPixel > len(buf) {
		return
	}
	copy(buf[off:off+c.fb.BytesPerPixel], pat)
}

// ReadPixelBytes reads the raw bytes under (x,y) from the active buffer,
// used by the cursor compositor's save/restore.
func (c *Compositor) ReadPixelBytes(x, y int) []byte {
	if x < 0 || y < 0 || x >= c.fb.Width || y >= c.fb.Height {
		return nil
	}
	buf := c.active()
	off := y*c.fb.Stride + x*c.fb.BytesPerPixel
	if off+c.fb.BytesPerPixel > len(buf) {
		return nil
	}
	out := make([]byte, c.fb.BytesPerPixel)
	copy(out, buf[off:off+c.fb.BytesPerPixel])
	return out
}

// WritePixelBytes writes a raw native-format pixel pattern directly,
// bypassing color encoding (used to restore a saved pixel).
func (c *Compositor) WritePixelBytes(x, y int, pat []byte) {
	if x < 0 || y < 0 || x >= c.fb.Width || y >= c.fb.Height {
		return
	}
	buf := c.active()
	off := y*c.fb.Stride + x*c.fb.BytesPerPixel
	if off+len(pat) > len(buf) {
		return
	}
	copy(buf[off:off+len(pat)], pat)
}

// Clear fills the active buffer with color: a single fill for opaque
// black, else the pixel pattern tiled across every bytesPerPixel stride.
func (c *Compositor) Clear(color uint32) {
	buf := c.active()
	if color == 0xFF000000 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}
	pat, ok := encodePixel(c.fb.Format, c.fb.BytesPerPixel, color)
	if !ok {
		return
	}
	for off := 0; off+len(pat) <= len(buf); off += len(pat) {
		copy(buf[off:off+len(pat)], pat)
	}
}

// Swap moves the back buffer into the framebuffer, the only time the
// framebuffer is touched while double buffering is on.
func (c *Compositor) Swap() {
	if c.back != nil {
		c.back.Swap(c.fb)
	}
}

// FillRect paints every pixel in r with color.
func (c *Compositor) FillRect(r Rect, color uint32) {
	for y := int(r.Y); y < int(r.Y)+r.H; y++ {
		for x := int(r.X); x < int(r.X)+r.W; x++ {
			c.WritePixel(x, y, color)
		}
	}
}

// FillRectClipped intersects r with clip before filling.
func (c *Compositor) FillRectClipped(r, clip Rect, color uint32) {
	if inter, ok := r.Intersection(clip); ok {
		c.FillRect(inter, color)
	}
}

// BorderRect paints a 1px outline around r.
func (c *Compositor) BorderRect(r Rect, color uint32) {
	for x := int(r.X); x < int(r.X)+r.W; x++ {
		c.WritePixel(x, int(r.Y), color)
		c.WritePixel(x, int(r.Y)+r.H-1, color)
	}
	for y := int(r.Y); y < int(r.Y)+r.H; y++ {
		c.WritePixel(int(r.X), y, color)
		c.WritePixel(int(r.X)+r.W-1, y, color)
	}
}

// BorderRectClipped draws only the portion of the border inside clip.
func (c *Compositor) BorderRectClipped(r, clip Rect, color uint32) {
	top := Rect{X: r.X, Y: r.Y, W: r.W, H: 1}
	bottom := Rect{X: r.X, Y: r.Y + int32(r.H) - 1, W: r.W, H: 1}
	left := Rect{X: r.X, Y: r.Y, W: 1, H: r.H}
	right := Rect{X: r.X + int32(r.W) - 1, Y: r.Y, W: 1, H: r.H}
	for _, edge := range []Rect{top, bottom, left, right} {
		c.FillRectClipped(edge, clip, color)
	}
}

// xorMask is the white mask XOR rubber-banding uses; drawing it twice at
// the same coordinates is its own inverse and exactly restores the prior
// pixels (spec.md §4.6).
const xorMask uint32 = 0xFFFFFFFF

// xorPixel XORs the stored native pixel bytes with an all-ones mask.
func (c *Compositor) xorPixel(x, y int) {
	cur := c.ReadPixelBytes(x, y)
	if cur == nil {
		return
	}
	for i := range cur {
		cur[i] = ^cur[i]
	}
	c.WritePixelBytes(x, y, cur)
}

// XOROutline draws a dashed single-pixel frame by XOR-ing alternating
// pixels along each edge. Calling it twice at identical coordinates
// exactly restores the original pixels.
func (c *Compositor) XOROutline(r Rect) {
	for x := int(r.X); x < int(r.X)+r.W; x += 2 {
		c.xorPixel(x, int(r.Y))
		c.xorPixel(x, int(r.Y)+r.H-1)
	}
	for y := int(r.Y); y < int(r.Y)+r.H; y += 2 {
		c.xorPixel(int(r.X), y)
		c.xorPixel(int(r.X)+r.W-1, y)
	}
}

const (
	glyphW = 8
	glyphH = 8
)

// DrawChar paints one glyph at (x,y) in color, skipping unset bits.
func (c *Compositor) DrawChar(x, y int, ch byte, color uint32) {
	g := glyphFor(ch)
	for row := 0; row < glyphH; row++ {
		bits := g[row]
		for col := 0; col < glyphW; col++ {
			if bits&(0x80>>uint(col)) != 0 {
				c.WritePixel(x+col, y+row, color)
			}
		}
	}
}

// DrawCharClipped skips the glyph entirely if its bounding box lies
// wholly outside clip.
func (c *Compositor) DrawCharClipped(x, y int, ch byte, color uint32, clip Rect) {
	box := Rect{X: int32(x), Y: int32(y), W: glyphW, H: glyphH}
	if !box.Intersects(clip) {
		return
	}
	c.DrawChar(x, y, ch, color)
}

// DrawText walks s, advancing 8 pixels per character.
func (c *Compositor) DrawText(x, y int, s string, color uint32) {
	cx := x
	for i := 0; i < len(s); i++ {
		c.DrawChar(cx, y, s[i], color)
		cx += glyphW
	}
}

// DrawTextClipped is the clipped variant of DrawText.
func (c *Compositor) DrawTextClipped(x, y int, s string, color uint32, clip Rect) {
	cx := x
	for i := 0; i < len(s); i++ {
		c.DrawCharClipped(cx, y, s[i], color, clip)
		cx += glyphW
	}
}
