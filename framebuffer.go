// framebuffer.go - pixel-format adaptation, back buffer, and rect math,
// per spec.md §3 and §4.6.
//
// Grounded on video_interface.go (DisplayConfig, PixelFormat,
// FrameSnapshot) and memory_bus.go's plain byte-slice ownership style,
// generalized from a fixed chip framebuffer to the windowing core's
// arbitrary pixel formats.

package main

import "fmt"

// PixelFormat names how a 32-bit 0xAARRGGBB color is packed into bytes.
type PixelFormat struct {
	Kind  PixelKind
	RPos  int // byte offset of the red channel, only meaningful for KindUnknown
	GPos  int
	BPos  int
}

type PixelKind int

const (
	PixelRGB PixelKind = iota
	PixelBGR
	PixelGray
	PixelUnknown
)

var (
	FormatRGB  = PixelFormat{Kind: PixelRGB}
	FormatBGR  = PixelFormat{Kind: PixelBGR}
	FormatGray = PixelFormat{Kind: PixelGray}
)

// FramebufferError reports out-of-range geometry at construction time.
type FramebufferError struct {
	Operation string
	Details   string
}

func (e *FramebufferError) Error() string {
	return fmt.Sprintf("framebuffer %s: %s", e.Operation, e.Details)
}

// Framebuffer is a borrowed, exclusively-owned byte span describing the
// host's video surface.
type Framebuffer struct {
	Pixels        []byte
	Width, Height int
	Stride        int // bytes per row
	BytesPerPixel int
	Format        PixelFormat
}

// NewFramebuffer validates the stride*height <= len(pixels) invariant
// (stride is already in bytes) before handing back ownership of pixels.
func NewFramebuffer(pixels []byte, width, height, stride, bpp int, format PixelFormat) (*Framebuffer, error) {
	if stride*height > len(pixels) {
		return nil, &FramebufferError{"new", "span too small for stride*height"}
	}
	return &Framebuffer{Pixels: pixels, Width: width, Height: height, Stride: stride, BytesPerPixel: bpp, Format: format}, nil
}

// encodePixel converts an external 0xAARRGGBB color into this
// framebuffer's native byte pattern. Fully-transparent colors are
// reported via ok=false so callers can no-op the write.
func encodePixel(format PixelFormat, bpp int, color uint32) (out []byte, ok bool) {
	a := byte(color >> 24)
	if a == 0 {
		return nil, false
	}
	r := byte(color >> 16)
	g := byte(color >> 8)
	b := byte(color)

	out = make([]byte, bpp)
	switch format.Kind {
	case PixelRGB:
		if bpp >= 3 {
			out[0], out[1], out[2] = r, g, b
		}
		if bpp >= 4 {
			out[3] = 0xFF // 4th byte is host alpha, not source alpha; opaque once drawn
		}
	case PixelBGR:
		if bpp >= 3 {
			out[0], out[1], out[2] = b, g, r
		}
		if bpp >= 4 {
			out[3] = 0xFF
		}
	case PixelGray:
		gray := byte((int(r)*299 + int(g)*587 + int(b)*114) / 1000)
		out[0] = gray
	case PixelUnknown:
		if format.RPos < bpp {
			out[format.RPos] = r
		}
		if format.GPos < bpp {
			out[format.GPos] = g
		}
		if format.BPos < bpp {
			out[format.BPos] = b
		}
	}
	return out, true
}

// BackBuffer is an owned buffer the same size as the framebuffer. When
// disabled, writes bypass it and go straight to the framebuffer
// (spec.md §3).
type BackBuffer struct {
	Pixels  []byte
	Enabled bool
}

func NewBackBuffer(size int) *BackBuffer {
	return &BackBuffer{Pixels: make([]byte, size), Enabled: true}
}

// Swap performs the single contiguous move from back buffer to
// framebuffer, the only time the framebuffer is touched while double
// buffering is on.
func (b *BackBuffer) Swap(fb *Framebuffer) {
	n := len(b.Pixels)
	if len(fb.Pixels) < n {
		n = len(fb.Pixels)
	}
	copy(fb.Pixels[:n], b.Pixels[:n])
}

// Rect is the shared bounds/clip/dirty descriptor of spec.md §3.
type Rect struct {
	X, Y int32
	W, H int
}

func (r Rect) ContainsPoint(x, y int32) bool {
	return x >= r.X && y >= r.Y && x < r.X+int32(r.W) && y < r.Y+int32(r.H)
}

func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+int32(o.W) && o.X < r.X+int32(r.W) &&
		r.Y < o.Y+int32(o.H) && o.Y < r.Y+int32(r.H)
}

func (r Rect) Union(o Rect) Rect {
	minX, minY := min32(r.X, o.X), min32(r.Y, o.Y)
	maxX := max32(r.X+int32(r.W), o.X+int32(o.W))
	maxY := max32(r.Y+int32(r.H), o.Y+int32(o.H))
	return Rect{X: minX, Y: minY, W: int(maxX - minX), H: int(maxY - minY)}
}

func (r Rect) Intersection(o Rect) (Rect, bool) {
	if !r.Intersects(o) {
		return Rect{}, false
	}
	minX, minY := max32(r.X, o.X), max32(r.Y, o.Y)
	maxX := min32(r.X+int32(r.W), o.X+int32(o.W))
	maxY := min32(r.Y+int32(r.H), o.Y+int32(o.H))
	return Rect{X: minX, Y: minY, W: int(maxX - minX), H: int(maxY - minY)}, true
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
