// cursor.go - 12x19 monochrome cursor sprite with save/restore
// background, per spec.md §4.6.

package main

const (
	cursorW = 12
	cursorH = 19
)

// cursorMask is a simple arrow-pointer bitmap, MSB first per row (only
// the low 12 bits of each row are meaningful).
var cursorMask = [cursorH]uint16{
	0b100000000000,
	0b110000000000,
	0b111000000000,
	0b111100000000,
	0b111110000000,
	0b111111000000,
	0b111111100000,
	0b111111110000,
	0b111111111000,
	0b111111111100,
	0b111110000000,
	0b110110000000,
	0b100011000000,
	0b000011000000,
	0b000001100000,
	0b000001100000,
	0b000000000000,
	0b000000000000,
	0b000000000000,
}

// Cursor draws and hides the host pointer sprite over a Compositor,
// keeping a save buffer of whatever pixels it last painted over.
type Cursor struct {
	visible  bool
	x, y     int
	color    uint32
	saved    [cursorH][cursorW][]byte
	hasSaved bool
}

func NewCursor(color uint32) *Cursor {
	return &Cursor{color: color}
}

// DrawAt reads the pixels under the sprite into the save buffer, then
// paints set mask bits. Invariant: after this call the save buffer
// holds exactly the background that was there before the draw.
func (cu *Cursor) DrawAt(c *Compositor, x, y int) {
	for row := 0; row < cursorH; row++ {
		for col := 0; col < cursorW; col++ {
			cu.saved[row][col] = c.ReadPixelBytes(x+col, y+row)
		}
	}
	cu.hasSaved = true
	cu.x, cu.y = x, y
	cu.visible = true
	for row := 0; row < cursorH; row++ {
		bits := cursorMask[row]
		for col := 0; col < cursorW; col++ {
			if bits&(1<<uint(cursorW-1-col)) != 0 {
				c.WritePixel(x+col, y+row, cu.color)
			}
		}
	}
}

// Hide restores the saved background, if any.
func (cu *Cursor) Hide(c *Compositor) {
	if !cu.hasSaved || !cu.visible {
		return
	}
	for row := 0; row < cursorH; row++ {
		for col := 0; col < cursorW; col++ {
			if pat := cu.saved[row][col]; pat != nil {
				c.WritePixelBytes(cu.x+col, cu.y+row, pat)
			}
		}
	}
	cu.visible = false
}

// MoveTo hides and redraws only if the position actually changed.
func (cu *Cursor) MoveTo(c *Compositor, x, y int) {
	if cu.visible && cu.x == x && cu.y == y {
		return
	}
	cu.Hide(c)
	cu.DrawAt(c, x, y)
}

func (cu *Cursor) Visible() bool { return cu.visible }
