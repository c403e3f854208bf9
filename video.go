//go:build !headless

// video.go - ebiten host backend: the only place real pixels hit a
// screen, and the bridge translating host key/mouse events into the
// synthetic scancodes and 3-byte mouse packets that drive the same
// classification/reassembly code a real PS/2 IRQ handler would.
// Structured after EbitenOutput (video_backend_ebiten.go).

package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"
)

// EbitenBackend implements ebiten.Game, owning the host window and
// draining ebiten's input each frame into the emulated keyboard and
// mouse drivers before ticking the desktop and drawing the composited
// framebuffer.
type EbitenBackend struct {
	machine *Machine
	scale   int
	src     *image.RGBA // native-resolution view over machine.fb.Pixels
	scaled  *image.RGBA // integer-scaled host-resolution buffer
	image   *ebiten.Image

	prevLeft, prevRight bool
	clipboardOK         bool
	clipboardChecked    bool
}

func NewEbitenBackend(m *Machine) *EbitenBackend {
	return &EbitenBackend{machine: m, scale: 2}
}

// runPresentation opens the ebiten window and blocks until it closes;
// the headless build tag swaps this for a windowless tick loop.
func runPresentation(m *Machine, cfg Config) error {
	eb := NewEbitenBackend(m)
	if cfg.ScreenScale > 0 {
		eb.scale = cfg.ScreenScale
	}
	return eb.Run("deskvm")
}

// Run starts the ebiten window and blocks until it is closed.
func (eb *EbitenBackend) Run(title string) error {
	ebiten.SetWindowSize(eb.machine.screenW*eb.scale, eb.machine.screenH*eb.scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	return ebiten.RunGame(eb)
}

func (eb *EbitenBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	return eb.machine.screenW * eb.scale, eb.machine.screenH * eb.scale
}

func (eb *EbitenBackend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	eb.pumpKeyboard()
	eb.pumpMouse()
	eb.machine.Step()
	return nil
}

// Draw integer-scales the composited back buffer up to the host
// window size via golang.org/x/image/draw, rather than relying on
// ebiten's own filtered image stretch.
func (eb *EbitenBackend) Draw(screen *ebiten.Image) {
	w, h := eb.machine.screenW, eb.machine.screenH
	if eb.src == nil {
		eb.src = &image.RGBA{Pix: eb.machine.fb.Pixels, Stride: eb.machine.fb.Stride, Rect: image.Rect(0, 0, w, h)}
		eb.scaled = image.NewRGBA(image.Rect(0, 0, w*eb.scale, h*eb.scale))
		eb.image = ebiten.NewImage(w*eb.scale, h*eb.scale)
	}
	draw.NearestNeighbor.Scale(eb.scaled, eb.scaled.Bounds(), eb.src, eb.src.Bounds(), draw.Src, nil)
	eb.image.WritePixels(eb.scaled.Pix)
	screen.DrawImage(eb.image, nil)
}

// scancodeTable maps ebiten keys to the internal synthetic keycodes
// keyboard.go's classification pipeline expects.
var scancodeTable = buildScancodeTable()

func buildScancodeTable() map[ebiten.Key]byte {
	t := map[ebiten.Key]byte{
		ebiten.KeyShiftLeft:    keyLShift,
		ebiten.KeyShiftRight:   keyRShift,
		ebiten.KeyControlLeft:  keyCtrl,
		ebiten.KeyControlRight: keyCtrl,
		ebiten.KeyAltLeft:      keyAlt,
		ebiten.KeyAltRight:     keyAltGr,
		ebiten.KeyEnter:        keyEnter,
		ebiten.KeyNumpadEnter:  keyEnter,
		ebiten.KeyTab:          keyTab,
		ebiten.KeyBackspace:    keyBack,
		ebiten.KeyEscape:       keyEsc,
		ebiten.KeyArrowUp:      keyUp,
		ebiten.KeyArrowDown:    keyDown,
		ebiten.KeyArrowLeft:    keyLeft,
		ebiten.KeyArrowRight:   keyRight,
		ebiten.KeyHome:         keyHome,
		ebiten.KeyEnd:          keyEnd,
		ebiten.KeyPageUp:       keyPgUp,
		ebiten.KeyPageDown:     keyPgDn,
		ebiten.KeyInsert:       keyIns,
		ebiten.KeyDelete:       keyDel,
	}
	letters := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
		ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
		ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
		ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
		ebiten.KeyY, ebiten.KeyZ,
	}
	for i, k := range letters {
		t[k] = letterKey(byte('a' + i))
	}
	digits := []ebiten.Key{
		ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
		ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
	for i, k := range digits {
		t[k] = digitKey(byte(i))
	}
	return t
}

var modifierKeys = map[ebiten.Key]bool{
	ebiten.KeyShiftLeft: true, ebiten.KeyShiftRight: true,
	ebiten.KeyControlLeft: true, ebiten.KeyControlRight: true,
	ebiten.KeyAltLeft: true, ebiten.KeyAltRight: true,
}

// pumpKeyboard feeds every just-pressed/just-released key this frame
// through Keyboard.HandleScancode, exactly as IRQ1 would.
func (eb *EbitenBackend) pumpKeyboard() {
	kb := eb.machine.kb
	fired := false
	for key, code := range scancodeTable {
		if inpututil.IsKeyJustPressed(key) {
			kb.HandleScancode(code)
			fired = true
		}
		if modifierKeys[key] && inpututil.IsKeyJustReleased(key) {
			kb.HandleScancode(code | releaseBit)
			fired = true
		}
	}
	if fired {
		eb.machine.idt.Dispatch(vectorKeyboard)
	}
	if (ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)) &&
		(ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)) &&
		inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eb.pasteClipboard()
	}
}

// pasteClipboard feeds clipboard text through the same character path a
// real keystroke would take, bound to Ctrl+Shift+V the same way
// handleClipboardPaste wires it.
func (eb *EbitenBackend) pasteClipboard() {
	if !eb.clipboardChecked {
		eb.clipboardChecked = true
		eb.clipboardOK = clipboard.Init() == nil
	}
	if !eb.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	for _, b := range data {
		if b == '\r' {
			continue
		}
		eb.machine.kb.chars.Push(b)
	}
}

// pumpMouse translates the host's absolute cursor position and button
// state into the PS/2 packet format Mouse.HandleByte reassembles,
// updating buttons through the packet path and position through
// Mouse.SetPosition (its documented absolute-pointer bridge).
func (eb *EbitenBackend) pumpMouse() {
	x, y := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	if left != eb.prevLeft || right != eb.prevRight {
		status := mouseSyncBit
		if left {
			status |= mouseLeftBit
		}
		if right {
			status |= mouseRightBit
		}
		eb.machine.mouse.HandleByte(status)
		eb.machine.mouse.HandleByte(0)
		eb.machine.mouse.HandleByte(0)
		eb.prevLeft, eb.prevRight = left, right
		eb.machine.idt.Dispatch(vectorMouse)
	}
	eb.machine.mouse.SetPosition(x, y)
}
