// apps.go - built-in application contracts and minimal concrete
// implementations sufficient to exercise window rendering, dirty regions,
// and the script VM's filesystem builtins (spec.md §3 "native_app_slot",
// non-goal: specific app content beyond these contracts).

package main

import (
	"fmt"
	"strings"
)

const appColorText = 0xFF111111
const appColorCursor = 0xFF000000

// lineBuffer is a simple scroll/wrap-aware text buffer shared by the
// editor and terminal, adapted from ScreenBuffer's
// (video_screen_buffer.go) line-wrap/scroll logic onto our font/rect
// primitives instead of a host terminal.
type lineBuffer struct {
	lines  []string
	cursor int // index into the last line
}

func newLineBuffer() *lineBuffer {
	return &lineBuffer{lines: []string{""}}
}

func (b *lineBuffer) typeChar(ch byte) {
	switch ch {
	case '\n':
		b.lines = append(b.lines, "")
		b.cursor = 0
	case 0x08:
		last := b.lines[len(b.lines)-1]
		if len(last) > 0 {
			b.lines[len(b.lines)-1] = last[:len(last)-1]
		} else if len(b.lines) > 1 {
			b.lines = b.lines[:len(b.lines)-1]
		}
	default:
		b.lines[len(b.lines)-1] += string(ch)
	}
}

func (b *lineBuffer) text() string {
	return strings.Join(b.lines, "\n")
}

func (b *lineBuffer) setText(s string) {
	b.lines = strings.Split(s, "\n")
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
}

// visibleLines returns the last n lines, for rendering into a fixed
// content height without a full scrollback viewport.
func (b *lineBuffer) visibleLines(n int) []string {
	if len(b.lines) <= n {
		return b.lines
	}
	return b.lines[len(b.lines)-n:]
}

// Editor is the built-in plain-text editor app.
type Editor struct {
	drive    *MountedDrive
	filename string
	buf      *lineBuffer
	dirty    bool
	status   string
}

func NewEditor(drive *MountedDrive, filename string) *Editor {
	e := &Editor{drive: drive, filename: filename, buf: newLineBuffer()}
	if drive != nil && filename != "" {
		if data, err := drive.ReadFile(filename); err == nil {
			e.buf.setText(string(data))
		}
	}
	return e
}

func (e *Editor) Render(c *Compositor, content Rect) {
	lineH := 10
	maxLines := content.H / lineH
	for i, ln := range e.buf.visibleLines(maxLines) {
		c.DrawTextClipped(int(content.X)+2, int(content.Y)+2+i*lineH, ln, appColorText, content)
	}
	if e.status != "" {
		c.DrawTextClipped(int(content.X)+2, int(content.Y)+content.H-10, e.status, appColorText, content)
	}
}

func (e *Editor) HandleClick(x, y int) bool { return false }

func (e *Editor) HandleChar(ch byte) {
	e.buf.typeChar(ch)
	e.dirty = true
}

// HandleSpecial ignores navigation/function keys. Saving does not go
// through here: Ctrl+S arrives on the keyboard's Ctrl-combo ring, and the
// desktop calls Save for it.
func (e *Editor) HandleSpecial(code byte) {}

// Save writes the buffer to the backing drive. The desktop calls it when
// it reads a Ctrl+S combo from the keyboard's Ctrl-combo ring.
func (e *Editor) Save() error {
	if e.drive == nil || e.filename == "" {
		return &FSError{"save", "no backing file"}
	}
	if err := e.drive.WriteFile(e.filename, []byte(e.buf.text())); err != nil {
		e.status = "save failed: " + err.Error()
		return err
	}
	e.dirty = false
	e.status = "saved"
	return nil
}

func (e *Editor) TypingRect(content Rect) Rect {
	lineH := 10
	row := len(e.buf.lines) - 1
	return Rect{X: content.X, Y: content.Y + int32(row*lineH), W: content.W, H: lineH}
}

// Explorer is the built-in file browser app.
type Explorer struct {
	dm      *DriveManager
	drive   *MountedDrive
	path    string
	entries []DirEntry
	onOpen  func(drive *MountedDrive, name string)
}

func NewExplorer(dm *DriveManager, onOpen func(*MountedDrive, string)) *Explorer {
	ex := &Explorer{dm: dm, path: "/", onOpen: onOpen}
	if dm != nil {
		ex.drive = dm.Default
	}
	ex.refresh()
	return ex
}

func (ex *Explorer) refresh() {
	if ex.drive == nil {
		ex.entries = nil
		return
	}
	ex.entries = ex.drive.ListDirectory(ex.path)
}

const explorerRowH = 14

func (ex *Explorer) Render(c *Compositor, content Rect) {
	if ex.drive == nil {
		c.DrawTextClipped(int(content.X)+2, int(content.Y)+2, "no drive mounted", appColorText, content)
		return
	}
	c.DrawTextClipped(int(content.X)+2, int(content.Y)+2, ex.drive.Name+":"+ex.path, appColorText, content)
	for i, e := range ex.entries {
		y := int(content.Y) + 2 + (i+1)*explorerRowH
		label := entryName(&e)
		if e.Type == EntryDirectory {
			label = "[dir] " + label
		}
		c.DrawTextClipped(int(content.X)+4, y, label, appColorText, content)
	}
}

func (ex *Explorer) HandleClick(x, y int) bool {
	row := (y - explorerRowH) / explorerRowH
	if row < 0 || row >= len(ex.entries) {
		return false
	}
	e := ex.entries[row]
	name := entryName(&e)
	if e.Type == EntryDirectory {
		ex.path = name
		ex.refresh()
		return true
	}
	if ex.onOpen != nil {
		ex.onOpen(ex.drive, name)
	}
	return true
}

func (ex *Explorer) HandleChar(ch byte)     {}
func (ex *Explorer) HandleSpecial(code byte) {}
func (ex *Explorer) TypingRect(content Rect) Rect { return Rect{} }

// Terminal is the built-in shell app: a minimal command table driving the
// filesystem surface, matching the original's shell/commands.rs table
// (ls, cat, touch, rm, mkdir) folded into spec.md's "terminal" native app.
type Terminal struct {
	dm     *DriveManager
	drive  *MountedDrive
	buf    *lineBuffer
	input  string
	prompt string
}

func NewTerminal(dm *DriveManager) *Terminal {
	t := &Terminal{dm: dm, buf: newLineBuffer(), prompt: "> "}
	if dm != nil {
		t.drive = dm.Default
	}
	t.buf.lines = []string{t.prompt}
	return t
}

func (t *Terminal) println(s string) {
	t.buf.lines[len(t.buf.lines)-1] += s
	t.buf.lines = append(t.buf.lines, t.prompt)
}

func (t *Terminal) Render(c *Compositor, content Rect) {
	lineH := 10
	maxLines := content.H / lineH
	for i, ln := range t.buf.visibleLines(maxLines) {
		c.DrawTextClipped(int(content.X)+2, int(content.Y)+2+i*lineH, ln, appColorText, content)
	}
}

func (t *Terminal) HandleClick(x, y int) bool { return false }

func (t *Terminal) HandleChar(ch byte) {
	switch ch {
	case '\n':
		line := t.buf.lines[len(t.buf.lines)-1]
		cmd := strings.TrimPrefix(line, t.prompt)
		t.buf.lines[len(t.buf.lines)-1] = line
		t.runCommand(cmd)
	case 0x08:
		last := t.buf.lines[len(t.buf.lines)-1]
		if len(last) > len(t.prompt) {
			t.buf.lines[len(t.buf.lines)-1] = last[:len(last)-1]
		}
	default:
		t.buf.lines[len(t.buf.lines)-1] += string(ch)
	}
}

func (t *Terminal) HandleSpecial(code byte) {}

func (t *Terminal) TypingRect(content Rect) Rect {
	lineH := 10
	row := len(t.buf.lines) - 1
	return Rect{X: content.X, Y: content.Y + int32(row*lineH), W: content.W, H: lineH}
}

// runCommand implements the minimal command table: ls, cat, touch, rm,
// mkdir, plus disk to list mounted drives (original_source's
// shell/commands.rs `disk list`/`df`).
func (t *Terminal) runCommand(line string) {
	parts := strings.Fields(line)
	t.buf.lines = append(t.buf.lines, "")
	if len(parts) == 0 {
		return
	}
	if t.drive == nil {
		t.println("no drive mounted")
		return
	}
	switch parts[0] {
	case "ls":
		for _, e := range t.drive.ListFiles() {
			t.println(entryName(&e))
		}
	case "cat":
		if len(parts) < 2 {
			t.println("usage: cat <name>")
			return
		}
		data, err := t.drive.ReadFile(parts[1])
		if err != nil {
			t.println(err.Error())
			return
		}
		t.println(string(data))
	case "touch":
		if len(parts) < 2 {
			t.println("usage: touch <name>")
			return
		}
		if err := t.drive.CreateFile(parts[1], false); err != nil {
			t.println(err.Error())
		}
	case "mkdir":
		if len(parts) < 2 {
			t.println("usage: mkdir <name>")
			return
		}
		if err := t.drive.CreateFile(parts[1], true); err != nil {
			t.println(err.Error())
		}
	case "rm":
		if len(parts) < 2 {
			t.println("usage: rm <name>")
			return
		}
		if err := t.drive.DeleteFile(parts[1]); err != nil {
			t.println(err.Error())
		}
	case "df":
		t.println(fmt.Sprintf("free %d blocks, %d entries used", t.drive.FreeBlocks(), t.drive.UsedEntries()))
	case "disk":
		if t.dm != nil {
			for _, d := range t.dm.Drives() {
				t.println(d.Name)
			}
		}
	case "help":
		t.println("ls cat touch mkdir rm df disk help")
	default:
		t.println("unknown command. Type 'help'")
	}
}

// DocViewer is the built-in read-only documentation viewer app; content is
// supplied by the caller (spec.md non-goal: the specific docs text).
type DocViewer struct {
	buf *lineBuffer
}

func NewDocViewer(text string) *DocViewer {
	d := &DocViewer{buf: newLineBuffer()}
	d.buf.setText(text)
	return d
}

func (d *DocViewer) Render(c *Compositor, content Rect) {
	lineH := 10
	maxLines := content.H / lineH
	for i, ln := range d.buf.visibleLines(maxLines) {
		c.DrawTextClipped(int(content.X)+2, int(content.Y)+2+i*lineH, ln, appColorText, content)
	}
}

func (d *DocViewer) HandleClick(x, y int) bool       { return false }
func (d *DocViewer) HandleChar(ch byte)               {}
func (d *DocViewer) HandleSpecial(code byte)          {}
func (d *DocViewer) TypingRect(content Rect) Rect     { return Rect{} }

// ErrorApp displays a .pa parse failure, per spec.md §4.8/§7: the desktop
// substitutes this app when ParseApp fails.
type ErrorApp struct {
	message string
}

func NewErrorApp(err error) *ErrorApp {
	return &ErrorApp{message: err.Error()}
}

func (a *ErrorApp) Render(c *Compositor, content Rect) {
	c.DrawTextClipped(int(content.X)+2, int(content.Y)+2, a.message, 0xFFAA0000, content)
}

func (a *ErrorApp) HandleClick(x, y int) bool   { return false }
func (a *ErrorApp) HandleChar(ch byte)          {}
func (a *ErrorApp) HandleSpecial(code byte)     {}
func (a *ErrorApp) TypingRect(content Rect) Rect { return Rect{} }
