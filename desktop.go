// desktop.go - taskbar, start menu, and app lifecycle/dispatch, per
// spec.md §4.7's "Desktop" responsibility, with the start-menu entry
// list and app-launch dispatch modeled on
// original_source/kernel/src/gui/start_menu.rs.

package main

import (
	"fmt"
	"strings"
)

const (
	taskbarHeight  = 32
	startButtonW   = 64
	menuItemHeight = 22
	menuWidth      = 180
)

var colorTaskbarBG uint32 = 0xFF222222
var colorStartBtn uint32 = 0xFF3355AA

// MenuItem is one start-menu entry: a display name and an app identifier,
// either a built-in app name ("editor", "explorer", "terminal", "docs")
// or a filesystem path to a .pa file.
type MenuItem struct {
	Name  string
	AppID string
}

// StartMenu is the app launcher popup, adapted from the original's
// StartMenu (gui/start_menu.rs): built-ins first, then every `.pa` file
// under the default drive's "apps" directory.
type StartMenu struct {
	Visible bool
	Items   []MenuItem
	hover   int
}

func NewStartMenu(dm *DriveManager) *StartMenu {
	m := &StartMenu{hover: -1}
	m.refresh(dm)
	return m
}

func (m *StartMenu) refresh(dm *DriveManager) {
	m.Items = []MenuItem{
		{"Code Editor", "editor"},
		{"File Explorer", "explorer"},
		{"Terminal", "terminal"},
		{"Documentation", "docs"},
	}
	if dm == nil || dm.Default == nil {
		return
	}
	for _, e := range dm.Default.ListDirectory("apps") {
		name := strings.TrimPrefix(entryName(&e), "apps/")
		if e.Type != EntryEmpty && strings.HasSuffix(name, ".pa") {
			m.Items = append(m.Items, MenuItem{formatAppName(strings.TrimSuffix(name, ".pa")), "apps/" + name})
		}
	}
}

// formatAppName turns "settings_flex" into "Settings Flex", matching the
// original's Self::format_app_name.
func formatAppName(id string) string {
	var b strings.Builder
	capNext := true
	for _, c := range id {
		switch {
		case c == '_' || c == '-':
			b.WriteByte(' ')
			capNext = true
		case capNext:
			b.WriteRune(toUpperASCII(c))
			capNext = false
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

func (m *StartMenu) bounds(screenH int) Rect {
	h := len(m.Items)*menuItemHeight + 8
	return Rect{X: 4, Y: int32(screenH - taskbarHeight - h), W: menuWidth, H: h}
}

// hostAdapter implements ScriptHost over a DriveManager, resolving the
// "drive" argument scripts pass through listDrives()/readFile(drive,...)
// to the matching MountedDrive (spec.md §4.9's filesystem surface).
type hostAdapter struct {
	dm *DriveManager
}

func (h *hostAdapter) drive(name string) (*MountedDrive, error) {
	if h.dm == nil {
		return nil, &FSError{"host", "no drive manager"}
	}
	if d, ok := h.dm.ByName(name); ok {
		return d, nil
	}
	return nil, &FSError{"host", "drive not found: " + name}
}

func (h *hostAdapter) ListDrives() []string {
	if h.dm == nil {
		return nil
	}
	var names []string
	for _, d := range h.dm.Drives() {
		names = append(names, d.Name)
	}
	return names
}

func (h *hostAdapter) ListFiles(drive string) ([]string, error) {
	d, err := h.drive(drive)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range d.ListFiles() {
		names = append(names, entryName(&e))
	}
	return names, nil
}

func (h *hostAdapter) ReadFile(drive, name string) (string, error) {
	d, err := h.drive(drive)
	if err != nil {
		return "", err
	}
	data, err := d.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (h *hostAdapter) WriteFile(drive, name, content string) error {
	d, err := h.drive(drive)
	if err != nil {
		return err
	}
	return d.WriteFile(name, []byte(content))
}

func (h *hostAdapter) CreateFile(drive, name string) error {
	d, err := h.drive(drive)
	if err != nil {
		return err
	}
	return d.CreateFile(name, false)
}

func (h *hostAdapter) CreateDir(drive, name string) error {
	d, err := h.drive(drive)
	if err != nil {
		return err
	}
	return d.CreateFile(name, true)
}

func (h *hostAdapter) DeleteFile(drive, name string) error {
	d, err := h.drive(drive)
	if err != nil {
		return err
	}
	return d.DeleteFile(name)
}

func (h *hostAdapter) FileExists(drive, name string) bool {
	d, err := h.drive(drive)
	if err != nil {
		return false
	}
	return d.FileExists(name)
}

func (h *hostAdapter) FileSize(drive, name string) (int, error) {
	d, err := h.drive(drive)
	if err != nil {
		return 0, err
	}
	return d.FileSize(name)
}

func (h *hostAdapter) IsDir(drive, name string) (bool, error) {
	d, err := h.drive(drive)
	if err != nil {
		return false, err
	}
	return d.IsDir(name)
}

func (h *hostAdapter) Print(msg string) {
	fmt.Println("[script]", msg)
}

// Desktop owns the window manager, the mounted drives, and the taskbar /
// start-menu chrome, and dispatches app launches (spec.md §4.7's
// "Desktop: taskbar, start menu, app lifecycle, dispatch").
type Desktop struct {
	wm        *WindowManager
	dm        *DriveManager
	kb        *Keyboard
	mouse     *Mouse
	startMenu *StartMenu
	host      *hostAdapter

	screenW, screenH int
	prevLeft         bool
	cascade          int
}

func NewDesktop(wm *WindowManager, dm *DriveManager, kb *Keyboard, mouse *Mouse, screenW, screenH int) *Desktop {
	d := &Desktop{
		wm: wm, dm: dm, kb: kb, mouse: mouse,
		startMenu: NewStartMenu(dm),
		host:      &hostAdapter{dm: dm},
		screenW:   screenW, screenH: screenH,
	}
	return d
}

func (d *Desktop) startButtonRect() Rect {
	return Rect{X: 4, Y: int32(d.screenH - taskbarHeight + 4), W: startButtonW, H: taskbarHeight - 8}
}

// Tick drains the keyboard and mouse drivers and routes events into the
// window manager and desktop chrome, the main loop's per-frame poll
// (spec.md §5: "Polling means the main loop drains rings between render
// frames").
func (d *Desktop) Tick(c *Compositor) {
	for {
		ch, ok := d.kb.PopChar()
		if !ok {
			break
		}
		d.wm.HandleChar(ch)
	}
	for {
		code, ok := d.kb.PopSpecial()
		if !ok {
			break
		}
		d.wm.HandleSpecial(code)
	}
	for {
		letter, ok := d.kb.PopCtrl()
		if !ok {
			break
		}
		d.handleCtrlCombo(letter)
	}

	mx, my := d.mouse.Position()
	left, _ := d.mouse.Buttons()
	pressed := left && !d.prevLeft
	released := !left && d.prevLeft
	d.prevLeft = left

	if pressed {
		d.handlePress(int32(mx), int32(my))
	}
	if left {
		d.wm.HandleMouseMove(c, int32(mx), int32(my))
	}
	if released {
		d.wm.HandleMouseRelease(c, int32(mx), int32(my))
	}

	d.wm.FlushDirty(c, colorWindowBG)
	d.renderTaskbar(c)
}

func (d *Desktop) handlePress(x, y int32) {
	if d.startMenu.Visible {
		b := d.startMenu.bounds(d.screenH)
		if b.ContainsPoint(x, y) {
			idx := int((y - b.Y - 4) / menuItemHeight)
			if idx >= 0 && idx < len(d.startMenu.Items) {
				appID := d.startMenu.Items[idx].AppID
				d.startMenu.Visible = false
				d.LaunchApp(appID)
			}
			return
		}
		d.startMenu.Visible = false
	}
	if d.startButtonRect().ContainsPoint(x, y) {
		d.startMenu.Visible = !d.startMenu.Visible
		if d.startMenu.Visible {
			d.startMenu.refresh(d.dm)
		}
		return
	}
	d.wm.HandleMousePress(x, y)
}

// handleCtrlCombo implements the editor's Ctrl+S save path; other combos
// (a,c,v,x,z — select-all/copy/paste/cut/undo) are accepted by the ring
// but have no built-in app wired to them (spec.md non-goal: app content).
func (d *Desktop) handleCtrlCombo(letter byte) {
	if letter != 's' {
		return
	}
	w := d.wm.topmostVisible()
	if w == nil {
		return
	}
	if ed, ok := w.NativeApp.(*Editor); ok {
		ed.Save()
		d.wm.pushDirty(DirtyRegion{Kind: DirtyContentOnly, ID: w.ID})
	}
}

// renderTaskbar draws the bottom 32px bar with the start button, per
// end-to-end scenario 1 in spec.md §8.
func (d *Desktop) renderTaskbar(c *Compositor) {
	bar := Rect{X: 0, Y: int32(d.screenH - taskbarHeight), W: d.screenW, H: taskbarHeight}
	c.FillRect(bar, colorTaskbarBG)
	btn := d.startButtonRect()
	c.FillRect(btn, colorStartBtn)
	c.DrawText(int(btn.X)+6, int(btn.Y)+6, "Start", colorTitleFG)

	x := startButtonW + 16
	for _, id := range d.wm.zorder {
		w := d.wm.byID(id)
		if w == nil || !w.Visible {
			continue
		}
		label := w.Title
		if len(label) > 12 {
			label = label[:12]
		}
		c.DrawText(x, int(bar.Y)+12, label, colorTitleFG)
		x += len(label)*8 + 16
	}

	if d.startMenu.Visible {
		b := d.startMenu.bounds(d.screenH)
		c.FillRect(b, colorWindowBG)
		c.BorderRect(b, colorBorder)
		for i, item := range d.startMenu.Items {
			y := int(b.Y) + 4 + i*menuItemHeight
			c.DrawText(int(b.X)+8, y+6, item.Name, colorTitleFG^0xFFFFFF)
		}
	}
}

// nextCascadePos returns a cascading default window position so that
// successive launches with no explicit x/y don't stack exactly.
func (d *Desktop) nextCascadePos() (int32, int32) {
	pos := d.cascade % 8
	d.cascade++
	return int32(40 + pos*24), int32(40 + pos*24)
}

// LaunchApp dispatches an app identifier: a built-in name, or a .pa path
// on the default drive (spec.md §6's ".pa file" external interface).
func (d *Desktop) LaunchApp(appID string) {
	switch appID {
	case "editor":
		d.launchNative("Editor", 420, 320, NewEditor(d.defaultDrive(), ""))
		return
	case "explorer":
		d.launchNative("Explorer", 360, 300, NewExplorer(d.dm, d.openInEditor))
		return
	case "terminal":
		d.launchNative("Terminal", 480, 260, NewTerminal(d.dm))
		return
	case "docs":
		d.launchNative("Documentation", 400, 320, NewDocViewer(""))
		return
	}
	d.launchPaFile(appID)
}

func (d *Desktop) defaultDrive() *MountedDrive {
	if d.dm == nil {
		return nil
	}
	return d.dm.Default
}

func (d *Desktop) openInEditor(drive *MountedDrive, name string) {
	w := &Window{Title: name, Visible: true, NativeApp: NewEditor(drive, name)}
	x, y := d.nextCascadePos()
	w.Bounds = Rect{X: x, Y: y, W: 420, H: 320}
	d.wm.AddWindow(w)
}

func (d *Desktop) launchNative(title string, w, h int, app NativeApp) {
	win := &Window{Title: title, Visible: true, NativeApp: app}
	x, y := d.nextCascadePos()
	win.Bounds = Rect{X: x, Y: y, W: w, H: h}
	d.wm.AddWindow(win)
}

// launchPaFile reads, parses, and opens a declarative .pa app; a parse
// failure opens an "error" app instead, per spec.md §4.8/§7.
func (d *Desktop) launchPaFile(path string) {
	drive := d.defaultDrive()
	if drive == nil {
		d.openErrorWindow(&FSError{"launch", "no default drive"})
		return
	}
	data, err := drive.ReadFile(path)
	if err != nil {
		d.openErrorWindow(err)
		return
	}
	doc, err := ParseApp(string(data))
	if err != nil {
		d.openErrorWindow(err)
		return
	}
	d.openAppDoc(doc)
}

func (d *Desktop) openAppDoc(doc *AppDoc) {
	w := &Window{Title: doc.Title, Visible: true, Elements: doc.Root, OriginalSize: [2]int{doc.Width, doc.Height}}
	if doc.HasXY {
		w.Bounds = Rect{X: int32(doc.X), Y: int32(doc.Y), W: doc.Width, H: doc.Height}
	} else {
		x, y := d.nextCascadePos()
		w.Bounds = Rect{X: x, Y: y, W: doc.Width, H: doc.Height}
	}
	if doc.Script != "" {
		engine, err := NewEngine(doc.Script, d.host)
		if err != nil {
			d.openErrorWindow(err)
			return
		}
		w.Script = engine
	}
	d.wm.AddWindow(w)
}

// openErrorWindow opens the "error" app substitute of spec.md §4.8: a
// window titled "Parse Error" whose body contains the failure message.
func (d *Desktop) openErrorWindow(err error) {
	w := &Window{Title: "Parse Error", Visible: true, NativeApp: NewErrorApp(err)}
	x, y := d.nextCascadePos()
	w.Bounds = Rect{X: x, Y: y, W: 320, H: 120}
	d.wm.AddWindow(w)
}
