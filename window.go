// window.go - window objects, z-order, the drag/resize FSM, input
// routing, and the dirty-region compositor dispatch, per spec.md §4.7.

package main

const (
	maxWindows     = 32
	titleBarHeight = 24
	resizeHandle   = 16
	minWindowW     = 80
	minWindowH     = 60
	closeButtonW   = 20
)

// NativeApp is the contract any built-in app (editor, explorer,
// terminal, doc viewer) must expose to the window core, matching
// spec.md §3's native_app_slot tagged variant.
type NativeApp interface {
	Render(c *Compositor, content Rect)
	HandleClick(x, y int) bool
	HandleChar(ch byte)
	HandleSpecial(code byte)
	TypingRect(content Rect) Rect
}

// dynamicLabel records where an interpolated label was last painted so
// variable changes can repaint only that rectangle (spec.md §4.7).
type dynamicLabel struct {
	El       *Element
	Rect     Rect
	Template string
}

// Window is one desktop window: bounds, title, element tree, script VM,
// and at most one native app.
type Window struct {
	ID           int
	Title        string
	Bounds       Rect
	Visible      bool
	Elements     []*Element
	OriginalSize [2]int
	Script       *Engine
	NativeApp    NativeApp
	DynamicLabels []dynamicLabel
}

func (w *Window) contentRect() Rect {
	return Rect{
		X: w.Bounds.X + 1,
		Y: w.Bounds.Y + int32(titleBarHeight),
		W: max0(w.Bounds.W - 2),
		H: max0(w.Bounds.H - titleBarHeight - 1),
	}
}

func (w *Window) titleBarRect() Rect {
	return Rect{X: w.Bounds.X, Y: w.Bounds.Y, W: w.Bounds.W, H: titleBarHeight}
}

func (w *Window) closeButtonRect() Rect {
	return Rect{X: w.Bounds.X + int32(w.Bounds.W-closeButtonW), Y: w.Bounds.Y, W: closeButtonW, H: titleBarHeight}
}

func (w *Window) resizeHandleRect() Rect {
	return Rect{
		X: w.Bounds.X + int32(w.Bounds.W-resizeHandle),
		Y: w.Bounds.Y + int32(w.Bounds.H-resizeHandle),
		W: resizeHandle, H: resizeHandle,
	}
}

// DragMode names the drag/resize FSM's state.
type DragMode int

const (
	DragNone DragMode = iota
	DragDragging
	DragResizing
)

type dragState struct {
	mode         DragMode
	targetID     int
	grabOffsetX  int32
	grabOffsetY  int32
	outlineRect  Rect
	originalRect Rect
	originX, originY int32
}

// DirtyKind tags a DirtyRegion's variant (spec.md §3).
type DirtyKind int

const (
	DirtyFullWindow DirtyKind = iota
	DirtyContentOnly
	DirtyTypingOnly
	DirtyRectFromWindow
	DirtyRect
)

type DirtyRegion struct {
	Kind DirtyKind
	ID   int
	Rect Rect
}

// WindowManager owns every window, the z-order permutation, the
// drag/resize FSM, and the dirty list. Pending script actions are held by
// each window's Engine and read back through applyPending.
type WindowManager struct {
	windows [maxWindows]*Window
	zorder  []int
	nextID  int
	drag    dragState
	dirty   []DirtyRegion
	cursor  *Cursor
	focus   int // window ID with keyboard focus, -1 if none
}

func NewWindowManager(cursor *Cursor) *WindowManager {
	return &WindowManager{cursor: cursor, focus: -1}
}

// AddWindow inserts a window into the first free slot and brings it to
// front.
func (wm *WindowManager) AddWindow(w *Window) {
	w.ID = wm.nextID
	wm.nextID++
	slot := w.ID % maxWindows
	wm.windows[slot] = w
	wm.zorder = append(wm.zorder, w.ID)
	wm.focus = w.ID
	wm.pushDirty(DirtyRegion{Kind: DirtyFullWindow, ID: w.ID})
}

func (wm *WindowManager) byID(id int) *Window {
	w := wm.windows[id%maxWindows]
	if w != nil && w.ID == id {
		return w
	}
	return nil
}

// BringToFront shifts intermediate z-order entries down and appends id.
func (wm *WindowManager) BringToFront(id int) {
	idx := -1
	for i, z := range wm.zorder {
		if z == id {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(wm.zorder)-1 {
		return
	}
	wm.zorder = append(wm.zorder[:idx], wm.zorder[idx+1:]...)
	wm.zorder = append(wm.zorder, id)
}

func (wm *WindowManager) topmostVisible() *Window {
	for i := len(wm.zorder) - 1; i >= 0; i-- {
		if w := wm.byID(wm.zorder[i]); w != nil && w.Visible {
			return w
		}
	}
	return nil
}

func (wm *WindowManager) pushDirty(r DirtyRegion) {
	wm.dirty = append(wm.dirty, r)
}

// HandleMousePress implements the front-to-back scan of spec.md §4.7.
func (wm *WindowManager) HandleMousePress(x, y int32) {
	for i := len(wm.zorder) - 1; i >= 0; i-- {
		w := wm.byID(wm.zorder[i])
		if w == nil || !w.Visible {
			continue
		}
		if !w.Bounds.ContainsPoint(x, y) {
			continue
		}
		if w.closeButtonRect().ContainsPoint(x, y) {
			wm.pushDirty(DirtyRegion{Kind: DirtyRect, Rect: w.Bounds})
			w.Visible = false
			return
		}
		if w.resizeHandleRect().ContainsPoint(x, y) {
			wm.drag = dragState{
				mode: DragResizing, targetID: w.ID,
				outlineRect: w.Bounds, originalRect: w.Bounds,
				originX: x, originY: y,
			}
			return
		}
		if w.titleBarRect().ContainsPoint(x, y) {
			wm.drag = dragState{
				mode: DragDragging, targetID: w.ID,
				grabOffsetX: x - w.Bounds.X, grabOffsetY: y - w.Bounds.Y,
				outlineRect: w.Bounds, originalRect: w.Bounds,
			}
			return
		}
		// Content: bring to front, then forward the hit.
		if wm.zorder[len(wm.zorder)-1] != w.ID {
			wm.BringToFront(w.ID)
			wm.pushDirty(DirtyRegion{Kind: DirtyFullWindow, ID: w.ID})
		}
		wm.focus = w.ID
		wm.dispatchClick(w, x, y)
		return
	}
}

func (wm *WindowManager) dispatchClick(w *Window, x, y int32) {
	content := w.contentRect()
	if w.NativeApp != nil {
		if w.NativeApp.HandleClick(int(x-content.X), int(y-content.Y)) {
			wm.pushDirty(DirtyRegion{Kind: DirtyContentOnly, ID: w.ID})
		}
		return
	}
	laid := flattenLayout(w.Elements, content)
	for _, le := range laid {
		if le.El.Kind == ElButton && le.Rect.ContainsPoint(x, y) {
			if w.Script != nil {
				handler := le.El.Attr("onclick", "")
				if handler != "" {
					w.Script.CallHandler(handler)
					wm.applyPending(w)
				}
			}
			wm.pushDirty(DirtyRegion{Kind: DirtyContentOnly, ID: w.ID})
			return
		}
	}
}

// applyPending reads and clears the script engine's pending action,
// translating it into window manager effects without the VM ever
// holding a pointer back into the manager.
func (wm *WindowManager) applyPending(w *Window) {
	if w.Script == nil {
		return
	}
	action := w.Script.TakePending()
	if action == nil {
		return
	}
	switch action.Kind {
	case "close":
		wm.pushDirty(DirtyRegion{Kind: DirtyRect, Rect: w.Bounds})
		w.Visible = false
	case "minimize":
		w.Visible = false
	case "open":
		if target := wm.byID(action.Target); target != nil {
			target.Visible = true
			wm.BringToFront(target.ID)
			wm.pushDirty(DirtyRegion{Kind: DirtyFullWindow, ID: target.ID})
		}
	}
}

func flattenLayout(elements []*Element, content Rect) []LaidOutElement {
	var out []LaidOutElement
	for _, el := range elements {
		switch el.Kind {
		case ElVBox:
			out = append(out, LayoutBox(el, content, true)...)
		case ElHBox:
			out = append(out, LayoutBox(el, content, false)...)
		default:
			out = append(out, LaidOutElement{El: el, Rect: content})
		}
	}
	return out
}

// HandleMouseMove drives the Dragging/Resizing states (spec.md §4.7's
// FSM table). During an active drag the cursor is not drawn.
func (wm *WindowManager) HandleMouseMove(c *Compositor, x, y int32) {
	if wm.drag.mode != DragNone && wm.cursor != nil {
		wm.cursor.Hide(c)
	}
	switch wm.drag.mode {
	case DragDragging:
		c.XOROutline(wm.drag.outlineRect)
		nx := x - wm.drag.grabOffsetX
		ny := y - wm.drag.grabOffsetY
		wm.drag.outlineRect = Rect{X: nx, Y: ny, W: wm.drag.originalRect.W, H: wm.drag.originalRect.H}
		c.XOROutline(wm.drag.outlineRect)
	case DragResizing:
		c.XOROutline(wm.drag.outlineRect)
		w := max0(int(x-wm.drag.originalRect.X))
		h := max0(int(y-wm.drag.originalRect.Y))
		if w < minWindowW {
			w = minWindowW
		}
		if h < minWindowH {
			h = minWindowH
		}
		wm.drag.outlineRect = Rect{X: wm.drag.originalRect.X, Y: wm.drag.originalRect.Y, W: w, H: h}
		c.XOROutline(wm.drag.outlineRect)
	default:
		if wm.cursor != nil {
			wm.cursor.MoveTo(c, int(x), int(y))
		}
	}
}

// HandleMouseRelease commits a drag or resize, per the FSM table.
func (wm *WindowManager) HandleMouseRelease(c *Compositor, x, y int32) {
	switch wm.drag.mode {
	case DragDragging:
		c.XOROutline(wm.drag.outlineRect)
		w := wm.byID(wm.drag.targetID)
		if w != nil {
			w.Bounds = wm.drag.outlineRect
			wm.pushDirty(DirtyRegion{Kind: DirtyRectFromWindow, ID: w.ID, Rect: wm.drag.originalRect})
			if wm.zorder[len(wm.zorder)-1] == w.ID {
				wm.pushDirty(DirtyRegion{Kind: DirtyFullWindow, ID: w.ID})
			}
		}
	case DragResizing:
		c.XOROutline(wm.drag.outlineRect)
		w := wm.byID(wm.drag.targetID)
		if w != nil {
			w.Bounds = wm.drag.outlineRect
			wm.pushDirty(DirtyRegion{Kind: DirtyFullWindow, ID: w.ID})
		}
	}
	wm.drag = dragState{}
	if wm.cursor != nil {
		wm.cursor.MoveTo(c, int(x), int(y))
	}
}

// HandleChar delivers a character to the topmost visible window only.
func (wm *WindowManager) HandleChar(ch byte) {
	w := wm.topmostVisible()
	if w == nil {
		return
	}
	if w.NativeApp != nil {
		w.NativeApp.HandleChar(ch)
		wm.pushDirty(DirtyRegion{Kind: DirtyTypingOnly, ID: w.ID})
	}
}

// HandleSpecial delivers a navigation/function key to the topmost window.
func (wm *WindowManager) HandleSpecial(code byte) {
	w := wm.topmostVisible()
	if w == nil {
		return
	}
	if w.NativeApp != nil {
		w.NativeApp.HandleSpecial(code)
		wm.pushDirty(DirtyRegion{Kind: DirtyTypingOnly, ID: w.ID})
	}
}

// paintStrength ranks the repaint kinds so FlushDirty can keep, per
// window, the strongest one requested this pass and collapse duplicate
// dirty entries (spec.md §4.7).
type paintStrength int

const (
	paintNone paintStrength = iota
	paintTyping
	paintContent
	paintFull
)

// FlushDirty dispatches every queued DirtyRegion to the compositor and
// clears the queue, in insertion order (spec.md §5): background fills run
// as they are dequeued, then each window's collapsed repaint runs once, in
// the order the window first appeared in the queue.
func (wm *WindowManager) FlushDirty(c *Compositor, backgroundColor uint32) {
	strength := map[int]paintStrength{}
	var order []int
	rectPasses := wm.dirty
	wm.dirty = nil

	bump := func(id int, s paintStrength) {
		if _, seen := strength[id]; !seen {
			order = append(order, id)
		}
		if strength[id] < s {
			strength[id] = s
		}
	}

	for _, d := range rectPasses {
		switch d.Kind {
		case DirtyTypingOnly:
			bump(d.ID, paintTyping)
		case DirtyContentOnly:
			bump(d.ID, paintContent)
		case DirtyFullWindow:
			bump(d.ID, paintFull)
		case DirtyRectFromWindow:
			c.FillRect(d.Rect, backgroundColor)
			for _, zid := range wm.belowInZOrder(d.ID) {
				if w := wm.byID(zid); w != nil && w.Visible && w.Bounds.Intersects(d.Rect) {
					bump(zid, paintFull)
				}
			}
		case DirtyRect:
			c.FillRect(d.Rect, backgroundColor)
			for _, zid := range wm.zorder {
				if w := wm.byID(zid); w != nil && w.Visible && w.Bounds.Intersects(d.Rect) {
					bump(zid, paintFull)
				}
			}
		}
	}

	for _, id := range order {
		s := strength[id]
		w := wm.byID(id)
		if w == nil {
			continue
		}
		switch s {
		case paintTyping:
			wm.renderTyping(c, w)
		case paintContent:
			wm.renderContent(c, w)
		case paintFull:
			wm.renderWindow(c, w)
		}
	}
}

// belowInZOrder returns window IDs strictly below id in z-order.
func (wm *WindowManager) belowInZOrder(id int) []int {
	idx := -1
	for i, z := range wm.zorder {
		if z == id {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return nil
	}
	return wm.zorder[:idx]
}

const (
	colorWindowBG = 0xFFCCCCCC
	colorBorder   = 0xFF333333
	colorTitleBG  = 0xFF3355AA
	colorTitleFG  = 0xFFFFFFFF
)

func (wm *WindowManager) renderWindow(c *Compositor, w *Window) {
	if !w.Visible {
		return
	}
	c.FillRect(w.Bounds, colorWindowBG)
	c.BorderRect(w.Bounds, colorBorder)
	c.FillRect(w.titleBarRect(), colorTitleBG)
	c.DrawText(int(w.Bounds.X)+4, int(w.Bounds.Y)+8, w.Title, colorTitleFG)
	c.DrawText(int(w.closeButtonRect().X)+4, int(w.Bounds.Y)+8, "x", colorTitleFG)
	wm.renderContent(c, w)
}

func (wm *WindowManager) renderContent(c *Compositor, w *Window) {
	if !w.Visible {
		return
	}
	content := w.contentRect()
	c.FillRectClipped(content, content, colorWindowBG)
	if w.NativeApp != nil {
		w.NativeApp.Render(c, content)
		return
	}
	w.DynamicLabels = w.DynamicLabels[:0]
	wm.renderElements(c, w, w.Elements, content)
}

func (wm *WindowManager) renderElements(c *Compositor, w *Window, elements []*Element, clip Rect) {
	for _, le := range flattenLayout(elements, clip) {
		wm.renderElement(c, w, le.El, le.Rect, clip)
	}
}

func (wm *WindowManager) renderElement(c *Compositor, w *Window, el *Element, r Rect, clip Rect) {
	switch el.Kind {
	case ElLabel:
		text := el.Attr("text", "")
		if w.Script != nil && containsBrace(text) {
			text = w.Script.interpolate(text, w.Script.globals)
			w.DynamicLabels = append(w.DynamicLabels, dynamicLabel{El: el, Rect: r, Template: el.Attr("text", "")})
		}
		c.DrawTextClipped(int(r.X), int(r.Y), text, colorTitleFG^0xFFFFFF, clip)
	case ElButton:
		c.FillRectClipped(r, clip, 0xFFAAAAAA)
		c.BorderRectClipped(r, clip, colorBorder)
		c.DrawTextClipped(int(r.X)+2, int(r.Y)+2, el.Attr("text", ""), 0xFF000000, clip)
	case ElTextbox:
		c.FillRectClipped(r, clip, 0xFFFFFFFF)
		c.BorderRectClipped(r, clip, colorBorder)
		c.DrawTextClipped(int(r.X)+2, int(r.Y)+2, el.Attr("text", ""), 0xFF000000, clip)
	case ElPanel, ElVBox, ElHBox:
		wm.renderElements(c, w, el.Children, r)
	case ElSpacer:
		// nothing to draw
	}
}

func containsBrace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			return true
		}
	}
	return false
}

// renderTyping repaints only the native app's typing rect (editor cursor
// line or terminal input line), the cheapest dirty variant.
func (wm *WindowManager) renderTyping(c *Compositor, w *Window) {
	if !w.Visible || w.NativeApp == nil {
		return
	}
	content := w.contentRect()
	r := w.NativeApp.TypingRect(content)
	c.FillRectClipped(r, content, colorWindowBG)
	w.NativeApp.Render(c, content)
}

// RefreshDynamicLabels repaints only the rectangles of the dynamic labels
// recorded by the last render (spec.md §4.7). Every recorded label is
// redrawn; which variables changed is not checked.
func (wm *WindowManager) RefreshDynamicLabels(c *Compositor, w *Window) {
	if w.Script == nil {
		return
	}
	for _, dl := range w.DynamicLabels {
		c.FillRect(dl.Rect, colorWindowBG)
		text := w.Script.interpolate(dl.Template, w.Script.globals)
		c.DrawText(int(dl.Rect.X), int(dl.Rect.Y), text, 0xFF000000)
	}
}
