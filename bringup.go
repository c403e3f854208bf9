// bringup.go - the one place every subsystem is constructed and wired
// together, in the order a real boot sequence brings hardware up:
// I/O bus, descriptor tables, interrupt controller, timer, input
// devices, storage, video, then the desktop built on top, in the same
// bus-then-controllers-then-peripherals order a bootstrap sequence
// would follow.

package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultScreenW = 640
	defaultScreenH = 480
)

// Config selects the disk images and presentation mode for one machine
// instance; populated from flags in main.go.
type Config struct {
	DiskPaths   []string
	ScreenW     int
	ScreenH     int
	ScreenScale int
	Headless    bool
}

// Machine owns every emulated subsystem plus the compositing pipeline
// and desktop shell built on top of them.
type Machine struct {
	bus   *IOBus
	gdt   *GDT
	idt   *IDT
	pic   *PIC
	timer *Timer
	kb    *Keyboard
	mouse *Mouse
	ata   *ATABus
	dm    *DriveManager

	heap *Arena
	fb   *Framebuffer
	back *BackBuffer
	comp *Compositor
	cur  *Cursor
	wm   *WindowManager
	desk *Desktop

	screenW, screenH int
}

// NewMachine runs the full bring-up sequence: bus, tables, controller,
// timer, input devices, storage, then the video/window/desktop stack,
// per spec.md §4.1-§4.7.
func NewMachine(cfg Config) (*Machine, error) {
	w, h := cfg.ScreenW, cfg.ScreenH
	if w == 0 {
		w = defaultScreenW
	}
	if h == 0 {
		h = defaultScreenH
	}

	m := &Machine{screenW: w, screenH: h}

	m.bus = NewIOBus()
	m.gdt = NewGDT()
	m.gdt.Load()
	m.pic = NewPIC(m.bus)
	m.pic.Init()
	m.idt = NewIDT(m.gdt, m.pic)
	m.timer = NewTimer(m.bus)
	m.timer.Init()
	m.idt.Register(vectorTimer, func() {
		m.timer.Tick()
		m.pic.EOI(0)
	})
	m.pic.SetMask(0, true)

	m.kb = NewKeyboard()
	m.idt.Register(vectorKeyboard, func() { m.pic.EOI(1) })
	m.pic.SetMask(1, true)

	m.mouse = NewMouse(w, h)
	m.idt.Register(vectorMouse, func() { m.pic.EOI(12) })
	m.pic.SetMask(12, true)

	m.ata = NewATABus(m.bus)
	if len(cfg.DiskPaths) == 0 {
		return nil, &ATAError{"bringup", "no disk images configured"}
	}
	locations := []DriveLocation{PrimaryMaster, PrimarySlave, SecondaryMaster, SecondarySlave}
	for i, path := range cfg.DiskPaths {
		if i >= len(locations) {
			break
		}
		if err := m.ata.AttachImage(locations[i], path); err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
	}
	dm, err := NewDriveManager(m.ata)
	if err != nil {
		return nil, err
	}
	m.dm = dm

	frameSize := w * h * 4
	m.heap = NewArena(frameSize * 3) // framebuffer + back buffer + headroom for window content buffers
	if _, err := m.heap.Alloc(frameSize); err != nil {
		return nil, err
	}
	if _, err := m.heap.Alloc(frameSize); err != nil {
		return nil, err
	}

	pixels := make([]byte, frameSize)
	fb, err := NewFramebuffer(pixels, w, h, w*4, 4, FormatRGB)
	if err != nil {
		return nil, err
	}
	m.fb = fb
	m.back = NewBackBuffer(frameSize)
	m.comp = NewCompositor(m.fb, m.back)
	m.cur = NewCursor(0xFF000000)

	m.wm = NewWindowManager(m.cur)
	m.desk = NewDesktop(m.wm, m.dm, m.kb, m.mouse, w, h)

	return m, nil
}

// Step advances one frame: the desktop drains pending input, repaints
// dirty regions, and the back buffer swaps to the front.
func (m *Machine) Step() {
	m.desk.Tick(m.comp)
	m.comp.Swap()
}

// RunDrivers starts the timer's periodic IRQ0 goroutine under an
// errgroup, stopping cleanly when ctx is cancelled, so a panic or exit
// in one driver goroutine is observable and the rest can be cancelled
// together.
func (m *Machine) RunDrivers(ctx context.Context) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				m.idt.Dispatch(vectorTimer)
			}
		}
	})
	return g
}
