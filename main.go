// main.go - CLI entry point: parses the host process's configuration,
// runs bring-up, and hands off to whichever presentation backend this
// build was compiled with. The emulated boot surface itself takes no
// CLI, but the host loader standing in for it needs one to locate disk
// images and pick a backend.

package main

import (
	"context"
	"flag"
	"log"
	"strings"
)

func main() {
	var (
		disks    = flag.String("disks", "disk0.img", "comma-separated list of disk image paths, probed in ATA order")
		screenW  = flag.Int("width", defaultScreenW, "framebuffer width in pixels")
		screenH  = flag.Int("height", defaultScreenH, "framebuffer height in pixels")
		scale    = flag.Int("scale", 2, "integer scale factor applied to the host window")
		headless = flag.Bool("headless", false, "recorded in Config.Headless; not read by either backend, which is fixed at build time (-tags headless builds the windowless one)")
	)
	flag.Parse()

	cfg := Config{
		DiskPaths:   splitPaths(*disks),
		ScreenW:     *screenW,
		ScreenH:     *screenH,
		ScreenScale: *scale,
		Headless:    *headless,
	}

	log.Printf("deskvm: bringing up machine (%dx%d, %d disk(s))", cfg.ScreenW, cfg.ScreenH, len(cfg.DiskPaths))
	m, err := NewMachine(cfg)
	if err != nil {
		log.Fatalf("bringup failed: %v", err)
	}
	log.Printf("deskvm: %d drive(s) mounted, default=%v", len(m.dm.Drives()), driveName(m.dm.Default))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	drivers := m.RunDrivers(ctx)

	if err := runPresentation(m, cfg); err != nil {
		log.Fatalf("presentation backend exited: %v", err)
	}

	cancel()
	if err := drivers.Wait(); err != nil {
		log.Printf("driver supervisor: %v", err)
	}
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func driveName(d *MountedDrive) string {
	if d == nil {
		return "<none>"
	}
	return d.Name
}
