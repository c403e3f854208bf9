// fs.go - block-backed filesystem: superblock, free-block bitmap, fixed
// directory table, and a multi-drive mount layer, per spec.md §4.5.
//
// Grounded on the same host-file-backed I/O pattern as file_io.go (reads
// and writes go through a single sanitized, fixed-geometry surface) but
// layered over ata.go's sector transport instead of raw os.ReadFile calls.

package main

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

const (
	fsSectorSize = 512

	fsSectorReserved = 0
	fsReservedCount  = 100

	fsSectorSuper = 100

	fsSectorBitmap  = 101
	fsBitmapSectors = 8

	fsSectorDir = 109
	// spec.md's sector map states 8 sectors for 128 entries of 64 bytes,
	// but 128*64 = 8192 bytes = 16 sectors; 8 sectors only holds 64
	// entries. total_entries=128 is kept as the pinned superblock field,
	// and the on-disk region is sized to actually hold it, pushing the
	// data region's start out to 125 instead of 117. See DESIGN.md.
	fsDirSectors = 16

	fsSectorData = fsSectorDir + fsDirSectors

	fsMagic        uint32 = 0x4B465330 // "KFS0"
	fsVersion      uint32 = 1
	fsTotalBlocks  uint32 = 4096
	fsTotalEntries uint32 = 128
	fsBlockSize    uint32 = 512

	fsMaxBlocksPerFile = 64

	dirEntrySize = 64
	nameSize     = 32
)

// FSError is a short, static-message filesystem error, following the same
// shape as ATAError.
type FSError struct {
	Operation string
	Details   string
}

func (e *FSError) Error() string {
	return fmt.Sprintf("fs %s: %s", e.Operation, e.Details)
}

// Superblock is the on-disk layout header, one sector.
type Superblock struct {
	Magic        uint32
	Version      uint32
	TotalBlocks  uint32
	FreeBlocks   uint32
	TotalEntries uint32
	UsedEntries  uint32
	BlockSize    uint32
}

func (s *Superblock) encode() [fsSectorSize]byte {
	var buf [fsSectorSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], s.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], s.Version)
	binary.LittleEndian.PutUint32(buf[8:12], s.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[12:16], s.FreeBlocks)
	binary.LittleEndian.PutUint32(buf[16:20], s.TotalEntries)
	binary.LittleEndian.PutUint32(buf[20:24], s.UsedEntries)
	binary.LittleEndian.PutUint32(buf[24:28], s.BlockSize)
	return buf
}

func decodeSuperblock(buf [fsSectorSize]byte) Superblock {
	return Superblock{
		Magic:        binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint32(buf[4:8]),
		TotalBlocks:  binary.LittleEndian.Uint32(buf[8:12]),
		FreeBlocks:   binary.LittleEndian.Uint32(buf[12:16]),
		TotalEntries: binary.LittleEndian.Uint32(buf[16:20]),
		UsedEntries:  binary.LittleEndian.Uint32(buf[20:24]),
		BlockSize:    binary.LittleEndian.Uint32(buf[24:28]),
	}
}

// EntryType tags a directory slot's occupant.
type EntryType byte

const (
	EntryEmpty EntryType = iota
	EntryFile
	EntryDirectory
)

// DirEntry is one 64-byte fixed directory slot.
type DirEntry struct {
	Name       [nameSize]byte
	Type       EntryType
	Size       uint32
	FirstBlock uint32
	BlockCount uint32
	Created    uint32
	Modified   uint32
}

func (e *DirEntry) encode() [dirEntrySize]byte {
	var buf [dirEntrySize]byte
	copy(buf[0:nameSize], e.Name[:])
	buf[nameSize] = byte(e.Type)
	binary.LittleEndian.PutUint32(buf[36:40], e.Size)
	binary.LittleEndian.PutUint32(buf[40:44], e.FirstBlock)
	binary.LittleEndian.PutUint32(buf[44:48], e.BlockCount)
	binary.LittleEndian.PutUint32(buf[48:52], e.Created)
	binary.LittleEndian.PutUint32(buf[52:56], e.Modified)
	return buf
}

func decodeDirEntry(buf [dirEntrySize]byte) DirEntry {
	var e DirEntry
	copy(e.Name[:], buf[0:nameSize])
	e.Type = EntryType(buf[nameSize])
	e.Size = binary.LittleEndian.Uint32(buf[36:40])
	e.FirstBlock = binary.LittleEndian.Uint32(buf[40:44])
	e.BlockCount = binary.LittleEndian.Uint32(buf[44:48])
	e.Created = binary.LittleEndian.Uint32(buf[48:52])
	e.Modified = binary.LittleEndian.Uint32(buf[52:56])
	return e
}

func entryName(e *DirEntry) string {
	for i, b := range e.Name {
		if b == 0 {
			return string(e.Name[:i])
		}
	}
	return string(e.Name[:])
}

func setEntryName(e *DirEntry, name string) error {
	if len(name) > nameSize-1 {
		return &FSError{"name", "exceeds 31 bytes"}
	}
	var buf [nameSize]byte
	copy(buf[:], name)
	e.Name = buf
	return nil
}

// MountedDrive is one mounted filesystem volume: a display name, the ATA
// location backing it, and in-memory copies of the superblock, bitmap,
// and directory table that are authoritative between operations
// (spec.md §3, "Filesystem cache coherence").
type MountedDrive struct {
	mu sync.Mutex

	Name     string
	Location DriveLocation

	ata   *ATABus
	super Superblock
	bitmap []byte // fsBitmapSectors*fsSectorSize bytes; only the first TotalBlocks bits are meaningful
	dir    []DirEntry
}

func mountDrive(ata *ATABus, loc DriveLocation, name string) (*MountedDrive, error) {
	d := &MountedDrive{Name: name, Location: loc, ata: ata}
	sec, err := ata.ReadSector(loc, fsSectorSuper)
	if err != nil {
		return nil, &FSError{"mount", err.Error()}
	}
	super := decodeSuperblock(sec)
	if super.Magic == fsMagic {
		d.super = super
		if err := d.loadBitmap(); err != nil {
			return nil, err
		}
		if err := d.loadDir(); err != nil {
			return nil, err
		}
		return d, nil
	}
	if err := d.format(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MountedDrive) format() error {
	d.super = Superblock{
		Magic:        fsMagic,
		Version:      fsVersion,
		TotalBlocks:  fsTotalBlocks,
		FreeBlocks:   fsTotalBlocks,
		TotalEntries: fsTotalEntries,
		UsedEntries:  0,
		BlockSize:    fsBlockSize,
	}
	d.bitmap = make([]byte, fsBitmapSectors*fsSectorSize)
	d.dir = make([]DirEntry, fsTotalEntries)
	return d.flush()
}

func (d *MountedDrive) loadBitmap() error {
	raw, err := d.ata.ReadSectors(d.Location, fsSectorBitmap, fsBitmapSectors)
	if err != nil {
		return &FSError{"mount", err.Error()}
	}
	d.bitmap = raw
	return nil
}

func (d *MountedDrive) loadDir() error {
	raw, err := d.ata.ReadSectors(d.Location, fsSectorDir, fsDirSectors)
	if err != nil {
		return &FSError{"mount", err.Error()}
	}
	entries := make([]DirEntry, d.super.TotalEntries)
	for i := range entries {
		var buf [dirEntrySize]byte
		copy(buf[:], raw[i*dirEntrySize:(i+1)*dirEntrySize])
		entries[i] = decodeDirEntry(buf)
	}
	d.dir = entries
	return nil
}

// flush rewrites the superblock, bitmap, and directory sectors, the
// write-through durability model of spec.md §4.5 (no journaling).
func (d *MountedDrive) flush() error {
	if err := d.ata.WriteSector(d.Location, fsSectorSuper, d.super.encode()); err != nil {
		return &FSError{"flush", err.Error()}
	}
	if err := d.ata.WriteSectors(d.Location, fsSectorBitmap, d.bitmap); err != nil {
		return &FSError{"flush", err.Error()}
	}
	dirBuf := make([]byte, fsDirSectors*fsSectorSize)
	for i, e := range d.dir {
		enc := e.encode()
		copy(dirBuf[i*dirEntrySize:(i+1)*dirEntrySize], enc[:])
	}
	if err := d.ata.WriteSectors(d.Location, fsSectorDir, dirBuf); err != nil {
		return &FSError{"flush", err.Error()}
	}
	return nil
}

func bitSet(bitmap []byte, bit uint32) bool {
	return bitmap[bit/8]&(1<<(bit%8)) != 0
}

func setBitAt(bitmap []byte, bit uint32, v bool) {
	if v {
		bitmap[bit/8] |= 1 << (bit % 8)
	} else {
		bitmap[bit/8] &^= 1 << (bit % 8)
	}
}

// allocateBlock scans bit-by-bit for the first clear bit (spec.md §4.5).
func (d *MountedDrive) allocateBlock() (uint32, error) {
	for b := uint32(0); b < d.super.TotalBlocks; b++ {
		if !bitSet(d.bitmap, b) {
			setBitAt(d.bitmap, b, true)
			d.super.FreeBlocks--
			return b, nil
		}
	}
	return 0, &FSError{"allocate", "no free blocks"}
}

func (d *MountedDrive) freeBlockRun(first, count uint32) {
	for b := first; b < first+count; b++ {
		setBitAt(d.bitmap, b, false)
		d.super.FreeBlocks++
	}
}

func (d *MountedDrive) findEntry(name string) (int, bool) {
	for i := range d.dir {
		if d.dir[i].Type != EntryEmpty && entryName(&d.dir[i]) == name {
			return i, true
		}
	}
	return -1, false
}

func (d *MountedDrive) findFreeEntry() (int, bool) {
	for i := range d.dir {
		if d.dir[i].Type == EntryEmpty {
			return i, true
		}
	}
	return -1, false
}

// CreateFile adds a new directory entry of the given kind with no data
// blocks allocated yet.
func (d *MountedDrive) CreateFile(name string, isDir bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.findEntry(name); ok {
		return &FSError{"create", "name exists"}
	}
	idx, ok := d.findFreeEntry()
	if !ok {
		return &FSError{"create", "directory full"}
	}
	var e DirEntry
	if err := setEntryName(&e, name); err != nil {
		return err
	}
	if isDir {
		e.Type = EntryDirectory
	} else {
		e.Type = EntryFile
	}
	now := uint32(time.Now().Unix())
	e.Created = now
	e.Modified = now
	d.dir[idx] = e
	d.super.UsedEntries++
	return d.flush()
}

// WriteFile replaces the file's block run with freshly allocated,
// contiguous blocks holding data, per spec.md §4.5.
func (d *MountedDrive) WriteFile(name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.findEntry(name)
	if !ok {
		return &FSError{"write", "not found"}
	}
	e := &d.dir[idx]
	needed := (len(data) + fsSectorSize - 1) / fsSectorSize
	if needed > fsMaxBlocksPerFile {
		return &FSError{"write", "exceeds per-file block cap"}
	}

	if e.BlockCount > 0 {
		d.freeBlockRun(e.FirstBlock, e.BlockCount)
	}

	var first uint32
	allocated := make([]uint32, 0, needed)
	for i := 0; i < needed; i++ {
		b, err := d.allocateBlock()
		if err != nil {
			// Roll back this call's own allocations; the entry's prior
			// run was already freed above and is not recoverable, matching
			// spec.md §4.4's "partial failure aborts with no rollback"
			// for the underlying transport.
			for _, a := range allocated {
				setBitAt(d.bitmap, a, false)
				d.super.FreeBlocks++
			}
			return err
		}
		if i == 0 {
			first = b
		} else if b != first+uint32(i) {
			// Our own scan always returns ascending contiguous blocks on a
			// freshly-freed region, but guard the contiguity invariant
			// explicitly since allocateBlock is a generic first-fit scan.
			return &FSError{"write", "could not allocate contiguous run"}
		}
		allocated = append(allocated, b)
	}

	for i := 0; i < needed; i++ {
		var sec [fsSectorSize]byte
		start := i * fsSectorSize
		end := start + fsSectorSize
		if end > len(data) {
			end = len(data)
		}
		copy(sec[:], data[start:end])
		if err := d.ata.WriteSector(d.Location, fsSectorData+first+uint32(i), sec); err != nil {
			return &FSError{"write", err.Error()}
		}
	}

	e.Size = uint32(len(data))
	e.FirstBlock = first
	e.BlockCount = uint32(needed)
	e.Modified = uint32(time.Now().Unix())
	return d.flush()
}

// ReadFile reconstructs a file's bytes from its block run.
func (d *MountedDrive) ReadFile(name string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.findEntry(name)
	if !ok {
		return nil, &FSError{"read", "not found"}
	}
	e := &d.dir[idx]
	if e.BlockCount == 0 {
		return []byte{}, nil
	}
	raw, err := d.ata.ReadSectors(d.Location, fsSectorData+e.FirstBlock, int(e.BlockCount))
	if err != nil {
		return nil, &FSError{"read", err.Error()}
	}
	if uint32(len(raw)) > e.Size {
		raw = raw[:e.Size]
	}
	return raw, nil
}

// DeleteFile frees the blocks and zeroes the directory slot.
func (d *MountedDrive) DeleteFile(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.findEntry(name)
	if !ok {
		return &FSError{"delete", "not found"}
	}
	e := &d.dir[idx]
	if e.BlockCount > 0 {
		d.freeBlockRun(e.FirstBlock, e.BlockCount)
	}
	d.dir[idx] = DirEntry{}
	d.super.UsedEntries--
	return d.flush()
}

// ListFiles returns every non-empty directory entry.
func (d *MountedDrive) ListFiles() []DirEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DirEntry, 0, d.super.UsedEntries)
	for _, e := range d.dir {
		if e.Type != EntryEmpty {
			out = append(out, e)
		}
	}
	return out
}

// ListDirectory returns entries that are direct children of path, per
// spec.md §4.5's flat-namespace convention.
func (d *MountedDrive) ListDirectory(path string) []DirEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []DirEntry
	if path == "/" || path == "" {
		for _, e := range d.dir {
			if e.Type == EntryEmpty {
				continue
			}
			n := entryName(&e)
			if !containsSlash(n) {
				out = append(out, e)
			}
		}
		return out
	}
	prefix := path + "/"
	for _, e := range d.dir {
		if e.Type == EntryEmpty {
			continue
		}
		n := entryName(&e)
		if len(n) > len(prefix) && n[:len(prefix)] == prefix && !containsSlash(n[len(prefix):]) {
			out = append(out, e)
		}
	}
	return out
}

func containsSlash(s string) bool {
	for _, r := range s {
		if r == '/' {
			return true
		}
	}
	return false
}

// FileExists reports whether name occupies a non-empty directory slot.
func (d *MountedDrive) FileExists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.findEntry(name)
	return ok
}

// FileSize returns the stored byte size of name, per its directory entry.
func (d *MountedDrive) FileSize(name string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.findEntry(name)
	if !ok {
		return 0, &FSError{"size", "not found"}
	}
	return int(d.dir[idx].Size), nil
}

// IsDir reports whether name is a directory entry rather than a file.
func (d *MountedDrive) IsDir(name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.findEntry(name)
	if !ok {
		return false, &FSError{"isdir", "not found"}
	}
	return d.dir[idx].Type == EntryDirectory, nil
}

func (d *MountedDrive) FreeBlocks() uint32 { d.mu.Lock(); defer d.mu.Unlock(); return d.super.FreeBlocks }
func (d *MountedDrive) UsedEntries() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.super.UsedEntries
}

// DriveManager enumerates probed ATA drives and names them disk0..diskN
// in probe order, delegating path operations to the selected drive
// (spec.md §4.5 "Multi-drive").
type DriveManager struct {
	ata     *ATABus
	drives  []*MountedDrive
	Default *MountedDrive
}

var probeOrder = []DriveLocation{PrimaryMaster, PrimarySlave, SecondaryMaster, SecondarySlave}

func NewDriveManager(ata *ATABus) (*DriveManager, error) {
	dm := &DriveManager{ata: ata}
	n := 0
	for _, loc := range probeOrder {
		info, err := ata.Identify(loc)
		if err != nil || !info.Present {
			continue
		}
		name := fmt.Sprintf("disk%d", n)
		n++
		d, err := mountDrive(ata, loc, name)
		if err != nil {
			return nil, err
		}
		dm.drives = append(dm.drives, d)
		if dm.Default == nil {
			dm.Default = d
		}
	}
	return dm, nil
}

func (dm *DriveManager) Drives() []*MountedDrive { return dm.drives }

func (dm *DriveManager) ByName(name string) (*MountedDrive, bool) {
	for _, d := range dm.drives {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
