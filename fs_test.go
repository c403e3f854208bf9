package main

import (
	"path/filepath"
	"testing"
)

func newTestDrive(t *testing.T) *MountedDrive {
	t.Helper()
	bus := NewATABus(NewIOBus())
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := bus.AttachImage(PrimaryMaster, path); err != nil {
		t.Fatalf("AttachImage() error: %v", err)
	}
	d, err := mountDrive(bus, PrimaryMaster, "disk0")
	if err != nil {
		t.Fatalf("mountDrive() error: %v", err)
	}
	return d
}

func TestMountDriveFormatsFreshImage(t *testing.T) {
	d := newTestDrive(t)
	if d.super.Magic != fsMagic {
		t.Fatalf("Magic = %#x, want %#x", d.super.Magic, fsMagic)
	}
	if d.super.FreeBlocks != fsTotalBlocks {
		t.Fatalf("FreeBlocks = %d, want %d on a freshly formatted volume", d.super.FreeBlocks, fsTotalBlocks)
	}
}

func TestMountDriveRecognizesExistingFilesystem(t *testing.T) {
	bus := NewATABus(NewIOBus())
	path := filepath.Join(t.TempDir(), "disk.img")
	bus.AttachImage(PrimaryMaster, path)
	d1, err := mountDrive(bus, PrimaryMaster, "disk0")
	if err != nil {
		t.Fatalf("first mount error: %v", err)
	}
	if err := d1.CreateFile("a.txt", false); err != nil {
		t.Fatalf("CreateFile() error: %v", err)
	}

	d2, err := mountDrive(bus, PrimaryMaster, "disk0")
	if err != nil {
		t.Fatalf("second mount error: %v", err)
	}
	if !d2.FileExists("a.txt") {
		t.Fatal("remounting should see the previously created file")
	}
}

func TestCreateWriteReadFileRoundTrip(t *testing.T) {
	d := newTestDrive(t)
	if err := d.CreateFile("hello.txt", false); err != nil {
		t.Fatalf("CreateFile() error: %v", err)
	}
	data := []byte("hello, world")
	if err := d.WriteFile("hello.txt", data); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := d.ReadFile("hello.txt")
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("ReadFile() = %q, want %q", got, data)
	}
	size, err := d.FileSize("hello.txt")
	if err != nil || size != len(data) {
		t.Fatalf("FileSize() = %d, %v, want %d, nil", size, err, len(data))
	}
}

func TestCreateFileDuplicateNameRejected(t *testing.T) {
	d := newTestDrive(t)
	if err := d.CreateFile("x", false); err != nil {
		t.Fatalf("first CreateFile() error: %v", err)
	}
	if err := d.CreateFile("x", false); err == nil {
		t.Fatal("expected an error creating a duplicate name")
	}
}

func TestWriteFileReplacesPriorBlocksAndUpdatesFreeCount(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("f", false)
	before := d.FreeBlocks()

	if err := d.WriteFile("f", make([]byte, fsSectorSize*3)); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	afterFirst := d.FreeBlocks()
	if afterFirst != before-3 {
		t.Fatalf("FreeBlocks() = %d, want %d after a 3-block write", afterFirst, before-3)
	}

	if err := d.WriteFile("f", make([]byte, fsSectorSize)); err != nil {
		t.Fatalf("second WriteFile() error: %v", err)
	}
	afterSecond := d.FreeBlocks()
	if afterSecond != before-1 {
		t.Fatalf("FreeBlocks() = %d, want %d after replacing with a 1-block write", afterSecond, before-1)
	}
}

func TestWriteFileExceedingCapIsRejected(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("big", false)
	oversized := make([]byte, (fsMaxBlocksPerFile+1)*fsSectorSize)
	if err := d.WriteFile("big", oversized); err == nil {
		t.Fatal("expected an error exceeding the per-file block cap")
	}
}

func TestDeleteFileFreesBlocksAndRemovesEntry(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("gone", false)
	d.WriteFile("gone", make([]byte, fsSectorSize*2))
	before := d.FreeBlocks()

	if err := d.DeleteFile("gone"); err != nil {
		t.Fatalf("DeleteFile() error: %v", err)
	}
	if d.FileExists("gone") {
		t.Fatal("file should no longer exist after DeleteFile")
	}
	if got := d.FreeBlocks(); got != before+2 {
		t.Fatalf("FreeBlocks() = %d, want %d after freeing 2 blocks", got, before+2)
	}
}

func TestReadWriteNonexistentFileReturnsError(t *testing.T) {
	d := newTestDrive(t)
	if _, err := d.ReadFile("nope"); err == nil {
		t.Fatal("expected an error reading a nonexistent file")
	}
	if err := d.WriteFile("nope", []byte("x")); err == nil {
		t.Fatal("expected an error writing a nonexistent file")
	}
}

func TestListDirectoryFiltersToDirectChildren(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("root.txt", false)
	d.CreateFile("sub/child.txt", false)
	d.CreateFile("sub/nested/deep.txt", false)

	top := d.ListDirectory("/")
	names := map[string]bool{}
	for _, e := range top {
		names[entryName(&e)] = true
	}
	if !names["root.txt"] {
		t.Fatal("root.txt should appear at the top level")
	}
	if names["sub/child.txt"] {
		t.Fatal("sub/child.txt should not appear at the top level")
	}

	sub := d.ListDirectory("sub")
	subNames := map[string]bool{}
	for _, e := range sub {
		subNames[entryName(&e)] = true
	}
	if !subNames["sub/child.txt"] {
		t.Fatal("sub/child.txt should appear when listing sub")
	}
	if subNames["sub/nested/deep.txt"] {
		t.Fatal("sub/nested/deep.txt is not a direct child of sub and should be excluded")
	}
}

func TestDriveManagerProbesAttachedDrivesInOrder(t *testing.T) {
	bus := NewATABus(NewIOBus())
	bus.AttachImage(PrimaryMaster, filepath.Join(t.TempDir(), "a.img"))
	bus.AttachImage(SecondaryMaster, filepath.Join(t.TempDir(), "b.img"))

	dm, err := NewDriveManager(bus)
	if err != nil {
		t.Fatalf("NewDriveManager() error: %v", err)
	}
	if len(dm.Drives()) != 2 {
		t.Fatalf("len(Drives()) = %d, want 2", len(dm.Drives()))
	}
	if dm.Drives()[0].Name != "disk0" || dm.Drives()[1].Name != "disk1" {
		t.Fatalf("drive names = %q, %q, want disk0, disk1", dm.Drives()[0].Name, dm.Drives()[1].Name)
	}
	if dm.Default != dm.Drives()[0] {
		t.Fatal("Default should be the first probed drive")
	}
	if _, ok := dm.ByName("disk1"); !ok {
		t.Fatal("ByName(disk1) should find the second drive")
	}
}

func TestSuperblockEncodeDecodeRoundTrip(t *testing.T) {
	s := Superblock{Magic: fsMagic, Version: fsVersion, TotalBlocks: 10, FreeBlocks: 5, TotalEntries: 2, UsedEntries: 1, BlockSize: 512}
	got := decodeSuperblock(s.encode())
	if got != s {
		t.Fatalf("decodeSuperblock(encode()) = %+v, want %+v", got, s)
	}
}
