package main

import "testing"

func TestLineBufferTypeCharNewlineAndBackspace(t *testing.T) {
	b := newLineBuffer()
	for _, c := range []byte("ab\nc") {
		b.typeChar(c)
	}
	if b.text() != "ab\nc" {
		t.Fatalf("text() = %q, want %q", b.text(), "ab\nc")
	}
	b.typeChar(0x08) // backspace removes 'c'
	if b.text() != "ab\n" {
		t.Fatalf("text() after backspace = %q, want %q", b.text(), "ab\n")
	}
	b.typeChar(0x08) // backspace on an empty last line joins back to the previous line
	if b.text() != "ab" {
		t.Fatalf("text() after joining backspace = %q, want %q", b.text(), "ab")
	}
}

func TestLineBufferSetTextAndVisibleLines(t *testing.T) {
	b := newLineBuffer()
	b.setText("a\nb\nc\nd")
	got := b.visibleLines(2)
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Fatalf("visibleLines(2) = %v, want [c d]", got)
	}
	if full := b.visibleLines(100); len(full) != 4 {
		t.Fatalf("visibleLines(100) should return all lines, got %v", full)
	}
}

func TestEditorLoadsFromDriveAndSaves(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("note.txt", false)
	d.WriteFile("note.txt", []byte("hello"))

	e := NewEditor(d, "note.txt")
	if e.buf.text() != "hello" {
		t.Fatalf("editor buffer = %q, want %q", e.buf.text(), "hello")
	}
	e.HandleChar(' ')
	e.HandleChar('!')
	if err := e.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _ := d.ReadFile("note.txt")
	if string(got) != "hello !" {
		t.Fatalf("saved content = %q, want %q", got, "hello !")
	}
}

func TestEditorSaveWithoutBackingFileReturnsError(t *testing.T) {
	e := NewEditor(nil, "")
	if err := e.Save(); err == nil {
		t.Fatal("expected an error saving an editor with no backing file")
	}
}

func TestExplorerNavigatesIntoDirectoryAndOpensFile(t *testing.T) {
	d := newTestDrive(t)
	d.CreateFile("docs", true)
	d.CreateFile("docs/readme.txt", false)
	bus := NewATABus(NewIOBus())
	dm := &DriveManager{ata: bus, drives: []*MountedDrive{d}, Default: d}

	var openedDrive *MountedDrive
	var openedName string
	ex := NewExplorer(dm, func(dr *MountedDrive, name string) {
		openedDrive = dr
		openedName = name
	})
	if len(ex.entries) == 0 {
		t.Fatal("expected at least one top-level entry")
	}
	// click the "docs" directory row (row 0).
	if !ex.HandleClick(0, explorerRowH) {
		t.Fatal("clicking a directory entry should report handled=true")
	}
	if ex.path != "docs" {
		t.Fatalf("path = %q, want %q after navigating into docs", ex.path, "docs")
	}
	if len(ex.entries) != 1 {
		t.Fatalf("expected 1 entry inside docs, got %d", len(ex.entries))
	}
	if !ex.HandleClick(0, explorerRowH) {
		t.Fatal("clicking the file entry should report handled=true")
	}
	if openedDrive != d || openedName != "docs/readme.txt" {
		t.Fatalf("onOpen called with (%v, %q), want (%v, %q)", openedDrive, openedName, d, "docs/readme.txt")
	}
}

func TestTerminalRunsLsCatTouchRmCommands(t *testing.T) {
	d := newTestDrive(t)
	dm := &DriveManager{drives: []*MountedDrive{d}, Default: d}
	term := NewTerminal(dm)

	for _, c := range []byte("touch a.txt\n") {
		term.HandleChar(c)
	}
	if !d.FileExists("a.txt") {
		t.Fatal("touch command should have created a.txt")
	}

	for _, c := range []byte("ls\n") {
		term.HandleChar(c)
	}
	joined := term.buf.text()
	if !contains(joined, "a.txt") {
		t.Fatalf("ls output should list a.txt, got %q", joined)
	}

	for _, c := range []byte("rm a.txt\n") {
		term.HandleChar(c)
	}
	if d.FileExists("a.txt") {
		t.Fatal("rm command should have deleted a.txt")
	}
}

func TestTerminalUnknownCommandPrintsHelp(t *testing.T) {
	d := newTestDrive(t)
	dm := &DriveManager{drives: []*MountedDrive{d}, Default: d}
	term := NewTerminal(dm)
	for _, c := range []byte("bogus\n") {
		term.HandleChar(c)
	}
	if !contains(term.buf.text(), "unknown command") {
		t.Fatalf("expected an unknown-command message, got %q", term.buf.text())
	}
}

func TestErrorAppRendersTheTriggeringMessage(t *testing.T) {
	app := NewErrorApp(&ParseError{Kind: ErrExpectedTag, Details: "bad tag"})
	c := newTestCompositor(200, 50)
	app.Render(c, Rect{X: 0, Y: 0, W: 200, H: 50})
	if app.HandleClick(0, 0) {
		t.Fatal("ErrorApp should not handle clicks")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
