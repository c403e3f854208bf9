package main

import "testing"

func TestKeyboardLetterAndShift(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(letterKey('a'))
	ch, ok := k.PopChar()
	if !ok || ch != 'a' {
		t.Fatalf("PopChar() = %q, %v; want 'a', true", ch, ok)
	}

	k.HandleScancode(keyLShift)
	k.HandleScancode(letterKey('a'))
	k.HandleScancode(keyLShift | releaseBit)
	ch, ok = k.PopChar()
	if !ok || ch != 'A' {
		t.Fatalf("shifted PopChar() = %q, %v; want 'A', true", ch, ok)
	}
}

func TestKeyboardQWERTZSwapsYAndZ(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(letterKey('z'))
	k.HandleScancode(letterKey('y'))
	first, _ := k.PopChar()
	second, _ := k.PopChar()
	if first != 'y' || second != 'z' {
		t.Fatalf("got %q, %q; want 'y', 'z' (QWERTZ swap)", first, second)
	}
}

func TestKeyboardSpecialKeysRouteToSpecialRing(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(keyUp)
	if _, ok := k.PopChar(); ok {
		t.Fatal("navigation key must not appear on the char ring")
	}
	code, ok := k.PopSpecial()
	if !ok || code != keyUp {
		t.Fatalf("PopSpecial() = %v, %v; want keyUp, true", code, ok)
	}
}

func TestKeyboardCtrlComboRoutesToCtrlRing(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(keyCtrl)
	k.HandleScancode(letterKey('s'))
	if _, ok := k.PopChar(); ok {
		t.Fatal("Ctrl+S must not also appear on the char ring")
	}
	letter, ok := k.PopCtrl()
	if !ok || letter != 's' {
		t.Fatalf("PopCtrl() = %q, %v; want 's', true", letter, ok)
	}
}

func TestKeyboardReleaseOfModifierClearsState(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(keyCtrl)
	if !k.State().Ctrl {
		t.Fatal("Ctrl should be held after press")
	}
	k.HandleScancode(keyCtrl | releaseBit)
	if k.State().Ctrl {
		t.Fatal("Ctrl should be released after release scancode")
	}
}

func TestKeyboardEnterTabBackspaceControlCodes(t *testing.T) {
	k := NewKeyboard()
	k.HandleScancode(keyEnter)
	k.HandleScancode(keyTab)
	k.HandleScancode(keyBack)
	want := []byte{'\n', '\t', 0x08}
	for _, w := range want {
		got, ok := k.PopChar()
		if !ok || got != w {
			t.Fatalf("PopChar() = %v, %v; want %v, true", got, ok, w)
		}
	}
}
