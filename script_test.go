package main

import "testing"

// nullHost is a no-op ScriptHost for tests that don't exercise filesystem calls.
type nullHost struct {
	printed []string
}

func (h *nullHost) ListDrives() []string                       { return nil }
func (h *nullHost) ListFiles(string) ([]string, error)          { return nil, nil }
func (h *nullHost) ReadFile(string, string) (string, error)     { return "", nil }
func (h *nullHost) WriteFile(string, string, string) error      { return nil }
func (h *nullHost) CreateFile(string, string) error             { return nil }
func (h *nullHost) CreateDir(string, string) error               { return nil }
func (h *nullHost) DeleteFile(string, string) error              { return nil }
func (h *nullHost) FileExists(string, string) bool               { return false }
func (h *nullHost) FileSize(string, string) (int, error)         { return 0, nil }
func (h *nullHost) IsDir(string, string) (bool, error)            { return false, nil }
func (h *nullHost) Print(msg string)                              { h.printed = append(h.printed, msg) }

func TestEngineVarDeclAndGet(t *testing.T) {
	e, err := NewEngine(`var x = 1 + 2 * 3`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, ok := e.Get("x")
	if !ok || v.I != 7 {
		t.Fatalf("x = %+v, ok=%v, want 7", v, ok)
	}
}

func TestEngineOperatorPrecedence(t *testing.T) {
	e, err := NewEngine(`var x = 2 + 3 * 4`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("x")
	if v.I != 14 {
		t.Fatalf("x = %d, want 14 (precedence: 2 + (3*4))", v.I)
	}
}

func TestEngineStringConcatenation(t *testing.T) {
	e, err := NewEngine(`var s = "a" + "b"`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("s")
	if v.S != "ab" {
		t.Fatalf("s = %q, want %q", v.S, "ab")
	}
}

func TestEngineIfElseBranching(t *testing.T) {
	e, err := NewEngine(`
		var x = 0
		if 1 == 1 {
			x = 10
		} else {
			x = 20
		}
	`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("x")
	if v.I != 10 {
		t.Fatalf("x = %d, want 10", v.I)
	}
}

func TestEngineWhileLoopAccumulates(t *testing.T) {
	e, err := NewEngine(`
		var i = 0
		var sum = 0
		while i < 5 {
			sum = sum + i
			i = i + 1
		}
	`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("sum")
	if v.I != 10 {
		t.Fatalf("sum = %d, want 10 (0+1+2+3+4)", v.I)
	}
}

func TestEngineWhileLoopRespectsIterationCap(t *testing.T) {
	e, err := NewEngine(`
		var i = 0
		while 1 == 1 {
			i = i + 1
		}
	`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("i")
	if v.I != whileIterationCap {
		t.Fatalf("i = %d, want %d (an infinite loop must still terminate)", v.I, whileIterationCap)
	}
}

func TestEngineUserFunctionCallAndReturn(t *testing.T) {
	e, err := NewEngine(`
		func double(n) {
			return n * 2
		}
		var x = double(21)
	`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	v, _ := e.Get("x")
	if v.I != 42 {
		t.Fatalf("x = %d, want 42", v.I)
	}
}

func TestEngineUserFunctionDoesNotLeakParamsIntoGlobals(t *testing.T) {
	e, err := NewEngine(`
		var n = 100
		func addOne(n) {
			return n + 1
		}
		var result = addOne(5)
	`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	n, _ := e.Get("n")
	if n.I != 100 {
		t.Fatalf("global n = %d, want 100 (function param should not overwrite caller's global)", n.I)
	}
	result, _ := e.Get("result")
	if result.I != 6 {
		t.Fatalf("result = %d, want 6", result.I)
	}
}

func TestEngineCloseSetsPendingAction(t *testing.T) {
	e, err := NewEngine(`func onClick() { close() }`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if err := e.CallHandler("onClick"); err != nil {
		t.Fatalf("CallHandler() error: %v", err)
	}
	action := e.TakePending()
	if action == nil || action.Kind != "close" {
		t.Fatalf("Pending = %+v, want Kind=close", action)
	}
	if e.TakePending() != nil {
		t.Fatal("TakePending should clear the slot after reading it once")
	}
}

func TestEngineOpenSetsTargetFromArg(t *testing.T) {
	e, err := NewEngine(`func onClick() { open(3) }`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	e.CallHandler("onClick")
	action := e.TakePending()
	if action == nil || action.Kind != "open" || action.Target != 3 {
		t.Fatalf("Pending = %+v, want Kind=open Target=3", action)
	}
}

func TestEnginePrintCallsHostWithStringArg(t *testing.T) {
	host := &nullHost{}
	_, err := NewEngine(`print("hi")`, host)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if len(host.printed) != 1 || host.printed[0] != "hi" {
		t.Fatalf("host.printed = %v, want [hi]", host.printed)
	}
}

func TestInterpolateSubstitutesBoundVariablesAndKeepsUnboundLiteral(t *testing.T) {
	e, err := NewEngine(`var name = "world"`, &nullHost{})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	got := e.interpolate("hello {name}, {unbound} stays", e.globals)
	want := "hello world, {unbound} stays"
	if got != want {
		t.Fatalf("interpolate() = %q, want %q", got, want)
	}
}

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NullValue(), false},
		{IntValue(0), false},
		{IntValue(1), true},
		{StringValue(""), false},
		{StringValue("x"), true},
		{BoolValue(false), false},
		{ArrayValue(nil), false},
		{ArrayValue([]Value{IntValue(1)}), true},
	}
	for _, c := range cases {
		if got := c.v.truthy(); got != c.want {
			t.Fatalf("truthy(%+v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestLexUnterminatedStringReturnsError(t *testing.T) {
	if _, err := lex(`"unterminated`); err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestParseScriptMismatchedBraceReturnsError(t *testing.T) {
	if _, err := parseScript(`if 1 == 1 { var x = 1`); err == nil {
		t.Fatal("expected an error for an unclosed if block")
	}
}
