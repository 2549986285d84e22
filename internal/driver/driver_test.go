package driver_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"swiftsub/internal/driver"
	"swiftsub/internal/sema"
	"testing"
)

func TestCheckStages(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want sema.Code
	}{
		{"ok", "var a = 1\nwrite(a)", sema.CodeOK},
		{"lexical", "var a = 1 @ 2", sema.CodeLexical},
		{"bad escape", `var s = "\q"`, sema.CodeLexical},
		{"syntax", "var a = (1", sema.CodeSyntax},
		{"top-level return", "return", sema.CodeSyntax},
		{"semantic", "write(b)", sema.CodeUndefined},
		{"bare declaration", "var a", sema.CodeSyntax},
	}
	for _, tt := range tests {
		res := driver.Check(tt.name, tt.src, driver.Options{})
		if res.Code != tt.want {
			t.Errorf("%s: got code %d, want %d (%v)", tt.name, res.Code, tt.want, res.Err)
		}
		if (res.Code == sema.CodeOK) != (res.Err == nil) {
			t.Errorf("%s: code %d with error %v", tt.name, res.Code, res.Err)
		}
	}
}

func TestCheckResultOnSuccess(t *testing.T) {
	res := driver.Check("ok.swift", "var a = 1", driver.Options{})
	if res.Program == nil || res.Info == nil {
		t.Fatal("expected program and annotations")
	}
	if got := res.Message(); got != "ok.swift: ok" {
		t.Errorf("message: %q", got)
	}
}

func TestCheckIncomplete(t *testing.T) {
	res := driver.Check("repl", "func f() {", driver.Options{})
	if res.Code != sema.CodeSyntax || !res.Incomplete {
		t.Errorf("got code %d incomplete %v", res.Code, res.Incomplete)
	}
	res = driver.Check("repl", "var = 1", driver.Options{})
	if res.Incomplete {
		t.Error("a syntax error before end of input is not incomplete")
	}
}

func TestCheckMessage(t *testing.T) {
	res := driver.Check("bad.swift", "var x = nil", driver.Options{})
	msg := res.Message()
	if !strings.Contains(msg, "exit 8") || !strings.Contains(msg, "error 8") {
		t.Errorf("message: %q", msg)
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "[DEBUG] ", 0)
	driver.Check("dbg", "var a = 1", driver.Options{Logger: logger})
	out := buf.String()
	for _, want := range []string{"Lexing complete.", "--- AST ---", "VarDecl var a = 1", "Semantic analysis complete."} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.swift")
	if err := os.WriteFile(path, []byte("let x: Int\nwrite(x)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := driver.CheckFile(path, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Code != sema.CodeUninitialized {
		t.Errorf("got code %d, want %d", res.Code, sema.CodeUninitialized)
	}

	if _, err := driver.CheckFile(filepath.Join(dir, "missing.swift"), driver.Options{}); err == nil {
		t.Error("expected an error for a missing file")
	}
}
