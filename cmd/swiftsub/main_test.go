package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI runs the command with an empty config file so the user's own
// settings cannot leak into the test.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	cfg := writeFile(t, t.TempDir(), "cfg.toml", "")
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-config", cfg}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckExitCodes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		src  string
		want int
	}{
		{"var a = 1\nwrite(a)\n", 0},
		{"var a = 1 # 2\n", 1},
		{"var a\n", 2},
		{"write(b)\n", 3},
		{"let x: Int\nwrite(x)\n", 5},
		{"let s: String = 1\n", 7},
		{"var n = nil\n", 8},
	}
	for i, tt := range tests {
		path := writeFile(t, dir, "p"+string(rune('a'+i))+".swift", tt.src)
		code, _, _ := runCLI(t, "check", path)
		if code != tt.want {
			t.Errorf("%q: exit %d, want %d", tt.src, code, tt.want)
		}
		if code, _, _ := runCLI(t, path); code != tt.want {
			t.Errorf("%q: bare form exit %d, want %d", tt.src, code, tt.want)
		}
	}
}

func TestCheckMissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, "check", filepath.Join(t.TempDir(), "none.swift"))
	if code != exitUsage || !strings.Contains(stderr, "does not exist") {
		t.Errorf("exit %d, stderr %q", code, stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{nil, {"frobnicate"}, {"check"}, {"ast"}} {
		if code, _, _ := runCLI(t, args...); code != exitUsage {
			t.Errorf("%v: exit %d, want %d", args, code, exitUsage)
		}
	}
}

func TestASTCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.swift", "let a = 1.5\n")

	code, stdout, _ := runCLI(t, "ast", path)
	if code != 0 || !strings.Contains(stdout, "VarDecl let a = 1.5") || strings.Contains(stdout, "[Double]") {
		t.Errorf("plain ast: exit %d\n%s", code, stdout)
	}

	code, stdout, _ = runCLI(t, "ast", "-types", path)
	if code != 0 || !strings.Contains(stdout, "[Double]") {
		t.Errorf("typed ast: exit %d\n%s", code, stdout)
	}
}

func TestSuiteCommand(t *testing.T) {
	code, stdout, _ := runCLI(t, "suite", filepath.Join("..", "..", "internal", "fixtures", "testdata", "suite.yaml"))
	if code != 0 || !strings.Contains(stdout, " 0 failed") {
		t.Errorf("exit %d\n%s", code, stdout)
	}

	dir := t.TempDir()
	manifest := writeFile(t, dir, "suite.yaml", "fixtures:\n  - {name: a, source: var x = nil, want: 0}\n")
	if code, _, _ := runCLI(t, "suite", manifest); code != 1 {
		t.Errorf("mismatching suite: exit %d, want 1", code)
	}
	if code, _, _ := runCLI(t, "suite", "-record", manifest); code != 0 {
		t.Errorf("record: exit %d", code)
	}
	if code, _, _ := runCLI(t, "suite", manifest); code != 0 {
		t.Errorf("after record: exit %d", code)
	}
}

func TestBadConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "cfg.toml", "unknown = 1\n")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", cfg, "version"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("exit %d, want %d", code, exitUsage)
	}
}

func TestSession(t *testing.T) {
	s := &session{}
	if res := s.add("func twice(_ x: Int) -> Int {\n  return x * 2\n}"); res.Err != nil {
		t.Fatal(res.Err)
	}
	if res := s.add("let y = twice(3)"); res.Err != nil {
		t.Fatal(res.Err)
	}
	if res := s.add("let y = 4"); res.Code != 3 {
		t.Errorf("redefinition: code %d, want 3", res.Code)
	}
	if res := s.add("write(y)"); res.Err != nil {
		t.Errorf("rejected snippet should not stay in the session: %v", res.Err)
	}
	if strings.Contains(s.source.String(), "let y = 4") {
		t.Error("rejected snippet kept")
	}

	var out bytes.Buffer
	if s.command(":funcs", &out) || !strings.Contains(out.String(), "twice(_ x: Int) -> Int") {
		t.Errorf(":funcs output %q", out.String())
	}
	out.Reset()
	s.command(":reset", &out)
	if s.source.Len() != 0 {
		t.Error("reset kept source")
	}
	if !s.command(":quit", &out) {
		t.Error(":quit should end the session")
	}
}

func TestDebugOutputFollowsRun(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.swift", "var a = 1\n")

	code, _, stderr := runCLI(t, "-debug", "check", path)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"[DEBUG] Using debug mode.", "[DEBUG] Lexing complete."} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}

	_, _, stderr = runCLI(t, "check", path)
	if strings.Contains(stderr, "[DEBUG]") {
		t.Errorf("debug mode leaked into the next run:\n%s", stderr)
	}
}
