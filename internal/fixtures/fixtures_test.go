package fixtures_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"swiftsub/internal/driver"
	"swiftsub/internal/fixtures"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSuite(t *testing.T) {
	m, err := fixtures.Load(filepath.Join("testdata", "suite.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Fixtures) == 0 {
		t.Fatal("suite has no fixtures")
	}
	for _, o := range m.Run(driver.Options{}) {
		if !o.Passed() {
			t.Errorf("%s: got %d, want %d (%v)", o.Fixture.Name, o.Got, o.Fixture.Want, o.Err)
		}
	}
}

func TestDecode(t *testing.T) {
	src := `
fixtures:
  - name: one
    source: var x = 1
    want: 0
  - name: two
    file: two.swift
    want: 8
    note: inferred from nil
`
	m, err := fixtures.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := []*fixtures.Fixture{
		{Name: "one", Source: "var x = 1", Want: 0},
		{Name: "two", File: "two.swift", Want: 8, Note: "inferred from nil"},
	}
	if diff := cmp.Diff(want, m.Fixtures); diff != "" {
		t.Errorf("fixtures mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty manifest"},
		{"unknown key", "fixtures:\n  - name: a\n    source: x\n    want: 0\n    expect: 1\n", "field expect not found"},
		{"no name", "fixtures:\n  - source: x\n    want: 0\n", "has no name"},
		{"duplicate", "fixtures:\n  - {name: a, source: x, want: 0}\n  - {name: a, source: y, want: 0}\n", "duplicate fixture"},
		{"both programs", "fixtures:\n  - {name: a, source: x, file: a.swift, want: 0}\n", "exactly one of"},
		{"no program", "fixtures:\n  - {name: a, want: 0}\n", "exactly one of"},
		{"unknown code", "fixtures:\n  - {name: a, source: x, want: 42}\n", "unknown code 42"},
	}
	for _, tt := range tests {
		_, err := fixtures.Decode(strings.NewReader(tt.src))
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	if err := os.WriteFile(path, []byte("fixtures:\n  - {name: gone, file: gone.swift, want: 0}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := fixtures.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	outcomes := m.Run(driver.Options{})
	if len(outcomes) != 1 || outcomes[0].Passed() || outcomes[0].Err == nil {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
}

func TestRecordAndWrite(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.swift"), []byte("var x = nil\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "suite.yaml")
	src := "fixtures:\n  - {name: a, file: a.swift, want: 0}\n  - {name: b, source: write(1), want: 0}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := fixtures.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	outcomes := m.Run(driver.Options{})
	if n := m.Record(outcomes); n != 1 {
		t.Fatalf("recorded %d changes, want 1", n)
	}
	if err := m.Write(path); err != nil {
		t.Fatal(err)
	}

	reloaded, err := fixtures.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]int{}
	for _, f := range reloaded.Fixtures {
		got[f.Name] = f.Want
	}
	if diff := cmp.Diff(map[string]int{"a": 8, "b": 0}, got); diff != "" {
		t.Errorf("recorded codes (-want +got):\n%s", diff)
	}
	for _, o := range reloaded.Run(driver.Options{}) {
		if !o.Passed() {
			t.Errorf("%s still fails after recording", o.Fixture.Name)
		}
	}
}

func TestReport(t *testing.T) {
	m, err := fixtures.Decode(strings.NewReader("fixtures:\n  - {name: good, source: write(1), want: 0}\n  - {name: bad, source: write(z), want: 0}\n"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	failed := fixtures.Report(&buf, m.Run(driver.Options{}), true)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	out := buf.String()
	for _, want := range []string{"PASS good", "FAIL bad", "got 3, want 0", "1 passed, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
