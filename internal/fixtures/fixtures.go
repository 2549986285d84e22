package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"swiftsub/internal/driver"
	"swiftsub/internal/sema"

	"gopkg.in/yaml.v3"
)

// Fixture is one program with the exit code the front end must report for it.
// Exactly one of File and Source is set.
type Fixture struct {
	Name   string `yaml:"name"`
	File   string `yaml:"file,omitempty"`
	Source string `yaml:"source,omitempty"`
	Want   int    `yaml:"want"`
	Note   string `yaml:"note,omitempty"`
}

// Manifest is a suite of fixtures loaded from a YAML file. File paths are
// relative to the manifest's directory.
type Manifest struct {
	Path     string     `yaml:"-"`
	Fixtures []*Fixture `yaml:"fixtures"`
}

// Outcome is the result of running one fixture.
type Outcome struct {
	Fixture *Fixture
	Got     sema.Code
	Err     error // the reported error, or the read failure for a missing file
}

// Passed reports whether the fixture produced its expected code.
func (o Outcome) Passed() bool {
	return int(o.Got) == o.Fixture.Want
}

var knownCodes = map[int]bool{
	int(sema.CodeOK):            true,
	int(sema.CodeLexical):       true,
	int(sema.CodeSyntax):        true,
	int(sema.CodeUndefined):     true,
	int(sema.CodeCall):          true,
	int(sema.CodeUninitialized): true,
	int(sema.CodeReturn):        true,
	int(sema.CodeType):          true,
	int(sema.CodeInference):     true,
	int(sema.CodeInternal):      true,
}

// Load reads and validates the manifest at path. Unknown keys are rejected.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("fixtures: open %s: %w", abs, err)
	}
	defer file.Close()

	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("fixtures: parse %s: %w", abs, err)
	}
	m.Path = abs
	return m, nil
}

// Decode reads a manifest from r and validates it. The returned manifest has
// no Path, so file fixtures resolve against the working directory.
func Decode(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty manifest")
		}
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that names are unique and non-empty, that each fixture
// carries exactly one program, and that every expected code exists.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Fixtures))
	for i, f := range m.Fixtures {
		if f == nil {
			return fmt.Errorf("fixture #%d is empty", i+1)
		}
		if f.Name == "" {
			return fmt.Errorf("fixture #%d has no name", i+1)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate fixture %q", f.Name)
		}
		seen[f.Name] = true
		if (f.File == "") == (f.Source == "") {
			return fmt.Errorf("fixture %q must set exactly one of file and source", f.Name)
		}
		if !knownCodes[f.Want] {
			return fmt.Errorf("fixture %q expects unknown code %d", f.Name, f.Want)
		}
	}
	return nil
}

// Run checks every fixture in order. A fixture whose file cannot be read is
// reported as an internal error rather than stopping the suite.
func (m *Manifest) Run(opts driver.Options) []Outcome {
	outcomes := make([]Outcome, 0, len(m.Fixtures))
	for _, f := range m.Fixtures {
		outcomes = append(outcomes, m.runOne(f, opts))
	}
	return outcomes
}

func (m *Manifest) runOne(f *Fixture, opts driver.Options) Outcome {
	if f.Source != "" {
		res := driver.Check(f.Name, f.Source, opts)
		return Outcome{Fixture: f, Got: res.Code, Err: res.Err}
	}
	res, err := driver.CheckFile(m.resolve(f.File), opts)
	if err != nil {
		return Outcome{Fixture: f, Got: sema.CodeInternal, Err: err}
	}
	return Outcome{Fixture: f, Got: res.Code, Err: res.Err}
}

func (m *Manifest) resolve(file string) string {
	if filepath.IsAbs(file) || m.Path == "" {
		return file
	}
	return filepath.Join(filepath.Dir(m.Path), file)
}

// Record overwrites each fixture's expected code with the code it produced.
func (m *Manifest) Record(outcomes []Outcome) int {
	changed := 0
	for _, o := range outcomes {
		if !o.Passed() {
			o.Fixture.Want = int(o.Got)
			changed++
		}
	}
	return changed
}

// Write saves the manifest to path as YAML.
func (m *Manifest) Write(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("fixtures: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("fixtures: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("fixtures: write %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

// Report writes one line per fixture and a summary. Failures include the
// error that was reported. It returns the number of failures.
func Report(w io.Writer, outcomes []Outcome, verbose bool) int {
	failed := 0
	for _, o := range outcomes {
		if o.Passed() {
			if verbose {
				fmt.Fprintf(w, "PASS %-32s %d\n", o.Fixture.Name, int(o.Got))
			}
			continue
		}
		failed++
		fmt.Fprintf(w, "FAIL %-32s got %d, want %d\n", o.Fixture.Name, int(o.Got), o.Fixture.Want)
		if o.Err != nil {
			fmt.Fprintf(w, "     %v\n", o.Err)
		}
	}
	fmt.Fprintf(w, "%d passed, %d failed\n", len(outcomes)-failed, failed)
	return failed
}
