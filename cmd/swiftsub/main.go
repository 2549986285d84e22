package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"swiftsub/internal/ast"
	"swiftsub/internal/config"
	"swiftsub/internal/driver"
	"swiftsub/internal/fixtures"
	"swiftsub/internal/sema"

	"github.com/peterh/liner"
)

const VERSION = "0.2.0"

// exitUsage is returned for command-line misuse and unreadable files.
const exitUsage = int(sema.CodeInternal)

const usage = `Usage: swiftsub [-config PATH] [-debug] <command> [arguments]

Commands:
  check [-debug] FILE         analyze FILE; the exit status is the error code
  ast [-types] FILE           print the syntax tree, optionally with types
  suite [-v] [-record] FILE   run a YAML fixture manifest
  repl                        interactive session
  version                     print the version

"swiftsub FILE" is short for "swiftsub check FILE".
`

// Debug state for the current run. run resets both.
var (
	debugMode bool
	debugOut  io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	debugMode = false
	debugOut = stderr

	fs := flag.NewFlagSet("swiftsub", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "config file (default ~/"+config.FileName+")")
	debug := fs.Bool("debug", false, "print pipeline debug output to stderr")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdout, "swiftsub "+VERSION)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitUsage
	}
	debugMode = *debug || cfg.Debug
	printDebug("Using debug mode.")

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	switch rest[0] {
	case "check":
		return cmdCheck(rest[1:], stdout, stderr)
	case "ast":
		return cmdAST(rest[1:], cfg, stdout, stderr)
	case "suite":
		return cmdSuite(rest[1:], cfg, stdout, stderr)
	case "repl":
		return cmdRepl(rest[1:], cfg, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "swiftsub "+VERSION)
		return 0
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		if len(rest) == 1 && fileExists(rest[0]) {
			return cmdCheck(rest, stdout, stderr)
		}
		fmt.Fprintf(stderr, "Error: unknown command %q.\n", rest[0])
		fs.Usage()
		return exitUsage
	}
}

// loadConfig reads an explicit config path strictly and the default path
// only if it exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path, true)
	}
	return config.Load(config.DefaultPath(), false)
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "print pipeline debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *debug {
		debugMode = true
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: swiftsub check [-debug] FILE")
		return exitUsage
	}

	res, code := checkFile(fs.Arg(0), stderr)
	if res == nil {
		return code
	}
	if res.Err != nil {
		fmt.Fprintln(stderr, res.Message())
	} else {
		fmt.Fprintln(stdout, res.Message())
	}
	return int(res.Code)
}

func checkFile(filePath string, stderr io.Writer) (*driver.Result, int) {
	if !fileExists(filePath) {
		fmt.Fprintln(stderr, "Error: File does not exist: "+filePath)
		return nil, exitUsage
	}
	res, err := driver.CheckFile(filePath, driverOptions(stderr))
	if err != nil {
		fmt.Fprintln(stderr, "Error: Could not read file.")
		fmt.Fprintln(stderr, "Error details: "+err.Error())
		return nil, exitUsage
	}
	return res, int(res.Code)
}

// -----------------------------------------------------------------------------
// ast
// -----------------------------------------------------------------------------

func cmdAST(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	withTypes := fs.Bool("types", cfg.Check.Types, "annotate expressions with their inferred types")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: swiftsub ast [-types] FILE")
		return exitUsage
	}

	res, code := checkFile(fs.Arg(0), stderr)
	if res == nil {
		return code
	}
	if res.Program == nil {
		fmt.Fprintln(stderr, res.Message())
		return int(res.Code)
	}
	if *withTypes && res.Info != nil {
		fmt.Fprint(stdout, sema.Annotate(res.Program, res.Info))
	} else {
		fmt.Fprint(stdout, ast.DebugString(res.Program))
	}
	if res.Err != nil {
		fmt.Fprintln(stderr, res.Message())
	}
	return int(res.Code)
}

// -----------------------------------------------------------------------------
// suite
// -----------------------------------------------------------------------------

func cmdSuite(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("suite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", cfg.Suite.Verbose, "list passing fixtures too")
	record := fs.Bool("record", false, "rewrite expected codes with the observed ones")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	path := cfg.Suite.Manifest
	switch fs.NArg() {
	case 0:
	case 1:
		path = fs.Arg(0)
	default:
		path = ""
	}
	if path == "" {
		fmt.Fprintln(stderr, "Usage: swiftsub suite [-v] [-record] MANIFEST")
		return exitUsage
	}

	m, err := fixtures.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitUsage
	}
	printDebug(fmt.Sprintf("Loaded %d fixture(s) from %s", len(m.Fixtures), m.Path))

	outcomes := m.Run(driverOptions(stderr))
	failed := fixtures.Report(stdout, outcomes, *verbose)
	if *record {
		if n := m.Record(outcomes); n > 0 {
			if err := m.Write(m.Path); err != nil {
				fmt.Fprintln(stderr, "Error: "+err.Error())
				return exitUsage
			}
			fmt.Fprintf(stdout, "recorded %d fixture(s) in %s\n", n, m.Path)
		}
		return 0
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string, cfg *config.Config, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "swiftsub "+VERSION+" interactive checker. Type :help for commands.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.REPL.History
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	s := &session{opts: driverOptions(stderr)}
	for {
		code, ok := s.read(ln, cfg.REPL.Prompt, cfg.REPL.Continue)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if s.command(trimmed, stdout) {
				return 0
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		res := s.add(code)
		if res.Err != nil {
			fmt.Fprintln(stderr, res.Message())
			continue
		}
		fmt.Fprintln(stdout, "ok")
	}
}

// session holds the source accepted so far. Every snippet is checked
// together with it, and only snippets that keep the whole program valid are
// kept.
type session struct {
	opts   driver.Options
	source strings.Builder
	last   *driver.Result
}

func (s *session) with(code string) string {
	if s.source.Len() == 0 {
		return code
	}
	return s.source.String() + "\n" + code
}

// add checks the session extended by code and keeps code if it is accepted.
func (s *session) add(code string) *driver.Result {
	res := driver.Check("repl", s.with(code), s.opts)
	if res.Err != nil {
		return res
	}
	if s.source.Len() > 0 {
		s.source.WriteByte('\n')
	}
	s.source.WriteString(code)
	s.last = res
	return res
}

// read collects lines until the accumulated snippet no longer stops at end
// of input.
func (s *session) read(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if res := driver.Check("repl", s.with(src), driver.Options{}); res.Incomplete {
			continue
		}
		return src, true
	}
}

// command runs a ":" command and reports whether the session should end.
func (s *session) command(cmd string, stdout io.Writer) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.source.Reset()
		s.last = nil
		fmt.Fprintln(stdout, "session cleared")
	case ":source":
		fmt.Fprintln(stdout, s.source.String())
	case ":ast":
		if s.last == nil {
			fmt.Fprintln(stdout, "nothing accepted yet")
			break
		}
		fmt.Fprint(stdout, sema.Annotate(s.last.Program, s.last.Info))
	case ":funcs":
		if s.last == nil {
			fmt.Fprintln(stdout, "nothing accepted yet")
			break
		}
		for _, fn := range s.last.Program.Functions {
			fmt.Fprintln(stdout, s.last.Info.Funcs[fn].String())
		}
	case ":help":
		fmt.Fprintln(stdout, ":ast     print the session with inferred types")
		fmt.Fprintln(stdout, ":funcs   list declared functions")
		fmt.Fprintln(stdout, ":source  print the accepted source")
		fmt.Fprintln(stdout, ":reset   forget everything")
		fmt.Fprintln(stdout, ":quit    leave")
	default:
		fmt.Fprintln(stdout, "unknown command. Type :help for a list.")
	}
	return false
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func driverOptions(stderr io.Writer) driver.Options {
	if !debugMode {
		return driver.Options{}
	}
	return driver.Options{Logger: log.New(stderr, "[DEBUG] ", 0)}
}

/**
 * Prints a message only when debug mode is on.
 */
func printDebug(message string) {
	if debugMode {
		fmt.Fprintln(debugOut, "[DEBUG] "+message)
	}
}

/**
 * Checks whether a regular file exists at the given path.
 */
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
