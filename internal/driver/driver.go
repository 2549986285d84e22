package driver

import (
	"fmt"
	"log"
	"os"
	"swiftsub/internal/ast"
	"swiftsub/internal/lexer"
	"swiftsub/internal/parser"
	"swiftsub/internal/sema"
)

// Options configures a pipeline run.
type Options struct {
	// Logger receives stage-by-stage debug output. Nil disables it.
	Logger *log.Logger
}

func (o Options) debugf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// Result is the outcome of running the front end over one source text.
type Result struct {
	Name string
	Code sema.Code
	Err  error // the terminating error; nil when Code is CodeOK

	// Incomplete is set when parsing stopped at end of input, so appending
	// more source could still produce a valid program.
	Incomplete bool

	Tokens  []lexer.Token
	Program *ast.Program // nil if lexing or parsing failed
	Info    *sema.Info   // nil unless Code is CodeOK
}

// Check lexes, parses and analyzes src. The name is used only in messages.
func Check(name, src string, opts Options) (res *Result) {
	res = &Result{Name: name}
	defer func() {
		if r := recover(); r != nil {
			res.Code = sema.CodeInternal
			res.Err = fmt.Errorf("%s: internal error: %v", name, r)
			res.Info = nil
		}
	}()

	opts.debugf("Starting lexing process...")
	tokens, lexErrs := lexer.Lex(src)
	res.Tokens = tokens
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			opts.debugf("Lex error: %s", e.Error())
		}
		res.Code = sema.CodeLexical
		res.Err = lexErrs[0]
		return res
	}
	opts.debugf("Lexing complete. %d tokens produced.", len(tokens))

	opts.debugf("Starting parsing process...")
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			opts.debugf("Parse error: %s", e.Error())
		}
		res.Code = sema.CodeSyntax
		res.Err = parseErrs[0]
		res.Incomplete = parseErrs[0].Incomplete
		return res
	}
	res.Program = prog
	opts.debugf("Parsing complete. %d function(s), %d top-level statement(s).", len(prog.Functions), len(prog.Stmts))
	opts.debugf("--- AST ---\n%s--- End AST ---", ast.DebugString(prog))

	opts.debugf("Starting semantic analysis...")
	info, err := sema.Analyze(prog)
	res.Code = sema.CodeOf(err)
	if err != nil {
		res.Err = err
		opts.debugf("Semantic analysis failed with code %d: %v", res.Code, err)
		return res
	}
	res.Info = info
	opts.debugf("Semantic analysis complete. No errors.")
	return res
}

// CheckFile reads path and runs Check over its contents. The error is
// non-nil only when the file cannot be read.
func CheckFile(path string, opts Options) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	opts.debugf("Building using: %s", path)
	return Check(path, string(content), opts), nil
}

// Message formats the result for a terminal: "ok" or the terminating error.
func (r *Result) Message() string {
	if r.Err == nil {
		return fmt.Sprintf("%s: ok", r.Name)
	}
	return fmt.Sprintf("%s: %s (exit %d)\n  %s", r.Name, r.Code, int(r.Code), r.Err)
}
