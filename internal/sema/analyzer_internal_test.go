package sema

import (
	"swiftsub/internal/lexer"
	"swiftsub/internal/parser"
	"testing"
)

func TestFramesReleasedOnError(t *testing.T) {
	tests := []struct {
		src  string
		want Code
	}{
		{"var i = 0\nwhile i < 2 {\n  if i == 0 {\n    let s: String = 1\n  }\n}", CodeType},
		{"let o: Int? = 1\nif let o {\n  while o > 0 {\n    write(zz)\n  }\n}", CodeUndefined},
		{"func f(_ x: Int) -> Int {\n  if x > 0 {\n    return \"no\"\n  }\n  return 0\n}", CodeCall},
	}
	for _, tt := range tests {
		tokens, lexErrs := lexer.Lex(tt.src)
		if len(lexErrs) > 0 {
			t.Fatalf("lex errors: %v", lexErrs)
		}
		prog, parseErrs := parser.Parse(tokens)
		if len(parseErrs) > 0 {
			t.Fatalf("parse errors: %v", parseErrs)
		}

		a := New()
		_, err := a.Run(prog)
		if got := CodeOf(err); got != tt.want {
			t.Errorf("got code %d, want %d (%v)\n%s", got, tt.want, err, tt.src)
		}
		if d := a.scopes.Depth(); d != 0 {
			t.Errorf("%d frame(s) still open after error\n%s", d, tt.src)
		}
		if a.loops != 0 || a.fn != nil {
			t.Errorf("loop depth %d, function %v left set\n%s", a.loops, a.fn, tt.src)
		}
	}
}
