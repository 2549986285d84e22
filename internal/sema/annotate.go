package sema

import "swiftsub/internal/ast"

// Annotate renders prog like ast.DebugString, with the resolved type of each
// statement-level expression.
func Annotate(prog *ast.Program, info *Info) string {
	return ast.AnnotatedString(prog, func(e ast.Expr) string {
		t, ok := info.Types[e]
		if !ok {
			return ""
		}
		return t.String()
	})
}
