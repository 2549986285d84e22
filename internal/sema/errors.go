package sema

import (
	"errors"
	"fmt"
	"swiftsub/internal/ast"
)

// Code is the exit status a front end reports for a program. The values are
// fixed and shared with the lexer and parser stages.
type Code int

const (
	CodeOK            Code = 0
	CodeLexical       Code = 1  // malformed token
	CodeSyntax        Code = 2  // malformed program, or declaration without type and value
	CodeUndefined     Code = 3  // undeclared name, or redefinition in the same scope
	CodeCall          Code = 4  // call mismatch, missing or mistyped return
	CodeUninitialized Code = 5  // read before any assignment
	CodeReturn        Code = 6  // return with the wrong form for the function
	CodeType          Code = 7  // incompatible types, bad condition, immutable reassignment
	CodeInference     Code = 8  // type cannot be determined
	CodeInternal      Code = 99 // analyzer misuse
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeLexical:
		return "lexical error"
	case CodeSyntax:
		return "syntax error"
	case CodeUndefined:
		return "undefined or redefined name"
	case CodeCall:
		return "call or return mismatch"
	case CodeUninitialized:
		return "uninitialized variable"
	case CodeReturn:
		return "bad return form"
	case CodeType:
		return "type incompatibility"
	case CodeInference:
		return "type inference failure"
	case CodeInternal:
		return "internal error"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// Error is the single error that terminates an analysis run.
type Error struct {
	Code    Code
	Pos     ast.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, col %d: error %d: %s", e.Pos.Line, e.Pos.Column, int(e.Code), e.Message)
}

func errorf(code Code, pos ast.Position, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// CodeOf maps the result of an analysis run to its exit code: CodeOK for
// nil, the carried code for an *Error, and CodeInternal otherwise.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var semErr *Error
	if errors.As(err, &semErr) {
		return semErr.Code
	}
	return CodeInternal
}
