package sema

import (
	"swiftsub/internal/ast"
	"swiftsub/internal/types"
)

// ---------------------------------------------------------------------------
// Expression analysis
// ---------------------------------------------------------------------------

// checkExpr returns the type of e and records it in Info.Types.
func (a *Analyzer) checkExpr(e ast.Expr) (types.Type, error) {
	t, err := a.exprType(e)
	if err != nil {
		return types.TypeUnknown, err
	}
	a.info.Types[e] = t
	return t, nil
}

func (a *Analyzer) exprType(e ast.Expr) (types.Type, error) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		return a.checkIdent(e)
	case *ast.IntLitExpr:
		return types.TypeUntypedInt, nil
	case *ast.FloatLitExpr:
		return types.TypeDouble, nil
	case *ast.StringLitExpr:
		return types.TypeString, nil
	case *ast.NilLitExpr:
		return types.TypeNil, nil
	case *ast.GroupExpr:
		return a.checkExpr(e.Expression)
	case *ast.UnaryExpr:
		return a.checkUnary(e)
	case *ast.UnwrapExpr:
		return a.checkUnwrap(e)
	case *ast.BinaryExpr:
		return a.checkBinary(e)
	case *ast.CallExpr:
		return a.checkCall(e)
	default:
		return types.TypeUnknown, errorf(CodeInternal, e.GetPos(), "unexpected expression %T", e)
	}
}

// ---- Identifier ----

func (a *Analyzer) checkIdent(e *ast.IdentExpr) (types.Type, error) {
	b := a.scopes.Lookup(e.Name)
	if b == nil {
		return types.TypeUnknown, errorf(CodeUndefined, e.Pos, "undefined variable %q", e.Name)
	}
	a.info.Uses[e] = b
	if !a.scopes.IsInitialized(b) {
		return types.TypeUnknown, errorf(CodeUninitialized, e.Pos, "variable %q used before being initialized", e.Name)
	}
	return b.Type, nil
}

// ---- Unary ----

func (a *Analyzer) checkUnary(e *ast.UnaryExpr) (types.Type, error) {
	t, err := a.checkExpr(e.Operand)
	if err != nil {
		return types.TypeUnknown, err
	}
	if !t.IsBool() {
		return types.TypeUnknown, errorf(CodeType, e.Pos, "operator %s requires a Bool operand, got %s", e.Op, t)
	}
	return types.TypeBool, nil
}

func (a *Analyzer) checkUnwrap(e *ast.UnwrapExpr) (types.Type, error) {
	t, err := a.checkExpr(e.Operand)
	if err != nil {
		return types.TypeUnknown, err
	}
	if !t.Optional {
		return types.TypeUnknown, errorf(CodeType, e.Pos, "cannot force-unwrap non-optional %s", t)
	}
	return types.Unwrap(t), nil
}

// ---- Binary ----

func (a *Analyzer) checkBinary(e *ast.BinaryExpr) (types.Type, error) {
	l, err := a.checkExpr(e.Left)
	if err != nil {
		return types.TypeUnknown, err
	}
	r, err := a.checkExpr(e.Right)
	if err != nil {
		return types.TypeUnknown, err
	}

	switch e.Op {
	case "+", "-", "*", "/":
		return arithmeticType(e, l, r)
	case "==", "!=":
		return equalityType(e, l, r)
	case "<", ">", "<=", ">=":
		t, ok := types.Unify(l, r)
		if !ok || !(t.IsNumeric() || t.Kind == types.String) {
			return types.TypeUnknown, mismatch(e, l, r)
		}
		return types.TypeBool, nil
	case "??":
		return coalesceType(e, l, r)
	case "&&", "||":
		if !l.IsBool() || !r.IsBool() {
			return types.TypeUnknown, mismatch(e, l, r)
		}
		return types.TypeBool, nil
	}
	return types.TypeUnknown, errorf(CodeInternal, e.Pos, "unknown operator %q", e.Op)
}

func mismatch(e *ast.BinaryExpr, l, r types.Type) error {
	return errorf(CodeType, e.Pos, "invalid operand types for %s: %s and %s", e.Op, l, r)
}

// arithmeticType: both operands must share a non-optional numeric type once
// untyped literals adapt, or both be String for +.
func arithmeticType(e *ast.BinaryExpr, l, r types.Type) (types.Type, error) {
	t, ok := types.Unify(l, r)
	if !ok {
		return types.TypeUnknown, mismatch(e, l, r)
	}
	if t.IsNumeric() || (t.Kind == types.String && e.Op == "+") {
		return t, nil
	}
	return types.TypeUnknown, mismatch(e, l, r)
}

func equalityType(e *ast.BinaryExpr, l, r types.Type) (types.Type, error) {
	if l.IsNil() && r.IsNil() {
		return types.TypeUnknown, errorf(CodeInference, e.Pos, "cannot compare nil with nil")
	}
	if l == r && l.IsValue() {
		return types.TypeBool, nil
	}
	if types.IsCompatible(l, r) || types.IsCompatible(r, l) {
		return types.TypeBool, nil
	}
	return types.TypeUnknown, mismatch(e, l, r)
}

// coalesceType: T? ?? T gives T.
func coalesceType(e *ast.BinaryExpr, l, r types.Type) (types.Type, error) {
	switch {
	case l.IsNil() && r.IsNil():
		return types.TypeUnknown, errorf(CodeInference, e.Pos, "cannot infer the type of nil ?? nil")
	case l.IsNil():
		if !r.IsValue() {
			return types.TypeUnknown, mismatch(e, l, r)
		}
		return r, nil
	case !l.Optional:
		return types.TypeUnknown, errorf(CodeType, e.Left.GetPos(), "left operand of ?? must be optional, got %s", l)
	}
	base := types.Unwrap(l)
	if !types.IsCompatible(r, base) {
		return types.TypeUnknown, mismatch(e, l, r)
	}
	return base, nil
}

// ---- Call ----

// checkCall looks the callee up before evaluating any argument, so an
// undefined function is reported ahead of errors inside its arguments.
func (a *Analyzer) checkCall(e *ast.CallExpr) (types.Type, error) {
	if _, ok := a.sigs.Lookup(e.Callee); !ok {
		return types.TypeUnknown, errorf(CodeUndefined, e.Pos, "undefined function %q", e.Callee)
	}

	args := make([]Argument, len(e.Args))
	for i, arg := range e.Args {
		t, err := a.checkExpr(arg.Value)
		if err != nil {
			return types.TypeUnknown, err
		}
		args[i] = Argument{Label: arg.Label, Type: t, Pos: arg.Pos}
	}

	sig, err := a.sigs.ResolveCall(e.Callee, args, e.Pos)
	if err != nil {
		return types.TypeUnknown, err
	}
	a.info.Calls[e] = sig
	return sig.Result, nil
}
