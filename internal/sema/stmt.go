package sema

import (
	"swiftsub/internal/ast"
	"swiftsub/internal/types"
)

// ---------------------------------------------------------------------------
// Statement analysis
// ---------------------------------------------------------------------------

func (a *Analyzer) checkStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return a.checkVarDecl(s)
	case *ast.AssignStmt:
		return a.checkAssign(s)
	case *ast.IfStmt:
		return a.checkIf(s)
	case *ast.WhileStmt:
		return a.checkWhile(s)
	case *ast.ReturnStmt:
		return a.checkReturn(s)
	case *ast.ExprStmt:
		_, err := a.checkExpr(s.Expression)
		return err
	case *ast.BlockStmt:
		return a.checkBlock(s, FrameBlock)
	default:
		return errorf(CodeInternal, stmt.GetPos(), "unexpected statement %T", stmt)
	}
}

// ---- Var / Let ----

func (a *Analyzer) checkVarDecl(s *ast.VarDecl) error {
	if s.Type == nil && s.Value == nil {
		return errorf(CodeSyntax, s.Pos, "declaration of %q needs a type or an initial value", s.Name)
	}

	var declared types.Type
	if s.Type != nil {
		t, err := a.resolveType(s.Type)
		if err != nil {
			return err
		}
		declared = t
	}

	// The initializer sees the enclosing scope, not the new name.
	var valType types.Type
	if s.Value != nil {
		t, err := a.checkExpr(s.Value)
		if err != nil {
			return err
		}
		valType = t
	}

	b := &Binding{Name: s.Name, Mutable: s.Mutable, Pos: s.Pos, loop: a.loops}
	switch {
	case s.Type != nil && s.Value != nil:
		if !types.IsCompatible(valType, declared) {
			return errorf(CodeType, s.Value.GetPos(), "cannot initialize %q of type %s with %s", s.Name, declared, valType)
		}
		b.Type = declared
	case s.Type != nil:
		b.Type = declared
	default:
		switch {
		case valType.IsNil():
			return errorf(CodeInference, s.Value.GetPos(), "cannot infer the type of %q from nil", s.Name)
		case valType.IsVoid():
			return errorf(CodeInference, s.Value.GetPos(), "cannot infer the type of %q from a Void value", s.Name)
		case !valType.IsValue():
			return errorf(CodeType, s.Value.GetPos(), "cannot store %s in %q", valType, s.Name)
		}
		b.Type = types.Default(valType)
	}

	// An optional without initializer starts out as nil.
	if s.Value != nil || b.Type.Optional {
		b.State = Initialized
	}
	if err := a.scopes.Declare(b); err != nil {
		return err
	}
	a.info.Defs[s] = b
	return nil
}

// ---- Assignment ----

func (a *Analyzer) checkAssign(s *ast.AssignStmt) error {
	b := a.scopes.Lookup(s.Target.Name)
	if b == nil {
		return errorf(CodeUndefined, s.Target.Pos, "undefined variable %q", s.Target.Name)
	}
	a.info.Uses[s.Target] = b

	valType, err := a.checkExpr(s.Value)
	if err != nil {
		return err
	}

	if !b.Mutable && (b.Param || b.State == Initialized) {
		return errorf(CodeType, s.Pos, "cannot assign to constant %q", b.Name)
	}
	// A loop body may run more than once.
	if !b.Mutable && b.loop < a.loops {
		return errorf(CodeType, s.Pos, "cannot assign to constant %q inside a loop", b.Name)
	}
	if !types.IsCompatible(valType, b.Type) {
		return errorf(CodeType, s.Value.GetPos(), "cannot assign %s to %q of type %s", valType, b.Name, b.Type)
	}
	a.scopes.MarkInitialized(b)
	return nil
}

// ---- If / If let ----

// checkIf checks both branches from the same initialization state. After
// the statement a binding counts as initialized when either branch
// assigned it.
func (a *Analyzer) checkIf(s *ast.IfStmt) error {
	cp := a.scopes.Checkpoint()

	if s.LetName != nil {
		if err := a.checkIfLet(s); err != nil {
			return err
		}
	} else {
		if err := a.checkCondition(s.Condition, "if"); err != nil {
			return err
		}
		if err := a.checkBlock(s.Then, FrameBlock); err != nil {
			return err
		}
	}

	thenInit := a.scopes.Rollback(cp)
	if s.Else != nil {
		var err error
		if elif, ok := s.Else.(*ast.IfStmt); ok {
			err = a.checkIf(elif)
		} else {
			err = a.checkBlock(s.Else.(*ast.BlockStmt), FrameBlock)
		}
		if err != nil {
			return err
		}
	}
	a.scopes.Restore(thenInit)
	return nil
}

// checkIfLet binds the unwrapped value in its own frame around the then
// block. The else branch sees the original optional binding.
func (a *Analyzer) checkIfLet(s *ast.IfStmt) error {
	name := s.LetName
	b := a.scopes.Lookup(name.Name)
	if b == nil {
		return errorf(CodeUndefined, name.Pos, "undefined variable %q", name.Name)
	}
	a.info.Uses[name] = b
	if !a.scopes.IsInitialized(b) {
		return errorf(CodeUninitialized, name.Pos, "variable %q used before being initialized", name.Name)
	}
	if !b.Type.Optional {
		return errorf(CodeType, name.Pos, "if let requires an optional, %q has type %s", name.Name, b.Type)
	}
	a.info.Types[name] = b.Type

	return a.withFrame(FrameIfLet, func() error {
		narrowed := &Binding{
			Name:  name.Name,
			Type:  types.Unwrap(b.Type),
			State: Initialized,
			Pos:   name.Pos,
			loop:  a.loops,
		}
		if err := a.scopes.Declare(narrowed); err != nil {
			return err
		}
		a.info.Defs[s] = narrowed
		return a.checkBlock(s.Then, FrameBlock)
	})
}

// ---- While ----

func (a *Analyzer) checkWhile(s *ast.WhileStmt) error {
	if err := a.checkCondition(s.Condition, "while"); err != nil {
		return err
	}
	a.loops++
	defer func() { a.loops-- }()
	return a.checkBlock(s.Body, FrameBlock)
}

func (a *Analyzer) checkCondition(cond ast.Expr, what string) error {
	t, err := a.checkExpr(cond)
	if err != nil {
		return err
	}
	if !t.IsBool() {
		return errorf(CodeType, cond.GetPos(), "%s condition must be a Bool expression, got %s", what, t)
	}
	return nil
}

// ---- Return ----

func (a *Analyzer) checkReturn(s *ast.ReturnStmt) error {
	if a.fn == nil {
		return errorf(CodeSyntax, s.Pos, "return statement outside of function")
	}
	result := a.fn.Result

	if s.Value == nil {
		if !result.IsVoid() {
			return errorf(CodeReturn, s.Pos, "function %q must return a value of type %s", a.fn.Name, result)
		}
		return nil
	}

	t, err := a.checkExpr(s.Value)
	if err != nil {
		return err
	}
	if result.IsVoid() {
		return errorf(CodeReturn, s.Value.GetPos(), "Void function %q cannot return a value", a.fn.Name)
	}
	if !types.IsCompatible(t, result) {
		return errorf(CodeCall, s.Value.GetPos(), "cannot return %s from function %q with return type %s", t, a.fn.Name, result)
	}
	return nil
}
