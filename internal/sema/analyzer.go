package sema

import (
	"swiftsub/internal/ast"
	"swiftsub/internal/types"
)

// ---------------------------------------------------------------------------
// Info
// ---------------------------------------------------------------------------

// Info is the annotation produced by a successful run.
type Info struct {
	// Types holds the type of every checked expression.
	Types map[ast.Expr]types.Type
	// Calls holds the signature each call resolved to.
	Calls map[*ast.CallExpr]*Signature
	// Defs maps declarations (*ast.VarDecl, *ast.Param, and if-let
	// *ast.IfStmt) to the binding they introduce.
	Defs map[ast.Node]*Binding
	// Uses maps identifier reads and assignment targets to their binding.
	Uses map[*ast.IdentExpr]*Binding
	// Funcs maps each function declaration to its signature.
	Funcs map[*ast.FuncDecl]*Signature
}

func newInfo() *Info {
	return &Info{
		Types: make(map[ast.Expr]types.Type),
		Calls: make(map[*ast.CallExpr]*Signature),
		Defs:  make(map[ast.Node]*Binding),
		Uses:  make(map[*ast.IdentExpr]*Binding),
		Funcs: make(map[*ast.FuncDecl]*Signature),
	}
}

// TypeOf returns the recorded type of e, or types.TypeUnknown.
func (info *Info) TypeOf(e ast.Expr) types.Type {
	if t, ok := info.Types[e]; ok {
		return t
	}
	return types.TypeUnknown
}

// ---------------------------------------------------------------------------
// Analyzer
// ---------------------------------------------------------------------------

// Analyzer holds the state for a single semantic-analysis run. It stops at
// the first error.
type Analyzer struct {
	sigs   *SignatureTable
	scopes *ScopeTable
	info   *Info
	fn     *Signature // the function whose body is being checked
	loops  int        // while bodies currently open
	used   bool
}

// New returns an analyzer with the built-in functions registered.
func New() *Analyzer {
	return &Analyzer{
		sigs:   NewSignatureTable(),
		scopes: NewScopeTable(),
		info:   newInfo(),
	}
}

// Analyze checks prog and returns its annotation, or the first error found.
func Analyze(prog *ast.Program) (*Info, error) {
	return New().Run(prog)
}

// Signatures exposes the signature table, complete once Run has returned.
func (a *Analyzer) Signatures() *SignatureTable { return a.sigs }

// Run analyzes prog. An Analyzer can run only once.
func (a *Analyzer) Run(prog *ast.Program) (*Info, error) {
	if a.used {
		return nil, errorf(CodeInternal, prog.Pos, "analyzer already used")
	}
	a.used = true

	if err := a.declareFunctions(prog); err != nil {
		return nil, err
	}
	a.sigs.Seal()

	a.scopes.Push(FrameGlobal)
	defer a.scopes.Pop()

	for _, stmt := range prog.Stmts {
		if err := a.checkStmt(stmt); err != nil {
			return nil, err
		}
	}
	// Signatures are complete, so body order cannot change the outcome.
	for _, fn := range prog.Functions {
		if err := a.checkFunction(fn); err != nil {
			return nil, err
		}
	}
	return a.info, nil
}

// ---------------------------------------------------------------------------
// Declaration pass
// ---------------------------------------------------------------------------

func (a *Analyzer) declareFunctions(prog *ast.Program) error {
	for _, fn := range prog.Functions {
		sig := &Signature{Name: fn.Name, Result: types.TypeVoid, Pos: fn.Pos}
		if fn.ReturnType != nil {
			t, err := a.resolveType(fn.ReturnType)
			if err != nil {
				return err
			}
			sig.Result = t
		}

		seen := make(map[string]bool, len(fn.Params))
		for _, p := range fn.Params {
			if seen[p.Name] {
				return errorf(CodeUndefined, p.Pos, "duplicate parameter %q in function %q", p.Name, fn.Name)
			}
			seen[p.Name] = true
			t, err := a.resolveType(p.Type)
			if err != nil {
				return err
			}
			sig.Params = append(sig.Params, Param{Label: p.Label, Name: p.Name, Type: t})
		}

		if err := a.sigs.Add(sig); err != nil {
			return err
		}
		a.info.Funcs[fn] = sig
	}
	return nil
}

func (a *Analyzer) resolveType(te *ast.TypeExpr) (types.Type, error) {
	t, ok := types.Lookup(te.Name, te.Optional)
	if !ok {
		return types.TypeUnknown, errorf(CodeSyntax, te.Pos, "unknown type %q", te.Name)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Function bodies
// ---------------------------------------------------------------------------

func (a *Analyzer) checkFunction(fn *ast.FuncDecl) error {
	sig := a.info.Funcs[fn]
	a.fn = sig
	defer func() { a.fn = nil }()

	a.scopes.Push(FrameParams)
	defer a.scopes.Pop()

	for i, p := range fn.Params {
		b := &Binding{
			Name:  p.Name,
			Type:  sig.Params[i].Type,
			Param: true,
			State: Initialized,
			Pos:   p.Pos,
		}
		if err := a.scopes.Declare(b); err != nil {
			return err
		}
		a.info.Defs[p] = b
	}

	// Body declarations may shadow parameters.
	if err := a.checkBlock(fn.Body, FrameBody); err != nil {
		return err
	}

	if !sig.Result.IsVoid() && !blockCloses(fn.Body) {
		return errorf(CodeCall, fn.Pos, "function %q must return a value of type %s on all paths", fn.Name, sig.Result)
	}
	return nil
}

// withFrame runs f inside a fresh frame that is released however f exits.
func (a *Analyzer) withFrame(kind FrameKind, f func() error) error {
	a.scopes.Push(kind)
	defer a.scopes.Pop()
	return f()
}

func (a *Analyzer) checkBlock(block *ast.BlockStmt, kind FrameKind) error {
	return a.withFrame(kind, func() error {
		for _, stmt := range block.Stmts {
			if err := a.checkStmt(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
