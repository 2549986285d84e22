package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetPos() Position
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

// Program holds the top-level function declarations and, separately, the
// top-level statements in source order.
type Program struct {
	Functions []*FuncDecl
	Stmts     []Stmt
	Pos       Position
}

func (n *Program) GetPos() Position { return n.Pos }

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// TypeExpr is a type annotation: Int, Double?, String, …
type TypeExpr struct {
	Name     string
	Optional bool
	Pos      Position
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "Void"
	}
	if t.Optional {
		return t.Name + "?"
	}
	return t.Name
}

// Param is a function parameter: <label> <name>: <type>. A Label of "_"
// means the argument is passed without a label.
type Param struct {
	Label string
	Name  string
	Type  *TypeExpr
	Pos   Position
}

func (n *Param) GetPos() Position { return n.Pos }

// FuncDecl: func <name>(<params>) [-> <type>] { … }
type FuncDecl struct {
	Name       string
	Params     []*Param
	ReturnType *TypeExpr // nil for Void
	Body       *BlockStmt
	Pos        Position
}

func (n *FuncDecl) GetPos() Position { return n.Pos }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// BlockStmt is a brace-delimited list of statements.
type BlockStmt struct {
	Stmts []Stmt
	Pos   Position
}

func (n *BlockStmt) GetPos() Position { return n.Pos }
func (n *BlockStmt) stmtNode()        {}

// VarDecl: (var|let) <name> [: <type>] [= <value>]
type VarDecl struct {
	Name    string
	Mutable bool      // var
	Type    *TypeExpr // nil when inferred
	Value   Expr      // nil when absent
	Pos     Position
}

func (n *VarDecl) GetPos() Position { return n.Pos }
func (n *VarDecl) stmtNode()        {}

// AssignStmt: <target> = <value>
type AssignStmt struct {
	Target *IdentExpr
	Value  Expr
	Pos    Position
}

func (n *AssignStmt) GetPos() Position { return n.Pos }
func (n *AssignStmt) stmtNode()        {}

// IfStmt: if <cond> { … } [else …] or if let <name> { … } [else …]
type IfStmt struct {
	Condition Expr       // nil for if-let
	LetName   *IdentExpr // non-nil for if-let
	Then      *BlockStmt
	Else      Stmt // nil, *BlockStmt, or *IfStmt (else-if chain)
	Pos       Position
}

func (n *IfStmt) GetPos() Position { return n.Pos }
func (n *IfStmt) stmtNode()        {}

// WhileStmt: while <cond> { … }
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Pos       Position
}

func (n *WhileStmt) GetPos() Position { return n.Pos }
func (n *WhileStmt) stmtNode()        {}

// ReturnStmt: return [<value>]
type ReturnStmt struct {
	Value Expr // nil for bare "return"
	Pos   Position
}

func (n *ReturnStmt) GetPos() Position { return n.Pos }
func (n *ReturnStmt) stmtNode()        {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Expression Expr
	Pos        Position
}

func (n *ExprStmt) GetPos() Position { return n.Pos }
func (n *ExprStmt) stmtNode()        {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IdentExpr names a variable or parameter.
type IdentExpr struct {
	Name string
	Pos  Position
}

func (n *IdentExpr) GetPos() Position { return n.Pos }
func (n *IdentExpr) exprNode()        {}

// IntLitExpr keeps the lexeme; its type is decided by context.
type IntLitExpr struct {
	Value string
	Pos   Position
}

func (n *IntLitExpr) GetPos() Position { return n.Pos }
func (n *IntLitExpr) exprNode()        {}

// FloatLitExpr is a decimal literal: 3.14, 1e10, …
type FloatLitExpr struct {
	Value string
	Pos   Position
}

func (n *FloatLitExpr) GetPos() Position { return n.Pos }
func (n *FloatLitExpr) exprNode()        {}

// StringLitExpr is a string literal. Value is the decoded text.
type StringLitExpr struct {
	Value string
	Pos   Position
}

func (n *StringLitExpr) GetPos() Position { return n.Pos }
func (n *StringLitExpr) exprNode()        {}

// NilLitExpr is the nil literal.
type NilLitExpr struct {
	Pos Position
}

func (n *NilLitExpr) GetPos() Position { return n.Pos }
func (n *NilLitExpr) exprNode()        {}

// UnaryExpr: !<operand>
type UnaryExpr struct {
	Op      string
	Operand Expr
	Pos     Position
}

func (n *UnaryExpr) GetPos() Position { return n.Pos }
func (n *UnaryExpr) exprNode()        {}

// UnwrapExpr: <operand>! (force unwrap)
type UnwrapExpr struct {
	Operand Expr
	Pos     Position
}

func (n *UnwrapExpr) GetPos() Position { return n.Pos }
func (n *UnwrapExpr) exprNode()        {}

// BinaryExpr: <left> <op> <right>
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

func (n *BinaryExpr) GetPos() Position { return n.Pos }
func (n *BinaryExpr) exprNode()        {}

// Arg is one call argument, optionally labeled: f(with: x).
type Arg struct {
	Label string // "" when unlabeled
	Value Expr
	Pos   Position
}

// CallExpr: <callee>(<args>)
type CallExpr struct {
	Callee string
	Args   []*Arg
	Pos    Position
}

func (n *CallExpr) GetPos() Position { return n.Pos }
func (n *CallExpr) exprNode()        {}

// GroupExpr: (<expression>)
type GroupExpr struct {
	Expression Expr
	Pos        Position
}

func (n *GroupExpr) GetPos() Position { return n.Pos }
func (n *GroupExpr) exprNode()        {}

// ---------------------------------------------------------------------------
// Tree printer
// ---------------------------------------------------------------------------

// Annotator returns a note for an expression (typically its resolved type)
// or "" for none.
type Annotator func(Expr) string

// DebugString prints the tree one node per line, two spaces per level.
func DebugString(prog *Program) string {
	return AnnotatedString(prog, nil)
}

// AnnotatedString is DebugString with each statement-level expression
// followed by the annotator's note in square brackets.
func AnnotatedString(prog *Program, note Annotator) string {
	d := &debugger{note: note}
	d.program(prog, 0)
	return d.b.String()
}

type debugger struct {
	b    strings.Builder
	note Annotator
}

func (d *debugger) indent(level int) {
	for i := 0; i < level; i++ {
		d.b.WriteString("  ")
	}
}

// expr renders e with its annotation, if any.
func (d *debugger) expr(e Expr) string {
	s := ExprString(e)
	if d.note != nil && e != nil {
		if n := d.note(e); n != "" {
			s += " [" + n + "]"
		}
	}
	return s
}

func (d *debugger) program(prog *Program, level int) {
	d.indent(level)
	d.b.WriteString("Program\n")
	for _, s := range prog.Stmts {
		d.stmt(s, level+1)
	}
	for _, fn := range prog.Functions {
		d.funcDecl(fn, level+1)
	}
}

func (d *debugger) funcDecl(fn *FuncDecl, level int) {
	d.indent(level)
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Label + " " + p.Name + ": " + p.Type.String()
	}
	fmt.Fprintf(&d.b, "Func %s(%s) -> %s\n", fn.Name, strings.Join(params, ", "), fn.ReturnType)
	d.block(fn.Body, level+1)
}

func (d *debugger) block(block *BlockStmt, level int) {
	d.indent(level)
	fmt.Fprintf(&d.b, "Block [%d statements]\n", len(block.Stmts))
	for _, s := range block.Stmts {
		d.stmt(s, level+1)
	}
}

func (d *debugger) stmt(s Stmt, level int) {
	switch s := s.(type) {
	case *VarDecl:
		d.indent(level)
		kw := "let"
		if s.Mutable {
			kw = "var"
		}
		fmt.Fprintf(&d.b, "VarDecl %s %s", kw, s.Name)
		if s.Type != nil {
			fmt.Fprintf(&d.b, ": %s", s.Type)
		}
		if s.Value != nil {
			fmt.Fprintf(&d.b, " = %s", d.expr(s.Value))
		}
		d.b.WriteString("\n")
	case *AssignStmt:
		d.indent(level)
		fmt.Fprintf(&d.b, "AssignStmt %s = %s\n", s.Target.Name, d.expr(s.Value))
	case *ReturnStmt:
		d.indent(level)
		if s.Value != nil {
			fmt.Fprintf(&d.b, "ReturnStmt %s\n", d.expr(s.Value))
		} else {
			d.b.WriteString("ReturnStmt\n")
		}
	case *IfStmt:
		d.indent(level)
		if s.LetName != nil {
			fmt.Fprintf(&d.b, "IfLetStmt %s\n", s.LetName.Name)
		} else {
			fmt.Fprintf(&d.b, "IfStmt %s\n", d.expr(s.Condition))
		}
		d.block(s.Then, level+1)
		if s.Else != nil {
			d.indent(level + 1)
			d.b.WriteString("Else:\n")
			d.stmt(s.Else, level+2)
		}
	case *WhileStmt:
		d.indent(level)
		fmt.Fprintf(&d.b, "WhileStmt %s\n", d.expr(s.Condition))
		d.block(s.Body, level+1)
	case *ExprStmt:
		d.indent(level)
		fmt.Fprintf(&d.b, "ExprStmt %s\n", d.expr(s.Expression))
	case *BlockStmt:
		d.block(s, level)
	default:
		d.indent(level)
		d.b.WriteString("<unknown stmt>\n")
	}
}

// ExprString prints an expression fully parenthesized.
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e := e.(type) {
	case *IdentExpr:
		return e.Name
	case *IntLitExpr:
		return e.Value
	case *FloatLitExpr:
		return e.Value
	case *StringLitExpr:
		return fmt.Sprintf("%q", e.Value)
	case *NilLitExpr:
		return "nil"
	case *UnaryExpr:
		return fmt.Sprintf("(%s%s)", e.Op, ExprString(e.Operand))
	case *UnwrapExpr:
		return fmt.Sprintf("(%s!)", ExprString(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			if a.Label != "" {
				args[i] = a.Label + ": " + ExprString(a.Value)
			} else {
				args[i] = ExprString(a.Value)
			}
		}
		return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(args, ", "))
	case *GroupExpr:
		return fmt.Sprintf("(%s)", ExprString(e.Expression))
	default:
		return "<unknown expr>"
	}
}
