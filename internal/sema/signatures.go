package sema

import (
	"fmt"
	"strings"
	"swiftsub/internal/ast"
	"swiftsub/internal/types"
)

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// Param is one parameter of a signature. Label "_" means the argument is
// passed without a label.
type Param struct {
	Label string
	Name  string
	Type  types.Type
}

// Signature describes a callable function.
type Signature struct {
	Name     string
	Params   []Param
	Result   types.Type
	Variadic bool // any number of unlabeled value arguments
	Builtin  bool
	Pos      ast.Position
}

func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("(")
	if s.Variadic {
		b.WriteString("...")
	}
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s: %s", p.Label, p.Name, p.Type)
	}
	fmt.Fprintf(&b, ") -> %s", s.Result)
	return b.String()
}

// Argument is an evaluated call argument.
type Argument struct {
	Label string // "" when unlabeled
	Type  types.Type
	Pos   ast.Position
}

// Match checks evaluated arguments against the signature. Every mismatch is
// CodeCall.
func (s *Signature) Match(args []Argument, pos ast.Position) error {
	if s.Variadic {
		for _, a := range args {
			if a.Label != "" {
				return errorf(CodeCall, a.Pos, "%s does not take labeled arguments (got %q)", s.Name, a.Label)
			}
			if !a.Type.IsValue() && !a.Type.IsNil() {
				return errorf(CodeCall, a.Pos, "cannot pass %s to %s", a.Type, s.Name)
			}
		}
		return nil
	}

	if len(args) != len(s.Params) {
		return errorf(CodeCall, pos, "%s expects %d argument(s), got %d", s.Name, len(s.Params), len(args))
	}
	for i, p := range s.Params {
		a := args[i]
		switch {
		case p.Label == "_" && a.Label != "":
			return errorf(CodeCall, a.Pos, "argument %d of %s must not be labeled (got %q)", i+1, s.Name, a.Label)
		case p.Label != "_" && a.Label != p.Label:
			return errorf(CodeCall, a.Pos, "argument %d of %s must be labeled %q", i+1, s.Name, p.Label)
		}
		if !types.IsCompatible(a.Type, p.Type) {
			return errorf(CodeCall, a.Pos, "cannot pass %s as %s parameter %q of %s", a.Type, p.Type, p.Name, s.Name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// SignatureTable
// ---------------------------------------------------------------------------

// SignatureTable holds every function known to a run. It is filled before
// any body is checked and sealed afterwards.
type SignatureTable struct {
	sigs   map[string]*Signature
	order  []string
	sealed bool
}

// NewSignatureTable returns a table preloaded with the built-in functions.
func NewSignatureTable() *SignatureTable {
	t := &SignatureTable{sigs: make(map[string]*Signature)}
	for _, sig := range builtins() {
		t.sigs[sig.Name] = sig
		t.order = append(t.order, sig.Name)
	}
	return t
}

// Add registers a user-defined function. A name already in the table,
// built-in or not, is CodeUndefined.
func (t *SignatureTable) Add(sig *Signature) error {
	if t.sealed {
		panic("sema: Add on sealed signature table")
	}
	if existing, ok := t.sigs[sig.Name]; ok {
		if existing.Builtin {
			return errorf(CodeUndefined, sig.Pos, "cannot redeclare built-in function %q", sig.Name)
		}
		return errorf(CodeUndefined, sig.Pos, "function %q already declared at %s", sig.Name, existing.Pos)
	}
	t.sigs[sig.Name] = sig
	t.order = append(t.order, sig.Name)
	return nil
}

// Seal forbids further additions.
func (t *SignatureTable) Seal() { t.sealed = true }

// Lookup returns the signature registered under name.
func (t *SignatureTable) Lookup(name string) (*Signature, bool) {
	sig, ok := t.sigs[name]
	return sig, ok
}

// ResolveCall looks name up and matches args against it: CodeUndefined for
// an unknown function, CodeCall for a mismatch.
func (t *SignatureTable) ResolveCall(name string, args []Argument, pos ast.Position) (*Signature, error) {
	sig, ok := t.Lookup(name)
	if !ok {
		return nil, errorf(CodeUndefined, pos, "undefined function %q", name)
	}
	if err := sig.Match(args, pos); err != nil {
		return nil, err
	}
	return sig, nil
}

// All returns the signatures in registration order, built-ins first.
func (t *SignatureTable) All() []*Signature {
	out := make([]*Signature, len(t.order))
	for i, name := range t.order {
		out[i] = t.sigs[name]
	}
	return out
}
