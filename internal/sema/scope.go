package sema

import (
	"swiftsub/internal/ast"
	"swiftsub/internal/types"
)

// ---------------------------------------------------------------------------
// Bindings
// ---------------------------------------------------------------------------

// State tracks whether a binding has been assigned at least once.
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// Binding is a declared variable, constant or parameter.
type Binding struct {
	Name    string
	Type    types.Type
	Mutable bool // var
	Param   bool
	State   State
	Pos     ast.Position

	loop int // number of enclosing while bodies at the declaration
}

// ---------------------------------------------------------------------------
// Frames
// ---------------------------------------------------------------------------

// FrameKind labels what introduced a frame.
type FrameKind int

const (
	FrameGlobal FrameKind = iota
	FrameParams
	FrameBody
	FrameBlock
	FrameIfLet
)

func (k FrameKind) String() string {
	switch k {
	case FrameGlobal:
		return "global"
	case FrameParams:
		return "params"
	case FrameBody:
		return "body"
	case FrameBlock:
		return "block"
	case FrameIfLet:
		return "if-let"
	default:
		return "unknown"
	}
}

// Frame is one lexical level of bindings.
type Frame struct {
	Kind     FrameKind
	parent   *Frame
	bindings map[string]*Binding
}

func newFrame(kind FrameKind, parent *Frame) *Frame {
	return &Frame{Kind: kind, parent: parent, bindings: make(map[string]*Binding)}
}

// lookupLocal returns the binding with the given name in this frame only.
func (f *Frame) lookupLocal(name string) *Binding {
	return f.bindings[name]
}

// lookup walks the frame chain (innermost first).
func (f *Frame) lookup(name string) *Binding {
	for fr := f; fr != nil; fr = fr.parent {
		if b := fr.bindings[name]; b != nil {
			return b
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// ScopeTable
// ---------------------------------------------------------------------------

// ScopeTable is the stack of frames for one analysis run. It also keeps a
// log of Uninitialized→Initialized transitions so that branch-local
// initialization can be rolled back and merged.
type ScopeTable struct {
	top   *Frame
	depth int
	log   []*Binding
}

// NewScopeTable returns an empty table; the caller pushes the global frame.
func NewScopeTable() *ScopeTable {
	return &ScopeTable{}
}

// Push opens a new innermost frame.
func (s *ScopeTable) Push(kind FrameKind) {
	s.top = newFrame(kind, s.top)
	s.depth++
}

// Pop closes the innermost frame and releases its bindings.
func (s *ScopeTable) Pop() {
	if s.top == nil {
		panic("sema: Pop on empty scope table")
	}
	s.top = s.top.parent
	s.depth--
}

// Depth is the number of open frames.
func (s *ScopeTable) Depth() int { return s.depth }

// Top returns the innermost frame, or nil.
func (s *ScopeTable) Top() *Frame { return s.top }

// Declare adds b to the innermost frame. Redefinition within that frame is
// CodeUndefined; shadowing an outer frame is allowed.
func (s *ScopeTable) Declare(b *Binding) error {
	if existing := s.top.lookupLocal(b.Name); existing != nil {
		return errorf(CodeUndefined, b.Pos, "%q already declared in this scope at %s", b.Name, existing.Pos)
	}
	s.top.bindings[b.Name] = b
	return nil
}

// Lookup resolves name from the innermost frame outwards.
func (s *ScopeTable) Lookup(name string) *Binding {
	if s.top == nil {
		return nil
	}
	return s.top.lookup(name)
}

// MarkInitialized records an assignment to b.
func (s *ScopeTable) MarkInitialized(b *Binding) {
	if b.State == Initialized {
		return
	}
	b.State = Initialized
	s.log = append(s.log, b)
}

// IsInitialized reports whether b has been assigned.
func (s *ScopeTable) IsInitialized(b *Binding) bool {
	return b.State == Initialized
}

// Checkpoint marks the current position in the initialization log.
func (s *ScopeTable) Checkpoint() int { return len(s.log) }

// Rollback undoes every initialization recorded since cp and returns the
// affected bindings.
func (s *ScopeTable) Rollback(cp int) []*Binding {
	undone := append([]*Binding(nil), s.log[cp:]...)
	for _, b := range undone {
		b.State = Uninitialized
	}
	s.log = s.log[:cp]
	return undone
}

// Restore re-applies initializations returned by Rollback.
func (s *ScopeTable) Restore(bs []*Binding) {
	for _, b := range bs {
		s.MarkInitialized(b)
	}
}
