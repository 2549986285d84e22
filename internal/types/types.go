package types

// ---------------------------------------------------------------------------
// Kinds
// ---------------------------------------------------------------------------

// Kind identifies the scalar part of a Type.
type Kind int

const (
	Unknown Kind = iota
	Int
	Double
	String
	Bool
	Void
	Nil        // the type of the `nil` literal; never stored in a binding
	UntypedInt // integer literals and arithmetic built only from them
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case Double:
		return "Double"
	case String:
		return "String"
	case Bool:
		return "Bool"
	case Void:
		return "Void"
	case Nil:
		return "nil"
	case UntypedInt:
		return "untyped int"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Type
// ---------------------------------------------------------------------------

// Type is a scalar kind plus an optionality flag. Nesting optionals is not
// representable.
type Type struct {
	Kind     Kind
	Optional bool
}

var (
	TypeUnknown    = Type{Kind: Unknown}
	TypeInt        = Type{Kind: Int}
	TypeDouble     = Type{Kind: Double}
	TypeString     = Type{Kind: String}
	TypeBool       = Type{Kind: Bool}
	TypeVoid       = Type{Kind: Void}
	TypeNil        = Type{Kind: Nil}
	TypeUntypedInt = Type{Kind: UntypedInt}
)

// namedTypes maps annotation names to their types.
var namedTypes = map[string]Type{
	"Int":    TypeInt,
	"Double": TypeDouble,
	"String": TypeString,
}

// Lookup resolves a type annotation. The second result is false for names
// that are not types of the language.
func Lookup(name string, optional bool) (Type, bool) {
	t, ok := namedTypes[name]
	if !ok {
		return TypeUnknown, false
	}
	t.Optional = optional
	return t, true
}

func (t Type) String() string {
	if t.Optional {
		return t.Kind.String() + "?"
	}
	return t.Kind.String()
}

// MakeOptional returns T? for T. Only value kinds can be made optional;
// other kinds are returned unchanged.
func MakeOptional(t Type) Type {
	if !t.IsValue() {
		return t
	}
	t.Optional = true
	return t
}

// Unwrap returns T for T?, and t itself otherwise.
func Unwrap(t Type) Type {
	t.Optional = false
	return t
}

// Default gives an untyped literal type the type a binding would store.
func Default(t Type) Type {
	if t.Kind == UntypedInt {
		return Type{Kind: Int, Optional: t.Optional}
	}
	return t
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

// IsValue reports whether t can be stored in a variable or passed as a
// parameter: Int, Double, String and untyped int literals.
func (t Type) IsValue() bool {
	switch t.Kind {
	case Int, Double, String, UntypedInt:
		return true
	}
	return false
}

// IsNumeric reports whether t is a non-optional Int, Double or untyped int.
func (t Type) IsNumeric() bool {
	if t.Optional {
		return false
	}
	return t.Kind == Int || t.Kind == Double || t.Kind == UntypedInt
}

// IsNil reports whether t is the type of the nil literal.
func (t Type) IsNil() bool { return t.Kind == Nil }

// IsBool reports whether t is a plain Bool.
func (t Type) IsBool() bool { return t.Kind == Bool && !t.Optional }

// IsVoid reports whether t is Void.
func (t Type) IsVoid() bool { return t.Kind == Void }

// ---------------------------------------------------------------------------
// Compatibility
// ---------------------------------------------------------------------------

// Widen reports whether a value of type from may be implicitly converted to
// to. The only implicit conversion is of untyped int literals, which become
// Int or Double (optional or not).
func Widen(from, to Type) bool {
	if from.Kind != UntypedInt || from.Optional {
		return false
	}
	return to.Kind == Int || to.Kind == Double
}

// IsCompatible reports whether an expression of type expr may be stored in,
// passed as, or returned as target.
func IsCompatible(expr, target Type) bool {
	if !target.IsValue() || target.Kind == UntypedInt {
		return false
	}
	if expr == target {
		return true
	}
	if Widen(expr, target) {
		return true
	}
	if expr.IsNil() {
		return target.Optional
	}
	// T flows into T?, never the other way.
	if target.Optional && !expr.Optional {
		return expr.Kind == target.Kind
	}
	return false
}

// Unify computes the common non-optional operand type of two arithmetic or
// relational operands. Untyped int literals adapt to the other operand. The
// second result is false when no common type exists.
func Unify(a, b Type) (Type, bool) {
	if a.Optional || b.Optional {
		return TypeUnknown, false
	}
	if a == b {
		return a, true
	}
	if a.Kind == UntypedInt && (b.Kind == Int || b.Kind == Double) {
		return b, true
	}
	if b.Kind == UntypedInt && (a.Kind == Int || a.Kind == Double) {
		return a, true
	}
	return TypeUnknown, false
}
