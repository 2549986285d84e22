package types_test

import (
	"swiftsub/internal/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opt(t types.Type) types.Type { return types.MakeOptional(t) }

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		optional bool
		want     types.Type
	}{
		{"Int", false, types.TypeInt},
		{"Double", true, opt(types.TypeDouble)},
		{"String", false, types.TypeString},
		{"String", true, opt(types.TypeString)},
	}
	for _, tt := range tests {
		got, ok := types.Lookup(tt.name, tt.optional)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, got)
	}

	_, ok := types.Lookup("Bool", false)
	assert.False(t, ok, "Bool is not a declarable type")
	_, ok = types.Lookup("Float", false)
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "Int", types.TypeInt.String())
	assert.Equal(t, "String?", opt(types.TypeString).String())
	assert.Equal(t, "nil", types.TypeNil.String())
	assert.Equal(t, "untyped int", types.TypeUntypedInt.String())
}

func TestMakeOptionalAndUnwrap(t *testing.T) {
	o := opt(types.TypeInt)
	assert.True(t, o.Optional)
	assert.Equal(t, o, opt(o), "optionals do not nest")
	assert.Equal(t, types.TypeInt, types.Unwrap(o))
	assert.Equal(t, types.TypeInt, types.Unwrap(types.TypeInt))
	assert.Equal(t, types.TypeVoid, opt(types.TypeVoid))
	assert.Equal(t, types.TypeNil, opt(types.TypeNil))
}

func TestDefault(t *testing.T) {
	assert.Equal(t, types.TypeInt, types.Default(types.TypeUntypedInt))
	assert.Equal(t, types.TypeDouble, types.Default(types.TypeDouble))
	assert.Equal(t, types.TypeNil, types.Default(types.TypeNil))
}

func TestWiden(t *testing.T) {
	assert.True(t, types.Widen(types.TypeUntypedInt, types.TypeDouble))
	assert.True(t, types.Widen(types.TypeUntypedInt, opt(types.TypeDouble)))
	assert.True(t, types.Widen(types.TypeUntypedInt, types.TypeInt))
	assert.False(t, types.Widen(types.TypeInt, types.TypeDouble), "Int variables never widen")
	assert.False(t, types.Widen(types.TypeUntypedInt, types.TypeString))
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		expr, target types.Type
		want         bool
	}{
		{types.TypeInt, types.TypeInt, true},
		{types.TypeInt, opt(types.TypeInt), true},
		{opt(types.TypeInt), types.TypeInt, false},
		{types.TypeNil, opt(types.TypeString), true},
		{types.TypeNil, types.TypeString, false},
		{types.TypeUntypedInt, types.TypeDouble, true},
		{types.TypeUntypedInt, opt(types.TypeInt), true},
		{types.TypeInt, types.TypeDouble, false},
		{types.TypeDouble, types.TypeInt, false},
		{types.TypeString, opt(types.TypeInt), false},
		{types.TypeBool, types.TypeInt, false},
		{types.TypeVoid, types.TypeInt, false},
		{types.TypeInt, types.TypeVoid, false},
		{opt(types.TypeDouble), opt(types.TypeDouble), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, types.IsCompatible(tt.expr, tt.target), "%s -> %s", tt.expr, tt.target)
	}
}

func TestUnify(t *testing.T) {
	got, ok := types.Unify(types.TypeUntypedInt, types.TypeDouble)
	require.True(t, ok)
	assert.Equal(t, types.TypeDouble, got)

	got, ok = types.Unify(types.TypeInt, types.TypeUntypedInt)
	require.True(t, ok)
	assert.Equal(t, types.TypeInt, got)

	got, ok = types.Unify(types.TypeUntypedInt, types.TypeUntypedInt)
	require.True(t, ok)
	assert.Equal(t, types.TypeUntypedInt, got)

	_, ok = types.Unify(types.TypeInt, types.TypeDouble)
	assert.False(t, ok)
	_, ok = types.Unify(opt(types.TypeInt), types.TypeInt)
	assert.False(t, ok)
}
