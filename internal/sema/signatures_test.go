package sema_test

import (
	"swiftsub/internal/ast"
	"swiftsub/internal/sema"
	"swiftsub/internal/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsPreloaded(t *testing.T) {
	tbl := sema.NewSignatureTable()
	names := make([]string, 0)
	for _, sig := range tbl.All() {
		assert.True(t, sig.Builtin, sig.Name)
		names = append(names, sig.Name)
	}
	assert.ElementsMatch(t, []string{
		"readString", "readInt", "readDouble", "write",
		"Int2Double", "Double2Int", "length", "substring", "ord", "chr",
	}, names)

	sub, ok := tbl.Lookup("substring")
	require.True(t, ok)
	assert.Equal(t, "substring(of s: String, startingAt i: Int, endingBefore j: Int) -> String?", sub.String())
}

func TestSignatureAdd(t *testing.T) {
	tbl := sema.NewSignatureTable()
	f := &sema.Signature{Name: "f", Result: types.TypeVoid, Pos: ast.Position{Line: 2, Column: 1}}
	require.NoError(t, tbl.Add(f))

	err := tbl.Add(&sema.Signature{Name: "f", Result: types.TypeInt})
	assert.Equal(t, sema.CodeUndefined, sema.CodeOf(err))
	assert.Contains(t, err.Error(), "already declared at 2:1")

	err = tbl.Add(&sema.Signature{Name: "chr", Result: types.TypeInt})
	assert.Equal(t, sema.CodeUndefined, sema.CodeOf(err))
	assert.Contains(t, err.Error(), "built-in")

	tbl.Seal()
	assert.Panics(t, func() { _ = tbl.Add(&sema.Signature{Name: "g"}) })
}

func TestResolveCall(t *testing.T) {
	tbl := sema.NewSignatureTable()
	require.NoError(t, tbl.Add(&sema.Signature{
		Name:   "bar",
		Params: []sema.Param{{Label: "with", Name: "param", Type: types.TypeString}},
		Result: types.TypeString,
	}))

	sig, err := tbl.ResolveCall("bar", []sema.Argument{{Label: "with", Type: types.TypeString}}, ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, "bar", sig.Name)

	_, err = tbl.ResolveCall("baz", nil, ast.Position{})
	assert.Equal(t, sema.CodeUndefined, sema.CodeOf(err))

	tests := []struct {
		name string
		args []sema.Argument
	}{
		{"missing argument", nil},
		{"missing label", []sema.Argument{{Type: types.TypeString}}},
		{"wrong label", []sema.Argument{{Label: "by", Type: types.TypeString}}},
		{"wrong type", []sema.Argument{{Label: "with", Type: types.TypeInt}}},
		{"optional to plain", []sema.Argument{{Label: "with", Type: types.MakeOptional(types.TypeString)}}},
		{"nil", []sema.Argument{{Label: "with", Type: types.TypeNil}}},
	}
	for _, tt := range tests {
		_, err := tbl.ResolveCall("bar", tt.args, ast.Position{})
		assert.Equal(t, sema.CodeCall, sema.CodeOf(err), tt.name)
	}
}

func TestVariadicWrite(t *testing.T) {
	tbl := sema.NewSignatureTable()
	ok := []sema.Argument{
		{Type: types.TypeInt},
		{Type: types.TypeUntypedInt},
		{Type: types.MakeOptional(types.TypeDouble)},
		{Type: types.TypeNil},
	}
	_, err := tbl.ResolveCall("write", ok, ast.Position{})
	assert.NoError(t, err)

	_, err = tbl.ResolveCall("write", []sema.Argument{{Label: "x", Type: types.TypeInt}}, ast.Position{})
	assert.Equal(t, sema.CodeCall, sema.CodeOf(err))
	_, err = tbl.ResolveCall("write", []sema.Argument{{Type: types.TypeBool}}, ast.Position{})
	assert.Equal(t, sema.CodeCall, sema.CodeOf(err))
	_, err = tbl.ResolveCall("write", []sema.Argument{{Type: types.TypeVoid}}, ast.Position{})
	assert.Equal(t, sema.CodeCall, sema.CodeOf(err))
}
