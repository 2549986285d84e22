package sema

import "swiftsub/internal/types"

// builtins returns the functions every program can call without declaring
// them.
func builtins() []*Signature {
	unlabeled := func(name string, t types.Type) Param {
		return Param{Label: "_", Name: name, Type: t}
	}
	optString := types.MakeOptional(types.TypeString)

	return []*Signature{
		{Name: "readString", Result: optString, Builtin: true},
		{Name: "readInt", Result: types.MakeOptional(types.TypeInt), Builtin: true},
		{Name: "readDouble", Result: types.MakeOptional(types.TypeDouble), Builtin: true},
		{Name: "write", Result: types.TypeVoid, Variadic: true, Builtin: true},
		{Name: "Int2Double", Params: []Param{unlabeled("term", types.TypeInt)}, Result: types.TypeDouble, Builtin: true},
		{Name: "Double2Int", Params: []Param{unlabeled("term", types.TypeDouble)}, Result: types.TypeInt, Builtin: true},
		{Name: "length", Params: []Param{unlabeled("s", types.TypeString)}, Result: types.TypeInt, Builtin: true},
		{
			Name: "substring",
			Params: []Param{
				{Label: "of", Name: "s", Type: types.TypeString},
				{Label: "startingAt", Name: "i", Type: types.TypeInt},
				{Label: "endingBefore", Name: "j", Type: types.TypeInt},
			},
			Result:  optString,
			Builtin: true,
		},
		{Name: "ord", Params: []Param{unlabeled("c", types.TypeString)}, Result: types.TypeInt, Builtin: true},
		{Name: "chr", Params: []Param{unlabeled("i", types.TypeInt)}, Result: types.TypeString, Builtin: true},
	}
}
