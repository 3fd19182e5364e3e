package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualAnyAbsorption(t *testing.T) {
	cases := []Type{Int{}, Struct{Name: "S"}, Ptr{Elem: Int{}}, Fn{Params: []Type{Int{}}, Ret: Int{}}}
	for _, c := range cases {
		assert.True(t, Equal(Any{}, c))
		assert.True(t, Equal(c, Any{}))
	}
	assert.True(t, Equal(Any{}, Any{}))
}

func TestEqualReflexiveAndSymmetric(t *testing.T) {
	a := Ptr{Elem: Struct{Name: "Node"}}
	b := Ptr{Elem: Struct{Name: "Node"}}
	assert.True(t, Equal(a, a))
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))

	c := Ptr{Elem: Struct{Name: "Other"}}
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(c, a))
}

func TestEqualFnStructural(t *testing.T) {
	f1 := Fn{Params: []Type{Int{}, Ptr{Elem: Int{}}}, Ret: Int{}}
	f2 := Fn{Params: []Type{Int{}, Ptr{Elem: Int{}}}, Ret: Int{}}
	assert.True(t, Equal(f1, f2))

	noRet1 := Fn{Params: []Type{Int{}}}
	noRet2 := Fn{Params: []Type{Int{}}}
	assert.True(t, Equal(noRet1, noRet2))
	assert.False(t, Equal(noRet1, f1))

	diffArity := Fn{Params: []Type{Int{}}, Ret: Int{}}
	assert.False(t, Equal(f1, diffArity))
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []Type{
		Int{},
		Struct{Name: "Point"},
		Ptr{Elem: Int{}},
		Fn{Params: []Type{Ptr{Elem: Int{}}}, Ret: Int{}},
		Fn{Params: nil, Ret: nil},
	}
	for _, c := range cases {
		raw, err := json.Marshal(c)
		require.NoError(t, err)
		got, err := Unmarshal(raw)
		require.NoError(t, err)
		assert.True(t, Equal(c, got), "round trip of %s produced %s", c, got)
	}
}

func TestUnmarshalPtrToFn(t *testing.T) {
	raw := []byte(`{"Ptr": {"Fn": {"params": [{"Ptr":"Int"}], "ret": "Int"}}}`)
	got, err := Unmarshal(raw)
	require.NoError(t, err)
	want := Ptr{Elem: Fn{Params: []Type{Ptr{Elem: Int{}}}, Ret: Int{}}}
	assert.True(t, Equal(want, got))
}

func TestIsStructOrFn(t *testing.T) {
	assert.True(t, IsStructOrFn(Struct{Name: "S"}))
	assert.True(t, IsStructOrFn(Fn{}))
	assert.False(t, IsStructOrFn(Int{}))
	assert.False(t, IsStructOrFn(Ptr{Elem: Int{}}))
}
