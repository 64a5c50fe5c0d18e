package ir

import (
	"testing"
)

func TestTypeRegistry_ScalarDeduplication(t *testing.T) {
	registry := NewTypeRegistry()

	// Register f32 twice
	f32_1 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})
	f32_2 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})

	if f32_1 != f32_2 {
		t.Errorf("Expected same handle for identical scalar types, got %d and %d", f32_1, f32_2)
	}

	if registry.Count() != 1 {
		t.Errorf("Expected 1 type, got %d", registry.Count())
	}
}

func TestTypeRegistry_DifferentScalars(t *testing.T) {
	registry := NewTypeRegistry()

	f32 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})
	i32 := registry.GetOrCreate("i32", ScalarType{Kind: ScalarSint, Width: 4})
	ui32 := registry.GetOrCreate("ui32", ScalarType{Kind: ScalarUint, Width: 4})
	f16 := registry.GetOrCreate("f16", ScalarType{Kind: ScalarFloat, Width: 2})
	bf16 := registry.GetOrCreate("bf16", ScalarType{Kind: ScalarBFloat, Width: 2})

	handles := []TypeHandle{f32, i32, ui32, f16, bf16}
	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			if handles[i] == handles[j] {
				t.Errorf("Expected different handles for different types, got %d == %d", handles[i], handles[j])
			}
		}
	}

	if registry.Count() != 5 {
		t.Errorf("Expected 5 types, got %d", registry.Count())
	}
}

func TestTypeRegistry_RankedDeduplication(t *testing.T) {
	registry := NewTypeRegistry()
	f32 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})

	// Equal shapes in distinct slices
	a := registry.GetOrCreate("", RankedTensorType{Shape: []int64{4, DynamicSize}, Element: f32})
	b := registry.GetOrCreate("", RankedTensorType{Shape: []int64{4, DynamicSize}, Element: f32})

	if a != b {
		t.Errorf("Expected same handle for identical tensor types, got %d and %d", a, b)
	}
}

func TestTypeRegistry_DifferentTensors(t *testing.T) {
	registry := NewTypeRegistry()
	f32 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})
	i32 := registry.GetOrCreate("i32", ScalarType{Kind: ScalarSint, Width: 4})

	t4f32 := registry.GetOrCreate("", RankedTensorType{Shape: []int64{4}, Element: f32})
	t4i32 := registry.GetOrCreate("", RankedTensorType{Shape: []int64{4}, Element: i32})
	t4x1f32 := registry.GetOrCreate("", RankedTensorType{Shape: []int64{4, 1}, Element: f32})
	tDynf32 := registry.GetOrCreate("", RankedTensorType{Shape: []int64{DynamicSize}, Element: f32})
	scalarF32 := registry.GetOrCreate("", RankedTensorType{Shape: []int64{}, Element: f32})
	unranked := registry.GetOrCreate("", UnrankedTensorType{Element: f32})

	handles := []TypeHandle{t4f32, t4i32, t4x1f32, tDynf32, scalarF32, unranked}
	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			if handles[i] == handles[j] {
				t.Errorf("types %d and %d should differ, both got handle %d", i, j, handles[i])
			}
		}
	}
}

func TestTypeRegistry_FunctionTypes(t *testing.T) {
	registry := NewTypeRegistry()
	f32 := registry.GetOrCreate("f32", ScalarType{Kind: ScalarFloat, Width: 4})
	i32 := registry.GetOrCreate("i32", ScalarType{Kind: ScalarSint, Width: 4})

	f1 := registry.GetOrCreate("", FunctionType{Inputs: []TypeHandle{f32}, Results: []TypeHandle{i32}})
	f2 := registry.GetOrCreate("", FunctionType{Inputs: []TypeHandle{f32}, Results: []TypeHandle{i32}})
	swapped := registry.GetOrCreate("", FunctionType{Inputs: []TypeHandle{i32}, Results: []TypeHandle{f32}})
	// (f32, i32) -> () must not collide with (f32) -> (i32)
	shifted := registry.GetOrCreate("", FunctionType{Inputs: []TypeHandle{f32, i32}})

	if f1 != f2 {
		t.Errorf("Expected same handle for identical signatures, got %d and %d", f1, f2)
	}
	if f1 == swapped || f1 == shifted {
		t.Error("different signatures must get different handles")
	}
}

func TestTypeRegistry_FirstNameWins(t *testing.T) {
	registry := NewTypeRegistry()
	h := registry.GetOrCreate("first", ScalarType{Kind: ScalarBool, Width: 1})
	registry.GetOrCreate("second", ScalarType{Kind: ScalarBool, Width: 1})

	typ, ok := registry.Lookup(h)
	if !ok {
		t.Fatal("Lookup failed for a registered handle")
	}
	if typ.Name != "first" {
		t.Errorf("Expected name %q, got %q", "first", typ.Name)
	}
}

func TestTypeRegistry_LookupOutOfRange(t *testing.T) {
	registry := NewTypeRegistry()
	if _, ok := registry.Lookup(0); ok {
		t.Error("Lookup on empty registry should fail")
	}
}
