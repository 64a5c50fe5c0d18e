package ir

import (
	"fmt"
	"strconv"
)

// TypeRegistry interns types: structurally identical types are stored once
// and always map to the same TypeHandle.
type TypeRegistry struct {
	types   []Type
	typeMap map[string]TypeHandle
	keyBuf  []byte // reusable buffer for building type keys
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
		keyBuf:  make([]byte, 0, 64),
	}
}

// GetOrCreate returns an existing handle for the type if it exists,
// or creates a new one if it's unique. The name of the first registration wins.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := r.normalizeType(inner)

	if handle, exists := r.typeMap[key]; exists {
		return handle
	}

	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{
		Name:  name,
		Inner: inner,
	})
	r.typeMap[key] = handle

	return handle
}

// GetTypes returns all registered types.
func (r *TypeRegistry) GetTypes() []Type {
	return r.types
}

// normalizeType creates a unique key for a type based on its structure.
// Element and signature types are already interned, so their handles stand in
// for their structure.
func (r *TypeRegistry) normalizeType(inner TypeInner) string {
	b := r.keyBuf[:0]

	switch t := inner.(type) {
	case ScalarType:
		b = append(b, "scalar:"...)
		b = strconv.AppendInt(b, int64(t.Kind), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Width), 10)

	case RankedTensorType:
		b = append(b, "ranked:"...)
		b = strconv.AppendUint(b, uint64(t.Element), 10)
		for _, dim := range t.Shape {
			b = append(b, ':')
			if dim == DynamicSize {
				b = append(b, '?')
			} else {
				b = strconv.AppendInt(b, dim, 10)
			}
		}

	case UnrankedTensorType:
		b = append(b, "unranked:"...)
		b = strconv.AppendUint(b, uint64(t.Element), 10)

	case FunctionType:
		b = append(b, "func("...)
		b = appendHandles(b, t.Inputs)
		b = append(b, ")->("...)
		b = appendHandles(b, t.Results)
		b = append(b, ')')

	default:
		return fmt.Sprintf("unknown:%T", inner)
	}

	r.keyBuf = b
	return string(b)
}

func appendHandles(b []byte, handles []TypeHandle) []byte {
	for i, h := range handles {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendUint(b, uint64(h), 10)
	}
	return b
}

// Lookup finds a type by its handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(r.types) {
		return Type{}, false
	}
	return r.types[handle], true
}

// Count returns the number of unique types registered.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}
