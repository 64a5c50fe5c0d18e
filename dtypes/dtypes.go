// Package dtypes defines the element kinds of source-side abstract values.
package dtypes

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DType is the element kind of an abstract value.
type DType uint8

// The zero value is InvalidDType so that unset fields are detectable.
const (
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	BFloat16
	Float16
	Float32
	Float64
	Complex64
	Complex128
)

// ErrUnknownDType is returned by Parse for names it does not recognize.
var ErrUnknownDType = errors.New("unknown dtype")

type info struct {
	short string // f32
	long  string // float32
	size  int    // bytes
}

var table = [...]info{
	InvalidDType: {"invalid", "invalid", 0},
	Bool:         {"bool", "bool", 1},
	Int8:         {"i8", "int8", 1},
	Int16:        {"i16", "int16", 2},
	Int32:        {"i32", "int32", 4},
	Int64:        {"i64", "int64", 8},
	Uint8:        {"u8", "uint8", 1},
	Uint16:       {"u16", "uint16", 2},
	Uint32:       {"u32", "uint32", 4},
	Uint64:       {"u64", "uint64", 8},
	BFloat16:     {"bf16", "bfloat16", 2},
	Float16:      {"f16", "float16", 2},
	Float32:      {"f32", "float32", 4},
	Float64:      {"f64", "float64", 8},
	Complex64:    {"c64", "complex64", 8},
	Complex128:   {"c128", "complex128", 16},
}

// All lists every valid dtype.
var All = []DType{
	Bool,
	Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	BFloat16, Float16, Float32, Float64,
	Complex64, Complex128,
}

func (d DType) valid() bool {
	return d > InvalidDType && int(d) < len(table)
}

// String returns the short name, e.g. "f32".
func (d DType) String() string {
	if int(d) >= len(table) {
		return "invalid"
	}
	return table[d].short
}

// Name returns the long name, e.g. "float32".
func (d DType) Name() string {
	if int(d) >= len(table) {
		return "invalid"
	}
	return table[d].long
}

// Size returns the size of one element in bytes.
func (d DType) Size() int {
	if !d.valid() {
		return 0
	}
	return table[d].size
}

// IsValid reports whether d is one of the defined dtypes.
func (d DType) IsValid() bool { return d.valid() }

// IsFloat reports whether d is a real floating point type.
func (d DType) IsFloat() bool {
	return d == BFloat16 || d == Float16 || d == Float32 || d == Float64
}

// IsComplex reports whether d is a complex type.
func (d DType) IsComplex() bool {
	return d == Complex64 || d == Complex128
}

// IsInexact reports whether d is a floating point or complex type.
func (d DType) IsInexact() bool {
	return d.IsFloat() || d.IsComplex()
}

// IsSigned reports whether d is a signed integer type.
func (d DType) IsSigned() bool {
	return d >= Int8 && d <= Int64
}

// IsUnsigned reports whether d is an unsigned integer type.
func (d DType) IsUnsigned() bool {
	return d >= Uint8 && d <= Uint64
}

// Parse accepts both short ("f32") and long ("float32") names.
func Parse(name string) (DType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range All {
		if table[d].short == name || table[d].long == name {
			return d, nil
		}
	}
	return InvalidDType, errors.Wrapf(ErrUnknownDType, "%q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, errors.Newf("cannot marshal dtype %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Groups of dtypes used by test tables.
var (
	Floating = []DType{BFloat16, Float16, Float32, Float64}
	Complex  = []DType{Complex64, Complex128}
	Inexact  = []DType{BFloat16, Float16, Float32, Float64, Complex64, Complex128}
	Integer  = []DType{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64}
)
