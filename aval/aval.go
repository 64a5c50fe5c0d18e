// Package aval describes source-side abstract values: an element kind and a
// shape, without any data.
//
// Value is a closed variant with exactly two cases:
//   - Ranked: a known number of dimensions, each static or symbolic
//   - Unranked: an unknown number of dimensions
package aval

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/tensorir/dtypes"
)

// ErrInvalidSymbol is returned for dimension symbols Parse could not read back.
var ErrInvalidSymbol = errors.New("invalid dimension symbol")

// Value is an abstract value: Ranked or Unranked.
type Value interface {
	abstractValue()

	// ElementKind returns the element dtype.
	ElementKind() dtypes.DType

	// String returns the textual form accepted by Parse.
	String() string
}

// Dim is one dimension of a Ranked value: a static size, or a symbol whose
// size is only known at a later stage.
type Dim struct {
	Size   int64
	Symbol string // Empty for static dimensions
}

// Static returns a dimension of known size.
func Static(size int64) Dim {
	return Dim{Size: size}
}

// Symbolic returns a dimension named by a symbol. The anonymous symbol is "?".
// It panics if name is not a valid symbol; use NewSymbolic for names that
// come from input.
func Symbolic(name string) Dim {
	d, err := NewSymbolic(name)
	if err != nil {
		panic(err)
	}
	return d
}

// NewSymbolic is Symbolic with an error instead of a panic.
func NewSymbolic(name string) (Dim, error) {
	if name == "" {
		name = "?"
	}
	if !ValidSymbol(name) {
		return Dim{}, errors.Wrapf(ErrInvalidSymbol, "%q", name)
	}
	return Dim{Symbol: name}, nil
}

// ValidSymbol reports whether name can label a symbolic dimension: "?" or
// letters, digits and underscores not starting with a digit.
func ValidSymbol(name string) bool {
	if name == "?" {
		return true
	}
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Validate reports a symbolic dimension whose symbol is not valid. Dims built
// as struct literals skip the check in Symbolic.
func (d Dim) Validate() error {
	if d.IsStatic() || ValidSymbol(d.Symbol) {
		return nil
	}
	return errors.Wrapf(ErrInvalidSymbol, "%q", d.Symbol)
}

// IsStatic reports whether the dimension has a known size.
func (d Dim) IsStatic() bool {
	return d.Symbol == ""
}

func (d Dim) String() string {
	if d.IsStatic() {
		return strconv.FormatInt(d.Size, 10)
	}
	return d.Symbol
}

// Ranked is an abstract value with a known number of dimensions.
type Ranked struct {
	Element dtypes.DType
	Shape   []Dim
}

func (Ranked) abstractValue() {}

// NewRanked returns a Ranked value with a fully static shape.
func NewRanked(element dtypes.DType, sizes ...int64) Ranked {
	shape := make([]Dim, len(sizes))
	for i, s := range sizes {
		shape[i] = Static(s)
	}
	return Ranked{Element: element, Shape: shape}
}

// ElementKind returns the element dtype.
func (r Ranked) ElementKind() dtypes.DType { return r.Element }

// Rank returns the number of dimensions.
func (r Ranked) Rank() int { return len(r.Shape) }

// IsStatic reports whether every dimension has a known size.
func (r Ranked) IsStatic() bool {
	for _, d := range r.Shape {
		if !d.IsStatic() {
			return false
		}
	}
	return true
}

func (r Ranked) String() string {
	parts := make([]string, len(r.Shape))
	for i, d := range r.Shape {
		parts[i] = d.String()
	}
	return r.Element.String() + "[" + strings.Join(parts, ",") + "]"
}

// Unranked is an abstract value whose number of dimensions is unknown.
type Unranked struct {
	Element dtypes.DType
}

func (Unranked) abstractValue() {}

// ElementKind returns the element dtype.
func (u Unranked) ElementKind() dtypes.DType { return u.Element }

func (u Unranked) String() string {
	return u.Element.String() + "[*]"
}
