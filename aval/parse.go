package aval

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/tensorir/dtypes"
)

// ErrSyntax is returned by Parse for malformed abstract values.
var ErrSyntax = errors.New("invalid abstract value")

// Parse reads the textual form of an abstract value:
//
//	f32[4,3]     ranked, static
//	f32[]        rank 0
//	f32[?,n]     ranked, one anonymous and one named symbolic dimension
//	float32[*]   unranked
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return nil, errors.Wrapf(ErrSyntax, "%q: expected dtype[dims]", s)
	}

	dt, err := dtypes.Parse(s[:open])
	if err != nil {
		return nil, errors.Wrapf(ErrSyntax, "%q: %v", s, err)
	}

	body := strings.TrimSpace(s[open+1 : len(s)-1])
	switch body {
	case "*":
		return Unranked{Element: dt}, nil
	case "":
		return Ranked{Element: dt, Shape: []Dim{}}, nil
	}

	fields := strings.Split(body, ",")
	shape := make([]Dim, len(fields))
	for i, f := range fields {
		d, err := parseDim(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(ErrSyntax, "%q: dimension %d: %v", s, i, err)
		}
		shape[i] = d
	}
	return Ranked{Element: dt, Shape: shape}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and tables.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseDim(f string) (Dim, error) {
	if f == "" {
		return Dim{}, errors.New("empty dimension")
	}
	if unicode.IsDigit(rune(f[0])) {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Dim{}, err
		}
		return Static(n), nil
	}
	return NewSymbolic(f)
}
