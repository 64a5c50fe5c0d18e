package builder

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/tensorir/aval"
	"github.com/gogpu/tensorir/dtypes"
	"github.com/gogpu/tensorir/ir"
)

// TypeConverter translates between abstract values and IR types within one
// Context.
type TypeConverter struct {
	ctx *ir.Context
}

// NewTypeConverter returns a converter that interns types in ctx.
func NewTypeConverter(ctx *ir.Context) *TypeConverter {
	return &TypeConverter{ctx: ctx}
}

// AbstractValueToType converts v into a tensor type. Ranked values become
// ranked tensors, with symbolic dimensions mapped to ir.DynamicSize; Unranked
// values become unranked tensors.
func (c *TypeConverter) AbstractValueToType(v aval.Value) (ir.TypeHandle, error) {
	switch v := v.(type) {
	case aval.Ranked:
		return c.rankedToType(v)
	case *aval.Ranked:
		if v != nil {
			return c.rankedToType(*v)
		}
	case aval.Unranked:
		return c.unrankedToType(v)
	case *aval.Unranked:
		if v != nil {
			return c.unrankedToType(*v)
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedConversion, "abstract value %v", v)
}

func (c *TypeConverter) rankedToType(v aval.Ranked) (ir.TypeHandle, error) {
	elem, err := c.ElementKindToType(v.Element)
	if err != nil {
		return 0, errors.Wrapf(err, "abstract value %v", v)
	}

	shape := make([]int64, len(v.Shape))
	for i, d := range v.Shape {
		switch {
		case !d.IsStatic():
			if err := d.Validate(); err != nil {
				return 0, errors.Wrapf(ErrUnsupportedConversion, "abstract value %v: dimension %d: %v", v, i, err)
			}
			shape[i] = ir.DynamicSize
		case d.Size < 0:
			return 0, errors.Wrapf(ErrUnsupportedConversion, "abstract value %v: dimension %d is negative", v, i)
		default:
			shape[i] = d.Size
		}
	}

	t, err := c.ctx.RankedTensor(shape, elem)
	if err != nil {
		return 0, errors.Wrapf(err, "abstract value %v", v)
	}
	return t, nil
}

func (c *TypeConverter) unrankedToType(v aval.Unranked) (ir.TypeHandle, error) {
	elem, err := c.ElementKindToType(v.Element)
	if err != nil {
		return 0, errors.Wrapf(err, "abstract value %v", v)
	}
	t, err := c.ctx.UnrankedTensor(elem)
	if err != nil {
		return 0, errors.Wrapf(err, "abstract value %v", v)
	}
	return t, nil
}

// ElementKindToType maps a dtype to its scalar IR type.
func (c *TypeConverter) ElementKindToType(dt dtypes.DType) (ir.TypeHandle, error) {
	var kind ir.ScalarKind
	switch {
	case dt == dtypes.Bool:
		kind = ir.ScalarBool
	case dt.IsSigned():
		kind = ir.ScalarSint
	case dt.IsUnsigned():
		kind = ir.ScalarUint
	case dt == dtypes.BFloat16:
		kind = ir.ScalarBFloat
	case dt.IsFloat():
		kind = ir.ScalarFloat
	case dt.IsComplex():
		kind = ir.ScalarComplex
	default:
		return 0, errors.Wrapf(ErrUnsupportedConversion, "element kind %s", dt)
	}
	return c.ctx.Scalar(kind, uint8(dt.Size())), nil
}

// TypeToElementKind maps a scalar type, or the element of a tensor type, back
// to its dtype.
func (c *TypeConverter) TypeToElementKind(t ir.TypeHandle) (dtypes.DType, error) {
	switch inner := c.ctx.Inner(t).(type) {
	case ir.ScalarType:
		return scalarToDType(inner, c.ctx.TypeName(t))
	case ir.RankedTensorType:
		return c.TypeToElementKind(inner.Element)
	case ir.UnrankedTensorType:
		return c.TypeToElementKind(inner.Element)
	case nil:
		return dtypes.InvalidDType, errors.Wrapf(ErrUnsupportedConversion, "type %d does not exist", t)
	default:
		return dtypes.InvalidDType, errors.Wrapf(ErrUnsupportedConversion, "type %s has no element kind", c.ctx.TypeName(t))
	}
}

func scalarToDType(s ir.ScalarType, name string) (dtypes.DType, error) {
	for _, dt := range dtypes.All {
		if dt.Size() != int(s.Width) {
			continue
		}
		switch s.Kind {
		case ir.ScalarBool:
			if dt == dtypes.Bool {
				return dt, nil
			}
		case ir.ScalarSint:
			if dt.IsSigned() {
				return dt, nil
			}
		case ir.ScalarUint:
			if dt.IsUnsigned() {
				return dt, nil
			}
		case ir.ScalarBFloat:
			if dt == dtypes.BFloat16 {
				return dt, nil
			}
		case ir.ScalarFloat:
			if dt.IsFloat() && dt != dtypes.BFloat16 {
				return dt, nil
			}
		case ir.ScalarComplex:
			if dt.IsComplex() {
				return dt, nil
			}
		}
	}
	return dtypes.InvalidDType, errors.Wrapf(ErrUnsupportedConversion, "scalar type %s", name)
}

// ShapeOf returns one entry per dimension of a ranked tensor type: the static
// size, or ir.DynamicSize.
func (c *TypeConverter) ShapeOf(t ir.TypeHandle) ([]int64, error) {
	switch inner := c.ctx.Inner(t).(type) {
	case ir.RankedTensorType:
		return slices.Clone(inner.Shape), nil
	case nil:
		return nil, errors.Wrapf(ErrNotRanked, "type %d does not exist", t)
	default:
		return nil, errors.Wrapf(ErrNotRanked, "type %s", c.ctx.TypeName(t))
	}
}
