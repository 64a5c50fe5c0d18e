package ir

import (
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// Context holds the state shared by every construct of one build session:
// interned types and registered dialects. It must outlive every Module, Type
// and Operation created with it.
type Context struct {
	// AllowUnregisteredDialects permits operations whose dialect is not
	// registered. They are treated as having no traits.
	AllowUnregisteredDialects bool

	types    *TypeRegistry
	dialects map[string]*Dialect
	log      logr.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger used for registration events.
func WithLogger(log logr.Logger) ContextOption {
	return func(c *Context) {
		c.log = log
	}
}

// NewContext creates an empty Context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		types:    NewTypeRegistry(),
		dialects: make(map[string]*Dialect, 4),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the context logger.
func (c *Context) Logger() logr.Logger {
	return c.log
}

// Types returns the registry interning this context's types.
func (c *Context) Types() *TypeRegistry {
	return c.types
}

// Type looks up a type by handle.
func (c *Context) Type(h TypeHandle) (Type, bool) {
	return c.types.Lookup(h)
}

// Inner returns the inner type for h, or nil if h is not registered.
func (c *Context) Inner(h TypeHandle) TypeInner {
	t, ok := c.types.Lookup(h)
	if !ok {
		return nil
	}
	return t.Inner
}

// TypeName returns the printed form of h.
func (c *Context) TypeName(h TypeHandle) string {
	t, ok := c.types.Lookup(h)
	if !ok {
		return "<invalid type " + strconv.FormatUint(uint64(h), 10) + ">"
	}
	return t.Name
}

// Scalar returns the interned scalar type of the given kind and byte width.
func (c *Context) Scalar(kind ScalarKind, width uint8) TypeHandle {
	return c.types.GetOrCreate(scalarName(kind, width), ScalarType{Kind: kind, Width: width})
}

// F32 returns the 32-bit float type.
func (c *Context) F32() TypeHandle {
	return c.Scalar(ScalarFloat, 4)
}

// RankedTensor returns the interned ranked tensor type with the given shape.
// Dimensions must be non-negative or DynamicSize; elem must be a scalar type.
func (c *Context) RankedTensor(shape []int64, elem TypeHandle) (TypeHandle, error) {
	if err := c.checkElement(elem); err != nil {
		return 0, err
	}
	for i, dim := range shape {
		if dim < 0 && dim != DynamicSize {
			return 0, errorf(ErrInvalidType, "dimension %d has negative size %d", i, dim)
		}
	}

	var sb strings.Builder
	sb.WriteString("tensor<")
	for _, dim := range shape {
		if dim == DynamicSize {
			sb.WriteByte('?')
		} else {
			sb.WriteString(strconv.FormatInt(dim, 10))
		}
		sb.WriteByte('x')
	}
	sb.WriteString(c.TypeName(elem))
	sb.WriteByte('>')

	return c.types.GetOrCreate(sb.String(), RankedTensorType{
		Shape:   slices.Clone(shape),
		Element: elem,
	}), nil
}

// UnrankedTensor returns the interned unranked tensor type of elem.
func (c *Context) UnrankedTensor(elem TypeHandle) (TypeHandle, error) {
	if err := c.checkElement(elem); err != nil {
		return 0, err
	}
	name := "tensor<*x" + c.TypeName(elem) + ">"
	return c.types.GetOrCreate(name, UnrankedTensorType{Element: elem}), nil
}

// Function returns the interned function type with the given signature.
func (c *Context) Function(inputs, results []TypeHandle) (TypeHandle, error) {
	for i, h := range inputs {
		if _, ok := c.types.Lookup(h); !ok {
			return 0, errorf(ErrInvalidType, "input %d: type %d does not exist", i, h)
		}
	}
	for i, h := range results {
		if _, ok := c.types.Lookup(h); !ok {
			return 0, errorf(ErrInvalidType, "result %d: type %d does not exist", i, h)
		}
	}

	name := c.typeList(inputs, true) + " -> " + c.typeList(results, false)
	return c.types.GetOrCreate(name, FunctionType{
		Inputs:  slices.Clone(inputs),
		Results: slices.Clone(results),
	}), nil
}

func (c *Context) checkElement(elem TypeHandle) error {
	t, ok := c.types.Lookup(elem)
	if !ok {
		return errorf(ErrInvalidType, "element type %d does not exist", elem)
	}
	if _, ok := t.Inner.(ScalarType); !ok {
		return errorf(ErrInvalidType, "element type %s is not a scalar", t.Name)
	}
	return nil
}

// typeList prints handles as a parenthesized list. A single result is printed
// bare, matching function type syntax.
func (c *Context) typeList(handles []TypeHandle, forceParens bool) string {
	if len(handles) == 1 && !forceParens {
		if _, isFunc := c.Inner(handles[0]).(FunctionType); !isFunc {
			return c.TypeName(handles[0])
		}
	}
	names := make([]string, len(handles))
	for i, h := range handles {
		names[i] = c.TypeName(h)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func scalarName(kind ScalarKind, width uint8) string {
	bits := strconv.Itoa(int(width) * 8)
	switch kind {
	case ScalarBool:
		return "i1"
	case ScalarSint:
		return "i" + bits
	case ScalarUint:
		return "ui" + bits
	case ScalarFloat:
		return "f" + bits
	case ScalarBFloat:
		return "bf" + bits
	case ScalarComplex:
		return "complex<f" + strconv.Itoa(int(width)*4) + ">"
	default:
		return "!unknown" + bits
	}
}

// RegisterDialect makes the operations of d known to the context.
// Registering a dialect twice replaces the earlier definition.
func (c *Context) RegisterDialect(d Dialect) {
	c.dialects[d.Name] = &d
	c.log.V(1).Info("registered dialect", "dialect", d.Name, "operations", len(d.Operations))
}

// Dialect returns the registered dialect called name.
func (c *Context) Dialect(name string) (*Dialect, bool) {
	d, ok := c.dialects[name]
	return d, ok
}

// LookupOperation finds the definition of a fully qualified operation name.
func (c *Context) LookupOperation(name string) (OpDef, bool) {
	dialectName, op := SplitOpName(name)
	d, ok := c.dialects[dialectName]
	if !ok {
		return OpDef{}, false
	}
	return d.Lookup(op)
}

// CheckOperation reports whether an operation called name may be created.
// Unknown operations of a registered dialect are rejected unless the dialect
// sets AllowUnknownOperations; operations of an unregistered dialect are
// accepted only if AllowUnregisteredDialects is set.
func (c *Context) CheckOperation(name string) error {
	dialectName, op := SplitOpName(name)
	d, ok := c.dialects[dialectName]
	if !ok {
		if c.AllowUnregisteredDialects {
			return nil
		}
		return errorf(ErrUnregisteredOperation, "%q: dialect %q is not registered", name, dialectName)
	}
	if _, ok := d.Lookup(op); !ok && !d.AllowUnknownOperations {
		return errorf(ErrUnregisteredOperation, "%q: dialect %q has no operation %q", name, dialectName, op)
	}
	return nil
}
