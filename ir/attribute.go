package ir

// Attribute is a compile-time constant attached to an operation.
type Attribute interface {
	attribute()
}

// NamedAttribute pairs an attribute with its name on an operation.
type NamedAttribute struct {
	Name  string
	Value Attribute
}

// StringAttr is a string constant.
type StringAttr string

func (StringAttr) attribute() {}

// BoolAttr is a boolean constant.
type BoolAttr bool

func (BoolAttr) attribute() {}

// IntegerAttr is an integer constant of a scalar type.
type IntegerAttr struct {
	Value int64
	Type  TypeHandle
}

func (IntegerAttr) attribute() {}

// FloatAttr is a floating point constant of a scalar type.
type FloatAttr struct {
	Value float64
	Type  TypeHandle
}

func (FloatAttr) attribute() {}

// TypeAttr wraps a type.
type TypeAttr struct {
	Type TypeHandle
}

func (TypeAttr) attribute() {}

// ArrayAttr is an ordered list of attributes.
type ArrayAttr []Attribute

func (ArrayAttr) attribute() {}
