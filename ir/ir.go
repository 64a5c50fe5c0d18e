package ir

import (
	"math"
	"strings"
)

// Module is the top-level container of declared functions.
type Module struct {
	// Name is the optional symbol name printed as module @name.
	Name string

	// Functions holds all function definitions, in declaration order.
	Functions []*Function

	// Location is the provenance of the module itself.
	Location Location
}

// Lookup returns the first function named name, or nil.
func (m *Module) Lookup(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Handle types for referencing IR objects
type (
	TypeHandle uint32
	ValueID    uint32
)

// Type represents a type in the IR.
type Type struct {
	Name  string
	Inner TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents tensor element types.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint    ScalarKind = iota // Signed integer
	ScalarUint                      // Unsigned integer
	ScalarFloat                     // IEEE floating point
	ScalarBool                      // Boolean
	ScalarBFloat                    // Brain floating point
	ScalarComplex                   // Complex of two floats; Width covers both parts
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarSint:
		return "sint"
	case ScalarUint:
		return "uint"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarBFloat:
		return "bfloat"
	case ScalarComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// DynamicSize marks a tensor dimension whose size is determined at a later stage.
const DynamicSize int64 = math.MinInt64

// RankedTensorType represents a tensor with a known number of dimensions.
// Each dimension is either a static size or DynamicSize.
type RankedTensorType struct {
	Shape   []int64
	Element TypeHandle
}

func (RankedTensorType) typeInner() {}

// Rank returns the number of dimensions.
func (t RankedTensorType) Rank() int {
	return len(t.Shape)
}

// IsDynamicDim reports whether dimension i has no static size.
func (t RankedTensorType) IsDynamicDim(i int) bool {
	return t.Shape[i] == DynamicSize
}

// UnrankedTensorType represents a tensor whose number of dimensions is unknown.
type UnrankedTensorType struct {
	Element TypeHandle
}

func (UnrankedTensorType) typeInner() {}

// FunctionType is the signature of a function: ordered inputs and results.
type FunctionType struct {
	Inputs  []TypeHandle
	Results []TypeHandle
}

func (FunctionType) typeInner() {}

// Function represents a function definition.
//
// A function with no blocks is an external declaration.
type Function struct {
	Name     string
	Type     TypeHandle // Always a FunctionType
	Blocks   []*Block
	Location Location

	nextValue ValueID
}

// EntryBlock returns the first block of the body, or nil for declarations.
func (f *Function) EntryBlock() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Signature returns the function type of f.
func (f *Function) Signature(ctx *Context) (FunctionType, bool) {
	ft, ok := ctx.Inner(f.Type).(FunctionType)
	return ft, ok
}

// AddEntryBlock creates the entry block with one argument per input type.
func (f *Function) AddEntryBlock(ctx *Context) (*Block, error) {
	if len(f.Blocks) != 0 {
		return nil, errorf(ErrWrongTarget, "function %q already has an entry block", f.Name)
	}
	ft, ok := f.Signature(ctx)
	if !ok {
		return nil, errorf(ErrInvalidType, "function %q: type %d is not a function type", f.Name, f.Type)
	}

	block := &Block{
		Arguments: make([]*Value, len(ft.Inputs)),
		parent:    f,
	}
	for i, input := range ft.Inputs {
		block.Arguments[i] = f.newValue(input, block, nil, i)
	}
	f.Blocks = append(f.Blocks, block)
	return block, nil
}

func (f *Function) newValue(t TypeHandle, block *Block, owner *Operation, index int) *Value {
	v := &Value{
		id:    f.nextValue,
		typ:   t,
		fn:    f,
		block: block,
		owner: owner,
		index: index,
	}
	f.nextValue++
	return v
}

// Block is a sequence of operations. Every well-formed block ends in a terminator.
type Block struct {
	Arguments  []*Value
	Operations []*Operation

	parent *Function
}

// Parent returns the function that owns b.
func (b *Block) Parent() *Function {
	return b.parent
}

// Last returns the last operation in the block, or nil if it is empty.
func (b *Block) Last() *Operation {
	if len(b.Operations) == 0 {
		return nil
	}
	return b.Operations[len(b.Operations)-1]
}

// Value is an SSA value: a block argument or an operation result.
type Value struct {
	id    ValueID
	typ   TypeHandle
	fn    *Function
	block *Block
	owner *Operation // nil for block arguments
	index int
}

// ID returns the function-local identifier of v.
func (v *Value) ID() ValueID { return v.id }

// Type returns the type of v.
func (v *Value) Type() TypeHandle { return v.typ }

// Function returns the function v belongs to.
func (v *Value) Function() *Function { return v.fn }

// Block returns the block that defines v.
func (v *Value) Block() *Block { return v.block }

// DefiningOp returns the operation producing v, or nil for block arguments.
func (v *Value) DefiningOp() *Operation { return v.owner }

// IsBlockArgument reports whether v is a block argument.
func (v *Value) IsBlockArgument() bool { return v.owner == nil }

// Index returns the argument or result position of v.
func (v *Value) Index() int { return v.index }

// Types returns the types of values, in order.
func Types(values []*Value) []TypeHandle {
	types := make([]TypeHandle, len(values))
	for i, v := range values {
		types[i] = v.typ
	}
	return types
}

// Operation is a single instruction.
type Operation struct {
	Name       string // "dialect.op"
	Operands   []*Value
	Results    []*Value
	Attributes []NamedAttribute
	Location   Location

	block *Block
}

// Block returns the block that contains op, or nil if it was never inserted.
func (op *Operation) Block() *Block {
	return op.block
}

// Dialect returns the dialect prefix of the operation name.
func (op *Operation) Dialect() string {
	dialect, _ := SplitOpName(op.Name)
	return dialect
}

// Attribute returns the attribute called name.
func (op *Operation) Attribute(name string) (Attribute, bool) {
	for _, a := range op.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// SplitOpName splits "dialect.op" into its parts. Names without a dot have an
// empty dialect.
func SplitOpName(name string) (dialect, op string) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
