package ir

// InsertionPoint is a cursor at the end of a module body or of a block.
// The next construct created through it is appended there.
type InsertionPoint struct {
	module *Module
	block  *Block
}

// AtModuleEnd returns a cursor that appends functions to m.
func AtModuleEnd(m *Module) *InsertionPoint {
	return &InsertionPoint{module: m}
}

// AtBlockEnd returns a cursor that appends operations to b.
func AtBlockEnd(b *Block) *InsertionPoint {
	return &InsertionPoint{block: b}
}

// Module returns the target module, or nil for block cursors.
func (ip *InsertionPoint) Module() *Module {
	return ip.module
}

// Block returns the target block, or nil for module cursors.
func (ip *InsertionPoint) Block() *Block {
	return ip.block
}

// InsertFunction appends fn to the module body.
func (ip *InsertionPoint) InsertFunction(fn *Function) error {
	if ip.module == nil {
		return errorf(ErrWrongTarget, "function %q: cursor is inside a block, not a module", fn.Name)
	}
	ip.module.Functions = append(ip.module.Functions, fn)
	return nil
}

// Insert appends op to the block.
func (ip *InsertionPoint) Insert(op *Operation) error {
	if ip.block == nil {
		return errorf(ErrWrongTarget, "operation %q: cursor is at module level, not inside a block", op.Name)
	}
	op.block = ip.block
	ip.block.Operations = append(ip.block.Operations, op)
	return nil
}

// Create builds an operation, defines its results and appends it to the block.
// Nothing is appended if any check fails.
func (ip *InsertionPoint) Create(
	ctx *Context,
	name string,
	operands []*Value,
	resultTypes []TypeHandle,
	loc Location,
	attrs ...NamedAttribute,
) (*Operation, error) {
	if ip.block == nil {
		return nil, errorf(ErrWrongTarget, "operation %q: cursor is at module level, not inside a block", name)
	}
	if err := ctx.CheckOperation(name); err != nil {
		return nil, err
	}
	fn := ip.block.parent
	for i, v := range operands {
		if v == nil {
			return nil, errorf(ErrForeignValue, "operation %q: operand %d is nil", name, i)
		}
		if v.fn != fn {
			return nil, errorf(ErrForeignValue, "operation %q: operand %d is defined in function %q", name, i, v.fn.Name)
		}
	}
	for i, t := range resultTypes {
		if _, ok := ctx.Type(t); !ok {
			return nil, errorf(ErrInvalidType, "operation %q: result %d type %d does not exist", name, i, t)
		}
	}
	if loc == nil {
		loc = Unknown()
	}

	op := &Operation{
		Name:       name,
		Operands:   append([]*Value(nil), operands...),
		Attributes: attrs,
		Location:   loc,
	}
	op.Results = make([]*Value, len(resultTypes))
	for i, t := range resultTypes {
		op.Results[i] = fn.newValue(t, ip.block, op, i)
	}

	if err := ip.Insert(op); err != nil {
		return nil, err
	}
	return op, nil
}
