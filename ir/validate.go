package ir

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function  string
	Block     int
	Operation int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Operation >= 0 {
			return fmt.Sprintf("in function %s, block %d, operation %d: %s", e.Function, e.Block, e.Operation, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	ctx     *Context
	module  *Module
	errors  []ValidationError
	context validationContext
}

// validationContext holds current validation context.
type validationContext struct {
	function     *Function
	functionName string
	signature    FunctionType
	block        int
	operation    int
	defined      map[*Value]bool
}

// Validate checks the IR module for correctness.
// Returns validation errors if any, or nil if module is valid.
// Only types reachable from the module are checked, so modules sharing a
// context do not see each other's types.
func Validate(ctx *Context, module *Module) ([]ValidationError, error) {
	if ctx == nil {
		return nil, errors.New("context is nil")
	}
	if module == nil {
		return nil, errors.New("module is nil")
	}

	v := &Validator{
		ctx:    ctx,
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateFunctions()
}

// validateTypes checks the types the module refers to, directly or through
// tensor elements and function signatures. Other types in a shared context
// are left to the modules that use them.
func (v *Validator) validateTypes() {
	for _, handle := range v.reachableTypes() {
		typ, _ := v.ctx.types.Lookup(handle)
		v.validateType(handle, &typ)
	}
}

// reachableTypes returns the existing type handles used by the module, in
// ascending order. Dangling handles are reported where they are used.
func (v *Validator) reachableTypes() []TypeHandle {
	seen := make(map[TypeHandle]bool)
	var visit func(h TypeHandle)
	visit = func(h TypeHandle) {
		if seen[h] || !v.isValidTypeHandle(h) {
			return
		}
		seen[h] = true
		typ, _ := v.ctx.types.Lookup(h)
		switch inner := typ.Inner.(type) {
		case RankedTensorType:
			visit(inner.Element)
		case UnrankedTensorType:
			visit(inner.Element)
		case FunctionType:
			for _, in := range inner.Inputs {
				visit(in)
			}
			for _, out := range inner.Results {
				visit(out)
			}
		}
	}

	for _, fn := range v.module.Functions {
		if fn == nil {
			continue
		}
		visit(fn.Type)
		for _, block := range fn.Blocks {
			if block == nil {
				continue
			}
			for _, arg := range block.Arguments {
				visit(arg.typ)
			}
			for _, op := range block.Operations {
				if op == nil {
					continue
				}
				for _, result := range op.Results {
					visit(result.typ)
				}
			}
		}
	}

	handles := make([]TypeHandle, 0, len(seen))
	for h := range seen {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	return handles
}

// validateType validates a single type.
func (v *Validator) validateType(handle TypeHandle, typ *Type) {
	if typ.Inner == nil {
		v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		return
	}

	switch inner := typ.Inner.(type) {
	case ScalarType:
		if !validScalarWidth(inner) {
			v.addError(fmt.Sprintf("type %d: %s scalar cannot be %d bytes wide", handle, inner.Kind, inner.Width))
		}

	case RankedTensorType:
		v.validateElement(handle, inner.Element)
		for i, dim := range inner.Shape {
			if dim < 0 && dim != DynamicSize {
				v.addError(fmt.Sprintf("type %d: dimension %d has negative size %d", handle, i, dim))
			}
		}

	case UnrankedTensorType:
		v.validateElement(handle, inner.Element)

	case FunctionType:
		for i, h := range inner.Inputs {
			if !v.isValidTypeHandle(h) {
				v.addError(fmt.Sprintf("type %d: input %d type %d does not exist", handle, i, h))
			}
		}
		for i, h := range inner.Results {
			if !v.isValidTypeHandle(h) {
				v.addError(fmt.Sprintf("type %d: result %d type %d does not exist", handle, i, h))
			}
		}
	}
}

func validScalarWidth(s ScalarType) bool {
	switch s.Kind {
	case ScalarBool:
		return s.Width == 1
	case ScalarSint, ScalarUint:
		return s.Width == 1 || s.Width == 2 || s.Width == 4 || s.Width == 8
	case ScalarFloat:
		return s.Width == 2 || s.Width == 4 || s.Width == 8
	case ScalarBFloat:
		return s.Width == 2
	case ScalarComplex:
		return s.Width == 8 || s.Width == 16
	default:
		return false
	}
}

func (v *Validator) validateElement(handle, elem TypeHandle) {
	if !v.isValidTypeHandle(elem) {
		v.addError(fmt.Sprintf("type %d: element type %d does not exist", handle, elem))
		return
	}
	if _, ok := v.ctx.Inner(elem).(ScalarType); !ok {
		v.addError(fmt.Sprintf("type %d: element type %d is not a scalar", handle, elem))
	}
}

// validateFunctions checks all functions.
func (v *Validator) validateFunctions() {
	names := make(map[string]bool)

	for _, fn := range v.module.Functions {
		if fn == nil {
			v.addError("module contains a nil function")
			continue
		}
		if fn.Name == "" {
			v.addError("function has empty name")
		} else {
			if names[fn.Name] {
				v.addError(fmt.Sprintf("duplicate function name %q", fn.Name))
			}
			names[fn.Name] = true
		}

		v.context = validationContext{
			function:     fn,
			functionName: fn.Name,
			block:        -1,
			operation:    -1,
			defined:      make(map[*Value]bool),
		}

		v.validateFunction(fn)
	}
}

// validateFunction validates a single function.
func (v *Validator) validateFunction(fn *Function) {
	sig, ok := fn.Signature(v.ctx)
	if !ok {
		v.addErrorInFunction(fmt.Sprintf("type %d is not a function type", fn.Type))
		return
	}
	v.context.signature = sig

	// A function without blocks is an external declaration.
	if len(fn.Blocks) == 0 {
		return
	}

	entry := fn.Blocks[0]
	if len(entry.Arguments) != len(sig.Inputs) {
		v.addErrorInFunction(fmt.Sprintf("entry block has %d arguments, signature has %d inputs",
			len(entry.Arguments), len(sig.Inputs)))
	} else {
		for i, arg := range entry.Arguments {
			if arg.typ != sig.Inputs[i] {
				v.addErrorInFunction(fmt.Sprintf("entry block argument %d has type %s, signature input is %s",
					i, v.ctx.TypeName(arg.typ), v.ctx.TypeName(sig.Inputs[i])))
			}
		}
	}

	// Block arguments are visible everywhere in the function.
	for _, block := range fn.Blocks {
		for _, arg := range block.Arguments {
			v.context.defined[arg] = true
		}
	}

	for i, block := range fn.Blocks {
		v.context.block = i
		v.validateBlock(block)
	}
}

// validateBlock checks operation order and the block terminator.
func (v *Validator) validateBlock(block *Block) {
	if block.parent != v.context.function {
		v.addErrorInFunction(fmt.Sprintf("block %d is not owned by this function", v.context.block))
	}
	if len(block.Operations) == 0 {
		v.addErrorInFunction(fmt.Sprintf("block %d is empty and has no terminator", v.context.block))
		return
	}

	last := len(block.Operations) - 1
	for i, op := range block.Operations {
		v.context.operation = i
		v.validateOperation(op, i == last)
	}
	v.context.operation = -1
}

// validateOperation validates a single operation.
func (v *Validator) validateOperation(op *Operation, isLast bool) {
	def, registered := v.ctx.LookupOperation(op.Name)
	if !registered {
		if err := v.ctx.CheckOperation(op.Name); err != nil {
			v.addErrorInOperation(err.Error())
		}
	}

	isTerminator := registered && def.Has(TraitTerminator)
	switch {
	case isLast && !isTerminator:
		v.addErrorInOperation(fmt.Sprintf("block must end with a terminator, found %q", op.Name))
	case !isLast && isTerminator:
		v.addErrorInOperation(fmt.Sprintf("terminator %q must be the last operation in its block", op.Name))
	}

	for i, operand := range op.Operands {
		switch {
		case operand == nil:
			v.addErrorInOperation(fmt.Sprintf("operand %d is nil", i))
		case operand.fn != v.context.function:
			v.addErrorInOperation(fmt.Sprintf("operand %d is defined in another function", i))
		case !v.context.defined[operand]:
			v.addErrorInOperation(fmt.Sprintf("operand %d is used before it is defined", i))
		}
	}

	for i, result := range op.Results {
		if !v.isValidTypeHandle(result.typ) {
			v.addErrorInOperation(fmt.Sprintf("result %d type %d does not exist", i, result.typ))
		}
		v.context.defined[result] = true
	}

	if registered && def.Has(TraitReturnLike) {
		v.validateReturn(op)
	}
}

// validateReturn checks that returned values match the declared results.
func (v *Validator) validateReturn(op *Operation) {
	got := make([]TypeHandle, 0, len(op.Operands))
	for _, operand := range op.Operands {
		if operand == nil {
			return
		}
		got = append(got, operand.typ)
	}
	if !slices.Equal(got, v.context.signature.Results) {
		v.addErrorInOperation(fmt.Sprintf("returned types %s do not match declared results %s",
			v.ctx.typeList(got, true), v.ctx.typeList(v.context.signature.Results, true)))
	}
}

// Helper methods

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < v.ctx.types.Count()
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Block:     -1,
		Operation: -1,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Block:     v.context.block,
		Operation: -1,
	})
}

func (v *Validator) addErrorInOperation(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Block:     v.context.block,
		Operation: v.context.operation,
	})
}
