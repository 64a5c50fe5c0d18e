package builder

import (
	"github.com/cockroachdb/errors"

	"github.com/gogpu/tensorir/dialect"
	"github.com/gogpu/tensorir/ir"
)

// functionState is the lifecycle of a function body under construction.
type functionState uint8

const (
	// stateOpen: entry block exists, cursor active, result types provisional.
	stateOpen functionState = iota
	// stateClosed: return emitted, result types final.
	stateClosed
)

// FunctionBuilder builds the body of one function. It is Open until EmitReturn
// succeeds and Closed afterwards; a Closed builder accepts no more operations.
type FunctionBuilder struct {
	b     *ModuleBuilder
	ctx   *ir.Context
	fn    *ir.Function
	entry *ir.Block
	ip    *ir.InsertionPoint
	state functionState
	ret   *ir.Operation
}

func newFunctionBuilder(b *ModuleBuilder, fn *ir.Function) (*FunctionBuilder, error) {
	entry, err := fn.AddEntryBlock(b.ctx)
	if err != nil {
		return nil, err
	}
	return &FunctionBuilder{
		b:     b,
		ctx:   b.ctx,
		fn:    fn,
		entry: entry,
		ip:    ir.AtBlockEnd(entry),
		state: stateOpen,
	}, nil
}

// Function returns the function being built.
func (f *FunctionBuilder) Function() *ir.Function { return f.fn }

// EntryBlock returns the entry block of the body.
func (f *FunctionBuilder) EntryBlock() *ir.Block { return f.entry }

// Arguments returns the entry block arguments, one per input type.
func (f *FunctionBuilder) Arguments() []*ir.Value { return f.entry.Arguments }

// InsertionPoint returns the cursor operations are appended at.
func (f *FunctionBuilder) InsertionPoint() *ir.InsertionPoint { return f.ip }

// Closed reports whether the return has been emitted.
func (f *FunctionBuilder) Closed() bool { return f.state == stateClosed }

// Return returns the emitted return operation, or nil while the builder is open.
func (f *FunctionBuilder) Return() *ir.Operation { return f.ret }

// Create appends an operation at the cursor using the builder's current
// location.
func (f *FunctionBuilder) Create(
	name string,
	operands []*ir.Value,
	resultTypes []ir.TypeHandle,
	attrs ...ir.NamedAttribute,
) (*ir.Operation, error) {
	if f.state != stateOpen {
		return nil, errors.Wrapf(ErrNotOpen, "function %q: cannot create %q after return", f.fn.Name, name)
	}
	op, err := f.ip.Create(f.ctx, name, operands, resultTypes, f.b.Location(), attrs...)
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", f.fn.Name)
	}
	return op, nil
}

// ReturnOption configures EmitReturn.
type ReturnOption func(*returnConfig)

type returnConfig struct {
	updateSignature bool
}

// WithoutSignatureUpdate keeps the declared result types. The caller is then
// responsible for them matching the returned values; a mismatch is reported
// by the verifier, not by EmitReturn.
func WithoutSignatureUpdate() ReturnOption {
	return func(c *returnConfig) {
		c.updateSignature = false
	}
}

// EmitReturn closes the body with a return of values. By default the
// function's result types are replaced with the types of values, in order.
//
// Returning from a Closed builder fails with ErrNotOpen, marked as
// ErrDoubleReturn. On any error the function is left unchanged.
func (f *FunctionBuilder) EmitReturn(values []*ir.Value, opts ...ReturnOption) (*ir.Operation, error) {
	if f.state != stateOpen {
		err := errors.Wrapf(ErrNotOpen, "function %q: return already emitted", f.fn.Name)
		return nil, errors.Mark(err, ErrDoubleReturn)
	}

	cfg := returnConfig{updateSignature: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, v := range values {
		if v == nil {
			return nil, errors.Wrapf(ir.ErrForeignValue, "function %q: return value %d is nil", f.fn.Name, i)
		}
		if v.Function() != f.fn {
			return nil, errors.Wrapf(ir.ErrForeignValue, "function %q: return value %d belongs to function %q",
				f.fn.Name, i, v.Function().Name)
		}
	}

	ftype := f.fn.Type
	if cfg.updateSignature {
		sig, ok := f.fn.Signature(f.ctx)
		if !ok {
			return nil, errors.Wrapf(ir.ErrInvalidType, "function %q: type is not a function type", f.fn.Name)
		}
		var err error
		ftype, err = f.ctx.Function(sig.Inputs, ir.Types(values))
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", f.fn.Name)
		}
	}

	op, err := f.ip.Create(f.ctx, dialect.ReturnOp, values, nil, f.b.Location())
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", f.fn.Name)
	}

	f.fn.Type = ftype
	f.ret = op
	f.state = stateClosed

	f.b.log.V(1).Info("emitted return", "function", f.fn.Name, "type", f.ctx.TypeName(ftype),
		"signatureUpdated", cfg.updateSignature)
	return op, nil
}
