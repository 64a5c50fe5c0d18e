// Package builder constructs IR modules incrementally.
//
// A ModuleBuilder owns one module under construction. DeclareFunction appends
// a function and returns a FunctionBuilder scoped to its body; the function's
// result types are finalized by EmitReturn from the types actually returned:
//
//	b := builder.NewModuleBuilder()
//	t, _ := b.Converter().AbstractValueToType(aval.NewRanked(dtypes.Float32, 4))
//	fb, _ := b.DeclareFunction("identity", []ir.TypeHandle{t}, nil)
//	_, _ = fb.EmitReturn(fb.Arguments())
package builder

import (
	"io"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/gogpu/tensorir/dialect"
	"github.com/gogpu/tensorir/ir"
)

// Option configures a ModuleBuilder.
type Option func(*config)

type config struct {
	ctx             *ir.Context
	log             logr.Logger
	name            string
	callerLocations bool
}

// WithContext builds into an existing Context instead of creating one.
func WithContext(ctx *ir.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithLogger sets the logger for construction events.
func WithLogger(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithModuleName names the module.
func WithModuleName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithCallerLocations makes the default location the file and line of the
// code calling into the builder, instead of unknown.
func WithCallerLocations() Option {
	return func(c *config) {
		c.callerLocations = true
	}
}

// ModuleBuilder is a module under construction.
type ModuleBuilder struct {
	ctx         *ir.Context
	ownsContext bool
	module      *ir.Module
	ip          *ir.InsertionPoint
	conv        *TypeConverter
	log         logr.Logger

	currentLoc      ir.Location // nil until SetLocation
	callerLocations bool
}

// NewModuleBuilder creates an empty module and places the cursor at its top
// level. Unregistered dialects are allowed in the context and the dialects in
// dialect.Required are registered.
func NewModuleBuilder(opts ...Option) *ModuleBuilder {
	cfg := config{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &ModuleBuilder{
		ctx:             cfg.ctx,
		log:             cfg.log,
		callerLocations: cfg.callerLocations,
	}
	if b.ctx == nil {
		b.ctx = ir.NewContext(ir.WithLogger(cfg.log))
		b.ownsContext = true
	}

	b.ctx.AllowUnregisteredDialects = true
	for _, d := range dialect.Required {
		b.ctx.RegisterDialect(d)
	}

	b.module = &ir.Module{Name: cfg.name, Location: b.Location()}
	b.ip = ir.AtModuleEnd(b.module)
	b.conv = NewTypeConverter(b.ctx)
	return b
}

// Context returns the context all constructs are built in.
func (b *ModuleBuilder) Context() *ir.Context { return b.ctx }

// OwnsContext reports whether the builder created its context.
func (b *ModuleBuilder) OwnsContext() bool { return b.ownsContext }

// Module returns the module under construction.
func (b *ModuleBuilder) Module() *ir.Module { return b.module }

// Converter returns the type converter bound to the builder's context.
func (b *ModuleBuilder) Converter() *TypeConverter { return b.conv }

// Location returns the location attached to new constructs. It is the one
// set with SetLocation, else the caller's position when caller locations are
// enabled, else unknown.
func (b *ModuleBuilder) Location() ir.Location {
	if b.currentLoc != nil {
		return b.currentLoc
	}
	if b.callerLocations {
		if loc, ok := callerLocation(); ok {
			return loc
		}
	}
	return ir.Unknown()
}

// SetLocation sets the location for subsequent constructs. nil restores the
// default.
func (b *ModuleBuilder) SetLocation(loc ir.Location) {
	b.currentLoc = loc
}

// DeclareFunction appends a function with the given signature to the module
// and returns a builder for its body. The result types are provisional: by
// default EmitReturn replaces them with the returned value types.
//
// Name uniqueness is not checked here; Verify reports duplicates.
func (b *ModuleBuilder) DeclareFunction(name string, inputs, results []ir.TypeHandle) (*FunctionBuilder, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidName, "declare function: name is empty")
	}

	ftype, err := b.ctx.Function(inputs, results)
	if err != nil {
		return nil, errors.Wrapf(err, "declare function %q", name)
	}

	fn := &ir.Function{
		Name:     name,
		Type:     ftype,
		Location: b.Location(),
	}
	fb, err := newFunctionBuilder(b, fn)
	if err != nil {
		return nil, errors.Wrapf(err, "declare function %q", name)
	}
	if err := b.ip.InsertFunction(fn); err != nil {
		return nil, errors.Wrapf(err, "declare function %q", name)
	}

	b.log.V(1).Info("declared function", "function", name, "type", b.ctx.TypeName(ftype))
	return fb, nil
}

// Validate runs the IR verifier over the module.
func (b *ModuleBuilder) Validate() ([]ir.ValidationError, error) {
	return ir.Validate(b.ctx, b.module)
}

// Verify returns an ErrVerification error describing every problem the
// verifier finds, or nil.
func (b *ModuleBuilder) Verify() error {
	problems, err := b.Validate()
	if err != nil {
		return errors.Wrap(err, "verify module")
	}
	if len(problems) == 0 {
		return nil
	}

	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	b.log.V(1).Info("module failed verification", "problems", len(problems))
	return errors.Wrapf(ErrVerification, "%s", strings.Join(msgs, "; "))
}

// Print writes the module in textual form.
func (b *ModuleBuilder) Print(w io.Writer, opts ir.PrintOptions) error {
	return ir.Print(w, b.ctx, b.module, opts)
}

// String returns the module in textual form without locations.
func (b *ModuleBuilder) String() string {
	return ir.Sprint(b.ctx, b.module)
}

const builderPackage = "github.com/gogpu/tensorir/builder."

// callerLocation returns the first stack frame outside this package.
func callerLocation() (ir.Location, bool) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, builderPackage) {
			return ir.FileLineColLoc{File: frame.File, Line: frame.Line}, frame.Function != ""
		}
		if !more {
			return nil, false
		}
	}
}
