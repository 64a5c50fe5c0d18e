// Package tensorir builds tensor IR modules from abstract descriptions.
//
// The builder package does the work: it converts abstract values (element
// kind plus shape) into interned IR types, declares functions and finalizes
// their result types from the values they return. This package wraps it in a
// small pipeline driven by program files:
//
//	module: demo
//	functions:
//	  - name: double
//	    inputs: ["f32[4]"]
//	    body:
//	      - op: mhlo.add
//	        operands: [0, 0]
//	        results: ["f32[4]"]
//	    return: [1]
//
//	text, err := tensorir.CompileFile("demo.yaml", tensorir.DefaultOptions())
//
// For direct construction, use the builder package:
//
//	b := builder.NewModuleBuilder()
//	fb, _ := b.DeclareFunction("identity", inputs, nil)
//	_, _ = fb.EmitReturn(fb.Arguments())
package tensorir

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/gogpu/tensorir/aval"
	"github.com/gogpu/tensorir/builder"
	"github.com/gogpu/tensorir/ir"
)

// ErrBadValueIndex is returned when a program refers to a value that does not
// exist at that point.
var ErrBadValueIndex = errors.New("value index out of range")

// Options configures Build and Compile.
type Options struct {
	// Verify runs the verifier after construction
	Verify bool

	// Locations prints loc(...) on functions and operations
	Locations bool

	// ModuleName overrides the program's module name when set
	ModuleName string

	// Logger receives construction events at V(1)
	Logger logr.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Verify: true,
		Logger: logr.Discard(),
	}
}

// Compile decodes, builds and prints a program.
func Compile(data []byte, format Format, opts Options) (string, error) {
	p, err := ParseProgram(data, format)
	if err != nil {
		return "", err
	}
	return compile(p, opts)
}

// CompileFile is Compile for a program file.
func CompileFile(path string, opts Options) (string, error) {
	p, err := LoadProgram(path)
	if err != nil {
		return "", err
	}
	return compile(p, opts)
}

func compile(p *Program, opts Options) (string, error) {
	b, err := Build(p, opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := b.Print(&sb, ir.PrintOptions{Locations: opts.Locations}); err != nil {
		return "", errors.Wrap(err, "print module")
	}
	return sb.String(), nil
}

// Build constructs the module described by p.
//
// The pipeline is:
//  1. Convert every abstract value to an IR type
//  2. Declare each function and create its body operations
//  3. Emit the return, finalizing result types
//  4. Verify the module (if enabled)
func Build(p *Program, opts Options) (*builder.ModuleBuilder, error) {
	if p == nil {
		return nil, errors.New("build: nil program")
	}
	name := p.Module
	if opts.ModuleName != "" {
		name = opts.ModuleName
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	b := builder.NewModuleBuilder(builder.WithLogger(log), builder.WithModuleName(name))

	for i := range p.Functions {
		fs := &p.Functions[i]
		if err := buildFunction(b, fs); err != nil {
			return nil, errors.Wrapf(err, "function %d (%q)", i, fs.Name)
		}
	}

	if opts.Verify {
		if err := b.Verify(); err != nil {
			return nil, err
		}
	}
	log.V(1).Info("built module", "module", name, "functions", len(p.Functions))
	return b, nil
}

func buildFunction(b *builder.ModuleBuilder, fs *FunctionSpec) error {
	defer b.SetLocation(nil)

	conv := b.Converter()
	inputs, err := convertAll(conv, fs.Inputs)
	if err != nil {
		return errors.Wrap(err, "inputs")
	}
	results, err := convertAll(conv, fs.Results)
	if err != nil {
		return errors.Wrap(err, "results")
	}

	fnLoc := ParseLocation(fs.Loc)
	b.SetLocation(fnLoc)
	fb, err := b.DeclareFunction(fs.Name, inputs, results)
	if err != nil {
		return err
	}

	values := append([]*ir.Value(nil), fb.Arguments()...)
	for j, step := range fs.Body {
		operands, err := pick(values, step.Operands)
		if err != nil {
			return errors.Wrapf(err, "op %d (%s)", j, step.Op)
		}
		types, err := convertAll(conv, step.Results)
		if err != nil {
			return errors.Wrapf(err, "op %d (%s)", j, step.Op)
		}
		attrs, err := attributes(b.Context(), step.Attributes)
		if err != nil {
			return errors.Wrapf(err, "op %d (%s)", j, step.Op)
		}

		if loc := ParseLocation(step.Loc); loc != nil {
			b.SetLocation(loc)
		} else {
			b.SetLocation(fnLoc)
		}
		op, err := fb.Create(step.Op, operands, types, attrs...)
		if err != nil {
			return errors.Wrapf(err, "op %d", j)
		}
		values = append(values, op.Results...)
	}

	rets, err := pick(values, fs.Return)
	if err != nil {
		return errors.Wrap(err, "return")
	}
	b.SetLocation(fnLoc)
	var ropts []builder.ReturnOption
	if fs.KeepSignature {
		ropts = append(ropts, builder.WithoutSignatureUpdate())
	}
	_, err = fb.EmitReturn(rets, ropts...)
	return err
}

func convertAll(conv *builder.TypeConverter, avals []string) ([]ir.TypeHandle, error) {
	types := make([]ir.TypeHandle, 0, len(avals))
	for _, s := range avals {
		v, err := aval.Parse(s)
		if err != nil {
			return nil, err
		}
		t, err := conv.AbstractValueToType(v)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func pick(values []*ir.Value, indices []int) ([]*ir.Value, error) {
	out := make([]*ir.Value, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(values) {
			return nil, errors.Wrapf(ErrBadValueIndex, "%d (have %d values)", idx, len(values))
		}
		out = append(out, values[idx])
	}
	return out, nil
}

// attributes converts decoded attribute values, sorted by name.
func attributes(ctx *ir.Context, raw map[string]interface{}) ([]ir.NamedAttribute, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]ir.NamedAttribute, 0, len(names))
	for _, name := range names {
		a, err := attribute(ctx, raw[name])
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		attrs = append(attrs, ir.NamedAttribute{Name: name, Value: a})
	}
	return attrs, nil
}

func attribute(ctx *ir.Context, v interface{}) (ir.Attribute, error) {
	switch v := v.(type) {
	case string:
		return ir.StringAttr(v), nil
	case bool:
		return ir.BoolAttr(v), nil
	case int:
		return ir.IntegerAttr{Value: int64(v), Type: ctx.Scalar(ir.ScalarSint, 8)}, nil
	case int64:
		return ir.IntegerAttr{Value: v, Type: ctx.Scalar(ir.ScalarSint, 8)}, nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, errors.Newf("integer %d does not fit in i64", v)
		}
		return ir.IntegerAttr{Value: int64(v), Type: ctx.Scalar(ir.ScalarSint, 8)}, nil
	case float64:
		return ir.FloatAttr{Value: v, Type: ctx.Scalar(ir.ScalarFloat, 8)}, nil
	case []interface{}:
		arr := make(ir.ArrayAttr, 0, len(v))
		for i, elem := range v {
			a, err := attribute(ctx, elem)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			arr = append(arr, a)
		}
		return arr, nil
	}
	return nil, errors.Newf("unsupported attribute value %v (%T)", v, v)
}

// ParseLocation turns "file:line:col" into a FileLineColLoc and any other
// non-empty string into a NameLoc. The empty string yields nil.
func ParseLocation(s string) ir.Location {
	if s == "" {
		return nil
	}
	if i := strings.LastIndexByte(s, ':'); i > 0 {
		if j := strings.LastIndexByte(s[:i], ':'); j > 0 {
			line, err1 := strconv.Atoi(s[j+1 : i])
			col, err2 := strconv.Atoi(s[i+1:])
			if err1 == nil && err2 == nil {
				return ir.FileLineColLoc{File: s[:j], Line: line, Col: col}
			}
		}
	}
	return ir.NameLoc{Name: s}
}
