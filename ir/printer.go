package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PrintOptions configures textual output.
type PrintOptions struct {
	// Locations appends loc(...) to every function and operation.
	Locations bool
}

// Print writes m to w in an MLIR-like generic form.
func Print(w io.Writer, ctx *Context, m *Module, opts PrintOptions) error {
	p := newPrinter(ctx, opts)
	p.writeModule(m)
	_, err := io.WriteString(w, p.out.String())
	return err
}

// Sprint returns the textual form of m without locations.
func Sprint(ctx *Context, m *Module) string {
	p := newPrinter(ctx, PrintOptions{})
	p.writeModule(m)
	return p.out.String()
}

// printer generates the textual form of a module.
type printer struct {
	ctx  *Context
	opts PrintOptions

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Value names within the function being printed
	names map[*Value]string
}

func newPrinter(ctx *Context, opts PrintOptions) *printer {
	return &printer{
		ctx:  ctx,
		opts: opts,
	}
}

func (p *printer) writeLine(format string, args ...any) {
	p.out.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.out, format, args...)
	p.out.WriteByte('\n')
}

func (p *printer) writeModule(m *Module) {
	header := "module"
	if m.Name != "" {
		header += " @" + m.Name
	}
	p.writeLine("%s {", header)
	p.indent++
	for _, fn := range m.Functions {
		p.writeFunction(fn)
	}
	p.indent--
	p.writeLine("}%s", p.loc(m.Location))
}

func (p *printer) writeFunction(fn *Function) {
	p.names = make(map[*Value]string)
	sig, _ := fn.Signature(p.ctx)

	results := ""
	if len(sig.Results) > 0 {
		results = " -> " + p.ctx.typeList(sig.Results, false)
	}

	entry := fn.EntryBlock()
	if entry == nil {
		inputs := make([]string, len(sig.Inputs))
		for i, t := range sig.Inputs {
			inputs[i] = p.ctx.TypeName(t)
		}
		p.writeLine("func.func private @%s(%s)%s%s", fn.Name, strings.Join(inputs, ", "), results, p.loc(fn.Location))
		return
	}

	args := make([]string, len(entry.Arguments))
	for i, arg := range entry.Arguments {
		name := "%arg" + strconv.Itoa(i)
		p.names[arg] = name
		args[i] = name + ": " + p.ctx.TypeName(arg.typ)
	}
	p.writeLine("func.func @%s(%s)%s {", fn.Name, strings.Join(args, ", "), results)

	next := 0
	for bi, block := range fn.Blocks {
		if bi > 0 {
			bargs := make([]string, len(block.Arguments))
			for i, arg := range block.Arguments {
				name := "%bb" + strconv.Itoa(bi) + "_arg" + strconv.Itoa(i)
				p.names[arg] = name
				bargs[i] = name + ": " + p.ctx.TypeName(arg.typ)
			}
			p.writeLine("^bb%d(%s):", bi, strings.Join(bargs, ", "))
		}
		p.indent++
		for _, op := range block.Operations {
			next = p.writeOperation(op, next)
		}
		p.indent--
	}
	p.writeLine("}%s", p.loc(fn.Location))
}

// writeOperation prints op and returns the next free result number.
func (p *printer) writeOperation(op *Operation, next int) int {
	var sb strings.Builder

	if len(op.Results) > 0 {
		names := make([]string, len(op.Results))
		for i, r := range op.Results {
			names[i] = "%" + strconv.Itoa(next)
			p.names[r] = names[i]
			next++
		}
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(" = ")
	}

	sb.WriteString(strconv.Quote(op.Name))
	sb.WriteByte('(')
	operandTypes := make([]TypeHandle, len(op.Operands))
	for i, operand := range op.Operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.valueName(operand))
		if operand != nil {
			operandTypes[i] = operand.typ
		}
	}
	sb.WriteByte(')')

	if len(op.Attributes) > 0 {
		sb.WriteString(" {")
		for i, a := range op.Attributes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Name)
			sb.WriteString(" = ")
			sb.WriteString(p.attribute(a.Value))
		}
		sb.WriteByte('}')
	}

	sb.WriteString(" : ")
	sb.WriteString(p.ctx.typeList(operandTypes, true))
	sb.WriteString(" -> ")
	sb.WriteString(p.ctx.typeList(Types(op.Results), false))
	sb.WriteString(p.loc(op.Location))

	p.writeLine("%s", sb.String())
	return next
}

func (p *printer) valueName(v *Value) string {
	if v == nil {
		return "<<nil>>"
	}
	if name, ok := p.names[v]; ok {
		return name
	}
	// Defined later, or in another function.
	return "<<unknown " + strconv.FormatUint(uint64(v.id), 10) + ">>"
}

func (p *printer) attribute(a Attribute) string {
	switch a := a.(type) {
	case StringAttr:
		return strconv.Quote(string(a))
	case BoolAttr:
		return strconv.FormatBool(bool(a))
	case IntegerAttr:
		return strconv.FormatInt(a.Value, 10) + " : " + p.ctx.TypeName(a.Type)
	case FloatAttr:
		return strconv.FormatFloat(a.Value, 'e', -1, 64) + " : " + p.ctx.TypeName(a.Type)
	case TypeAttr:
		return p.ctx.TypeName(a.Type)
	case ArrayAttr:
		parts := make([]string, len(a))
		for i, elem := range a {
			parts[i] = p.attribute(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("<<%T>>", a)
	}
}

func (p *printer) loc(l Location) string {
	if !p.opts.Locations {
		return ""
	}
	if l == nil {
		l = Unknown()
	}
	return " loc(" + l.String() + ")"
}
