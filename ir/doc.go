// Package ir defines the tensor intermediate representation for tensorir.
//
// The IR is designed to be:
//   - Interned: structurally equal types share one TypeHandle per Context
//   - SSA: every Value is defined once, as a block argument or an operation result
//   - Open: operations are named "dialect.op" and dialects are registered per Context
//
// # Structure
//
// A Context owns everything shared by a build session:
//   - Types: the TypeRegistry that interns scalar, tensor and function types
//   - Dialects: the registered operation sets and their traits
//
// A Module contains Functions. Each Function has a FunctionType and a list of
// Blocks; the first block is the entry block and its arguments are the
// function inputs. Blocks hold Operations, which consume and produce Values.
//
// # Construction
//
// New constructs are appended through an InsertionPoint, which always points
// at the end of either a module body or a block:
//
//	ctx := ir.NewContext()
//	m := &ir.Module{Name: "main"}
//	ip := ir.AtModuleEnd(m)
//	fnType, _ := ctx.Function([]ir.TypeHandle{t}, nil)
//	fn := &ir.Function{Name: "f", Type: fnType, Location: ir.Unknown()}
//	_ = ip.InsertFunction(fn)
//
// # Verification and printing
//
// Validate reports structural problems (duplicate function names, missing
// terminators, result type mismatches, values used outside their function).
// Print renders a module in an MLIR-like textual form.
package ir
