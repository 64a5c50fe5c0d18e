// Package dialect holds the static definitions of the auxiliary dialects a
// module builder registers with its Context.
//
// The func dialect is closed: only the listed operations may be created.
// MHLO and CHLO list the operations known ahead of time and accept any other
// name as a trait-less operation.
package dialect

import (
	"github.com/gogpu/tensorir/ir"
)

// ReturnOp is the terminator emitted by function builders.
const ReturnOp = "func.return"

// Func holds function-level control operations.
var Func = ir.Dialect{
	Name: "func",
	Operations: []ir.OpDef{
		{Name: "return", Traits: ir.TraitTerminator | ir.TraitReturnLike},
		{Name: "call"},
	},
}

// MHLO holds the elementwise and structural tensor operations.
var MHLO = ir.Dialect{
	Name: "mhlo",
	Operations: ops(
		// elementwise unary
		"abs", "ceil", "convert", "cosine", "exponential", "floor", "imag",
		"is_finite", "log", "negate", "not", "real", "rsqrt", "sign", "sine",
		"sqrt", "tanh",
		// elementwise binary
		"add", "and", "atan2", "compare", "complex", "divide", "maximum",
		"minimum", "multiply", "or", "power", "remainder", "shift_left",
		"shift_right_arithmetic", "shift_right_logical", "subtract", "xor",
		// structural
		"bitcast_convert", "broadcast", "broadcast_in_dim", "clamp",
		"concatenate", "constant", "convolution", "dot", "dot_general",
		"dynamic_broadcast_in_dim", "dynamic_iota", "dynamic_reshape",
		"dynamic_slice", "dynamic_update_slice", "gather",
		"get_dimension_size", "get_tuple_element", "iota", "pad", "reduce",
		"reduce_precision", "reduce_window", "reshape", "reverse", "scatter",
		"select", "select_and_scatter", "slice", "sort", "transpose", "tuple",
		// elementwise, continued
		"cbrt", "count_leading_zeros", "exponential_minus_one",
		"log_plus_one", "logistic", "popcnt", "round_nearest_afz",
		"round_nearest_even",
		// linear algebra and signal processing
		"cholesky", "fft", "triangular_solve",
		// control flow and extension points
		"case", "custom_call", "if", "map", "return", "while",
		// randomness
		"rng", "rng_bit_generator",
	),
	AllowUnknownOperations: true,
}

// CHLO holds the client operations with implicit broadcasting.
var CHLO = ir.Dialect{
	Name: "chlo",
	Operations: ops(
		"acos", "acosh", "asin", "asinh", "atan", "atanh", "bessel_i1e",
		"broadcast_add", "broadcast_and", "broadcast_atan2",
		"broadcast_compare", "broadcast_divide", "broadcast_maximum",
		"broadcast_minimum", "broadcast_multiply", "broadcast_or",
		"broadcast_power", "broadcast_remainder", "broadcast_subtract",
		"broadcast_next_after", "broadcast_polygamma", "broadcast_xor",
		"broadcast_zeta", "bessel_i0e", "conj", "constant_like", "cosh",
		"digamma", "erf", "erf_inv", "erfc", "is_inf", "is_neg_inf",
		"is_pos_inf", "lgamma", "next_after", "polygamma", "sinh", "tan",
		"top_k", "zeta",
	),
	AllowUnknownOperations: true,
}

// Required lists the dialects every module builder registers.
var Required = []ir.Dialect{Func, MHLO, CHLO}

func ops(names ...string) []ir.OpDef {
	defs := make([]ir.OpDef, len(names))
	for i, n := range names {
		defs[i] = ir.OpDef{Name: n}
	}
	return defs
}
