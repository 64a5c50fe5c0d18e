package ir

import (
	"runtime"
	"testing"
)

func benchContext() *Context {
	ctx := NewContext()
	ctx.RegisterDialect(testFunc)
	ctx.RegisterDialect(testMath)
	return ctx
}

// ---------------------------------------------------------------------------
// Context and type interning benchmarks
// ---------------------------------------------------------------------------

// BenchmarkContextCreation benchmarks creating a context and registering the
// dialects a builder needs.
func BenchmarkContextCreation(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ctx := benchContext()
		runtime.KeepAlive(ctx)
	}
}

// BenchmarkInternTypes benchmarks interning a representative set of types
// (scalars, ranked and unranked tensors, a function) into a fresh context.
func BenchmarkInternTypes(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ctx := NewContext()
		f32 := ctx.F32()
		i64 := ctx.Scalar(ScalarSint, 8)
		bf16 := ctx.Scalar(ScalarBFloat, 2)

		x, _ := ctx.RankedTensor([]int64{DynamicSize, 512, 64}, bf16)
		w, _ := ctx.RankedTensor([]int64{64, 64}, f32)
		idx, _ := ctx.RankedTensor([]int64{DynamicSize}, i64)
		unranked, _ := ctx.UnrankedTensor(f32)
		fn, _ := ctx.Function([]TypeHandle{x, w, idx}, []TypeHandle{unranked})
		runtime.KeepAlive(fn)
	}
}

// BenchmarkInternExisting measures the lookup path: the type already exists.
func BenchmarkInternExisting(b *testing.B) {
	ctx := NewContext()
	shape := []int64{32, 128, 128}
	if _, err := ctx.RankedTensor(shape, ctx.F32()); err != nil {
		b.Fatalf("intern failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		h, err := ctx.RankedTensor(shape, ctx.F32())
		if err != nil {
			b.Fatalf("intern failed: %v", err)
		}
		runtime.KeepAlive(h)
	}
}

// ---------------------------------------------------------------------------
// Operation construction and validation
// ---------------------------------------------------------------------------

// BenchmarkCreateOperations benchmarks building a function body of 64
// chained operations through an insertion point.
func BenchmarkCreateOperations(b *testing.B) {
	ctx := benchContext()
	t4, err := ctx.RankedTensor([]int64{4}, ctx.F32())
	if err != nil {
		b.Fatalf("intern failed: %v", err)
	}
	ft, err := ctx.Function([]TypeHandle{t4}, []TypeHandle{t4})
	if err != nil {
		b.Fatalf("intern failed: %v", err)
	}
	results := []TypeHandle{t4}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		fn := &Function{Name: "f", Type: ft}
		entry, err := fn.AddEntryBlock(ctx)
		if err != nil {
			b.Fatalf("entry block failed: %v", err)
		}
		ip := AtBlockEnd(entry)
		cur := entry.Arguments
		for j := 0; j < 64; j++ {
			op, err := ip.Create(ctx, "math.neg", cur, results, nil)
			if err != nil {
				b.Fatalf("create failed: %v", err)
			}
			cur = op.Results
		}
		runtime.KeepAlive(fn)
	}
}

// BenchmarkValidateModule benchmarks full validation of a small module.
func BenchmarkValidateModule(b *testing.B) {
	ctx := benchContext()
	t4, _ := ctx.RankedTensor([]int64{4}, ctx.F32())
	ft, _ := ctx.Function([]TypeHandle{t4}, []TypeHandle{t4})

	m := &Module{Name: "bench"}
	for j := 0; j < 8; j++ {
		fn := &Function{Name: "f" + string(rune('a'+j)), Type: ft}
		entry, err := fn.AddEntryBlock(ctx)
		if err != nil {
			b.Fatalf("entry block failed: %v", err)
		}
		ip := AtBlockEnd(entry)
		neg, err := ip.Create(ctx, "math.neg", entry.Arguments, []TypeHandle{t4}, nil)
		if err != nil {
			b.Fatalf("create failed: %v", err)
		}
		if _, err := ip.Create(ctx, "func.return", neg.Results, nil, nil); err != nil {
			b.Fatalf("create failed: %v", err)
		}
		m.Functions = append(m.Functions, fn)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		errs, err := Validate(ctx, m)
		if err != nil || len(errs) != 0 {
			b.Fatalf("validate failed: %v %v", err, errs)
		}
	}
}
