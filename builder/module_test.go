package builder_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tensorir/aval"
	"github.com/gogpu/tensorir/builder"
	"github.com/gogpu/tensorir/dialect"
	"github.com/gogpu/tensorir/dtypes"
	"github.com/gogpu/tensorir/ir"
)

func TestNewModuleBuilder_Defaults(t *testing.T) {
	b := builder.NewModuleBuilder(builder.WithLogger(testr.New(t)))

	assert.True(t, b.OwnsContext())
	assert.True(t, b.Context().AllowUnregisteredDialects)
	for _, d := range dialect.Required {
		_, ok := b.Context().Dialect(d.Name)
		assert.True(t, ok, "dialect %s not registered", d.Name)
	}
	assert.Empty(t, b.Module().Functions)
	assert.Equal(t, ir.Unknown(), b.Location())
	assert.Equal(t, ir.Unknown(), b.Module().Location)
}

func TestNewModuleBuilder_WithContext(t *testing.T) {
	ctx := ir.NewContext()
	b := builder.NewModuleBuilder(builder.WithContext(ctx), builder.WithModuleName("shared"))

	assert.Same(t, ctx, b.Context())
	assert.False(t, b.OwnsContext())
	assert.True(t, ctx.AllowUnregisteredDialects)
	assert.Equal(t, "shared", b.Module().Name)

	// Two builders on one context share interned types.
	other := builder.NewModuleBuilder(builder.WithContext(ctx))
	v := aval.NewRanked(dtypes.Int64, 3)
	a, err := b.Converter().AbstractValueToType(v)
	require.NoError(t, err)
	c, err := other.Converter().AbstractValueToType(v)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestSetLocation(t *testing.T) {
	b := builder.NewModuleBuilder()
	loc := ir.FileLineColLoc{File: "model.py", Line: 12, Col: 4}
	b.SetLocation(loc)
	assert.Equal(t, loc, b.Location())

	fb, err := b.DeclareFunction("f", nil, nil)
	require.NoError(t, err)
	ret, err := fb.EmitReturn(nil)
	require.NoError(t, err)
	assert.Equal(t, loc, fb.Function().Location)
	assert.Equal(t, loc, ret.Location)

	b.SetLocation(nil)
	assert.Equal(t, ir.Unknown(), b.Location())

	var sb strings.Builder
	require.NoError(t, b.Print(&sb, ir.PrintOptions{Locations: true}))
	assert.Contains(t, sb.String(), `"func.return"() : () -> () loc("model.py":12:4)`)
}

func TestCallerLocations(t *testing.T) {
	b := builder.NewModuleBuilder(builder.WithCallerLocations())

	fb, err := b.DeclareFunction("f", nil, nil)
	require.NoError(t, err)

	loc, ok := fb.Function().Location.(ir.FileLineColLoc)
	require.True(t, ok, "got %T", fb.Function().Location)
	assert.Equal(t, "module_test.go", filepath.Base(loc.File))
	assert.Positive(t, loc.Line)

	ret, err := fb.EmitReturn(nil)
	require.NoError(t, err)
	retLoc, ok := ret.Location.(ir.FileLineColLoc)
	require.True(t, ok)
	assert.Greater(t, retLoc.Line, loc.Line)

	// An explicit location takes precedence.
	b.SetLocation(ir.NameLoc{Name: "explicit"})
	assert.Equal(t, ir.NameLoc{Name: "explicit"}, b.Location())
}

func ExampleModuleBuilder() {
	b := builder.NewModuleBuilder(builder.WithModuleName("example"))
	t4, _ := b.Converter().AbstractValueToType(aval.NewRanked(dtypes.Float32, 4))

	// Declared without results: the return decides them.
	fb, _ := b.DeclareFunction("identity", []ir.TypeHandle{t4}, nil)
	_, _ = fb.EmitReturn(fb.Arguments())

	fmt.Print(b.String())
	// Output:
	// module @example {
	//   func.func @identity(%arg0: tensor<4xf32>) -> tensor<4xf32> {
	//     "func.return"(%arg0) : (tensor<4xf32>) -> ()
	//   }
	// }
}
