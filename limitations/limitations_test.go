package limitations

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tensorir/dtypes"
)

func TestNew_Defaults(t *testing.T) {
	l := New("boom")
	assert.Equal(t, "boom", l.Description)
	assert.True(t, l.Enabled)
	assert.True(t, l.ExpectError)
	assert.Equal(t, AllDevices, l.Devices)
	assert.Equal(t, AllModes, l.Modes)
	assert.Empty(t, l.DTypes)
	assert.False(t, l.HasTolerance())
}

func TestCustomNumeric_Defaults(t *testing.T) {
	l := CustomNumeric()
	assert.False(t, l.ExpectError)
	assert.Equal(t, []Mode{Eager, Graph}, l.Modes)
}

func TestApplies(t *testing.T) {
	l := MissingKernel(dtypes.BFloat16)
	l.Devices = []Device{CPU, GPU}

	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty query", Query{}, true},
		{"matching dtype", Query{DType: dtypes.BFloat16}, true},
		{"other dtype", Query{DType: dtypes.Float32}, false},
		{"matching device", Query{Device: GPU, Mode: Compiled}, true},
		{"other device", Query{Device: TPU}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Applies(tt.q))
		})
	}

	l.Enabled = false
	assert.False(t, l.Applies(Query{}))
}

func TestApplies_AnyDType(t *testing.T) {
	l := New("all dtypes")
	for _, dt := range dtypes.All {
		assert.True(t, l.Applies(Query{DType: dt}), dt.String())
	}
}

func TestMaxTolerance(t *testing.T) {
	a, b, c := CustomNumeric(), CustomNumeric(), New("no tol")
	a.Tolerance = 1e-3
	b.Tolerance = 1e-1

	for _, order := range [][]Limitation{{a, b, c}, {c, b, a}, {b, c, a}} {
		got, ok := MaxTolerance(order)
		require.True(t, ok)
		assert.InDelta(t, 1e-1, got.Tolerance, 0)
	}

	_, ok := MaxTolerance([]Limitation{c})
	assert.False(t, ok)
}

// --- registry ---

func TestDefault_Loads(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Contains(t, reg.Groups(), "cholesky")

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, reg, again)
}

func TestDefault_NoConflicts(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	for g := range reg.none {
		_, err := reg.ForGroup(g)
		assert.NoError(t, err, g)
	}
	for _, g := range reg.Groups() {
		_, err := reg.ForGroup(g)
		assert.NoError(t, err, g)
	}
}

func TestForGroup(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	lims, err := reg.ForGroup("add")
	require.NoError(t, err)
	assert.Empty(t, lims)

	lims, err = reg.ForGroup("tridiagonal_solve")
	require.NoError(t, err)
	assert.Empty(t, lims)

	_, err = reg.ForGroup("no_such_primitive")
	assert.True(t, errors.Is(err, ErrUnknownGroup))
}

func TestForGroup_Conflict(t *testing.T) {
	reg, err := Parse([]byte(`
no_limitations: [sin]
groups:
  sin:
    - kind: missing_kernel
      dtypes: f16
`))
	require.NoError(t, err)
	_, err = reg.ForGroup("sin")
	assert.True(t, errors.Is(err, ErrConflictingGroup))
}

func TestApplicable_Cholesky(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	lims, err := reg.Applicable("cholesky", Query{DType: dtypes.Complex64, Device: CPU, Mode: Compiled})
	require.NoError(t, err)

	var compileErr, tol, custom bool
	for _, l := range lims {
		switch {
		case l.ExpectError:
			compileErr = true
		case l.HasTolerance():
			tol = true
		case l.CustomAssert != "":
			custom = true
		}
	}
	assert.True(t, compileErr, "expected the compile error entry")
	assert.True(t, tol, "expected a tolerance entry")
	assert.True(t, custom, "expected the custom assertion entry")

	max, ok := MaxTolerance(lims)
	require.True(t, ok)
	assert.InDelta(t, 1e-2, max.Tolerance, 0)
}

func TestApplicable_ModeDefaults(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	// custom_numeric without modes does not cover compiled.
	lims, err := reg.Applicable("tanh", Query{DType: dtypes.Complex64, Mode: Compiled})
	require.NoError(t, err)
	assert.Empty(t, lims)

	lims, err = reg.Applicable("tanh", Query{DType: dtypes.Complex64, Mode: Eager})
	require.NoError(t, err)
	require.Len(t, lims, 1)
	assert.InDelta(t, 1e-4, lims[0].Tolerance, 0)
}

func TestLoad_ScalarOrList(t *testing.T) {
	reg, err := Load(strings.NewReader(`
groups:
  op:
    - description: fails
      devices: tpu
      dtypes: [f32, float64]
      modes: compiled
`))
	require.NoError(t, err)
	lims, err := reg.ForGroup("op")
	require.NoError(t, err)
	require.Len(t, lims, 1)

	l := lims[0]
	assert.Equal(t, []Device{TPU}, l.Devices)
	assert.Equal(t, []dtypes.DType{dtypes.Float32, dtypes.Float64}, l.DTypes)
	assert.Equal(t, []Mode{Compiled}, l.Modes)
	assert.True(t, l.ExpectError)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"missing description", "{devices: cpu}"},
		{"unknown kind", "{kind: flaky}"},
		{"unknown device", "{kind: missing_kernel, devices: npu}"},
		{"unknown mode", "{kind: missing_kernel, modes: jit}"},
		{"unknown dtype", "{kind: missing_kernel, dtypes: f8}"},
		{"negative tolerance", "{kind: custom_numeric, tol: -1}"},
		{"relaxes nothing", "{kind: custom_numeric}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte("groups:\n  op:\n    - " + tt.entry + "\n"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTable), "%v", err)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("groups: [not, a, map]"))
	assert.True(t, errors.Is(err, ErrInvalidTable))
}

func TestParseDeviceAndMode(t *testing.T) {
	for _, d := range AllDevices {
		got, err := ParseDevice(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	for _, m := range AllModes {
		got, err := ParseMode(" " + strings.ToUpper(string(m)) + " ")
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseDevice("npu")
	assert.True(t, errors.Is(err, ErrUnknownDevice), "%v", err)
	_, err = ParseDevice("")
	assert.True(t, errors.Is(err, ErrUnknownDevice), "%v", err)
	_, err = ParseMode("jit")
	assert.True(t, errors.Is(err, ErrUnknownMode), "%v", err)
}
