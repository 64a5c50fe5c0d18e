// Package limitations records the expected divergences between a reference
// execution backend and a converted one, so comparison tests know when to
// expect an error, loosen tolerances, or skip a check.
//
// The table is static data keyed by harness group (usually the primitive
// name). Lookups filter by dtype, device and mode.
package limitations

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/tensorir/dtypes"
)

var (
	// ErrUnknownDevice is returned by ParseDevice for names outside AllDevices.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownMode is returned by ParseMode for names outside AllModes.
	ErrUnknownMode = errors.New("unknown mode")
)

// Device is an execution device class.
type Device string

const (
	CPU Device = "cpu"
	GPU Device = "gpu"
	TPU Device = "tpu"
)

// AllDevices lists every device class.
var AllDevices = []Device{CPU, GPU, TPU}

// Mode is the way the converted program is executed.
type Mode string

const (
	Eager    Mode = "eager"
	Graph    Mode = "graph"
	Compiled Mode = "compiled"
)

// AllModes lists every execution mode.
var AllModes = []Mode{Eager, Graph, Compiled}

// ParseDevice reads a device name, ignoring case and surrounding space.
func ParseDevice(s string) (Device, error) {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllDevices, d) {
		return "", errors.Wrapf(ErrUnknownDevice, "%q", s)
	}
	return d, nil
}

// ParseMode reads a mode name, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllModes, m) {
		return "", errors.Wrapf(ErrUnknownMode, "%q", s)
	}
	return m, nil
}

// Limitation is one known divergence.
type Limitation struct {
	Description string
	Devices     []Device
	DTypes      []dtypes.DType // Empty means every dtype
	Modes       []Mode
	Enabled     bool

	// ExpectError means the converted program fails in the given modes.
	ExpectError bool
	// SkipRun skips executing the converted program altogether.
	SkipRun bool
	// SkipComparison skips the numeric comparison of results.
	SkipComparison bool
	// Tolerance is used for both atol and rtol; zero means none.
	Tolerance float64
	// CustomAssert names the comparison to use instead of the default.
	CustomAssert string
}

// New returns an enabled limitation that expects an error on every device
// and in every mode.
func New(description string) Limitation {
	return Limitation{
		Description: description,
		Devices:     slices.Clone(AllDevices),
		Modes:       slices.Clone(AllModes),
		Enabled:     true,
		ExpectError: true,
	}
}

// CustomNumeric returns a limitation for results that differ numerically
// without an error. By default it only applies to eager and graph modes.
func CustomNumeric() Limitation {
	l := New("custom numeric comparison")
	l.ExpectError = false
	l.Modes = []Mode{Eager, Graph}
	return l
}

// MissingKernel returns a limitation for an op that is not defined for dts.
func MissingKernel(dts ...dtypes.DType) Limitation {
	l := New("op not defined for dtype")
	l.DTypes = dts
	return l
}

// HasTolerance reports whether the limitation sets a tolerance.
func (l Limitation) HasTolerance() bool {
	return l.Tolerance > 0
}

// Query selects the limitations relevant to one test run. Zero fields match
// anything.
type Query struct {
	DType  dtypes.DType
	Device Device
	Mode   Mode
}

// Applies reports whether l is enabled and relevant to q.
func (l Limitation) Applies(q Query) bool {
	if !l.Enabled {
		return false
	}
	if q.Device != "" && !slices.Contains(l.Devices, q.Device) {
		return false
	}
	if q.Mode != "" && !slices.Contains(l.Modes, q.Mode) {
		return false
	}
	if q.DType != dtypes.InvalidDType && len(l.DTypes) > 0 && !slices.Contains(l.DTypes, q.DType) {
		return false
	}
	return true
}

// MaxTolerance returns the limitation with the largest tolerance, regardless
// of order. ok is false if none sets a tolerance.
func MaxTolerance(lims []Limitation) (max Limitation, ok bool) {
	for _, l := range lims {
		if !l.HasTolerance() {
			continue
		}
		if !ok || l.Tolerance > max.Tolerance {
			max, ok = l, true
		}
	}
	return max, ok
}
