package limitations

import (
	_ "embed"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/tensorir/dtypes"
)

var (
	// ErrUnknownGroup is returned for a group listed neither as having
	// limitations nor as having none.
	ErrUnknownGroup = errors.New("unknown harness group")
	// ErrConflictingGroup is returned for a group listed both ways.
	ErrConflictingGroup = errors.New("group both has and has no limitations")
	// ErrInvalidTable is returned when a limitation table does not decode.
	ErrInvalidTable = errors.New("invalid limitation table")
)

//go:embed limitations.yaml
var defaultTable []byte

var loadDefault = sync.OnceValues(func() (*Registry, error) {
	return Parse(defaultTable)
})

// Default returns the built-in table. It is parsed once.
func Default() (*Registry, error) {
	return loadDefault()
}

// Registry maps harness groups to their limitations.
type Registry struct {
	none   map[string]struct{}
	groups map[string][]Limitation
}

// Load decodes a YAML table from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read limitation table")
	}
	return Parse(data)
}

// Parse decodes a YAML table.
func Parse(data []byte) (*Registry, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode limitation table"), ErrInvalidTable)
	}

	reg := &Registry{
		none:   make(map[string]struct{}, len(raw.NoLimitations)),
		groups: make(map[string][]Limitation, len(raw.Groups)),
	}
	for _, g := range raw.NoLimitations {
		reg.none[g] = struct{}{}
	}
	for g, entries := range raw.Groups {
		lims := make([]Limitation, 0, len(entries))
		for i, e := range entries {
			l, err := e.limitation()
			if err != nil {
				return nil, errors.Wrapf(err, "group %q entry %d", g, i)
			}
			lims = append(lims, l)
		}
		reg.groups[g] = lims
	}
	return reg, nil
}

// Groups returns every group with a limitations entry, sorted.
func (r *Registry) Groups() []string {
	names := make([]string, 0, len(r.groups))
	for g := range r.groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// ForGroup returns all limitations of group. A group declared as having none
// yields an empty slice.
func (r *Registry) ForGroup(group string) ([]Limitation, error) {
	lims, has := r.groups[group]
	_, none := r.none[group]
	switch {
	case has && none:
		return nil, errors.Wrapf(ErrConflictingGroup, "%q", group)
	case none:
		return nil, nil
	case !has:
		return nil, errors.Wrapf(ErrUnknownGroup, "%q", group)
	}
	return slices.Clone(lims), nil
}

// Applicable returns the limitations of group that apply to q.
func (r *Registry) Applicable(group string, q Query) ([]Limitation, error) {
	lims, err := r.ForGroup(group)
	if err != nil {
		return nil, err
	}
	var out []Limitation
	for _, l := range lims {
		if l.Applies(q) {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- decoding ---

type rawTable struct {
	NoLimitations []string                   `yaml:"no_limitations"`
	Groups        map[string][]rawLimitation `yaml:"groups"`
}

type rawLimitation struct {
	Kind           string     `yaml:"kind"`
	Description    string     `yaml:"description"`
	Devices        stringList `yaml:"devices"`
	DTypes         stringList `yaml:"dtypes"`
	Modes          stringList `yaml:"modes"`
	Enabled        *bool      `yaml:"enabled"`
	ExpectError    *bool      `yaml:"expect_error"`
	SkipRun        bool       `yaml:"skip_run"`
	SkipComparison bool       `yaml:"skip_comparison"`
	Tol            *float64   `yaml:"tol"`
	CustomAssert   string     `yaml:"custom_assert"`
}

// stringList accepts either a scalar or a sequence of scalars.
type stringList []string

func (s *stringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*s = stringList{n.Value}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

func (e rawLimitation) limitation() (Limitation, error) {
	var l Limitation
	switch e.Kind {
	case "", "limitation":
		if e.Description == "" {
			return l, errors.Mark(errors.New("description is required"), ErrInvalidTable)
		}
		l = New(e.Description)
	case "custom_numeric":
		l = CustomNumeric()
	case "missing_kernel":
		l = MissingKernel()
	default:
		return l, errors.Mark(errors.Newf("unknown kind %q", e.Kind), ErrInvalidTable)
	}
	if e.Description != "" {
		l.Description = e.Description
	}

	if len(e.Devices) > 0 {
		l.Devices = l.Devices[:0:0]
		for _, name := range e.Devices {
			d, err := ParseDevice(name)
			if err != nil {
				return l, errors.Mark(err, ErrInvalidTable)
			}
			l.Devices = append(l.Devices, d)
		}
	}
	if len(e.Modes) > 0 {
		l.Modes = l.Modes[:0:0]
		for _, name := range e.Modes {
			m, err := ParseMode(name)
			if err != nil {
				return l, errors.Mark(err, ErrInvalidTable)
			}
			l.Modes = append(l.Modes, m)
		}
	}
	for _, name := range e.DTypes {
		dt, err := dtypes.Parse(name)
		if err != nil {
			return l, errors.Mark(err, ErrInvalidTable)
		}
		l.DTypes = append(l.DTypes, dt)
	}

	if e.Enabled != nil {
		l.Enabled = *e.Enabled
	}
	if e.ExpectError != nil {
		l.ExpectError = *e.ExpectError
	}
	l.SkipRun = e.SkipRun
	l.SkipComparison = e.SkipComparison
	l.CustomAssert = e.CustomAssert
	if e.Tol != nil {
		if *e.Tol < 0 {
			return l, errors.Mark(errors.Newf("negative tolerance %g", *e.Tol), ErrInvalidTable)
		}
		l.Tolerance = *e.Tol
	}

	if !l.ExpectError && !l.HasTolerance() && l.CustomAssert == "" && !l.SkipComparison && !l.SkipRun {
		return l, errors.Mark(errors.Newf("%q expects no error but relaxes nothing", l.Description), ErrInvalidTable)
	}
	return l, nil
}
