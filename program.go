package tensorir

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a program file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for program files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown program format")

// Program describes a module to build.
//
// Values are referred to by index: the entry arguments of a function come
// first, followed by the results of every body operation in order.
type Program struct {
	Module    string         `yaml:"module" toml:"module"`
	Functions []FunctionSpec `yaml:"functions" toml:"functions"`
}

// FunctionSpec describes one function.
type FunctionSpec struct {
	Name string `yaml:"name" toml:"name"`
	// Inputs and Results are abstract values in text form, e.g. "f32[4,n]".
	// Results are only the declared types; the return decides the final ones
	// unless KeepSignature is set.
	Inputs        []string `yaml:"inputs" toml:"inputs"`
	Results       []string `yaml:"results" toml:"results"`
	Body          []OpSpec `yaml:"body" toml:"body"`
	Return        []int    `yaml:"return" toml:"return"`
	KeepSignature bool     `yaml:"keep_signature" toml:"keep_signature"`
	Loc           string   `yaml:"loc" toml:"loc"`
}

// OpSpec describes one body operation.
type OpSpec struct {
	Op         string                 `yaml:"op" toml:"op"`
	Operands   []int                  `yaml:"operands" toml:"operands"`
	Results    []string               `yaml:"results" toml:"results"`
	Attributes map[string]interface{} `yaml:"attributes" toml:"attributes"`
	Loc        string                 `yaml:"loc" toml:"loc"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
}

// ParseProgram decodes a program in the given format.
func ParseProgram(data []byte, format Format) (*Program, error) {
	p := &Program{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, errors.Wrap(err, "decode yaml program")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, p); err != nil {
			return nil, errors.Wrap(err, "decode toml program")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return p, nil
}

// LoadProgram reads a program file, choosing the decoder by extension.
func LoadProgram(path string) (*Program, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	p, err := ParseProgram(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return p, nil
}
