// Package configfile - Memory configuration files
// Loads configurations from YAML, JSON or HCL. HCL files may reference
// caller-supplied variables as var.<name>.
package configfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"memarea/core/types"
	"memarea/internal/errors"
)

// Format is a configuration file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFromPath infers the format from a file extension; anything that is
// not JSON or HCL is read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	}
	return FormatYAML
}

// knownKeys are the recognized top-level keys
var knownKeys = map[string]bool{
	"name": true, "n": true, "m": true, "cell": true,
	"wl": true, "bl": true, "well": true,
	"bits": true, "enob": true, "fs": true, "adcs": true,
	"options": true,
}

// document is the YAML/JSON configuration layout:
//
//	name: 64-64
//	n: 128
//	m: 64
//	cell: 1FeFET_100
//	bl: [1, 2, 0]
//	wl: [4, 2.5, 0, 1]
//	well: [0, 4]
//	bits: 1
//	fs: 1e9
//	adcs: 64
type document struct {
	Name    *string                `json:"name" yaml:"name"`
	N       *int                   `json:"n" yaml:"n"`
	M       *int                   `json:"m" yaml:"m"`
	Cell    *string                `json:"cell" yaml:"cell"`
	WL      []float64              `json:"wl" yaml:"wl"`
	BL      []float64              `json:"bl" yaml:"bl"`
	Well    []float64              `json:"well" yaml:"well"`
	Bits    *int                   `json:"bits" yaml:"bits"`
	Enob    *float64               `json:"enob" yaml:"enob"`
	Fs      *float64               `json:"fs" yaml:"fs"`
	ADCs    *int                   `json:"adcs" yaml:"adcs"`
	Options map[string]interface{} `json:"options" yaml:"options"`
}

func (d *document) configuration(defaultName string) (*types.Configuration, error) {
	name := defaultName
	if d.Name != nil && *d.Name != "" {
		name = *d.Name
	}

	var missing []string
	if d.N == nil {
		missing = append(missing, "n")
	}
	if d.M == nil {
		missing = append(missing, "m")
	}
	if d.Cell == nil {
		missing = append(missing, "cell")
	}
	if len(missing) > 0 {
		return nil, errors.Malformed(fmt.Sprintf("configuration %q: missing required option(s) %s", name, strings.Join(missing, ", "))).
			WithContext("configuration", name)
	}

	cfg := &types.Configuration{
		Name:             name,
		Rows:             *d.N,
		Cols:             *d.M,
		CoreCell:         *d.Cell,
		WordlineVoltages: d.WL,
		BitlineVoltages:  d.BL,
		WellVoltages:     d.Well,
		ADCSampleRate:    d.Fs,
		ADCCount:         d.ADCs,
	}
	switch {
	case d.Bits != nil:
		cfg.ADCResolutionBits = d.Bits
	case d.Enob != nil:
		bits := int(math.Floor(*d.Enob))
		cfg.ADCResolutionBits = &bits
	}
	if len(d.Options) > 0 {
		cfg.Options = make(map[string]string, len(d.Options))
		for k, v := range d.Options {
			cfg.Options[k] = fmt.Sprint(v)
		}
	}
	return cfg, nil
}

// Loader reads configuration files
type Loader struct {
	log  *zap.Logger
	vars map[string]cty.Value
}

// NewLoader creates a loader
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log, vars: map[string]cty.Value{}}
}

// WithVariables returns a copy of the loader whose HCL evaluation context
// carries vars in addition to the existing ones.
func (l *Loader) WithVariables(vars map[string]cty.Value) *Loader {
	merged := make(map[string]cty.Value, len(l.vars)+len(vars))
	for k, v := range l.vars {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}
	return &Loader{log: l.log, vars: merged}
}

// Load reads one configuration. Its name defaults to path.
func (l *Loader) Load(path string) (*types.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read configuration %s", path)
	}
	return l.Decode(bytes.NewReader(data), FormatFromPath(path), path)
}

// LoadAll reads every path, returning loaded configurations in input order
// and one error per path that failed.
func (l *Loader) LoadAll(paths []string) ([]*types.Configuration, []error) {
	var (
		configs []*types.Configuration
		errs    []error
	)
	for _, p := range paths {
		cfg, err := l.Load(p)
		if err != nil {
			l.log.Error("failed to read configuration", zap.String("path", p), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, errs
}

// Decode reads a configuration in format; name is the fallback configuration name
func (l *Loader) Decode(r io.Reader, format Format, name string) (*types.Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Parsing("failed to read configuration "+name, err)
	}

	var doc document
	switch format {
	case FormatYAML:
		err = l.decodeYAML(data, name, &doc)
	case FormatJSON:
		err = l.decodeJSON(data, name, &doc)
	case FormatHCL:
		err = l.decodeHCL(data, name, &doc)
	default:
		return nil, errors.NotSupported("configuration format " + string(format))
	}
	if err != nil {
		return nil, err
	}
	return doc.configuration(name)
}

func (l *Loader) warnUnknown(name string, keys []string) {
	sort.Strings(keys)
	for _, k := range keys {
		if !knownKeys[k] {
			l.log.Warn("ignoring unknown configuration option",
				zap.String("configuration", name), zap.String("option", k))
		}
	}
}

func (l *Loader) decodeYAML(data []byte, name string, doc *document) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return errors.Parsing("invalid YAML configuration "+name, err)
	}
	if len(node.Content) == 0 {
		return nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return errors.Newf(errors.TypeParsing, "configuration %s must be a mapping", name)
	}

	keys := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	l.warnUnknown(name, keys)

	if err := root.Decode(doc); err != nil {
		return errors.Parsing("invalid YAML configuration "+name, err)
	}
	return nil
}

func (l *Loader) decodeJSON(data []byte, name string, doc *document) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Parsing("invalid JSON configuration "+name, err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	l.warnUnknown(name, keys)

	if err := json.Unmarshal(data, doc); err != nil {
		return errors.Parsing("invalid JSON configuration "+name, err)
	}
	return nil
}

// hclDocument mirrors document for gohcl
type hclDocument struct {
	Name    *string           `hcl:"name,optional"`
	N       *int              `hcl:"n,optional"`
	M       *int              `hcl:"m,optional"`
	Cell    *string           `hcl:"cell,optional"`
	WL      []float64         `hcl:"wl,optional"`
	BL      []float64         `hcl:"bl,optional"`
	Well    []float64         `hcl:"well,optional"`
	Bits    *int              `hcl:"bits,optional"`
	Enob    *float64          `hcl:"enob,optional"`
	Fs      *float64          `hcl:"fs,optional"`
	ADCs    *int              `hcl:"adcs,optional"`
	Options map[string]string `hcl:"options,optional"`
	Remain  hcl.Body          `hcl:",remain"`
}

// EvalContext exposes vars to HCL expressions as var.<name>
func EvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	obj := cty.EmptyObjectVal
	if len(vars) > 0 {
		obj = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": obj},
	}
}

func (l *Loader) decodeHCL(data []byte, name string, doc *document) error {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return errors.Parsing("invalid HCL configuration "+name, diags)
	}

	var h hclDocument
	if diags := gohcl.DecodeBody(file.Body, EvalContext(l.vars), &h); diags.HasErrors() {
		return errors.Parsing("failed to evaluate HCL configuration "+name, diags)
	}

	if h.Remain != nil {
		attrs, _ := h.Remain.JustAttributes()
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		l.warnUnknown(name, keys)
	}

	*doc = document{
		Name: h.Name, N: h.N, M: h.M, Cell: h.Cell,
		WL: h.WL, BL: h.BL, Well: h.Well,
		Bits: h.Bits, Enob: h.Enob, Fs: h.Fs, ADCs: h.ADCs,
	}
	if len(h.Options) > 0 {
		doc.Options = make(map[string]interface{}, len(h.Options))
		for k, v := range h.Options {
			doc.Options[k] = v
		}
	}
	return nil
}

// ParseVariables parses name=value pairs. Values that parse as numbers
// become cty numbers, everything else a cty string.
func ParseVariables(pairs []string) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Newf(errors.TypeInput, "invalid variable %q, expected name=value", p)
		}
		value = strings.TrimSpace(value)
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, errors.Newf(errors.TypeInput, "invalid variable %q: not a finite number", p)
			}
			vars[name] = cty.NumberFloatVal(f)
		} else {
			vars[name] = cty.StringVal(value)
		}
	}
	return vars, nil
}
