package catalogfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"memarea/core/catalog"
	"memarea/core/types"
)

// hclRoot decodes every top-level block of an HCL catalog:
//
//	section "adc" {}
//	core "sram6t" {
//	  dx_wl = 1.0
//	  dx_bl = 1.0
//	  size  = [0.5, 0.3]
//	  enc   = [0.05, 0.05]
//	}
//
// A kind is present when it has at least one block or a section declaration.
type hclRoot struct {
	Sections []*hclSection `hcl:"section,block"`
	Cores    []*hclCore    `hcl:"core,block"`
	Logic    []*hclLogic   `hcl:"logic,block"`
	Switches []*hclSwitch  `hcl:"switch,block"`
	ADCs     []*hclADC     `hcl:"adc,block"`
	Remain   hcl.Body      `hcl:",remain"`
}

type hclSection struct {
	Kind string `hcl:"kind,label"`
}

type hclCore struct {
	Name string    `hcl:"name,label"`
	DxWL float64   `hcl:"dx_wl"`
	DxBL float64   `hcl:"dx_bl"`
	Size []float64 `hcl:"size"`
	Enc  []float64 `hcl:"enc,optional"`
}

type hclLogic struct {
	Name string    `hcl:"name,label"`
	Dx   float64   `hcl:"dx"`
	Bits int       `hcl:"bits"`
	Fs   float64   `hcl:"fs,optional"`
	Size []float64 `hcl:"size"`
	Enc  []float64 `hcl:"enc,optional"`
}

type hclSwitch struct {
	Name    string    `hcl:"name,label"`
	Dx      float64   `hcl:"dx"`
	Voltage []float64 `hcl:"voltage"`
	Size    []float64 `hcl:"size"`
	Enc     []float64 `hcl:"enc,optional"`
}

type hclADC struct {
	Name string    `hcl:"name,label"`
	Bits int       `hcl:"bits"`
	Fs   float64   `hcl:"fs"`
	Size []float64 `hcl:"size"`
	Enc  []float64 `hcl:"enc,optional"`
}

func pair(v []float64, what string, optional bool) ([2]float64, error) {
	switch {
	case len(v) == 0 && optional:
		return [2]float64{}, nil
	case len(v) == 1:
		return [2]float64{v[0], v[0]}, nil
	case len(v) == 2:
		return [2]float64{v[0], v[1]}, nil
	}
	return [2]float64{}, fmt.Errorf("%s must have one or two values, got %d", what, len(v))
}

func hclDims(size, enc []float64) (types.Dimensions, error) {
	s, err := pair(size, "size", false)
	if err != nil {
		return types.Dimensions{}, err
	}
	e, err := pair(enc, "enc", true)
	if err != nil {
		return types.Dimensions{}, err
	}
	return types.NewDimensions(s[0], s[1], e[0], e[1]), nil
}

func decodeHCL(src []byte, filename string) (*catalog.Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL catalog %s: %w", filename, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL catalog %s: %w", filename, diags)
	}

	b := catalog.NewBuilder()
	for _, s := range root.Sections {
		kind, err := types.ParseKind(s.Kind)
		if err != nil {
			return nil, err
		}
		b.Declare(kind)
	}

	add := func(name string, size, enc []float64, mk func(types.Dimensions) types.Component) error {
		dims, err := hclDims(size, enc)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return b.Add(name, mk(dims))
	}

	for _, c := range root.Cores {
		if err := add(c.Name, c.Size, c.Enc, func(d types.Dimensions) types.Component {
			return types.CoreCell{DriveWordline: c.DxWL, DriveBitline: c.DxBL, Dims: d}
		}); err != nil {
			return nil, err
		}
	}
	for _, l := range root.Logic {
		if err := add(l.Name, l.Size, l.Enc, func(d types.Dimensions) types.Component {
			return types.LogicBlock{DriveStrength: l.Dx, DecodableBits: l.Bits, MaxFrequency: l.Fs, Dims: d}
		}); err != nil {
			return nil, err
		}
	}
	for _, s := range root.Switches {
		v, err := pair(s.Voltage, "voltage", false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		if err := add(s.Name, s.Size, s.Enc, func(d types.Dimensions) types.Component {
			return types.Switch{DriveStrength: s.Dx, VoltageMin: v[0], VoltageMax: v[1], Dims: d}
		}); err != nil {
			return nil, err
		}
	}
	for _, a := range root.ADCs {
		if err := add(a.Name, a.Size, a.Enc, func(d types.Dimensions) types.Component {
			return types.ADC{ResolutionBits: a.Bits, MaxSampleRate: a.Fs, Dims: d}
		}); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}
