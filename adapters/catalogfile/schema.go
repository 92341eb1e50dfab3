package catalogfile

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"memarea/core/catalog"
	"memarea/core/types"
)

// dimsDoc is the on-disk footprint: size and enclosure as [x, y] pairs
type dimsDoc struct {
	Size [2]float64 `json:"size" yaml:"size,flow"`
	Enc  [2]float64 `json:"enc" yaml:"enc,flow"`
}

func (d dimsDoc) toDims() types.Dimensions {
	return types.NewDimensions(d.Size[0], d.Size[1], d.Enc[0], d.Enc[1])
}

func fromDims(d types.Dimensions) dimsDoc {
	return dimsDoc{Size: [2]float64{d.Width, d.Height}, Enc: [2]float64{d.EncX, d.EncY}}
}

type coreDoc struct {
	DxWL float64 `json:"dx_wl" yaml:"dx_wl"`
	DxBL float64 `json:"dx_bl" yaml:"dx_bl"`
	Dims dimsDoc `json:"dims" yaml:"dims"`
}

type logicDoc struct {
	Dx   float64 `json:"dx" yaml:"dx"`
	Bits int     `json:"bits" yaml:"bits"`
	Fs   float64 `json:"fs" yaml:"fs"`
	Dims dimsDoc `json:"dims" yaml:"dims"`
}

type switchDoc struct {
	Dx      float64    `json:"dx" yaml:"dx"`
	Voltage [2]float64 `json:"voltage" yaml:"voltage,flow"`
	Dims    dimsDoc    `json:"dims" yaml:"dims"`
}

// adcDoc accepts either the effective number of bits (enob) or an integer
// bit count; enob is floored.
type adcDoc struct {
	Enob *float64 `json:"enob,omitempty" yaml:"enob,omitempty"`
	Bits *int     `json:"bits,omitempty" yaml:"bits,omitempty"`
	Fs   float64  `json:"fs" yaml:"fs"`
	Dims dimsDoc  `json:"dims" yaml:"dims"`
}

func (a adcDoc) resolution() int {
	switch {
	case a.Bits != nil:
		return *a.Bits
	case a.Enob != nil:
		return int(math.Floor(*a.Enob))
	}
	return 0
}

// document is the YAML/JSON catalog layout. A nil map is an absent section.
type document struct {
	Core   map[string]coreDoc   `json:"core" yaml:"core"`
	Logic  map[string]logicDoc  `json:"logic" yaml:"logic"`
	Switch map[string]switchDoc `json:"switch" yaml:"switch"`
	ADC    map[string]adcDoc    `json:"adc" yaml:"adc"`
}

// MarshalYAML writes present sections only, in canonical kind order, so an
// empty section survives a round trip as `{}` and an absent one stays absent.
func (d document) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, present bool, v interface{}) error {
		if !present {
			return nil
		}
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &n)
		return nil
	}
	if err := add("core", d.Core != nil, d.Core); err != nil {
		return nil, err
	}
	if err := add("logic", d.Logic != nil, d.Logic); err != nil {
		return nil, err
	}
	if err := add("switch", d.Switch != nil, d.Switch); err != nil {
		return nil, err
	}
	if err := add("adc", d.ADC != nil, d.ADC); err != nil {
		return nil, err
	}
	return root, nil
}

func (d document) build() (*catalog.Catalog, error) {
	b := catalog.NewBuilder()

	if d.Core != nil {
		b.Declare(types.KindCore)
		for name, c := range d.Core {
			if err := b.Add(name, types.CoreCell{DriveWordline: c.DxWL, DriveBitline: c.DxBL, Dims: c.Dims.toDims()}); err != nil {
				return nil, err
			}
		}
	}
	if d.Logic != nil {
		b.Declare(types.KindLogic)
		for name, l := range d.Logic {
			if err := b.Add(name, types.LogicBlock{DriveStrength: l.Dx, DecodableBits: l.Bits, MaxFrequency: l.Fs, Dims: l.Dims.toDims()}); err != nil {
				return nil, err
			}
		}
	}
	if d.Switch != nil {
		b.Declare(types.KindSwitch)
		for name, s := range d.Switch {
			if err := b.Add(name, types.Switch{DriveStrength: s.Dx, VoltageMin: s.Voltage[0], VoltageMax: s.Voltage[1], Dims: s.Dims.toDims()}); err != nil {
				return nil, err
			}
		}
	}
	if d.ADC != nil {
		b.Declare(types.KindADC)
		for name, a := range d.ADC {
			if err := b.Add(name, types.ADC{ResolutionBits: a.resolution(), MaxSampleRate: a.Fs, Dims: a.Dims.toDims()}); err != nil {
				return nil, err
			}
		}
	}

	return b.Build(), nil
}

func toDocument(c *catalog.Catalog) (document, error) {
	var d document
	for _, kind := range c.Kinds() {
		view, _ := c.CollectionFor(kind)
		switch kind {
		case types.KindCore:
			d.Core = make(map[string]coreDoc, view.Len())
		case types.KindLogic:
			d.Logic = make(map[string]logicDoc, view.Len())
		case types.KindSwitch:
			d.Switch = make(map[string]switchDoc, view.Len())
		case types.KindADC:
			d.ADC = make(map[string]adcDoc, view.Len())
		}

		var err error
		view.Each(func(e catalog.Entry) bool {
			switch comp := e.Component.(type) {
			case types.CoreCell:
				d.Core[e.Name] = coreDoc{DxWL: comp.DriveWordline, DxBL: comp.DriveBitline, Dims: fromDims(comp.Dims)}
			case types.LogicBlock:
				d.Logic[e.Name] = logicDoc{Dx: comp.DriveStrength, Bits: comp.DecodableBits, Fs: comp.MaxFrequency, Dims: fromDims(comp.Dims)}
			case types.Switch:
				d.Switch[e.Name] = switchDoc{Dx: comp.DriveStrength, Voltage: [2]float64{comp.VoltageMin, comp.VoltageMax}, Dims: fromDims(comp.Dims)}
			case types.ADC:
				bits := comp.ResolutionBits
				d.ADC[e.Name] = adcDoc{Bits: &bits, Fs: comp.MaxSampleRate, Dims: fromDims(comp.Dims)}
			default:
				err = fmt.Errorf("cannot serialize %s component %q of type %T", kind, e.Name, comp)
				return false
			}
			return true
		})
		if err != nil {
			return document{}, err
		}
	}
	return d, nil
}
