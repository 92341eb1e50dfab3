// Package types - Component catalog types
// Defines the four component kinds, their footprints and the tiled-area formula.
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies one of the closed set of component kinds
type Kind int

const (
	// KindCore is a memory bit cell tiled across the array
	KindCore Kind = iota
	// KindLogic is decode or driver logic
	KindLogic
	// KindSwitch is a rail driver or pass gate
	KindSwitch
	// KindADC is one analog-to-digital converter instance
	KindADC
)

// AllKinds lists every kind in catalog section order
var AllKinds = []Kind{KindCore, KindLogic, KindSwitch, KindADC}

// String returns the display name used in reports
func (k Kind) String() string {
	switch k {
	case KindCore:
		return "Core"
	case KindLogic:
		return "Logic"
	case KindSwitch:
		return "Switch"
	case KindADC:
		return "ADC"
	default:
		return "unknown"
	}
}

// Key returns the lower-case section key used in catalog files
func (k Kind) Key() string {
	return strings.ToLower(k.String())
}

// MarshalText encodes the kind by its display name
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindCore || k > KindADC {
		return nil, fmt.Errorf("invalid component kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from either its display name or section key
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name, case-insensitively
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "core":
		return KindCore, nil
	case "logic":
		return KindLogic, nil
	case "switch", "sw":
		return KindSwitch, nil
	case "adc":
		return KindADC, nil
	}
	return 0, fmt.Errorf("unknown component kind: %q", s)
}

// Tiling is the (rows, cols) replica geometry used to compute aggregate area
type Tiling struct {
	Rows int
	Cols int
}

// Single is the 1x1 tiling
var Single = Tiling{Rows: 1, Cols: 1}

// String returns "RxC"
func (t Tiling) String() string {
	return fmt.Sprintf("%dx%d", t.Rows, t.Cols)
}

// Dimensions is a component footprint in micrometers
type Dimensions struct {
	// Width and Height of one instance
	Width  float64
	Height float64

	// EncX and EncY are the enclosure margins on each side
	EncX float64
	EncY float64
}

// NewDimensions builds a footprint from size and enclosure
func NewDimensions(width, height, encX, encY float64) Dimensions {
	return Dimensions{Width: width, Height: height, EncX: encX, EncY: encY}
}

// TiledArea returns the area of t.Rows x t.Cols instances including the
// enclosure on both sides of both axes:
//
//	(cols*width + 2*encX) * (rows*height + 2*encY)
func (d Dimensions) TiledArea(t Tiling) decimal.Decimal {
	two := decimal.NewFromInt(2)
	x := decimal.NewFromInt(int64(t.Cols)).Mul(decimal.NewFromFloat(d.Width)).
		Add(two.Mul(decimal.NewFromFloat(d.EncX)))
	y := decimal.NewFromInt(int64(t.Rows)).Mul(decimal.NewFromFloat(d.Height)).
		Add(two.Mul(decimal.NewFromFloat(d.EncY)))
	return x.Mul(y)
}

// Validate checks that every measure is non-negative
func (d Dimensions) Validate() error {
	if d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("negative size (%g, %g)", d.Width, d.Height)
	}
	if d.EncX < 0 || d.EncY < 0 {
		return fmt.Errorf("negative enclosure (%g, %g)", d.EncX, d.EncY)
	}
	return nil
}

// Component is implemented by every concrete component kind
type Component interface {
	// Kind returns the component's kind tag
	Kind() Kind

	// Footprint returns the physical dimensions of one instance
	Footprint() Dimensions
}

// CoreCell is the elementary bit cell tiled rows x cols times
type CoreCell struct {
	// DriveWordline is the drive each cell demands of its wordline
	DriveWordline float64
	// DriveBitline is the drive each cell demands of its bitline
	DriveBitline float64
	Dims         Dimensions
}

func (c CoreCell) Kind() Kind            { return KindCore }
func (c CoreCell) Footprint() Dimensions { return c.Dims }

// LogicBlock is a decoder or driver logic block
type LogicBlock struct {
	DriveStrength float64
	DecodableBits int
	// MaxFrequency is the maximum operating frequency in Hz
	MaxFrequency float64
	Dims         Dimensions
}

func (l LogicBlock) Kind() Kind            { return KindLogic }
func (l LogicBlock) Footprint() Dimensions { return l.Dims }

// Switch is a rail driver able to pass voltages in [VoltageMin, VoltageMax]
type Switch struct {
	DriveStrength float64
	VoltageMin    float64
	VoltageMax    float64
	Dims          Dimensions
}

func (s Switch) Kind() Kind            { return KindSwitch }
func (s Switch) Footprint() Dimensions { return s.Dims }

// Passes reports whether v lies inside the switch's voltage range
func (s Switch) Passes(v float64) bool {
	return s.VoltageMin <= v && v <= s.VoltageMax
}

// ADC is one converter instance
type ADC struct {
	ResolutionBits int
	// MaxSampleRate is in samples per second
	MaxSampleRate float64
	Dims          Dimensions
}

func (a ADC) Kind() Kind            { return KindADC }
func (a ADC) Footprint() Dimensions { return a.Dims }
