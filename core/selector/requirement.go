package selector

import (
	"fmt"

	"memarea/core/types"
)

// Requirement is a capability predicate over one component kind
type Requirement interface {
	// Kind is the kind of component the requirement applies to
	Kind() types.Kind

	// SatisfiedBy reports whether c meets the requirement
	SatisfiedBy(c types.Component) bool

	// Fields returns the numeric requirement for error context
	Fields() map[string]interface{}

	fmt.Stringer
}

// SwitchRequirement asks for a switch that can drive Drive at Voltage
type SwitchRequirement struct {
	Drive   float64
	Voltage float64
}

func (r SwitchRequirement) Kind() types.Kind { return types.KindSwitch }

func (r SwitchRequirement) SatisfiedBy(c types.Component) bool {
	s, ok := c.(types.Switch)
	return ok && s.DriveStrength >= r.Drive && s.Passes(r.Voltage)
}

func (r SwitchRequirement) Fields() map[string]interface{} {
	return map[string]interface{}{"required_drive": r.Drive, "required_voltage": r.Voltage}
}

func (r SwitchRequirement) String() string {
	return fmt.Sprintf("drive >= %g at %g V", r.Drive, r.Voltage)
}

// LogicRequirement asks for a logic block with enough drive and decode width
type LogicRequirement struct {
	Drive float64
	Bits  int
}

func (r LogicRequirement) Kind() types.Kind { return types.KindLogic }

func (r LogicRequirement) SatisfiedBy(c types.Component) bool {
	l, ok := c.(types.LogicBlock)
	return ok && l.DriveStrength >= r.Drive && l.DecodableBits >= r.Bits
}

func (r LogicRequirement) Fields() map[string]interface{} {
	return map[string]interface{}{"required_drive": r.Drive, "required_bits": r.Bits}
}

func (r LogicRequirement) String() string {
	return fmt.Sprintf("drive >= %g, decode >= %d bits", r.Drive, r.Bits)
}

// ADCRequirement asks for a converter with enough rate and resolution
type ADCRequirement struct {
	SampleRate float64
	Bits       int
}

func (r ADCRequirement) Kind() types.Kind { return types.KindADC }

func (r ADCRequirement) SatisfiedBy(c types.Component) bool {
	a, ok := c.(types.ADC)
	return ok && a.MaxSampleRate >= r.SampleRate && a.ResolutionBits >= r.Bits
}

func (r ADCRequirement) Fields() map[string]interface{} {
	return map[string]interface{}{"required_sample_rate": r.SampleRate, "required_bits": r.Bits}
}

func (r ADCRequirement) String() string {
	return fmt.Sprintf("sample rate >= %g S/s, resolution >= %d bits", r.SampleRate, r.Bits)
}
