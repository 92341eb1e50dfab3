// Package catalog - Catalog validation
// Ensures component data is physically meaningful before estimation.
package catalog

import (
	"fmt"

	"memarea/core/types"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(Entry) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateDimensions,
		validateDrive,
		validateVoltageRange,
		validateConverter,
	}
}

// Validate checks every entry against the rules, in kind then name order
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, kind := range c.Kinds() {
		c.sections[kind].Each(func(e Entry) bool {
			for _, rule := range rules {
				if err := rule(e); err != nil {
					errs = append(errs, fmt.Errorf("%s:%s: %w", kind.Key(), e.Name, err))
				}
			}
			return true
		})
	}

	return errs
}

func validateDimensions(e Entry) error {
	return e.Component.Footprint().Validate()
}

// validateDrive rejects negative drive strengths
func validateDrive(e Entry) error {
	switch c := e.Component.(type) {
	case types.CoreCell:
		if c.DriveWordline < 0 || c.DriveBitline < 0 {
			return fmt.Errorf("negative drive (wl %g, bl %g)", c.DriveWordline, c.DriveBitline)
		}
	case types.LogicBlock:
		if c.DriveStrength < 0 {
			return fmt.Errorf("negative drive %g", c.DriveStrength)
		}
		if c.DecodableBits < 0 {
			return fmt.Errorf("negative decodable bits %d", c.DecodableBits)
		}
	case types.Switch:
		if c.DriveStrength < 0 {
			return fmt.Errorf("negative drive %g", c.DriveStrength)
		}
	}
	return nil
}

// validateVoltageRange ensures switch ranges are ordered
func validateVoltageRange(e Entry) error {
	if s, ok := e.Component.(types.Switch); ok && s.VoltageMin > s.VoltageMax {
		return fmt.Errorf("voltage range [%g, %g] is inverted", s.VoltageMin, s.VoltageMax)
	}
	return nil
}

func validateConverter(e Entry) error {
	if a, ok := e.Component.(types.ADC); ok {
		if a.ResolutionBits < 0 || a.MaxSampleRate < 0 {
			return fmt.Errorf("negative resolution or sample rate (%d bits, %g S/s)", a.ResolutionBits, a.MaxSampleRate)
		}
	}
	return nil
}
