package types

import (
	"fmt"

	"memarea/internal/errors"
)

// Rail identifies a shared conductor that needs voltage drivers
type Rail string

const (
	RailWordline Rail = "wordline"
	RailBitline  Rail = "bitline"
	RailWell     Rail = "well"
)

// Configuration describes one memory instance to estimate.
//
// A nil voltage slice means the rail was not specified and is skipped. A
// non-nil empty slice is rejected by Validate.
type Configuration struct {
	// Name identifies the configuration in reports and diagnostics
	Name string

	// Rows and Cols are the array geometry
	Rows int
	Cols int

	// CoreCell names the bit cell in the catalog's core section
	CoreCell string

	WordlineVoltages []float64
	BitlineVoltages  []float64
	WellVoltages     []float64

	// ADC fields; the bank is only generated when all three are set
	ADCResolutionBits *int
	ADCSampleRate     *float64
	ADCCount          *int

	// Options carries free-form annotations from the input file
	Options map[string]string
}

// Voltages returns the voltage list for a rail
func (c *Configuration) Voltages(r Rail) []float64 {
	switch r {
	case RailWordline:
		return c.WordlineVoltages
	case RailBitline:
		return c.BitlineVoltages
	case RailWell:
		return c.WellVoltages
	}
	return nil
}

// ADCSpec returns the ADC requirement when it is fully specified
func (c *Configuration) ADCSpec() (bits int, rate float64, count int, ok bool) {
	if c.ADCResolutionBits == nil || c.ADCSampleRate == nil || c.ADCCount == nil {
		return 0, 0, 0, false
	}
	return *c.ADCResolutionBits, *c.ADCSampleRate, *c.ADCCount, true
}

// Validate checks structural sanity. Failures are MALFORMED_CONFIGURATION.
func (c *Configuration) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return errors.Malformed(fmt.Sprintf(format, args...)).
			WithContext("configuration", c.Name)
	}

	if c.Rows <= 0 || c.Cols <= 0 {
		return fail("configuration %q: array must have positive rows and cols, got %dx%d", c.Name, c.Rows, c.Cols)
	}
	if c.CoreCell == "" {
		return fail("configuration %q: no core cell named", c.Name)
	}
	for _, r := range []Rail{RailWordline, RailBitline, RailWell} {
		v := c.Voltages(r)
		if v != nil && len(v) == 0 {
			return fail("configuration %q: %s voltage list is present but empty", c.Name, r)
		}
	}
	if c.ADCCount != nil && *c.ADCCount <= 0 {
		return fail("configuration %q: adc count must be positive, got %d", c.Name, *c.ADCCount)
	}
	if c.ADCResolutionBits != nil && *c.ADCResolutionBits < 0 {
		return fail("configuration %q: adc resolution must be non-negative", c.Name)
	}
	if c.ADCSampleRate != nil && *c.ADCSampleRate < 0 {
		return fail("configuration %q: adc sample rate must be non-negative", c.Name)
	}
	return nil
}
