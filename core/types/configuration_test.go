package types

import (
	"testing"

	"github.com/shopspring/decimal"

	"memarea/internal/errors"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestConfigurationValidate(t *testing.T) {
	valid := func() *Configuration {
		return &Configuration{Name: "cfg", Rows: 4, Cols: 4, CoreCell: "c0"}
	}

	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{"minimal", func(*Configuration) {}, false},
		{"zero rows", func(c *Configuration) { c.Rows = 0 }, true},
		{"negative cols", func(c *Configuration) { c.Cols = -1 }, true},
		{"no core cell", func(c *Configuration) { c.CoreCell = "" }, true},
		{"absent rails", func(c *Configuration) { c.WordlineVoltages = nil }, false},
		{"empty wordline list", func(c *Configuration) { c.WordlineVoltages = []float64{} }, true},
		{"empty well list", func(c *Configuration) { c.WellVoltages = []float64{} }, true},
		{"zero adc count", func(c *Configuration) { c.ADCCount = intp(0) }, true},
		{"negative sample rate", func(c *Configuration) { c.ADCSampleRate = floatp(-1) }, true},
		{"partial adc", func(c *Configuration) { c.ADCResolutionBits = intp(8) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsType(err, errors.TypeMalformedConfiguration) {
				t.Errorf("error type = %v, want MALFORMED_CONFIGURATION", err)
			}
		})
	}
}

func TestADCSpec(t *testing.T) {
	c := &Configuration{ADCResolutionBits: intp(8), ADCSampleRate: floatp(1e6)}
	if _, _, _, ok := c.ADCSpec(); ok {
		t.Error("ADCSpec reported ok without a count")
	}
	c.ADCCount = intp(4)
	bits, rate, count, ok := c.ADCSpec()
	if !ok || bits != 8 || rate != 1e6 || count != 4 {
		t.Errorf("ADCSpec() = %d, %g, %d, %v", bits, rate, count, ok)
	}
}

func TestReportTotals(t *testing.T) {
	r := &Report{Entries: []ReportEntry{
		{Kind: KindCore, Area: decimal.NewFromInt(16)},
		{Kind: KindSwitch, Area: decimal.NewFromInt(8)},
		{Kind: KindSwitch, Area: decimal.NewFromInt(8)},
		{Kind: KindLogic, Area: decimal.RequireFromString("4.5")},
	}}

	if got := r.Total(); !got.Equal(decimal.RequireFromString("36.5")) {
		t.Errorf("Total() = %s, want 36.5", got)
	}
	byKind := r.ByKind()
	if got := byKind[KindSwitch]; !got.Equal(decimal.NewFromInt(16)) {
		t.Errorf("ByKind()[Switch] = %s, want 16", got)
	}
	if _, ok := byKind[KindADC]; ok {
		t.Error("ByKind() has an ADC entry")
	}
}
