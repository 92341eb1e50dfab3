package selector

import (
	"testing"

	"github.com/shopspring/decimal"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

func switchView(t *testing.T, switches map[string]types.Switch) catalog.View {
	t.Helper()
	b := catalog.NewBuilder().Declare(types.KindSwitch)
	for name, s := range switches {
		b.MustAdd(name, s)
	}
	view, err := b.Build().CollectionFor(types.KindSwitch)
	if err != nil {
		t.Fatal(err)
	}
	return view
}

func sw(dx, vmin, vmax, w, h float64) types.Switch {
	return types.Switch{DriveStrength: dx, VoltageMin: vmin, VoltageMax: vmax, Dims: types.NewDimensions(w, h, 0, 0)}
}

func TestSelectSmallest(t *testing.T) {
	view := switchView(t, map[string]types.Switch{
		"big":   sw(10, 0, 5, 4, 4),
		"small": sw(10, 0, 5, 1, 1),
		"weak":  sw(1, 0, 5, 0.5, 0.5),
		"lowv":  sw(10, 0, 1, 0.5, 0.5),
	})

	name, _, area, err := New(nil).Switch(view, SwitchRequirement{Drive: 4, Voltage: 2}, types.Tiling{Rows: 4, Cols: 1})
	if err != nil {
		t.Fatal(err)
	}
	if name != "small" {
		t.Errorf("selected %q, want small", name)
	}
	if !area.Equal(decimal.NewFromInt(4)) {
		t.Errorf("area = %s, want 4", area)
	}
}

func TestSelectBoundaries(t *testing.T) {
	view := switchView(t, map[string]types.Switch{"exact": sw(4, 0, 2, 1, 1)})

	// drive and voltage bounds are inclusive
	if _, _, _, err := New(nil).Switch(view, SwitchRequirement{Drive: 4, Voltage: 2}, types.Single); err != nil {
		t.Errorf("inclusive bounds rejected: %v", err)
	}
	if _, _, _, err := New(nil).Switch(view, SwitchRequirement{Drive: 4.01, Voltage: 2}, types.Single); err == nil {
		t.Error("expected failure above drive strength")
	}
}

func TestSelectTieBreak(t *testing.T) {
	view := switchView(t, map[string]types.Switch{
		"sw_a": sw(10, 0, 5, 2, 1),
		"sw_b": sw(10, 0, 5, 1, 2),
		"sw_c": sw(10, 0, 5, 3, 3),
	})

	// Repeat to catch any dependence on map iteration order
	for i := 0; i < 20; i++ {
		name, _, _, err := New(nil).Switch(view, SwitchRequirement{Drive: 1, Voltage: 1}, types.Single)
		if err != nil {
			t.Fatal(err)
		}
		if name != "sw_b" {
			t.Fatalf("iteration %d: tie resolved to %q, want sw_b", i, name)
		}
	}
}

func TestSelectNoCandidate(t *testing.T) {
	view := switchView(t, map[string]types.Switch{"sw0": sw(1, 0, 1, 1, 1)})

	_, err := New(nil).Select(view, SwitchRequirement{Drive: 3, Voltage: 2.5}, types.Tiling{Rows: 8, Cols: 1})
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeNoSuitableCandidate {
		t.Fatalf("got %v, want NO_SUITABLE_CANDIDATE", err)
	}
	if e.Context["kind"] != "Switch" {
		t.Errorf("context kind = %v, want Switch", e.Context["kind"])
	}
	if e.Context["required_drive"] != 3.0 || e.Context["required_voltage"] != 2.5 {
		t.Errorf("context = %v, want required drive and voltage", e.Context)
	}
	if e.Context["tiling"] != "8x1" {
		t.Errorf("context tiling = %v, want 8x1", e.Context["tiling"])
	}
}

func TestSelectEmptySection(t *testing.T) {
	view := switchView(t, nil)
	_, err := New(nil).Select(view, SwitchRequirement{}, types.Single)
	if !errors.IsType(err, errors.TypeNoSuitableCandidate) {
		t.Errorf("got %v, want NO_SUITABLE_CANDIDATE", err)
	}
}

func TestSelectKindMismatch(t *testing.T) {
	view := switchView(t, map[string]types.Switch{"sw0": sw(1, 0, 1, 1, 1)})
	_, err := New(nil).Select(view, LogicRequirement{}, types.Single)
	if !errors.IsType(err, errors.TypeInternal) {
		t.Errorf("got %v, want INTERNAL_ERROR", err)
	}
}

func TestRequirements(t *testing.T) {
	logic := types.LogicBlock{DriveStrength: 2, DecodableBits: 3}
	adc := types.ADC{ResolutionBits: 8, MaxSampleRate: 1e6}

	tests := []struct {
		name string
		req  Requirement
		comp types.Component
		want bool
	}{
		{"logic fits", LogicRequirement{Drive: 2, Bits: 3}, logic, true},
		{"logic too few bits", LogicRequirement{Drive: 1, Bits: 4}, logic, false},
		{"logic too weak", LogicRequirement{Drive: 2.5, Bits: 0}, logic, false},
		{"adc fits", ADCRequirement{SampleRate: 1e6, Bits: 8}, adc, true},
		{"adc too slow", ADCRequirement{SampleRate: 2e6, Bits: 8}, adc, false},
		{"adc too coarse", ADCRequirement{SampleRate: 1, Bits: 10}, adc, false},
		{"wrong kind", ADCRequirement{}, logic, false},
	}
	for _, tt := range tests {
		if got := tt.req.SatisfiedBy(tt.comp); got != tt.want {
			t.Errorf("%s: SatisfiedBy = %v, want %v", tt.name, got, tt.want)
		}
	}
}
