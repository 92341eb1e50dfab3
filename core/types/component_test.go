package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTiledArea(t *testing.T) {
	tests := []struct {
		name   string
		dims   Dimensions
		tiling Tiling
		want   string
	}{
		{"single bare cell", NewDimensions(1, 1, 0, 0), Single, "1"},
		{"4x4 array", NewDimensions(1, 1, 0, 0), Tiling{Rows: 4, Cols: 4}, "16"},
		{"column of switches", NewDimensions(2, 1, 0, 0), Tiling{Rows: 4, Cols: 1}, "8"},
		// (2*1.5 + 2*0.5) * (3*2 + 2*0.25) = 4 * 6.5
		{"enclosure on both axes", NewDimensions(1.5, 2, 0.5, 0.25), Tiling{Rows: 3, Cols: 2}, "26"},
		{"zero size keeps enclosure", NewDimensions(0, 0, 1, 1), Tiling{Rows: 8, Cols: 8}, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.dims.TiledArea(tt.tiling)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("TiledArea(%s) = %s, want %s", tt.tiling, got, tt.want)
			}
		})
	}
}

func TestDimensionsValidate(t *testing.T) {
	if err := NewDimensions(1, 1, 0, 0).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NewDimensions(-1, 1, 0, 0).Validate(); err == nil {
		t.Error("expected error for negative width")
	}
	if err := NewDimensions(1, 1, 0, -0.1).Validate(); err == nil {
		t.Error("expected error for negative enclosure")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"core", KindCore, false},
		{"Logic", KindLogic, false},
		{"SWITCH", KindSwitch, false},
		{"sw", KindSwitch, false},
		{" adc ", KindADC, false},
		{"dac", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKindText(t *testing.T) {
	for _, k := range AllKinds {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if back != k {
			t.Errorf("kind %s decoded as %s", k, back)
		}
	}
	if _, err := Kind(42).MarshalText(); err == nil {
		t.Error("expected error for out-of-range kind")
	}
	if KindADC.Key() != "adc" {
		t.Errorf("Key() = %q, want adc", KindADC.Key())
	}
}

func TestSwitchPasses(t *testing.T) {
	s := Switch{VoltageMin: -1, VoltageMax: 1.8}
	for v, want := range map[float64]bool{-1: true, 0: true, 1.8: true, 1.9: false, -1.1: false} {
		if got := s.Passes(v); got != want {
			t.Errorf("Passes(%g) = %v, want %v", v, got, want)
		}
	}
}
