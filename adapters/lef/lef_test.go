package lef

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

const sample = `
VERSION 5.8 ;
UNITS
  DATABASE MICRONS 1000 ;
END UNITS

MACRO sram6t
  CLASS CORE ;
  SIZE 0.6 BY 0.35 ;
  PIN BL
    DIRECTION INOUT ;
  END BL
END sram6t

MACRO filler
  CLASS CORE ;
END filler

MACRO tg5
  SIZE 2 BY 1.25 ;
END tg5
`

func TestParse(t *testing.T) {
	macros, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []Macro{
		{Name: "sram6t", Width: 0.6, Height: 0.35},
		{Name: "tg5", Width: 2, Height: 1.25},
	}, macros)
}

func TestParseSizeForms(t *testing.T) {
	tests := []struct {
		line string
		w, h float64
	}{
		{"SIZE .5 BY 2 ;", 0.5, 2},
		{"SIZE 1.5E+01 BY 2e-1 ;", 15, 0.2},
		{"SIZE 3 BY 4;", 3, 4},
	}
	for _, tt := range tests {
		macros, err := Parse(strings.NewReader("MACRO a\n  " + tt.line + "\nEND a\n"))
		require.NoError(t, err, tt.line)
		require.Len(t, macros, 1, tt.line)
		assert.Equal(t, Macro{Name: "a", Width: tt.w, Height: tt.h}, macros[0], tt.line)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, src := range []string{
		"MACRO\n",
		"MACRO a\n  SIZE 1 BY ;\nEND a\n",
		"MACRO a\n  SIZE 1 2 ;\nEND a\n",
		"MACRO a\n  SIZE -1 BY 2 ;\nEND a\n",
		"MACRO a\n  SIZE w BY 2 ;\nEND a\n",
	} {
		_, err := Parse(strings.NewReader(src))
		require.Error(t, err, src)
		assert.True(t, errors.IsType(err, errors.TypeParsing))
	}
}

func TestAugment(t *testing.T) {
	cat := catalog.NewBuilder().
		MustAdd("sram6t", types.CoreCell{DriveWordline: 1, DriveBitline: 1, Dims: types.NewDimensions(0.5, 0.3, 0.05, 0.05)}).
		MustAdd("tg5", types.Switch{DriveStrength: 10, VoltageMax: 5, Dims: types.NewDimensions(1, 1, 0.1, 0.1)}).
		Build()

	macros := []Macro{
		{Name: "sram6t", Width: 0.6, Height: 0.35},
		{Name: "nand2", Width: 1, Height: 1},
	}
	out, res := Augment(cat, macros, nil)

	assert.Equal(t, []string{"core:sram6t"}, res.Updated)
	assert.Equal(t, []string{"nand2"}, res.Unmatched)

	core, err := out.Core("sram6t")
	require.NoError(t, err)
	assert.Equal(t, types.NewDimensions(0.6, 0.35, 0.05, 0.05), core.Dims)
	assert.Equal(t, 1.0, core.DriveWordline)

	// the input catalog is unchanged
	orig, err := cat.Core("sram6t")
	require.NoError(t, err)
	assert.Equal(t, 0.5, orig.Dims.Width)
}
