// Package lef - LEF macro size ingestion
// Extracts MACRO footprints from Library Exchange Format files and applies
// them to catalog entries of the same name.
package lef

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

// Macro is one MACRO block's footprint in micrometers
type Macro struct {
	Name   string
	Width  float64
	Height float64
}

// Parse reads MACRO/SIZE pairs:
//
//	MACRO cell_name
//	  SIZE 1.5 BY 2.0 ;
//	END cell_name
//
// Macros without a SIZE line are dropped.
func Parse(r io.Reader) ([]Macro, error) {
	var (
		macros []Macro
		curr   *Macro
		sized  bool
	)
	push := func() {
		if curr != nil && sized {
			macros = append(macros, *curr)
		}
		curr, sized = nil, false
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "MACRO":
			push()
			if len(fields) < 2 {
				return nil, errors.Newf(errors.TypeParsing, "line %d: malformed MACRO line: %s", lineNo, line)
			}
			curr = &Macro{Name: fields[1]}
		case "SIZE":
			if curr == nil {
				continue
			}
			w, h, err := parseSize(fields)
			if err != nil {
				return nil, errors.Wrapf(errors.TypeParsing, err, "line %d: malformed SIZE line: %s", lineNo, line)
			}
			curr.Width, curr.Height = w, h
			sized = true
		case "END":
			if curr != nil && len(fields) > 1 && fields[1] == curr.Name {
				push()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Parsing("failed to read LEF", err)
	}
	push()
	return macros, nil
}

// parseSize reads "SIZE <w> BY <h> ;". The terminating semicolon may be
// attached to the height.
func parseSize(fields []string) (float64, float64, error) {
	if len(fields) < 4 || fields[2] != "BY" {
		return 0, 0, fmt.Errorf("expected SIZE <width> BY <height>")
	}
	w, err := parseDim(fields[1])
	if err != nil {
		return 0, 0, err
	}
	h, err := parseDim(strings.TrimSuffix(fields[3], ";"))
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func parseDim(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid dimension %q", s)
	}
	return v, nil
}

// ParseFile parses the LEF file at path
func ParseFile(path string) ([]Macro, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to open LEF %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Result summarizes an augmentation
type Result struct {
	// Updated lists "kind:name" for every resized entry
	Updated []string
	// Unmatched lists macros with no catalog entry
	Unmatched []string
}

// Augment returns a copy of cat whose entries named like a macro take the
// macro's size. Enclosures are kept.
func Augment(cat *catalog.Catalog, macros []Macro, log *zap.Logger) (*catalog.Catalog, Result) {
	if log == nil {
		log = zap.NewNop()
	}
	b := cat.Builder()
	var res Result

	for _, m := range macros {
		matched := false
		for _, kind := range cat.Kinds() {
			view, _ := cat.CollectionFor(kind)
			comp, ok := view.Get(m.Name)
			if !ok {
				continue
			}
			dims := comp.Footprint()
			dims.Width, dims.Height = m.Width, m.Height
			b.Set(m.Name, resize(comp, dims))
			res.Updated = append(res.Updated, kind.Key()+":"+m.Name)
			matched = true
			log.Debug("resized component from LEF",
				zap.String("kind", kind.Key()),
				zap.String("name", m.Name),
				zap.Float64("width", m.Width),
				zap.Float64("height", m.Height),
			)
		}
		if !matched {
			res.Unmatched = append(res.Unmatched, m.Name)
		}
	}
	return b.Build(), res
}

func resize(comp types.Component, dims types.Dimensions) types.Component {
	switch c := comp.(type) {
	case types.CoreCell:
		c.Dims = dims
		return c
	case types.LogicBlock:
		c.Dims = dims
		return c
	case types.Switch:
		c.Dims = dims
		return c
	case types.ADC:
		c.Dims = dims
		return c
	}
	return comp
}
