package catalogfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

// legacyCell accumulates the properties of one block in the text format:
//
//	# comment
//	switch: TXGD16
//	dx 12
//	voltage 0, 4.5
//	size 1.2, 0.6
//	enc 0.1
type legacyCell struct {
	kind types.Kind
	name string
	line int

	dx, dxWL, dxBL float64
	bits           int
	fs             float64
	vmin, vmax     float64
	dims           types.Dimensions
}

func (c *legacyCell) component() types.Component {
	switch c.kind {
	case types.KindCore:
		return types.CoreCell{DriveWordline: c.dxWL, DriveBitline: c.dxBL, Dims: c.dims}
	case types.KindLogic:
		return types.LogicBlock{DriveStrength: c.dx, DecodableBits: c.bits, MaxFrequency: c.fs, Dims: c.dims}
	case types.KindSwitch:
		return types.Switch{DriveStrength: c.dx, VoltageMin: c.vmin, VoltageMax: c.vmax, Dims: c.dims}
	default:
		return types.ADC{ResolutionBits: c.bits, MaxSampleRate: c.fs, Dims: c.dims}
	}
}

var headerRe = regexp.MustCompile(`^(\w+):\s*(\S+)$`)

var knownProperties = map[string]bool{
	"dx": true, "dx_wl": true, "dx_bl": true,
	"bits": true, "enob": true, "fs": true, "voltage": true,
	"width": true, "height": true, "size": true, "enc": true,
}

// splitKey splits "key value" or "key = value"
func splitKey(line string) (string, string, bool) {
	i := strings.IndexAny(line, "= \t")
	if i <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.TrimSpace(line[:i]))
	value := strings.TrimSpace(strings.TrimLeft(line[i:], "= \t"))
	return key, value, value != ""
}

// parseFloats parses one or two numbers separated by commas, semicolons or spaces
func parseFloats(value string) ([]float64, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '(' || r == ')' || r == '[' || r == ']'
	})
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("expected one or two numbers, got %q", value)
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *legacyCell) set(key, value string, log *zap.Logger) error {
	if !knownProperties[key] {
		log.Warn("ignoring unknown cell property",
			zap.String("cell", c.name), zap.String("property", key))
		return nil
	}
	nums, err := parseFloats(value)
	if err != nil {
		return err
	}
	first := nums[0]
	second := first
	if len(nums) == 2 {
		second = nums[1]
	}

	switch key {
	case "dx":
		c.dx = first
	case "dx_wl":
		c.dxWL = first
	case "dx_bl":
		c.dxBL = first
	case "bits", "enob":
		c.bits = int(first)
	case "fs":
		c.fs = first
	case "voltage":
		if len(nums) != 2 {
			return fmt.Errorf("voltage needs a min and max, got %q", value)
		}
		c.vmin, c.vmax = first, second
	case "width":
		c.dims.Width = first
	case "height":
		c.dims.Height = first
	case "size":
		c.dims.Width, c.dims.Height = first, second
	case "enc":
		c.dims.EncX, c.dims.EncY = first, second
	}
	return nil
}

func decodeLegacy(r io.Reader, log *zap.Logger) (*catalog.Catalog, error) {
	b := catalog.NewBuilder()
	var curr *legacyCell

	flush := func() error {
		if curr == nil {
			return nil
		}
		if err := b.Add(curr.name, curr.component()); err != nil {
			return errors.Wrapf(errors.TypeParsing, err, "line %d", curr.line)
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			kind, err := types.ParseKind(m[1])
			if err != nil {
				return nil, errors.Wrapf(errors.TypeParsing, err, "line %d", lineNo)
			}
			if err := flush(); err != nil {
				return nil, err
			}
			curr = &legacyCell{kind: kind, name: m[2], line: lineNo}
			continue
		}

		key, value, ok := splitKey(line)
		if !ok || strings.Contains(key, ":") {
			return nil, errors.Newf(errors.TypeParsing, "line %d: malformed line %q", lineNo, line)
		}

		if curr == nil {
			log.Warn("ignoring property outside any cell block", zap.Int("line", lineNo))
			continue
		}
		if err := curr.set(key, value, log); err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "line %d: cell %s", lineNo, curr.name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Parsing("failed to read catalog", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
