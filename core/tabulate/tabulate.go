// Package tabulate - Area tabulation
// Walks every peripheral requirement a configuration implies, selects the
// best-fit component for each and assembles an itemized area report.
package tabulate

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memarea/core/catalog"
	"memarea/core/selector"
	"memarea/core/types"
	"memarea/core/units"
	"memarea/internal/errors"
)

// Drive strength multipliers
const (
	// WellDriveScale derates the averaged cell drive for well/body bias rails
	WellDriveScale = 0.25
	// LogicDriveScale is the fraction of rail drive the decoder must supply
	LogicDriveScale = 0.5
)

// Tabulator estimates peripheral area against one catalog. It holds no
// mutable state and may be shared between goroutines.
type Tabulator struct {
	catalog *catalog.Catalog
	scale   decimal.Decimal
	log     *zap.Logger
	sel     *selector.Selector
}

// Option configures a Tabulator
type Option func(*Tabulator)

// WithScale sets the uniform area scale factor applied to every entry
func WithScale(s decimal.Decimal) Option {
	return func(t *Tabulator) { t.scale = s }
}

// WithLogger sets the diagnostic sink
func WithLogger(log *zap.Logger) Option {
	return func(t *Tabulator) { t.log = log }
}

// New creates a tabulator. The scale defaults to 1 and must be positive.
func New(cat *catalog.Catalog, opts ...Option) (*Tabulator, error) {
	if cat == nil {
		return nil, errors.Input("tabulator needs a catalog")
	}
	t := &Tabulator{
		catalog: cat,
		scale:   decimal.NewFromInt(1),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if !t.scale.IsPositive() {
		return nil, errors.Newf(errors.TypeInput, "area scale must be positive, got %s", t.scale)
	}
	t.sel = selector.New(t.log)
	return t, nil
}

// Scale returns the area scale factor
func (t *Tabulator) Scale() decimal.Decimal {
	return t.scale
}

// rail describes the driver geometry for one voltage rail
type rail struct {
	kind     types.Rail
	location types.Location

	// drive required of each switch
	drive float64

	switchTiling   types.Tiling
	switchReplicas int
	logicTiling    types.Tiling
	logicReplicas  int
}

func rails(cfg *types.Configuration, core types.CoreCell) []rail {
	rows, cols := cfg.Rows, cfg.Cols
	return []rail{
		{
			kind:           types.RailWordline,
			location:       types.LocationWL,
			drive:          float64(cols) * core.DriveWordline,
			switchTiling:   types.Tiling{Rows: rows, Cols: 1},
			switchReplicas: rows,
			logicTiling:    types.Tiling{Rows: rows, Cols: 1},
			logicReplicas:  rows,
		},
		{
			kind:           types.RailBitline,
			location:       types.LocationBL,
			drive:          float64(rows) * core.DriveBitline,
			switchTiling:   types.Tiling{Rows: 1, Cols: cols},
			switchReplicas: cols,
			logicTiling:    types.Tiling{Rows: 1, Cols: cols},
			logicReplicas:  cols,
		},
		{
			kind:           types.RailWell,
			location:       types.LocationWell,
			drive:          float64(cols) * ((core.DriveBitline + core.DriveWordline) / 2) * WellDriveScale,
			switchTiling:   types.Tiling{Rows: 1, Cols: cols},
			switchReplicas: cols,
			logicTiling:    types.Single,
			logicReplicas:  1,
		},
	}
}

// Tabulate produces the area report for cfg. Any failed selection aborts
// the whole configuration; no partial report is returned.
func (t *Tabulator) Tabulate(cfg *types.Configuration) (*types.Report, error) {
	if cfg == nil {
		return nil, errors.Malformed("nil configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := t.log.With(zap.String("configuration", cfg.Name))

	report := &types.Report{Configuration: cfg.Name}

	// Core array
	core, err := t.catalog.Core(cfg.CoreCell)
	if err != nil {
		return nil, annotate(err, cfg, types.LocationArray, "core array")
	}
	array := types.Tiling{Rows: cfg.Rows, Cols: cfg.Cols}
	report.Entries = append(report.Entries, t.entry(cfg.CoreCell, cfg.Rows*cfg.Cols, types.KindCore, types.LocationArray, core.Dims.TiledArea(array)))

	for _, r := range rails(cfg, core) {
		voltages := cfg.Voltages(r.kind)
		if voltages == nil {
			log.Info("no voltages supplied, skipping rail drivers", zap.String("rail", string(r.kind)))
			continue
		}
		entries, err := t.driveRail(cfg, r, voltages)
		if err != nil {
			return nil, err
		}
		report.Entries = append(report.Entries, entries...)
	}

	bits, rate, count, ok := cfg.ADCSpec()
	if !ok {
		if cfg.ADCResolutionBits != nil || cfg.ADCSampleRate != nil || cfg.ADCCount != nil {
			log.Warn("incomplete ADC specification (expecting bits, sample rate and count); ADCs will not be generated")
		} else {
			log.Info("no ADC specification, skipping ADC bank")
		}
		return report, nil
	}

	view, err := t.catalog.CollectionFor(types.KindADC)
	if err != nil {
		return nil, annotate(err, cfg, types.LocationBL, "ADC bank")
	}
	tiling := types.Tiling{Rows: 1, Cols: count}
	name, _, area, err := t.sel.ADC(view, selector.ADCRequirement{SampleRate: rate, Bits: bits}, tiling)
	if err != nil {
		return nil, annotate(err, cfg, types.LocationBL, "ADC bank")
	}
	report.Entries = append(report.Entries, t.entry(name, count, types.KindADC, types.LocationBL, area))

	return report, nil
}

// driveRail selects one switch per voltage and a shared decoder for a rail
func (t *Tabulator) driveRail(cfg *types.Configuration, r rail, voltages []float64) ([]types.ReportEntry, error) {
	switches, err := t.catalog.CollectionFor(types.KindSwitch)
	if err != nil {
		return nil, annotate(err, cfg, r.location, "switches")
	}
	logics, err := t.catalog.CollectionFor(types.KindLogic)
	if err != nil {
		return nil, annotate(err, cfg, r.location, "decoder")
	}

	entries := make([]types.ReportEntry, 0, len(voltages)+1)
	for _, v := range voltages {
		req := selector.SwitchRequirement{Drive: r.drive, Voltage: v}
		name, _, area, err := t.sel.Switch(switches, req, r.switchTiling)
		if err != nil {
			return nil, annotate(err, cfg, r.location, fmt.Sprintf("switch for %g V", v))
		}
		entries = append(entries, t.entry(name, r.switchReplicas, types.KindSwitch, r.location, area))
	}

	req := selector.LogicRequirement{
		Drive: r.drive * LogicDriveScale,
		Bits:  units.DecodeBits(len(voltages)),
	}
	name, _, area, err := t.sel.Logic(logics, req, r.logicTiling)
	if err != nil {
		return nil, annotate(err, cfg, r.location, "decoder")
	}
	entries = append(entries, t.entry(name, r.logicReplicas, types.KindLogic, r.location, area))

	return entries, nil
}

func (t *Tabulator) entry(name string, count int, kind types.Kind, loc types.Location, area decimal.Decimal) types.ReportEntry {
	return types.ReportEntry{
		Name:     name,
		Count:    count,
		Kind:     kind,
		Location: loc,
		Area:     area.Mul(t.scale),
	}
}

// annotate adds the configuration and peripheral role to a typed error
func annotate(err error, cfg *types.Configuration, loc types.Location, role string) error {
	e, ok := errors.As(err)
	if !ok {
		return errors.Wrapf(errors.TypeInternal, err, "configuration %q, %s %s", cfg.Name, loc, role)
	}
	e.Message = fmt.Sprintf("configuration %q, %s %s: %s", cfg.Name, loc, role, e.Message)
	return e.WithContext("configuration", cfg.Name).
		WithContext("location", string(loc)).
		WithContext("role", role)
}

// Total is a convenience returning the total area of cfg
func (t *Tabulator) Total(cfg *types.Configuration) (decimal.Decimal, error) {
	r, err := t.Tabulate(cfg)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Total(), nil
}
