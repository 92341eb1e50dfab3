package tabulate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"memarea/core/catalog"
	"memarea/core/types"
	"memarea/internal/errors"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func baseBuilder() *catalog.Builder {
	return catalog.NewBuilder().
		MustAdd("c0", types.CoreCell{DriveWordline: 1, DriveBitline: 1, Dims: types.NewDimensions(1, 1, 0, 0)})
}

func fullCatalog() *catalog.Catalog {
	return baseBuilder().
		MustAdd("sw0", types.Switch{DriveStrength: 10, VoltageMin: 0, VoltageMax: 5, Dims: types.NewDimensions(2, 1, 0, 0)}).
		MustAdd("lg0", types.LogicBlock{DriveStrength: 10, DecodableBits: 2, Dims: types.NewDimensions(1, 1, 0, 0)}).
		MustAdd("adc0", types.ADC{ResolutionBits: 8, MaxSampleRate: 1e6, Dims: types.NewDimensions(2, 3, 0, 0)}).
		Build()
}

func config4x4() *types.Configuration {
	return &types.Configuration{Name: "cfg", Rows: 4, Cols: 4, CoreCell: "c0"}
}

func newTab(t *testing.T, cat *catalog.Catalog, opts ...Option) *Tabulator {
	t.Helper()
	tab, err := New(cat, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tab
}

func TestTabulateCoreOnly(t *testing.T) {
	report, err := newTab(t, baseBuilder().Build()).Tabulate(config4x4())
	if err != nil {
		t.Fatal(err)
	}

	want := &types.Report{
		Configuration: "cfg",
		Entries: []types.ReportEntry{
			{Name: "c0", Count: 16, Kind: types.KindCore, Location: types.LocationArray, Area: d("16")},
		},
	}
	if diff := cmp.Diff(want, report, decimalEqual); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestTabulateWordline(t *testing.T) {
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1.0, 2.0}

	report, err := newTab(t, fullCatalog()).Tabulate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []types.ReportEntry{
		{Name: "c0", Count: 16, Kind: types.KindCore, Location: types.LocationArray, Area: d("16")},
		{Name: "sw0", Count: 4, Kind: types.KindSwitch, Location: types.LocationWL, Area: d("8")},
		{Name: "sw0", Count: 4, Kind: types.KindSwitch, Location: types.LocationWL, Area: d("8")},
		{Name: "lg0", Count: 4, Kind: types.KindLogic, Location: types.LocationWL, Area: d("4")},
	}
	if diff := cmp.Diff(want, report.Entries, decimalEqual); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if !report.Total().Equal(d("36")) {
		t.Errorf("Total() = %s, want 36", report.Total())
	}
}

func TestTabulateAllRails(t *testing.T) {
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1}
	cfg.BitlineVoltages = []float64{0.5}
	cfg.WellVoltages = []float64{0}
	cfg.ADCResolutionBits = intp(8)
	cfg.ADCSampleRate = floatp(5e5)
	cfg.ADCCount = intp(4)

	report, err := newTab(t, fullCatalog()).Tabulate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []types.ReportEntry{
		{Name: "c0", Count: 16, Kind: types.KindCore, Location: types.LocationArray, Area: d("16")},
		{Name: "sw0", Count: 4, Kind: types.KindSwitch, Location: types.LocationWL, Area: d("8")},
		{Name: "lg0", Count: 4, Kind: types.KindLogic, Location: types.LocationWL, Area: d("4")},
		{Name: "sw0", Count: 4, Kind: types.KindSwitch, Location: types.LocationBL, Area: d("8")},
		{Name: "lg0", Count: 4, Kind: types.KindLogic, Location: types.LocationBL, Area: d("4")},
		{Name: "sw0", Count: 4, Kind: types.KindSwitch, Location: types.LocationWell, Area: d("8")},
		{Name: "lg0", Count: 1, Kind: types.KindLogic, Location: types.LocationWell, Area: d("1")},
		{Name: "adc0", Count: 4, Kind: types.KindADC, Location: types.LocationBL, Area: d("24")},
	}
	if diff := cmp.Diff(want, report.Entries, decimalEqual); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestTabulateScale(t *testing.T) {
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1.0, 2.0}

	unit, err := newTab(t, fullCatalog()).Total(cfg)
	if err != nil {
		t.Fatal(err)
	}
	half, err := newTab(t, fullCatalog(), WithScale(d("0.5"))).Total(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !half.Equal(unit.Mul(d("0.5"))) {
		t.Errorf("scaled total = %s, want %s", half, unit.Mul(d("0.5")))
	}

	if _, err := New(fullCatalog(), WithScale(decimal.Zero)); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("zero scale: got %v, want INPUT_ERROR", err)
	}
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil catalog")
	}
}

func TestTabulateMissingCell(t *testing.T) {
	cfg := config4x4()
	cfg.CoreCell = "nope"

	report, err := newTab(t, fullCatalog()).Tabulate(cfg)
	if report != nil {
		t.Error("partial report returned")
	}
	if !errors.IsType(err, errors.TypeMissingCell) {
		t.Errorf("got %v, want MISSING_CELL", err)
	}
}

func TestTabulateEmptyVoltageList(t *testing.T) {
	cfg := config4x4()
	cfg.BitlineVoltages = []float64{}

	_, err := newTab(t, fullCatalog()).Tabulate(cfg)
	if !errors.IsType(err, errors.TypeMalformedConfiguration) {
		t.Errorf("got %v, want MALFORMED_CONFIGURATION", err)
	}
}

func TestTabulateMissingSection(t *testing.T) {
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1}

	_, err := newTab(t, baseBuilder().Build()).Tabulate(cfg)
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeInvalidDatabase {
		t.Fatalf("got %v, want INVALID_DATABASE", err)
	}
	if e.Context["location"] != "WL" {
		t.Errorf("context location = %v, want WL", e.Context["location"])
	}
}

func TestTabulateNoSuitableCandidate(t *testing.T) {
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1, 10}

	_, err := newTab(t, fullCatalog()).Tabulate(cfg)
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeNoSuitableCandidate {
		t.Fatalf("got %v, want NO_SUITABLE_CANDIDATE", err)
	}
	if e.Context["configuration"] != "cfg" {
		t.Errorf("context configuration = %v, want cfg", e.Context["configuration"])
	}
	if e.Context["role"] != "switch for 10 V" {
		t.Errorf("context role = %v", e.Context["role"])
	}
	if e.Context["required_voltage"] != 10.0 {
		t.Errorf("context required_voltage = %v, want 10", e.Context["required_voltage"])
	}
}

func TestTabulateDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tab := newTab(t, fullCatalog(), WithLogger(zap.New(core)))

	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1}
	cfg.ADCResolutionBits = intp(8)

	report, err := tab.Tabulate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(report.Entries); n != 3 {
		t.Errorf("got %d entries, want 3 (no ADC bank)", n)
	}

	skipped := logs.FilterMessage("no voltages supplied, skipping rail drivers")
	if skipped.Len() != 2 {
		t.Errorf("got %d rail skip notices, want 2", skipped.Len())
	}
	for _, entry := range skipped.All() {
		if entry.Level != zapcore.InfoLevel {
			t.Errorf("rail skip logged at %s, want info", entry.Level)
		}
	}

	partial := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(partial) != 1 {
		t.Fatalf("got %d warnings, want 1", len(partial))
	}
	if partial[0].ContextMap()["configuration"] != "cfg" {
		t.Errorf("warning context = %v", partial[0].ContextMap())
	}
}

func TestTabulateConcurrentUse(t *testing.T) {
	tab := newTab(t, fullCatalog())
	cfg := config4x4()
	cfg.WordlineVoltages = []float64{1, 2}

	done := make(chan decimal.Decimal, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			total, err := tab.Total(cfg)
			if err != nil {
				t.Error(err)
			}
			done <- total
		}()
	}
	for i := 0; i < cap(done); i++ {
		if got := <-done; !got.Equal(d("36")) {
			t.Errorf("concurrent total = %s, want 36", got)
		}
	}
}

// rectCatalog has a core cell with unequal drives and three switches:
// "weak" meets no rail, "mid" meets BL and Well but not WL, "strong" meets
// every rail but is the largest.
func rectCatalog(withStrong bool) *catalog.Catalog {
	b := catalog.NewBuilder().
		MustAdd("c0", types.CoreCell{DriveWordline: 1, DriveBitline: 3, Dims: types.NewDimensions(1, 2, 0, 0)}).
		MustAdd("weak", types.Switch{DriveStrength: 2, VoltageMin: 0, VoltageMax: 5, Dims: types.NewDimensions(1, 1, 0, 0)}).
		MustAdd("mid", types.Switch{DriveStrength: 7, VoltageMin: 0, VoltageMax: 5, Dims: types.NewDimensions(2, 1, 0.5, 0.25)}).
		MustAdd("lg0", types.LogicBlock{DriveStrength: 10, DecodableBits: 2, Dims: types.NewDimensions(1, 1, 0.5, 0)}).
		MustAdd("adc0", types.ADC{ResolutionBits: 8, MaxSampleRate: 1e6, Dims: types.NewDimensions(2, 3, 0, 0.5)})
	if withStrong {
		b.MustAdd("strong", types.Switch{DriveStrength: 20, VoltageMin: 0, VoltageMax: 5, Dims: types.NewDimensions(4, 2, 0, 0)})
	}
	return b.Build()
}

// config2x8 needs WL drive 8·1=8, BL drive 2·3=6 and well drive 8·2·0.25=4
func config2x8() *types.Configuration {
	return &types.Configuration{
		Name:              "rect",
		Rows:              2,
		Cols:              8,
		CoreCell:          "c0",
		WordlineVoltages:  []float64{1},
		BitlineVoltages:   []float64{0.5},
		WellVoltages:      []float64{0},
		ADCResolutionBits: intp(8),
		ADCSampleRate:     floatp(1e6),
		ADCCount:          intp(3),
	}
}

func TestTabulateRectangular(t *testing.T) {
	report, err := newTab(t, rectCatalog(true)).Tabulate(config2x8())
	if err != nil {
		t.Fatal(err)
	}

	want := []types.ReportEntry{
		// (8·1)·(2·2)
		{Name: "c0", Count: 16, Kind: types.KindCore, Location: types.LocationArray, Area: d("32")},
		// only strong reaches drive 8; tiling 2x1: (1·4)·(2·2)
		{Name: "strong", Count: 2, Kind: types.KindSwitch, Location: types.LocationWL, Area: d("16")},
		// (1·1 + 2·0.5)·(2·1)
		{Name: "lg0", Count: 2, Kind: types.KindLogic, Location: types.LocationWL, Area: d("4")},
		// mid beats strong at 1x8: (8·2 + 2·0.5)·(1·1 + 2·0.25) = 25.5 vs 64
		{Name: "mid", Count: 8, Kind: types.KindSwitch, Location: types.LocationBL, Area: d("25.5")},
		// (8·1 + 2·0.5)·(1·1)
		{Name: "lg0", Count: 8, Kind: types.KindLogic, Location: types.LocationBL, Area: d("9")},
		// weak (drive 2) is below the well requirement of 4
		{Name: "mid", Count: 8, Kind: types.KindSwitch, Location: types.LocationWell, Area: d("25.5")},
		// (1 + 2·0.5)·1
		{Name: "lg0", Count: 1, Kind: types.KindLogic, Location: types.LocationWell, Area: d("2")},
		// tiling 1x3: (3·2)·(1·3 + 2·0.5)
		{Name: "adc0", Count: 3, Kind: types.KindADC, Location: types.LocationBL, Area: d("24")},
	}
	if diff := cmp.Diff(want, report.Entries, decimalEqual); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if !report.Total().Equal(d("138")) {
		t.Errorf("Total() = %s, want 138", report.Total())
	}
}

func TestTabulateRectangularWordlineTooWeak(t *testing.T) {
	tab := newTab(t, rectCatalog(false))

	_, err := tab.Tabulate(config2x8())
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeNoSuitableCandidate {
		t.Fatalf("got %v, want NO_SUITABLE_CANDIDATE", err)
	}
	if e.Context["location"] != "WL" || e.Context["role"] != "switch for 1 V" {
		t.Errorf("context = %v, want WL switch for 1 V", e.Context)
	}
	if e.Context["required_drive"] != 8.0 {
		t.Errorf("required_drive = %v, want 8", e.Context["required_drive"])
	}

	// the same catalog serves the bitline and well rails
	cfg := config2x8()
	cfg.WordlineVoltages = nil
	report, err := tab.Tabulate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Total(); !got.Equal(d("118")) {
		t.Errorf("Total() = %s, want 118", got)
	}
}
